package main

import "github.com/eslsoft/woorden/cmd"

func main() {
	cmd.Execute()
}
