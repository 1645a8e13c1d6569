/*
Copyright © 2025 Ambor <saltbo@foxmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eslsoft/woorden/internal/catalog"
	"github.com/eslsoft/woorden/internal/infrastructure/config"
)

// validateCmd checks the word corpus for structural problems
var validateCmd = &cobra.Command{
	Use:   "validate [corpus.json]",
	Short: "校验词库文件的完整性",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) > 0 {
			path = args[0]
		}
		if path == "" {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("加载配置失败: %w", err)
			}
			path = cfg.Catalog.Path
		}

		words, err := catalog.Load(path)
		if err != nil {
			return fmt.Errorf("加载词库失败: %w", err)
		}

		issues := catalog.Validate(words)
		if len(issues) == 0 {
			cmd.Printf("词库校验通过: %d 个词条\n", len(words))
			return nil
		}

		for _, issue := range issues {
			cmd.Println(issue.String())
		}
		return fmt.Errorf("词库校验失败: %d 个问题", len(issues))
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
