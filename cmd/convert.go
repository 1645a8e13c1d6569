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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/eslsoft/woorden/internal/catalog"
)

// convertCmd turns a flat xlsx word sheet into the JSON corpus format
var convertCmd = &cobra.Command{
	Use:   "convert <words.xlsx>",
	Short: "将 xlsx 词表转换为 JSON 词库",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sheet, _ := cmd.Flags().GetString("sheet")
		output, _ := cmd.Flags().GetString("output")

		words, err := catalog.LoadXLSX(args[0], sheet)
		if err != nil {
			return fmt.Errorf("读取词表失败: %w", err)
		}
		if len(words) == 0 {
			return fmt.Errorf("词表为空: %s", args[0])
		}

		// A flat sheet cannot carry form tables or example sentences, so
		// validation findings are advisory here. Run `validate` after the
		// JSON has been enriched.
		if issues := catalog.Validate(words); len(issues) > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "警告: 词表存在 %d 个待补全问题\n", len(issues))
		}

		data, err := json.MarshalIndent(words, "", "  ")
		if err != nil {
			return fmt.Errorf("序列化词库失败: %w", err)
		}
		data = append(data, '\n')

		if output == "-" {
			_, err := cmd.OutOrStdout().Write(data)
			return err
		}
		if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
			return fmt.Errorf("创建输出目录失败: %w", err)
		}
		if err := os.WriteFile(output, data, 0o644); err != nil {
			return fmt.Errorf("写入词库失败: %w", err)
		}

		cmd.Printf("转换完成: %d 个词条 -> %s\n", len(words), output)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().String("sheet", "", "工作表名称 (默认第一个)")
	convertCmd.Flags().StringP("output", "o", "data/words.json", "输出 JSON 文件路径，使用 - 表示标准输出")
}
