// cmd/deckctl/root.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

// rootCmd 命令行入口
var rootCmd = &cobra.Command{
	Use:   "deckctl",
	Short: "Build SmartDeck presentations from YAML files",
	Long: `deckctl 读取 YAML 描述的演示文稿并直接生成 .pptx，
与 Web 服务使用相同的导出器。

示例:
  deckctl preview deck.yaml             # 查看幻灯片列表
  deckctl build deck.yaml -o out.pptx   # 生成演示文稿
  deckctl chart -o chart.png            # 单独渲染示例图表`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute 执行根命令
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
