// cmd/deckctl/build.go
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Corphon/SmartDeck/internal/config"
	"github.com/Corphon/SmartDeck/internal/services"
	"github.com/Corphon/SmartDeck/internal/storage"
	"github.com/spf13/cobra"
)

var (
	buildOutput  string
	buildWorkDir string
)

var buildCmd = &cobra.Command{
	Use:   "build <deck.yaml>",
	Short: "Generate a .pptx from a deck file",
	Long: `根据 YAML 文件生成演示文稿。

第一张为标题页，之后每个条目生成一张幻灯片。图表幻灯片使用示例数据，
渲染出的 chart.png 写入 --work-dir（默认临时目录）。`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		df, deck, err := loadDeckFile(args[0])
		if err != nil {
			return err
		}

		workDir := buildWorkDir
		if workDir == "" {
			workDir, err = os.MkdirTemp("", "deckctl-")
			if err != nil {
				return fmt.Errorf("创建临时目录失败: %w", err)
			}
			defer os.RemoveAll(workDir)
		}

		assets, err := storage.NewFileStorage(workDir)
		if err != nil {
			return err
		}

		subtitle := config.DefaultSubtitle
		if df.Subtitle != nil {
			subtitle = *df.Subtitle
		}
		title := deck.Title
		if title == "" {
			title = config.DefaultTitle
		}

		exporter := services.NewDeckExporter(assets, services.NewChartService(), subtitle)
		data, err := exporter.Export(title, deck.Slides)
		if err != nil {
			return fmt.Errorf("生成演示文稿失败: %w", err)
		}

		if dir := filepath.Dir(buildOutput); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("创建输出目录失败: %w", err)
			}
		}
		if err := os.WriteFile(buildOutput, data, 0644); err != nil {
			return fmt.Errorf("写入输出文件失败: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%d slides, %d bytes)\n",
			okStyle.Render("✓"), buildOutput, len(deck.Slides)+1, len(data))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().StringVarP(&buildOutput, "output", "o", "presentation.pptx", "Output .pptx path")
	buildCmd.Flags().StringVar(&buildWorkDir, "work-dir", "", "Directory for rendered chart images")
}
