// cmd/deckctl/chart.go
package main

import (
	"fmt"

	"github.com/Corphon/SmartDeck/internal/services"
	"github.com/spf13/cobra"
)

var chartOutput string

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Render the sample bar chart to a PNG file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := services.NewChartService().WriteSampleChart(chartOutput); err != nil {
			return fmt.Errorf("渲染图表失败: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", okStyle.Render("✓"), chartOutput)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(chartCmd)
	chartCmd.Flags().StringVarP(&chartOutput, "output", "o", "chart.png", "Output PNG path")
}
