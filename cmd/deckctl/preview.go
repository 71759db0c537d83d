// cmd/deckctl/preview.go
package main

import (
	"fmt"
	"strings"

	"github.com/Corphon/SmartDeck/internal/models"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	numberStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(4)

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Width(7)

	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("252"))

	detailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")).
			PaddingLeft(11)

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("42")).
		Bold(true)
)

var previewCmd = &cobra.Command{
	Use:   "preview <deck.yaml>",
	Short: "Show the slides a deck file would produce",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, deck, err := loadDeckFile(args[0])
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), renderPreview(deck))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)
}

// renderPreview 与网页预览一致：编号、类型、标题，文本列出要点，图片列出路径
func renderPreview(deck *models.Deck) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(deck.Title))
	b.WriteString("\n\n")

	if len(deck.Slides) == 0 {
		b.WriteString(detailStyle.Render("(no slides)"))
		b.WriteString("\n")
		return b.String()
	}

	for i, s := range deck.Slides {
		b.WriteString(numberStyle.Render(fmt.Sprintf("%d.", i+1)))
		b.WriteString(typeStyle.Render(s.Type.Label()))
		b.WriteString(headingStyle.Render(s.Heading))
		b.WriteString("\n")

		switch s.Type {
		case models.SlideTypeText:
			for _, p := range s.Points {
				b.WriteString(detailStyle.Render("• " + p))
				b.WriteString("\n")
			}
		case models.SlideTypeImage:
			b.WriteString(detailStyle.Render(s.ImagePath))
			b.WriteString("\n")
		}
	}
	return b.String()
}
