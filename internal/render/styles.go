package render

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7AA2F7"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#A0AEC0"))
	valueStyle    = lipgloss.NewStyle().Bold(true)
	positiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#48BB78"))
	negativeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F56565"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#718096"))
	bannerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#C53030")).Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4A5568")).
			Padding(0, 1).
			MarginRight(1)
)

// palette is indexed by position in the asset list and repeats past its end
var palette = []lipgloss.Color{
	"#FF6384", "#36A2EB", "#FFCE56", "#4BC0C0", "#9966FF",
	"#FF9F40", "#8BC34A", "#C9CBCF", "#E91E63", "#795548",
}

// PaletteColor returns the chart color for position i
func PaletteColor(i int) lipgloss.Color {
	return palette[i%len(palette)]
}
