package render

import (
	"fmt"
	"net/url"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/insight-sphere/internal/format"
	"github.com/insight-sphere/internal/types"
)

const (
	// LogoGlyph marks a row whose logo URL is usable
	LogoGlyph = "◉"
	// PlaceholderGlyph replaces a missing or broken logo. It is a constant and is
	// never itself validated.
	PlaceholderGlyph = "◇"
)

var tableHeaders = []string{"#", "", "Asset", "Price", "24h", "Market Cap", "Volume"}

// LogoMarker picks the logo glyph for image
func LogoMarker(image string) string {
	if image == "" {
		return PlaceholderGlyph
	}
	u, err := url.Parse(image)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return PlaceholderGlyph
	}
	return LogoGlyph
}

func changeCell(a types.Amount) string {
	if !a.Valid {
		return format.Placeholder
	}
	if a.Value >= 0 {
		return positiveStyle.Render(format.SignedPercent(a.Value))
	}
	return negativeStyle.Render(format.SignedPercent(a.Value))
}

func priceCell(a types.Amount) string {
	if !a.Valid {
		return format.Placeholder
	}
	return format.CurrencySymbol + format.Price(a.Value)
}

// TableRows returns the plain cell values of every asset, in list order
func TableRows(assets types.AssetList) [][]string {
	rows := make([][]string, 0, len(assets))
	for _, a := range assets {
		rows = append(rows, []string{
			fmt.Sprintf("#%d", a.Rank),
			LogoMarker(a.Image),
			a.Symbol + " " + mutedStyle.Render(a.Name),
			priceCell(a.CurrentPrice),
			changeCell(a.PriceChangePct24h),
			format.Maybe(a.MarketCap, format.Currency),
			format.Maybe(a.TotalVolume, format.Currency),
		})
	}
	return rows
}

// Table renders the ranked asset table. Every call builds a new table from
// scratch so no row of a previous render survives.
func Table(assets types.AssetList) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#4A5568"))).
		Headers(tableHeaders...).
		Rows(TableRows(assets)...)
	return t.Render()
}
