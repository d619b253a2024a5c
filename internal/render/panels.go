package render

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/insight-sphere/internal/format"
	"github.com/insight-sphere/internal/types"
)

// LiveMarker is shown in the market-stats panel while data is current
const LiveMarker = "● live"

func onePlace(v float64) string { return format.Percent(v, 1) }

type row struct {
	label string
	value string
}

func panel(title string, rows []row) string {
	width := 0
	for _, r := range rows {
		if w := lipgloss.Width(r.label); w > width {
			width = w
		}
	}

	lines := []string{titleStyle.Render(title)}
	for _, r := range rows {
		label := labelStyle.Width(width + 2).Render(r.label)
		lines = append(lines, label+valueStyle.Render(r.value))
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

// Metrics renders market cap, 24h volume and the bitcoin and ethereum shares
func Metrics(g *types.GlobalSnapshot) string {
	return panel("Global Metrics", []row{
		{"Market Cap", format.Maybe(g.TotalMarketCapUSD, format.Currency)},
		{"24h Volume", format.Maybe(g.TotalVolumeUSD, format.Currency)},
		{"BTC Dominance", format.Maybe(g.BitcoinDominance, onePlace)},
		{"ETH Dominance", format.Maybe(g.EthereumDominance, onePlace)},
	})
}

// MarketStats renders the asset and market counts, the residual share and the
// live marker. The residual share is 100 minus the bitcoin and ethereum shares,
// floored at zero.
func MarketStats(g *types.GlobalSnapshot) string {
	other, _ := g.OtherDominance()
	return panel("Market Stats", []row{
		{"Active Assets", format.Maybe(g.ActiveAssets, format.Count)},
		{"Markets", format.Maybe(g.Markets, format.Count)},
		{"Other Dominance", onePlace(other)},
		{"Data Status", positiveStyle.Render(LiveMarker)},
	})
}

// Status renders the last/next update line
func Status(now time.Time, interval time.Duration) string {
	return mutedStyle.Render("last updated " + now.Format("2006-01-02 15:04:05") +
		" | next update " + now.Add(interval).Format("15:04:05"))
}
