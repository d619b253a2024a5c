package render

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/insight-sphere/internal/format"
	"github.com/insight-sphere/internal/types"
)

const chartBarWidth = 40

// Slice is one share of the proportional chart
type Slice struct {
	Symbol  string
	Value   float64
	Percent float64
	Color   lipgloss.Color
}

// Canvas owns chart instances and tracks which are still live
type Canvas struct {
	mu   sync.Mutex
	live map[uuid.UUID]*Chart
}

// NewCanvas creates an empty canvas
func NewCanvas() *Canvas {
	return &Canvas{live: make(map[uuid.UUID]*Chart)}
}

// Live returns the number of charts not yet destroyed
func (c *Canvas) Live() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.live)
}

// Chart is one proportional chart built from a single asset list
type Chart struct {
	ID     uuid.UUID
	Slices []Slice

	canvas *Canvas
}

// ChartSlices computes the slices of a chart keyed by symbol with market cap as
// the value. Percentages are relative to the total of assets alone; with a zero
// total every share is zero. Negative market caps count as zero.
func ChartSlices(assets types.AssetList) []Slice {
	total := assets.TotalMarketCap()

	slices := make([]Slice, 0, len(assets))
	for i, a := range assets {
		value := a.MarketCap.Or(0)
		if value < 0 {
			value = 0
		}
		var pct float64
		if total > 0 {
			pct = value / total * 100
		}
		slices = append(slices, Slice{
			Symbol:  a.Symbol,
			Value:   value,
			Percent: pct,
			Color:   PaletteColor(i),
		})
	}
	return slices
}

// NewChart builds a chart from assets and registers it as live
func (c *Canvas) NewChart(assets types.AssetList) *Chart {
	return c.Place(ChartSlices(assets))
}

// Place registers a chart made of slices as live
func (c *Canvas) Place(slices []Slice) *Chart {
	chart := &Chart{ID: uuid.New(), Slices: slices, canvas: c}

	c.mu.Lock()
	c.live[chart.ID] = chart
	c.mu.Unlock()
	return chart
}

// Destroy releases the chart. Calling it more than once is a no-op.
func (ch *Chart) Destroy() {
	ch.canvas.mu.Lock()
	delete(ch.canvas.live, ch.ID)
	ch.canvas.mu.Unlock()
}

// Legend returns one "SYMBOL $<grouped value> (<pct>%)" line per slice
func (ch *Chart) Legend() []string {
	return legend(ch.Slices)
}

// View draws one bar per slice followed by its legend entry
func (ch *Chart) View() string {
	return DrawChart(ch.Slices)
}

func legend(slices []Slice) []string {
	lines := make([]string, 0, len(slices))
	for _, s := range slices {
		lines = append(lines, fmt.Sprintf("%s %s (%s)", s.Symbol, format.USD(s.Value), format.Percent(s.Percent, 1)))
	}
	return lines
}

// DrawChart renders slices without registering a chart on any canvas
func DrawChart(slices []Slice) string {
	symbolWidth := 0
	for _, s := range slices {
		if w := lipgloss.Width(s.Symbol); w > symbolWidth {
			symbolWidth = w
		}
	}

	entries := legend(slices)
	lines := []string{titleStyle.Render("Market Cap Share")}
	for i, s := range slices {
		filled := barLength(s.Percent)
		bar := lipgloss.NewStyle().Foreground(s.Color).Render(strings.Repeat("█", filled)) +
			mutedStyle.Render(strings.Repeat("░", chartBarWidth-filled))
		label := lipgloss.NewStyle().Width(symbolWidth + 1).Render(s.Symbol)
		lines = append(lines, label+bar+" "+strings.TrimPrefix(entries[i], s.Symbol+" "))
	}
	return strings.Join(lines, "\n")
}

// barLength maps a percentage onto [0, chartBarWidth] cells
func barLength(pct float64) int {
	filled := int(pct/100*chartBarWidth + 0.5)
	if filled < 0 {
		return 0
	}
	if filled > chartBarWidth {
		return chartBarWidth
	}
	return filled
}
