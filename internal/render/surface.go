// Package render turns market snapshots into the content of the dashboard regions.
//
// Renderers are pure: each takes a snapshot and returns the full content of its
// region, so rendering the same snapshot twice yields the same output. A Surface
// receives that content; Board is the in-memory Surface shared by the terminal UI
// and the plain stdout mode.
package render

import (
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Region names one area of the dashboard
type Region string

const (
	RegionMetrics     Region = "metrics"
	RegionMarketStats Region = "market-stats"
	RegionTable       Region = "table"
	RegionChart       Region = "chart"
	RegionStatus      Region = "status"
	RegionBanner      Region = "banner"
)

// Surface is where rendered regions end up.
// Implementations must be safe for concurrent use: banner expiry runs on its own timer.
type Surface interface {
	// Update replaces the whole content of region
	Update(region Region, content string)
	// SetLoading toggles the loading affordance of the manual refresh control
	SetLoading(loading bool)
}

// Board keeps the latest content of every region in memory
type Board struct {
	mu       sync.RWMutex
	regions  map[Region]string
	updates  map[Region]int
	loading  bool
	onChange func()
}

// NewBoard creates an empty board
func NewBoard() *Board {
	return &Board{
		regions: make(map[Region]string),
		updates: make(map[Region]int),
	}
}

// OnChange registers fn to be called after every update.
// fn runs outside the board lock.
func (b *Board) OnChange(fn func()) {
	b.mu.Lock()
	b.onChange = fn
	b.mu.Unlock()
}

// Update implements Surface
func (b *Board) Update(region Region, content string) {
	b.mu.Lock()
	b.regions[region] = content
	b.updates[region]++
	fn := b.onChange
	b.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// SetLoading implements Surface
func (b *Board) SetLoading(loading bool) {
	b.mu.Lock()
	b.loading = loading
	fn := b.onChange
	b.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Content returns the current content of region
func (b *Board) Content(region Region) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.regions[region]
}

// Updates returns how many times region has been written
func (b *Board) Updates(region Region) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.updates[region]
}

// Loading reports whether a refresh is in progress
func (b *Board) Loading() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.loading
}

// View lays the regions out top to bottom: banner, the two panels side by side,
// chart, table and status line. Empty regions are skipped.
func (b *Board) View() string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var blocks []string
	if banner := b.regions[RegionBanner]; banner != "" {
		blocks = append(blocks, banner)
	}

	var panels []string
	for _, r := range []Region{RegionMetrics, RegionMarketStats} {
		if c := b.regions[r]; c != "" {
			panels = append(panels, c)
		}
	}
	if len(panels) > 0 {
		blocks = append(blocks, lipgloss.JoinHorizontal(lipgloss.Top, panels...))
	}

	for _, r := range []Region{RegionChart, RegionTable, RegionStatus} {
		if c := b.regions[r]; c != "" {
			blocks = append(blocks, c)
		}
	}

	return strings.Join(blocks, "\n")
}
