// Package tui runs the dashboard as a bubbletea program on top of a render.Board.
package tui

import (
	"context"
	"errors"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/insight-sphere/internal/render"
)

// Controller is the part of the coordinator the UI drives
type Controller interface {
	TriggerRefresh(ctx context.Context) error
	DismissBanner() bool
}

type boardChangedMsg struct{}

type refreshDoneMsg struct{ err error }

type dismissDoneMsg struct{ dismissed bool }

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("4")).Padding(0, 1)
	busyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	idleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// Model is the bubbletea model of the dashboard
type Model struct {
	ctx   context.Context
	board *render.Board
	ctrl  Controller
	width int
}

// New creates the dashboard model
func New(ctx context.Context, board *render.Board, ctrl Controller) Model {
	return Model{ctx: ctx, board: board, ctrl: ctrl}
}

func (m Model) refresh() tea.Cmd {
	return func() tea.Msg {
		return refreshDoneMsg{err: m.ctrl.TriggerRefresh(m.ctx)}
	}
}

// dismiss runs off the event loop: the banner writes to the board, which
// notifies the program.
func (m Model) dismiss() tea.Cmd {
	return func() tea.Msg {
		return dismissDoneMsg{dismissed: m.ctrl.DismissBanner()}
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			// the coordinator drops the request itself while one is in flight
			return m, m.refresh()
		case "x":
			return m, m.dismiss()
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case boardChangedMsg, refreshDoneMsg, dismissDoneMsg:
		// the board already holds the new content
	}
	return m, nil
}

// View implements tea.Model
func (m Model) View() string {
	status := idleStyle.Render("● ready")
	if m.board.Loading() {
		status = busyStyle.Render("⟳ refreshing...")
	}

	header := headerStyle.Render("InsightSphere") + " " + status
	body := m.board.View()
	if body == "" {
		body = helpStyle.Render("waiting for data...")
	}
	help := helpStyle.Render("r refresh • x dismiss error • q quit")

	view := strings.Join([]string{header, "", body, "", help}, "\n")
	if m.width > 0 {
		view = lipgloss.NewStyle().MaxWidth(m.width).Render(view)
	}
	return view
}

// Run starts the program and blocks until the user quits or ctx is cancelled
func Run(ctx context.Context, board *render.Board, ctrl Controller) error {
	p, release := newProgram(ctx, board, ctrl, tea.WithAltScreen())
	defer release()

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// newProgram wires board changes into the program. The board hook never
// blocks: bursts of changes collapse into one pending notification that a
// separate goroutine forwards with Send. release detaches the hook.
func newProgram(ctx context.Context, board *render.Board, ctrl Controller, opts ...tea.ProgramOption) (*tea.Program, func()) {
	p := tea.NewProgram(New(ctx, board, ctrl), append(opts, tea.WithContext(ctx))...)

	pending := make(chan struct{}, 1)
	stop := make(chan struct{})
	board.OnChange(func() {
		select {
		case pending <- struct{}{}:
		default:
		}
	})

	go func() {
		for {
			select {
			case <-stop:
				return
			case <-pending:
				p.Send(boardChangedMsg{})
			}
		}
	}()

	var once sync.Once
	release := func() {
		once.Do(func() {
			board.OnChange(nil)
			close(stop)
		})
	}
	return p, release
}
