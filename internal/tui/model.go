// Package tui provides the Bubble Tea memory game interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/shapematch/internal/card"
	"github.com/verte-zerg/shapematch/internal/deck"
	"github.com/verte-zerg/shapematch/internal/game"
	"github.com/verte-zerg/shapematch/internal/model"
	"github.com/verte-zerg/shapematch/internal/stats"
)

const (
	title         = "Memory Card Game"
	averageWait   = 5 * time.Second
	noStoreNotice = "Results are not being saved"
	saveFailed    = "Failed to save result"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F0F0F0"))
	statsStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	winStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#46A758"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
)

type averageMsg struct {
	avg stats.Average
	err error
}

type activator interface {
	Activate()
}

// Model implements the Bubble Tea game UI.
type Model struct {
	ctrl     *game.Controller
	queue    *cmdQueue
	logger   *slog.Logger
	hasStore bool

	keys keyMap
	help help.Model

	width  int
	height int
	cursor int

	status    string
	statusErr bool
}

// NewModel builds the controller for cfg and wraps it in a UI model. results may be nil.
func NewModel(cfg model.GameConfig, results game.ResultStore, gen *deck.Generator, logger *slog.Logger) (*Model, error) {
	q := &cmdQueue{}
	opts := []game.Option{
		game.WithCardFactory(card.New),
		game.WithScheduler(q),
		game.WithDispatcher(q),
		game.WithDelay(cfg.Delay),
		game.WithLogger(logger),
	}
	if gen != nil {
		opts = append(opts, game.WithGenerator(gen))
	}
	if results != nil {
		opts = append(opts, game.WithResultStore(results))
	}
	ctrl, err := game.New(cfg.Size, opts...)
	if err != nil {
		return nil, err
	}
	return &Model{
		ctrl:     ctrl,
		queue:    q,
		logger:   logger,
		hasStore: results != nil,
		keys:     defaultKeyMap(),
		help:     help.New(),
	}, nil
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case resolveMsg:
		msg.fire()
		return m, m.queue.drain()
	case savedMsg:
		if msg.err != nil {
			m.setStatus(saveFailed, true)
		}
		return m, nil
	case averageMsg:
		m.applyAverage(msg)
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	size := m.ctrl.Size()
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-size.Cols)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(size.Cols)
	case key.Matches(msg, m.keys.Left):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Right):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.Flip):
		m.flipCursor()
	case key.Matches(msg, m.keys.Reset):
		if err := m.ctrl.Reset(); err != nil {
			m.logger.Error("failed to reset game", "error", err)
			m.setStatus(err.Error(), true)
		}
		m.cursor = 0
	case key.Matches(msg, m.keys.Average):
		return m, m.loadAverage()
	}
	return m, m.queue.drain()
}

func (m *Model) moveCursor(delta int) {
	next := m.cursor + delta
	if next < 0 || next >= m.ctrl.Size().Cards() {
		return
	}
	m.cursor = next
}

func (m *Model) flipCursor() {
	cards := m.ctrl.Cards()
	if m.cursor >= len(cards) {
		return
	}
	if a, ok := cards[m.cursor].(activator); ok {
		a.Activate()
		return
	}
	m.ctrl.Activate(cards[m.cursor])
}

func (m *Model) loadAverage() tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), averageWait)
		defer cancel()
		avg, err := ctrl.ComputeAverageClicks(ctx)
		return averageMsg{avg: avg, err: err}
	}
}

func (m *Model) applyAverage(msg averageMsg) {
	switch {
	case errors.Is(msg.err, game.ErrNoResultStore):
		m.setStatus(noStoreNotice, false)
	case msg.err != nil:
		m.setStatus(stats.LoadErrorMessage, true)
	default:
		m.setStatus(msg.avg.String(), false)
	}
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

// View implements tea.Model.
func (m *Model) View() string {
	lines := []string{
		titleStyle.Render(title),
		statsStyle.Render(m.renderStats()),
		m.renderBoard(),
	}
	if msg := m.ctrl.WinMessage(); msg != "" {
		lines = append(lines, winStyle.Render(msg))
	}
	if m.status != "" {
		style := statusStyle
		if m.statusErr {
			style = errorStyle
		}
		lines = append(lines, style.Render(m.status))
	}
	lines = append(lines, m.help.View(m.keys))
	content := lipgloss.JoinVertical(lipgloss.Center, lines...)
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) renderStats() string {
	s := m.ctrl.Session()
	return fmt.Sprintf("Moves: %d | Pairs Found: %d/%d", s.Moves, s.MatchedPairs, s.TotalPairs)
}

func (m *Model) renderBoard() string {
	size := m.ctrl.Size()
	cards := m.ctrl.Cards()
	rows := make([]string, 0, size.Rows)
	for r := 0; r < size.Rows; r++ {
		cells := make([]string, 0, size.Cols)
		for c := 0; c < size.Cols; c++ {
			idx := r*size.Cols + c
			cells = append(cells, renderCard(cards[idx], idx == m.cursor))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return strings.Join(rows, "\n")
}

func renderCard(c game.Card, focused bool) string {
	if sc, ok := c.(*card.ShapeCard); ok {
		return sc.View(focused)
	}
	face := "?"
	if c.IsFaceUp() {
		face = c.Identity().String()
	}
	if focused {
		face = "[" + face + "]"
	}
	return " " + face + " "
}
