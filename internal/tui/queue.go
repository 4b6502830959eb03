package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type resolveMsg struct {
	fire func()
}

type savedMsg struct {
	err error
}

// cmdQueue collects controller callbacks as tea commands so that scheduled
// resolutions come back through Update instead of firing on a timer goroutine.
type cmdQueue struct {
	cmds []tea.Cmd
}

// After implements game.Scheduler.
func (q *cmdQueue) After(d time.Duration, fn func()) {
	q.cmds = append(q.cmds, tea.Tick(d, func(time.Time) tea.Msg {
		return resolveMsg{fire: fn}
	}))
}

// Dispatch implements game.Dispatcher.
func (q *cmdQueue) Dispatch(task func(ctx context.Context) error) {
	q.cmds = append(q.cmds, func() tea.Msg {
		return savedMsg{err: task(context.Background())}
	})
}

func (q *cmdQueue) drain() tea.Cmd {
	cmds := q.cmds
	q.cmds = nil
	switch len(cmds) {
	case 0:
		return nil
	case 1:
		return cmds[0]
	default:
		return tea.Batch(cmds...)
	}
}
