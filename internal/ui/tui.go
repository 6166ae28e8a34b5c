// ABOUTME: TUI initialization and control
// ABOUTME: Wraps the bubbletea program and feeds it session updates
package ui

import (
	"context"

	"github.com/Resonate-Protocol/stepseq-go/internal/config"
	"github.com/Resonate-Protocol/stepseq-go/pkg/sequencer"
	tea "github.com/charmbracelet/bubbletea"
)

// Notifier coalesces session change signals into StatusMsg updates.
// Notify never blocks, so it is safe to call from session callbacks.
type Notifier struct {
	signal chan struct{}
}

// NewNotifier creates a notifier
func NewNotifier() *Notifier {
	return &Notifier{signal: make(chan struct{}, 1)}
}

// Notify marks the session as changed
func (n *Notifier) Notify() {
	select {
	case n.signal <- struct{}{}:
	default:
	}
}

// Run forwards the latest state through send until ctx is done
func (n *Notifier) Run(ctx context.Context, send func(tea.Msg), state func() sequencer.SessionState, remotes func() int) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-n.signal:
			s := state()
			msg := StatusMsg{State: &s}
			if remotes != nil {
				r := remotes()
				msg.Remotes = &r
			}
			send(msg)
		}
	}
}

// Run creates the TUI program
func Run(ctrl Controller, name string, port int, dirs config.Dirs) *tea.Program {
	return tea.NewProgram(NewModel(ctrl, name, port, dirs), tea.WithAltScreen())
}
