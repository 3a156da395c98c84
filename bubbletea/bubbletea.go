// Package bubbletea provides the Bubble Tea TUI for the parley chat
// client.
package bubbletea

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/parleychat/parley"
)

// SendFunc runs one exchange with the model. The onEvent callback is
// called for each session event. The function blocks until the exchange
// completes or the context is cancelled.
type SendFunc func(ctx context.Context, text string, onEvent func(parley.Event)) error

// Run creates and runs the Bubble Tea TUI program. It blocks until the
// program exits. The context is used for graceful shutdown — when
// cancelled, the program quits.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	_, err := p.Run()
	return err
}

// SessionEventMsg wraps a session event for delivery to the Bubble Tea
// model.
type SessionEventMsg struct {
	Event parley.Event
}

// SendDoneMsg signals that the exchange has completed.
type SendDoneMsg struct {
	Err error
}
