package bubbletea_test

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/parleychat/parley"
	bt "github.com/parleychat/parley/bubbletea"
	parleyjson "github.com/parleychat/parley/json"
	"github.com/parleychat/parley/mock"
	"github.com/stretchr/testify/require"
)

// newSession creates a session whose provider streams the given fragments
// and whose store lives in memory.
func newSession(fragments ...string) *parley.Session {
	provider := &mock.Provider{
		StreamFn: func(ctx context.Context, req parley.Request) (parley.Stream, error) {
			return mock.Fragments(fragments...), nil
		},
	}
	return parley.NewSession(provider, parleyjson.New(&mock.MemStorage{}))
}

// initModel creates a model and sends a WindowSizeMsg to initialize the viewport.
func initModel(t *testing.T, send bt.SendFunc, session *parley.Session) bt.Model {
	t.Helper()
	return initModelWithSize(t, send, session, 80, 24)
}

// initModelWithSize creates a model with a custom terminal size.
func initModelWithSize(t *testing.T, send bt.SendFunc, session *parley.Session, width, height int) bt.Model {
	t.Helper()
	m := bt.New(send, session, parley.DefaultTheme(), bt.Config{})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: width, Height: height})
	model, ok := updated.(bt.Model)
	require.True(t, ok)
	return model
}

// updateModel sends a message and returns the updated Model.
func updateModel(t *testing.T, m bt.Model, msg tea.Msg) bt.Model {
	t.Helper()
	updated, _ := m.Update(msg)
	model, ok := updated.(bt.Model)
	require.True(t, ok)
	return model
}

// nopSend is a send function that does nothing.
func nopSend(_ context.Context, _ string, _ func(parley.Event)) error {
	return nil
}
