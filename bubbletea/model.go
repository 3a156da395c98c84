package bubbletea

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
	"github.com/parleychat/parley"
	"github.com/parleychat/parley/goldmark"
)

var _ tea.Model = Model{}

// view selects what the main area shows.
type view int

const (
	viewChat    view = iota // transcript of the active conversation
	viewHistory             // selectable list of persisted conversations
)

// Config carries display-only settings for the TUI.
type Config struct {
	ModelName string // shown in the status line; empty = provider default
}

// Model is the Bubble Tea model for the parley TUI.
type Model struct {
	// Input is the text input component. Exported for test access.
	Input textinput.Model
	// Viewport is the scrollable output area. Exported for test access.
	Viewport viewport.Model

	send    SendFunc
	session *parley.Session
	theme   parley.Theme
	styles  Styles
	config  Config

	view       view
	history    []*parley.Conversation
	historySel int

	// transcript is the model's own copy of the active conversation,
	// rebuilt from event payloads while a send runs. The send goroutine
	// keeps mutating the live conversation as fragments stream in, so the
	// chat view reads it only between sends.
	transcript []parley.Message

	running bool
	cancel  context.CancelFunc
	eventCh chan parley.Event
	doneCh  chan error
	err     error
	ready   bool
}

// New creates a new TUI Model with the given send function, session,
// theme, and config.
func New(send SendFunc, session *parley.Session, theme parley.Theme, config Config) Model {
	ti := textinput.New()
	ti.Placeholder = "Type a message..."
	ti.Prompt = ""
	ti.Focus()
	ti.CharLimit = 0

	return Model{
		Input:   ti,
		send:    send,
		session: session,
		theme:   theme,
		styles:  NewStyles(theme),
		config:  config,
	}
}

// Running returns whether an exchange is currently in flight.
func (m Model) Running() bool { return m.running }

// Err returns the last error, if any.
func (m Model) Err() error { return m.err }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m = m.handleWindowSize(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case SessionEventMsg:
		m = m.applyEvent(msg.Event)
		m.Viewport.SetContent(m.renderContent())
		m.Viewport.GotoBottom()
		if m.eventCh != nil {
			return m, listenForEvent(m.eventCh, m.doneCh)
		}
		return m, nil

	case SendDoneMsg:
		m.running = false
		m.cancel = nil
		m.eventCh = nil
		m.doneCh = nil
		m.transcript = nil
		if msg.Err != nil && !errors.Is(msg.Err, context.Canceled) {
			m.err = msg.Err
		}
		m.Viewport.SetContent(m.renderContent())
		m.Viewport.GotoBottom()
		cmd := m.Input.Focus()
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)
	}

	// Pass remaining messages to sub-components.
	// Viewport always receives messages for scrolling (keyboard and mouse).
	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	cmds = append(cmds, cmd)

	if !m.running {
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder
	b.WriteString(m.Viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.Input.View())
	return b.String()
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	inputH := 1
	statusHeight := 1
	borderHeight := 2 // newlines between sections
	vpHeight := msg.Height - inputH - statusHeight - borderHeight

	if vpHeight < 1 {
		vpHeight = 1
	}

	if !m.ready {
		m.Viewport = viewport.New(msg.Width, vpHeight)
		m.Viewport.SetContent(m.renderContent())
		m.Viewport.GotoBottom()
		m.ready = true
	} else {
		m.Viewport.Width = msg.Width
		m.Viewport.Height = vpHeight
	}

	m.Input.Width = msg.Width
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.running {
			if m.cancel != nil {
				m.cancel()
			}
			return m, nil
		}
		return m, tea.Quit

	case tea.KeyEsc:
		if m.view == viewHistory {
			m = m.showChat()
		}
		return m, nil

	case tea.KeyEnter:
		if m.running {
			return m, nil
		}
		if m.view == viewHistory {
			return m.openSelected(), nil
		}
		text := strings.TrimSpace(m.Input.Value())
		if text == "" {
			return m, nil
		}
		return m.submitInput(text)

	case tea.KeyCtrlN:
		if !m.running {
			m.session.NewChat()
			m.err = nil
			m = m.showChat()
		}
		return m, nil

	case tea.KeyCtrlH:
		if !m.running {
			if m.view == viewHistory {
				m = m.showChat()
			} else {
				m = m.showHistory()
			}
		}
		return m, nil

	case tea.KeyCtrlD:
		if !m.running && m.view == viewHistory {
			m = m.deleteSelected()
		}
		return m, nil

	case tea.KeyUp:
		if m.view == viewHistory {
			return m.moveHistorySel(-1), nil
		}

	case tea.KeyDown:
		if m.view == viewHistory {
			return m.moveHistorySel(1), nil
		}
	}

	// When idle, pass keys to both input (for typing) and viewport
	// (for scrolling). Only forward non-character keys to viewport to
	// avoid conflicts (e.g. 'j'/'k' are viewport scroll AND text
	// characters).
	if !m.running {
		var cmd tea.Cmd
		var cmds []tea.Cmd

		if msg.Type != tea.KeyRunes {
			m.Viewport, cmd = m.Viewport.Update(msg)
			cmds = append(cmds, cmd)
		}

		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)

		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m Model) submitInput(text string) (tea.Model, tea.Cmd) {
	m.Input.SetValue("")
	m.err = nil

	// Seed the transcript with the conversation as it stands; the send
	// goroutine has not started yet, so this read is the last safe one
	// until SendDoneMsg.
	conv := m.session.Current()
	m.transcript = make([]parley.Message, 0, len(conv.Messages)+2)
	for _, msg := range conv.Messages {
		m.transcript = append(m.transcript, *msg)
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.eventCh = make(chan parley.Event, 256)
	m.doneCh = make(chan error, 1)
	m.running = true

	m.Input.Blur()

	return m, tea.Batch(
		startSend(m.send, ctx, text, m.eventCh, m.doneCh),
		listenForEvent(m.eventCh, m.doneCh),
	)
}

func (m Model) showChat() Model {
	m.view = viewChat
	m.history = nil
	m.historySel = 0
	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()
	return m
}

func (m Model) showHistory() Model {
	m.view = viewHistory
	m.history = m.session.Store().All()
	m.historySel = 0
	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoTop()
	return m
}

func (m Model) openSelected() Model {
	if m.historySel < len(m.history) {
		m.session.Load(m.history[m.historySel].ID)
	}
	return m.showChat()
}

func (m Model) deleteSelected() Model {
	if m.historySel < len(m.history) {
		if err := m.session.Delete(m.history[m.historySel].ID); err != nil {
			m.err = err
			return m
		}
	}
	return m.showHistory()
}

func (m Model) moveHistorySel(delta int) Model {
	m.historySel += delta
	if m.historySel < 0 {
		m.historySel = 0
	}
	if m.historySel >= len(m.history) {
		m.historySel = len(m.history) - 1
	}
	if m.historySel < 0 {
		m.historySel = 0
	}
	m.Viewport.SetContent(m.renderContent())
	return m
}

func (m Model) renderContent() string {
	if m.view == viewHistory {
		return m.renderHistory()
	}
	return m.renderConversation()
}

// applyEvent folds a session event into the transcript. Appended messages
// arrive as snapshots; content updates carry the full accumulated text, so
// a replace is enough.
func (m Model) applyEvent(e parley.Event) Model {
	switch e := e.(type) {
	case parley.EventMessageAppended:
		m.transcript = append(m.transcript, *e.Message)
	case parley.EventContentUpdate:
		for i := range m.transcript {
			if m.transcript[i].ID == e.MessageID {
				m.transcript[i].Content = e.Content
				break
			}
		}
	case parley.EventMessageRemoved:
		m.transcript = slices.DeleteFunc(m.transcript, func(msg parley.Message) bool {
			return msg.ID == e.MessageID
		})
	}
	return m
}

// renderConversation renders the active conversation's transcript.
// Assistant content goes through the markdown renderer; user and system
// content stay plain. While a send is running the live conversation
// belongs to the send goroutine, so rendering uses the event-built
// transcript instead.
func (m Model) renderConversation() string {
	msgs := m.transcript
	if !m.running {
		conv := m.session.Current()
		msgs = make([]parley.Message, 0, len(conv.Messages))
		for _, msg := range conv.Messages {
			msgs = append(msgs, *msg)
		}
	}

	var b strings.Builder
	for i, msg := range msgs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		switch msg.Role {
		case parley.RoleUser:
			b.WriteString(m.styles.UserMsg.Render("You"))
			b.WriteString(m.styles.Muted.Render("  " + msg.CreatedAt.Format("15:04")))
			b.WriteString("\n")
			b.WriteString(msg.Content)
		case parley.RoleAssistant:
			b.WriteString(m.styles.AssistantMsg.Render("Assistant"))
			b.WriteString(m.styles.Muted.Render("  " + msg.CreatedAt.Format("15:04")))
			b.WriteString("\n")
			if msg.Content == "" && m.running {
				b.WriteString(m.styles.Muted.Render("..."))
			} else {
				b.WriteString(goldmark.Render(msg.Content, m.Viewport.Width, m.theme))
			}
		case parley.RoleSystem:
			b.WriteString(m.styles.Error.Render(msg.Content))
		}
	}
	return b.String()
}

// renderHistory renders the persisted conversation list, most recent
// first, with the selected entry highlighted.
func (m Model) renderHistory() string {
	if len(m.history) == 0 {
		return m.styles.Muted.Render("No saved conversations.")
	}
	width := m.Viewport.Width
	if width <= 0 {
		width = 80
	}
	var b strings.Builder
	b.WriteString(m.styles.Accent.Render("History"))
	b.WriteString("\n\n")
	for i, conv := range m.history {
		title := runewidth.Truncate(conv.Title, width-24, "...")
		line := fmt.Sprintf("%s  %s  %d messages",
			conv.LastUpdated.Format("2006-01-02"), title, len(conv.Messages))
		if i == m.historySel {
			b.WriteString(m.styles.Accent.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) statusLine() string {
	if m.err != nil {
		return m.styles.Error.Render(fmt.Sprintf("Error: %v", m.err))
	}
	if m.running {
		return m.styles.Muted.Render("Generating...")
	}
	title := m.session.Current().Title
	help := "Enter send · Ctrl+N new · Ctrl+H history · Ctrl+C quit"
	if m.config.ModelName != "" {
		help = m.config.ModelName + " · " + help
	}
	return m.styles.Muted.Render(runewidth.Truncate(title, 40, "...") + " — " + help)
}

// startSend runs the exchange in a goroutine and signals completion.
func startSend(send SendFunc, ctx context.Context, text string, eventCh chan<- parley.Event, doneCh chan<- error) tea.Cmd {
	return func() tea.Msg {
		err := send(ctx, text, func(e parley.Event) {
			select {
			case eventCh <- e:
			case <-ctx.Done():
			}
		})
		close(eventCh)
		doneCh <- err
		return nil
	}
}

// listenForEvent waits for the next event from the channel. When the
// channel closes, it reads the error from doneCh and returns SendDoneMsg.
func listenForEvent(ch <-chan parley.Event, doneCh <-chan error) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-ch
		if !ok {
			err := <-doneCh
			return SendDoneMsg{Err: err}
		}
		return SessionEventMsg{Event: evt}
	}
}
