package parley

// Event is a sealed interface representing a session event surfaced to the
// UI layer during Send. Events are observational: handlers must not mutate
// the conversation through them. The unexported marker method prevents
// external implementations.
type Event interface {
	event()
}

// EventMessageAppended signals that a message was appended to the active
// conversation (the user message or the assistant placeholder). Message is
// a snapshot taken when the event was emitted; streamed content arrives
// through EventContentUpdate, never through this copy.
type EventMessageAppended struct {
	Message *Message
}

func (EventMessageAppended) event() {}

// EventContentUpdate carries the full accumulated content of the assistant
// placeholder after a fragment was applied. It is a full replacement, not
// a delta — the UI re-renders the whole content each time.
type EventContentUpdate struct {
	MessageID string
	Content   string
}

func (EventContentUpdate) event() {}

// EventMessageRemoved signals that the assistant placeholder was rolled
// back after a transport failure or an abandoned send.
type EventMessageRemoved struct {
	MessageID string
}

func (EventMessageRemoved) event() {}

// Interface compliance checks.
var (
	_ Event = EventMessageAppended{}
	_ Event = EventContentUpdate{}
	_ Event = EventMessageRemoved{}
)
