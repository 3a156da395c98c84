package parley

// Storage is a durable key→string backing medium, persisting across
// process restarts. Get reports false for missing or unreadable keys;
// write failures are returned, never swallowed.
type Storage interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Remove(key string) error
}

// MaxHistory is the capacity of a conversation store. Inserting beyond it
// evicts the oldest persisted entry by insertion order.
const MaxHistory = 100

// Store is a bounded, versioned persistence layer for conversations,
// addressable by id. Implementations own the serialized copies only; the
// active in-memory conversation is owned by the session and may run ahead
// of its persisted snapshot between Save calls.
//
// Read failures (missing or corrupt backing data) degrade to an empty
// collection and never propagate. Write failures are surfaced to the
// caller synchronously.
type Store interface {
	// Save upserts by id. An existing record is replaced in place without
	// changing its position in recency order; a new record is inserted at
	// the front, evicting the oldest entry when MaxHistory is exceeded.
	Save(c *Conversation) error

	// All returns the full collection in recency order, most recently
	// inserted first.
	All() []*Conversation

	// Get returns the conversation with the given id, or false if absent.
	Get(id string) (*Conversation, bool)

	// Delete removes the record with the given id; unknown ids are a no-op.
	Delete(id string) error

	// Clear removes the entire collection.
	Clear() error

	// ExportAll returns the collection as a single JSON array blob,
	// byte-for-byte consumable by ImportAll.
	ExportAll() string

	// ImportAll replaces the entire collection with the parsed blob. A blob
	// that is not a well-formed collection is rejected with an error
	// wrapping ErrValidation, leaving existing state untouched.
	ImportAll(blob string) error
}
