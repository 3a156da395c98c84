// Package json implements the parley.Store contract over a key→string
// Storage medium, persisting the whole collection as a single JSON array.
package json

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/parleychat/parley"
)

// DefaultKey is the storage key holding the conversation collection.
const DefaultKey = "parley_chat_history"

// Interface compliance check.
var _ parley.Store = (*Store)(nil)

// Store is a bounded conversation store. Every mutation re-reads the
// backing value, applies the change, and writes the whole collection back
// in one Set call, so readers never observe a partial write. Corrupt or
// missing backing data degrades to an empty collection and is discarded
// on the next successful write.
type Store struct {
	storage parley.Storage
	key     string
}

// Option configures a [Store].
type Option func(*Store)

// WithKey sets the storage key. Default is DefaultKey.
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// New creates a Store backed by the given medium.
func New(storage parley.Storage, opts ...Option) *Store {
	s := &Store{storage: storage, key: DefaultKey}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Save upserts by id. An existing record is replaced in place, keeping its
// position in recency order; a new record is inserted at the front. When
// the collection then exceeds parley.MaxHistory, the oldest record by
// insertion is evicted. The active conversation is never the eviction
// victim: it was just inserted at the front.
func (s *Store) Save(c *parley.Conversation) error {
	records := s.load()
	dto := marshalConversation(c)

	replaced := false
	for i, rec := range records {
		if rec.ID == c.ID {
			records[i] = dto
			replaced = true
			break
		}
	}
	if !replaced {
		records = append([]conversationDTO{dto}, records...)
		if len(records) > parley.MaxHistory {
			records = records[:parley.MaxHistory]
		}
	}

	return s.write(records)
}

// All returns the full collection in recency order, most recently
// inserted first. Malformed or missing backing data yields an empty
// collection.
func (s *Store) All() []*parley.Conversation {
	records := s.load()
	result := make([]*parley.Conversation, len(records))
	for i, rec := range records {
		result[i] = unmarshalConversation(rec)
	}
	return result
}

// Get returns the conversation with the given id, with timestamps
// materialized from their serialized form, or false if absent.
func (s *Store) Get(id string) (*parley.Conversation, bool) {
	for _, rec := range s.load() {
		if rec.ID == id {
			return unmarshalConversation(rec), true
		}
	}
	return nil, false
}

// Delete removes the record with the given id if present; unknown ids are
// a no-op and touch nothing.
func (s *Store) Delete(id string) error {
	records := s.load()
	for i, rec := range records {
		if rec.ID == id {
			return s.write(append(records[:i], records[i+1:]...))
		}
	}
	return nil
}

// Clear removes the entire collection from the backing medium.
func (s *Store) Clear() error {
	if err := s.storage.Remove(s.key); err != nil {
		return fmt.Errorf("clear store: %w", err)
	}
	return nil
}

// ExportAll returns the collection as a single JSON array blob,
// byte-for-byte consumable by ImportAll. An empty store exports "[]".
func (s *Store) ExportAll() string {
	data, err := json.Marshal(s.load())
	if err != nil {
		// DTOs contain only marshal-safe types.
		return "[]"
	}
	return string(data)
}

// ImportAll parses the blob and replaces the entire collection. The blob
// must be a JSON array of conversation-shaped records; anything else is
// rejected with an error wrapping parley.ErrValidation and existing state
// stays untouched.
func (s *Store) ImportAll(blob string) error {
	if !strings.HasPrefix(strings.TrimSpace(blob), "[") {
		return fmt.Errorf("import: not a JSON array: %w", parley.ErrValidation)
	}
	var records []conversationDTO
	if err := json.Unmarshal([]byte(blob), &records); err != nil {
		return fmt.Errorf("import: %v: %w", err, parley.ErrValidation)
	}
	if err := validateRecords(records); err != nil {
		return fmt.Errorf("import: %w", err)
	}
	return s.write(records)
}

// load reads the backing value. Absence and corruption both degrade to an
// empty collection; the corruption is discarded on the next write.
func (s *Store) load() []conversationDTO {
	raw, ok := s.storage.Get(s.key)
	if !ok {
		return []conversationDTO{}
	}
	var records []conversationDTO
	if err := json.Unmarshal([]byte(raw), &records); err != nil || records == nil {
		return []conversationDTO{}
	}
	return records
}

// write serializes the whole collection and stores it in one Set call.
func (s *Store) write(records []conversationDTO) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal collection: %w", err)
	}
	if err := s.storage.Set(s.key, string(data)); err != nil {
		return fmt.Errorf("write store: %w", err)
	}
	return nil
}
