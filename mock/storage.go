package mock

import (
	"io"

	"github.com/parleychat/parley"
)

// MemStorage is an in-memory parley.Storage. Error fields inject write
// failures for quota/unavailability tests.
type MemStorage struct {
	Values    map[string]string
	SetErr    error // returned by Set when non-nil
	RemoveErr error // returned by Remove when non-nil
	SetCalls  int   // number of Set invocations, failed or not
}

// Get returns the stored value for key.
func (m *MemStorage) Get(key string) (string, bool) {
	v, ok := m.Values[key]
	return v, ok
}

// Set stores the value for key, or returns SetErr when set.
func (m *MemStorage) Set(key, value string) error {
	m.SetCalls++
	if m.SetErr != nil {
		return m.SetErr
	}
	if m.Values == nil {
		m.Values = make(map[string]string)
	}
	m.Values[key] = value
	return nil
}

// Remove deletes the value for key, or returns RemoveErr when set.
func (m *MemStorage) Remove(key string) error {
	if m.RemoveErr != nil {
		return m.RemoveErr
	}
	delete(m.Values, key)
	return nil
}

// Fragments returns a Stream that yields each text as one fragment and
// then io.EOF.
func Fragments(texts ...string) *Stream {
	return FragmentsThen(io.EOF, texts...)
}

// FragmentsThen returns a Stream that yields each text as one fragment
// and then terminates with err.
func FragmentsThen(err error, texts ...string) *Stream {
	i := 0
	return &Stream{
		NextFn: func() (parley.Fragment, error) {
			if i < len(texts) {
				f := parley.Fragment{Text: texts[i]}
				i++
				return f, nil
			}
			return parley.Fragment{}, err
		},
	}
}
