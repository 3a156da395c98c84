// Package mock provides test doubles for parley interfaces using function
// fields.
package mock

import (
	"context"

	"github.com/parleychat/parley"
)

// Interface compliance checks.
var (
	_ parley.Provider = (*Provider)(nil)
	_ parley.Stream   = (*Stream)(nil)
	_ parley.Storage  = (*MemStorage)(nil)
)

// Provider is a test double for parley.Provider. Set the function fields
// for the methods you need; unset methods panic to catch missing setup.
type Provider struct {
	CompleteFn func(ctx context.Context, req parley.Request) (string, error)
	StreamFn   func(ctx context.Context, req parley.Request) (parley.Stream, error)
}

// Complete delegates to CompleteFn.
func (p *Provider) Complete(ctx context.Context, req parley.Request) (string, error) {
	return p.CompleteFn(ctx, req)
}

// Stream delegates to StreamFn.
func (p *Provider) Stream(ctx context.Context, req parley.Request) (parley.Stream, error) {
	return p.StreamFn(ctx, req)
}

// Stream is a test double for parley.Stream. NextFn panics when nil to
// catch missing setup. CloseFn is nil-safe because test code commonly
// calls defer stream.Close() without custom behavior.
type Stream struct {
	NextFn  func() (parley.Fragment, error)
	CloseFn func() error
}

// Next delegates to NextFn.
func (s *Stream) Next() (parley.Fragment, error) {
	return s.NextFn()
}

// Close delegates to CloseFn. Returns nil when CloseFn is not set.
func (s *Stream) Close() error {
	if s.CloseFn == nil {
		return nil
	}
	return s.CloseFn()
}
