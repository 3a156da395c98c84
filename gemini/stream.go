package gemini

import (
	"context"
	"fmt"
	"io"
	"iter"

	"github.com/parleychat/parley"
	"google.golang.org/genai"
)

// stream implements [parley.Stream] by wrapping the genai SDK's streaming
// iterator. Each response chunk becomes one fragment carrying the chunk's
// text; chunks with no text yield an empty fragment rather than being
// skipped, so arrival order is preserved one-to-one.
type stream struct {
	pull   func() (*genai.GenerateContentResponse, error, bool)
	stop   func()
	ctx    context.Context
	done   bool
	closed bool
	err    error
}

// Interface compliance check.
var _ parley.Stream = (*stream)(nil)

func newStream(ctx context.Context, iterFn iter.Seq2[*genai.GenerateContentResponse, error]) *stream {
	next, stop := iter.Pull2(iterFn)
	return &stream{
		pull: next,
		stop: stop,
		ctx:  ctx,
	}
}

// NewStreamFromIter wraps a genai-style streaming iterator in a
// [parley.Stream]. Exposed for testing the stream adapter without a live
// client.
func NewStreamFromIter(ctx context.Context, iterFn iter.Seq2[*genai.GenerateContentResponse, error]) parley.Stream {
	return newStream(ctx, iterFn)
}

func (s *stream) Next() (parley.Fragment, error) {
	switch {
	case s.closed:
		return parley.Fragment{}, fmt.Errorf("gemini: %w", parley.ErrStreamClosed)
	case s.err != nil:
		return parley.Fragment{}, s.err
	case s.done:
		return parley.Fragment{}, io.EOF
	}

	resp, err, ok := s.pull()
	if !ok {
		s.done = true
		return parley.Fragment{}, io.EOF
	}
	if err != nil {
		if s.ctx.Err() != nil {
			err = s.ctx.Err()
		}
		s.err = fmt.Errorf("gemini: %w", err)
		return parley.Fragment{}, s.err
	}
	return parley.Fragment{Text: responseText(resp)}, nil
}

func (s *stream) Close() error {
	if !s.done && s.err == nil {
		s.closed = true
	}
	s.stop()
	return nil
}
