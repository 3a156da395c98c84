package anthropic

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/parleychat/parley"
)

// stream implements [parley.Stream] by parsing SSE events from an HTTP
// response body. Only text deltas become fragments; bookkeeping events
// (ping, message_start, content_block_start/stop, message_delta) are
// consumed silently.
type stream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	ctx     context.Context
	done    bool
	closed  bool
	err     error // terminal error, if any
}

// Interface compliance check.
var _ parley.Stream = (*stream)(nil)

func newStream(ctx context.Context, body io.ReadCloser) *stream {
	return &stream{
		body:    body,
		scanner: bufio.NewScanner(body),
		ctx:     ctx,
	}
}

// Next reads the next text fragment from the SSE stream. Returns io.EOF
// when the stream completes normally.
func (s *stream) Next() (parley.Fragment, error) {
	switch {
	case s.closed:
		return parley.Fragment{}, fmt.Errorf("anthropic: %w", parley.ErrStreamClosed)
	case s.err != nil:
		return parley.Fragment{}, s.err
	case s.done:
		return parley.Fragment{}, io.EOF
	}

	for {
		eventType, data, err := s.readSSEEvent()
		if err != nil {
			return parley.Fragment{}, s.terminate(err)
		}

		switch eventType {
		case "content_block_delta":
			var evt sseContentBlockDelta
			if err := json.Unmarshal([]byte(data), &evt); err != nil {
				return parley.Fragment{}, s.terminate(fmt.Errorf("anthropic: failed to parse content_block_delta: %w", err))
			}
			if evt.Delta.Type != "text_delta" {
				continue
			}
			return parley.Fragment{Text: evt.Delta.Text}, nil

		case "message_stop":
			s.done = true
			return parley.Fragment{}, io.EOF

		case "error":
			var evt sseError
			if err := json.Unmarshal([]byte(data), &evt); err != nil {
				return parley.Fragment{}, s.terminate(fmt.Errorf("anthropic: failed to parse error event: %w", err))
			}
			return parley.Fragment{}, s.terminate(fmt.Errorf("anthropic: %s: %s", evt.Error.Type, evt.Error.Message))

		default:
			// ping, message_start, content_block_start/stop, message_delta
			// and unknown event types carry no fragment text.
		}
	}
}

// Close closes the underlying HTTP response body. Further Next calls
// return ErrStreamClosed unless the stream already terminated.
func (s *stream) Close() error {
	if !s.done && s.err == nil {
		s.closed = true
	}
	return s.body.Close()
}

// terminate records a terminal error.
func (s *stream) terminate(err error) error {
	if err == io.EOF {
		// Normal completion arrives as message_stop; a raw EOF means the
		// stream ended mid-message.
		err = fmt.Errorf("anthropic: unexpected end of stream")
	}
	if s.ctx.Err() != nil {
		err = fmt.Errorf("anthropic: %w", s.ctx.Err())
	}
	s.err = err
	return s.err
}

// readSSEEvent reads lines until a complete SSE event is assembled.
// Returns the event type and the data payload.
func (s *stream) readSSEEvent() (string, string, error) {
	var eventType string
	var dataBuf strings.Builder

	for s.scanner.Scan() {
		line := s.scanner.Text()

		if line == "" {
			// Empty line signals end of event.
			if dataBuf.Len() > 0 {
				return eventType, dataBuf.String(), nil
			}
			// Empty event, keep reading.
			continue
		}

		if strings.HasPrefix(line, "event: ") {
			eventType = strings.TrimPrefix(line, "event: ")
		} else if strings.HasPrefix(line, "data: ") {
			if dataBuf.Len() > 0 {
				dataBuf.WriteByte('\n')
			}
			dataBuf.WriteString(strings.TrimPrefix(line, "data: "))
		}
		// Ignore comments (lines starting with ':') and unknown fields.
	}

	if err := s.scanner.Err(); err != nil {
		return "", "", fmt.Errorf("anthropic: %w", err)
	}

	// Scanner exhausted without error = EOF.
	if dataBuf.Len() > 0 {
		return eventType, dataBuf.String(), nil
	}
	return "", "", io.EOF
}
