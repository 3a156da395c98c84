package parley

// Fragment is one incremental piece of a streamed response. An empty Text
// means "no content in this step", not an error.
type Fragment struct {
	Text string
}

// Stream uses a pull-based iterator pattern. Next returns io.EOF when the
// stream is exhausted and a non-EOF error on abnormal termination.
// Cancellation flows through the context passed to Provider.Stream.
// Fragments are yielded strictly in arrival order.
type Stream interface {
	Next() (Fragment, error)
	Close() error
}
