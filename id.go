package parley

import "github.com/google/uuid"

// NewID returns an opaque, collision-resistant identifier. Two rapid calls
// never collide, unlike wall-clock-derived ids.
func NewID() string {
	return uuid.NewString()
}
