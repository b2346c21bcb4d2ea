package port

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// CartStorage is a durable key-value slot holding one serialized cart.
// Implementations are bound to a single key and assume a single writer.
type CartStorage interface {
	// Load returns ErrNotFound when nothing was saved under the key yet.
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}
