package notify

import (
	"context"
	"slices"
	"sync"
)

// Buffer keeps every reported message until it is drained.
type Buffer struct {
	mu       sync.Mutex
	messages []string
}

func NewBuffer() *Buffer {
	return &Buffer{}
}

func (b *Buffer) NotifyError(_ context.Context, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.messages = append(b.messages, message)
}

func (b *Buffer) Messages() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return slices.Clone(b.messages)
}

// Drain returns the buffered messages and empties the buffer.
func (b *Buffer) Drain() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := b.messages
	b.messages = nil

	return out
}
