package port

import "context"

// Notifier surfaces a user-facing error message. It never fails.
type Notifier interface {
	NotifyError(ctx context.Context, message string)
}
