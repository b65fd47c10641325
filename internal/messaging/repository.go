// internal/messaging/repository.go

package messaging

import (
	"context"
	"encoding/json"
	"time"
)

// Repository is the message and call store. Lookups of a missing message
// return an error wrapping errs.ErrNotFound.
type Repository interface {
	Create(ctx context.Context, msg *Message) error
	GetByID(ctx context.Context, id int64) (*Message, error)

	// Conversation returns every message between a and b, oldest first
	Conversation(ctx context.Context, a, b int64) ([]Message, error)
	// Since returns messages between a and b newer than after, oldest first
	Since(ctx context.Context, a, b int64, after time.Time) ([]Message, error)

	// Call signalling updates
	SetAnswer(ctx context.Context, id int64, answer json.RawMessage) error
	SetRejected(ctx context.Context, id int64) error
	SetLastCandidate(ctx context.Context, id int64, candidate json.RawMessage) error
	SetDuration(ctx context.Context, id int64, seconds int64) error

	// Notification counters
	CountUnviewed(ctx context.Context, receiverID int64) (int, error)
	MarkViewed(ctx context.Context, receiverID int64) error
}
