// internal/admin/repository.go

package admin

import "context"

// Repository holds admin accounts, console aggregates and the removal history.
// A missing admin or user yields an error wrapping errs.ErrNotFound.
type Repository interface {
	GetByEmail(ctx context.Context, email string) (*Admin, error)
	Create(ctx context.Context, a *Admin) error

	// GenderCounts returns the total number of users and a count per recorded gender
	GenderCounts(ctx context.Context) (int64, map[string]int64, error)
	// BlockCounts lists every blocked user with how many users blocked them, most blocked first
	BlockCounts(ctx context.Context) ([]BlockCount, error)

	// RemoveUser records the removal and deletes the user in one step
	RemoveUser(ctx context.Context, removal *Removal) error
	// History lists removals newest first
	History(ctx context.Context) ([]Removal, error)
}
