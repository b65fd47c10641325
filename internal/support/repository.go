// internal/support/repository.go

package support

import "context"

// Repository stores help desk requests. A missing request yields an error wrapping errs.ErrNotFound.
type Repository interface {
	Create(ctx context.Context, req *Request) error
	GetByID(ctx context.Context, id int64) (*Request, error)
	// List returns every request with its user's current name and mobile, newest first
	List(ctx context.Context) ([]Request, error)
	MarkSupported(ctx context.Context, id int64) error
}
