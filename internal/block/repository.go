// internal/block/repository.go

package block

import "context"

// ReportRepository stores user reports. Reports disappear with either party's account.
type ReportRepository interface {
	Create(ctx context.Context, report *Report) error
	// List returns every report, newest first
	List(ctx context.Context) ([]Report, error)
	// ListAgainst returns the reports filed against a user, newest first
	ListAgainst(ctx context.Context, reportedUserID int64) ([]Report, error)
}
