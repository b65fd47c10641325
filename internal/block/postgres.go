// internal/block/postgres.go

package block

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type postgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL report repository
func NewPostgresRepository(db *sqlx.DB) ReportRepository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, report *Report) error {
	query := `
		INSERT INTO reports (reported_user_id, reporter_id, message)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRowxContext(ctx, query, report.ReportedUserID, report.ReporterID, report.Message).
		Scan(&report.ID, &report.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	return nil
}

func (r *postgresRepository) List(ctx context.Context) ([]Report, error) {
	reports := []Report{}
	err := r.db.SelectContext(ctx, &reports,
		`SELECT id, reported_user_id, reporter_id, message, created_at FROM reports ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return reports, nil
}

func (r *postgresRepository) ListAgainst(ctx context.Context, reportedUserID int64) ([]Report, error) {
	reports := []Report{}
	err := r.db.SelectContext(ctx, &reports,
		`SELECT id, reported_user_id, reporter_id, message, created_at FROM reports
		 WHERE reported_user_id = $1 ORDER BY created_at DESC, id DESC`, reportedUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return reports, nil
}
