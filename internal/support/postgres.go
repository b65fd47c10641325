// internal/support/postgres.go

package support

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/imadgeboyega/matchmaking-backend/internal/common/errs"
	"github.com/jmoiron/sqlx"
)

type postgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL support repository
func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func notFound(id int64) error {
	return fmt.Errorf("support request %d: %w", id, errs.ErrNotFound)
}

func (r *postgresRepository) Create(ctx context.Context, req *Request) error {
	query := `
		INSERT INTO support_requests (user_id, email, mobile, message)
		VALUES ($1, $2, $3, $4)
		RETURNING id, supported, created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query, req.UserID, req.Email, req.Mobile, req.Message).
		Scan(&req.ID, &req.Supported, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create support request: %w", err)
	}
	return nil
}

const selectRequests = `
	SELECT s.id, s.user_id, s.email, s.mobile, s.message, s.supported, s.created_at, s.updated_at,
	       u.name AS user_name, u.mobile AS user_mobile
	FROM support_requests s
	LEFT JOIN users u ON u.id = s.user_id`

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*Request, error) {
	var req Request
	err := r.db.GetContext(ctx, &req, selectRequests+` WHERE s.id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get support request: %w", err)
	}
	return &req, nil
}

func (r *postgresRepository) List(ctx context.Context) ([]Request, error) {
	reqs := []Request{}
	if err := r.db.SelectContext(ctx, &reqs, selectRequests+` ORDER BY s.created_at DESC, s.id DESC`); err != nil {
		return nil, fmt.Errorf("failed to list support requests: %w", err)
	}
	return reqs, nil
}

func (r *postgresRepository) MarkSupported(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE support_requests SET supported = TRUE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark support request: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return notFound(id)
	}
	return nil
}
