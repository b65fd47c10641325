// internal/admin/postgres.go

package admin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/imadgeboyega/matchmaking-backend/internal/common/errs"
	"github.com/imadgeboyega/matchmaking-backend/internal/users"
	"github.com/jmoiron/sqlx"
)

type postgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL admin repository
func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) GetByEmail(ctx context.Context, email string) (*Admin, error) {
	var a Admin
	err := r.db.GetContext(ctx, &a,
		`SELECT id, email, password_hash, created_at FROM admins WHERE email = $1`,
		strings.ToLower(email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("admin %s: %w", email, errs.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}
	return &a, nil
}

func (r *postgresRepository) Create(ctx context.Context, a *Admin) error {
	a.Email = strings.ToLower(a.Email)
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO admins (email, password_hash) VALUES ($1, $2) RETURNING id, created_at`,
		a.Email, a.PasswordHash).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}
	return nil
}

func (r *postgresRepository) GenderCounts(ctx context.Context) (int64, map[string]int64, error) {
	var rows []struct {
		Gender sql.NullString `db:"gender"`
		Count  int64          `db:"count"`
	}
	if err := r.db.SelectContext(ctx, &rows, `SELECT gender, COUNT(*) AS count FROM users GROUP BY gender`); err != nil {
		return 0, nil, fmt.Errorf("failed to count users: %w", err)
	}

	var total int64
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		total += row.Count
		if row.Gender.Valid && row.Gender.String != "" {
			counts[row.Gender.String] = row.Count
		}
	}
	return total, counts, nil
}

func (r *postgresRepository) BlockCounts(ctx context.Context) ([]BlockCount, error) {
	query := `
		SELECT u.id, u.name, u.dp_image, b.count
		FROM (
			SELECT blocked AS id, COUNT(*) AS count
			FROM users, unnest(blocked_users) AS blocked
			GROUP BY blocked
		) b
		JOIN users u ON u.id = b.id
		ORDER BY b.count DESC, u.id ASC`

	var rows []struct {
		ID      int64          `db:"id"`
		Name    string         `db:"name"`
		DpImage sql.NullString `db:"dp_image"`
		Count   int64          `db:"count"`
	}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to count blocks: %w", err)
	}

	out := make([]BlockCount, 0, len(rows))
	for _, row := range rows {
		card := UserCard{ID: row.ID, Name: row.Name}
		if row.DpImage.Valid {
			dp := row.DpImage.String
			card.DpImage = &dp
		}
		out = append(out, BlockCount{BlockedUser: card, Count: row.Count})
	}
	return out, nil
}

// RemoveUser inserts the audit row and deletes the user in one transaction.
// Reports and messages go with the user through their foreign keys.
func (r *postgresRepository) RemoveUser(ctx context.Context, rm *Removal) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowxContext(ctx, `
		INSERT INTO account_removals (user_id, name, email, user_details, report_count, reports, deleted_by, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, deleted_at`,
		rm.UserID, rm.Name, rm.Email, rm.UserDetails, rm.ReportCount, rm.Reports, rm.DeletedBy, rm.Reason,
	).Scan(&rm.ID, &rm.DeletedAt)
	if err != nil {
		return fmt.Errorf("failed to record removal: %w", err)
	}

	if err := users.DeleteTx(ctx, tx, rm.UserID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *postgresRepository) History(ctx context.Context) ([]Removal, error) {
	query := `
		SELECT r.id, r.user_id, r.name, r.email, r.user_details, r.report_count, r.reports,
		       r.deleted_at, r.deleted_by, a.email AS deleted_by_email, r.reason
		FROM account_removals r
		LEFT JOIN admins a ON a.id = r.deleted_by
		ORDER BY r.deleted_at DESC, r.id DESC`

	history := []Removal{}
	if err := r.db.SelectContext(ctx, &history, query); err != nil {
		return nil, fmt.Errorf("failed to list removals: %w", err)
	}
	return history, nil
}
