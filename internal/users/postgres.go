// internal/users/postgres.go

package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/imadgeboyega/matchmaking-backend/internal/common/errs"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const userColumns = `id, name, email, mobile, password_hash, dp_image,
	country, state, district, religion, caste, current_place, gender, orientation,
	marital_status, dob, height, weight, education, profession, income, languages,
	habits, diet, partner_expectations, family_details, horoscope, address, profile_image,
	email_notifications, sms_notifications,
	sent_interests, received_interests, accepted_interests, blocked_users,
	created_at, updated_at`

// PullReferencesQuery strips a user id from every edge set that mentions it
const PullReferencesQuery = `
	UPDATE users SET
		sent_interests     = array_remove(sent_interests, $1),
		received_interests = array_remove(received_interests, $1),
		accepted_interests = array_remove(accepted_interests, $1),
		blocked_users      = array_remove(blocked_users, $1),
		updated_at         = NOW()
	WHERE $1 = ANY(sent_interests)
	   OR $1 = ANY(received_interests)
	   OR $1 = ANY(accepted_interests)
	   OR $1 = ANY(blocked_users)`

type postgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func notFound(id int64) error {
	return fmt.Errorf("user %d: %w", id, errs.ErrNotFound)
}

func (r *postgresRepository) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (name, email, mobile, password_hash, dp_image)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, email_notifications, sms_notifications, created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		user.Name, user.Email, user.Mobile, user.PasswordHash, user.DpImage,
	).Scan(&user.ID, &user.EmailNotifications, &user.SMSNotifications, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return errs.Conflict("User with this email already exists.")
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	var u User
	err := r.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

func (r *postgresRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := r.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %q: %w", email, errs.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &u, nil
}

func (r *postgresRepository) GetSummaries(ctx context.Context, ids []int64) ([]Summary, error) {
	if len(ids) == 0 {
		return []Summary{}, nil
	}

	var rows []Summary
	err := r.db.SelectContext(ctx, &rows,
		`SELECT id, name, dp_image, gender, dob FROM users WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to get user summaries: %w", err)
	}

	byID := make(map[int64]Summary, len(rows))
	for _, s := range rows {
		byID[s.ID] = s
	}

	out := make([]Summary, 0, len(rows))
	for _, id := range ids {
		if s, ok := byID[id]; ok {
			out = append(out, s)
			delete(byID, id)
		}
	}
	return out, nil
}

func (r *postgresRepository) Search(ctx context.Context, f SearchFilter) ([]User, error) {
	where := []string{"id <> $1"}
	args := []interface{}{f.ExcludeID}
	add := func(cond string, v interface{}) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	like := func(column, value string) {
		if value != "" {
			add(column+" ILIKE $%d", "%"+escapeLike(value)+"%")
		}
	}
	equal := func(column, value string) {
		if value != "" {
			add(column+" = $%d", value)
		}
	}

	like("name", f.Name)
	equal("country", f.Country)
	equal("state", f.State)
	equal("marital_status", f.MaritalStatus)
	like("current_place", f.CurrentPlace)
	like("profession", f.Profession)
	like("education", f.Education)
	like("religion", f.Religion)
	like("caste", f.Caste)
	like("income", f.Income)

	if f.BornAfter != nil {
		add("dob >= $%d", *f.BornAfter)
	}
	if f.BornBefore != nil {
		add("dob <= $%d", *f.BornBefore)
	}
	if f.HeightMin != nil {
		add("height >= $%d", *f.HeightMin)
	}
	if f.HeightMax != nil {
		add("height <= $%d", *f.HeightMax)
	}
	if f.WeightMin != nil {
		add("weight >= $%d", *f.WeightMin)
	}
	if f.WeightMax != nil {
		add("weight <= $%d", *f.WeightMax)
	}
	if len(f.Genders) > 0 {
		add("gender = ANY($%d)", pq.Array(f.Genders))
	}
	if len(f.Orientations) > 0 {
		add("orientation = ANY($%d)", pq.Array(f.Orientations))
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE ` + strings.Join(where, " AND ") + ` ORDER BY created_at DESC`

	var out []User
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	return out, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *postgresRepository) ModifyPair(ctx context.Context, aID, bID int64, fn func(a, b *User) error) error {
	if aID == bID {
		return fmt.Errorf("modify pair needs two distinct users, got %d twice: %w", aID, errs.ErrInvalidOperation)
	}

	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		ids := []int64{aID, bID}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

		var rows []User
		err := tx.SelectContext(ctx, &rows,
			`SELECT `+userColumns+` FROM users WHERE id = ANY($1) ORDER BY id FOR UPDATE`, pq.Array(ids))
		if err != nil {
			return fmt.Errorf("failed to lock users: %w", err)
		}

		var a, b *User
		for i := range rows {
			switch rows[i].ID {
			case aID:
				a = &rows[i]
			case bID:
				b = &rows[i]
			}
		}
		if a == nil {
			return notFound(aID)
		}
		if b == nil {
			return notFound(bID)
		}

		if err := fn(a, b); err != nil {
			return err
		}

		if err := saveEdges(ctx, tx, a); err != nil {
			return err
		}
		return saveEdges(ctx, tx, b)
	})
}

func (r *postgresRepository) ModifyUser(ctx context.Context, id int64, fn func(u *User) error) error {
	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		var u User
		err := tx.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id)
		if errors.Is(err, sql.ErrNoRows) {
			return notFound(id)
		}
		if err != nil {
			return fmt.Errorf("failed to lock user: %w", err)
		}

		if err := fn(&u); err != nil {
			return err
		}
		return saveEdges(ctx, tx, &u)
	})
}

func saveEdges(ctx context.Context, tx *sqlx.Tx, u *User) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE users SET
			sent_interests = $2,
			received_interests = $3,
			accepted_interests = $4,
			blocked_users = $5,
			updated_at = NOW()
		WHERE id = $1`,
		u.ID, nonNil(u.SentInterests), nonNil(u.ReceivedInterests), nonNil(u.AcceptedInterests), nonNil(u.BlockedUsers),
	)
	if err != nil {
		return fmt.Errorf("failed to save edges of user %d: %w", u.ID, err)
	}
	return nil
}

// nonNil keeps NOT NULL array columns from receiving NULL
func nonNil(ids pq.Int64Array) pq.Int64Array {
	if ids == nil {
		return pq.Int64Array{}
	}
	return ids
}

func (r *postgresRepository) UpdateProfile(ctx context.Context, id int64, p Profile) error {
	query := `
		UPDATE users SET
			country = :country, state = :state, district = :district, religion = :religion,
			caste = :caste, current_place = :current_place, gender = :gender,
			orientation = :orientation, marital_status = :marital_status, dob = :dob,
			height = :height, weight = :weight, education = :education,
			profession = :profession, income = :income, languages = :languages,
			habits = :habits, diet = :diet, partner_expectations = :partner_expectations,
			family_details = :family_details, horoscope = :horoscope, address = :address,
			profile_image = COALESCE(:profile_image, profile_image),
			updated_at = NOW()
		WHERE id = :id`

	arg := struct {
		ID int64 `db:"id"`
		Profile
	}{ID: id, Profile: p}

	res, err := r.db.NamedExecContext(ctx, query, arg)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return expectOne(res, id)
}

func (r *postgresRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return expectOne(res, id)
}

func (r *postgresRepository) UpdateNotificationSettings(ctx context.Context, id int64, email, sms bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET email_notifications = $2, sms_notifications = $3, updated_at = NOW() WHERE id = $1`,
		id, email, sms)
	if err != nil {
		return fmt.Errorf("failed to update notification settings: %w", err)
	}
	return expectOne(res, id)
}

func (r *postgresRepository) Delete(ctx context.Context, id int64) error {
	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		return DeleteTx(ctx, tx, id)
	})
}

// DeleteTx removes a user inside the caller's transaction. Messages and reports
// referencing the user go with it through ON DELETE CASCADE.
func DeleteTx(ctx context.Context, tx *sqlx.Tx, id int64) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if err := expectOne(res, id); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, PullReferencesQuery, id); err != nil {
		return fmt.Errorf("failed to pull references to user %d: %w", id, err)
	}
	return nil
}

func expectOne(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return notFound(id)
	}
	return nil
}

func (r *postgresRepository) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
