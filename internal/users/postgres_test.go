package users

import (
	"context"
	"database/sql/driver"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/imadgeboyega/matchmaking-backend/internal/common/errs"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func userColumnNames() []string {
	var cols []string
	for _, c := range strings.Split(userColumns, ",") {
		cols = append(cols, strings.TrimSpace(c))
	}
	return cols
}

// userRow returns a row for userColumns with the given edge sets in Postgres array text form
func userRow(id int64, name, sent, received, accepted, blocked string) []driver.Value {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cols := userColumnNames()
	row := make([]driver.Value, len(cols))
	for i, c := range cols {
		switch c {
		case "id":
			row[i] = id
		case "name":
			row[i] = name
		case "email":
			row[i] = strings.ToLower(name) + "@example.com"
		case "mobile":
			row[i] = "+2348000000000"
		case "password_hash":
			row[i] = "hash"
		case "email_notifications", "sms_notifications":
			row[i] = true
		case "sent_interests":
			row[i] = sent
		case "received_interests":
			row[i] = received
		case "accepted_interests":
			row[i] = accepted
		case "blocked_users":
			row[i] = blocked
		case "created_at", "updated_at":
			row[i] = now
		default:
			row[i] = nil
		}
	}
	return row
}

func TestModifyPair_SavesBothUsersInOneTransaction(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM users WHERE id = ANY\(\$1\) ORDER BY id FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows(userColumnNames()).
			AddRow(userRow(1, "Ada", "{}", "{}", "{}", "{}")...).
			AddRow(userRow(2, "Bola", "{}", "{}", "{}", "{}")...))
	mock.ExpectExec(`UPDATE users SET`).
		WithArgs(int64(2), "{}", "{}", "{}", "{}").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE users SET`).
		WithArgs(int64(1), "{2}", "{}", "{}", "{}").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// a=2, b=1: rows come back ordered by id but the callback sees the caller's order
	err := repo.ModifyPair(context.Background(), 2, 1, func(a, b *User) error {
		assert.Equal(t, int64(2), a.ID)
		assert.Equal(t, int64(1), b.ID)
		b.SentInterests = Add(b.SentInterests, 2)
		return nil
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestModifyPair_MissingUserRollsBack(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM users WHERE id = ANY`).
		WillReturnRows(sqlmock.NewRows(userColumnNames()).
			AddRow(userRow(1, "Ada", "{}", "{}", "{}", "{}")...))
	mock.ExpectRollback()

	called := false
	err := repo.ModifyPair(context.Background(), 1, 99, func(a, b *User) error {
		called = true
		return nil
	})

	assert.ErrorIs(t, err, errs.ErrNotFound)
	assert.False(t, called)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestModifyPair_CallbackErrorRollsBack(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM users WHERE id = ANY`).
		WillReturnRows(sqlmock.NewRows(userColumnNames()).
			AddRow(userRow(1, "Ada", "{2}", "{}", "{}", "{}")...).
			AddRow(userRow(2, "Bola", "{}", "{1}", "{}", "{}")...))
	mock.ExpectRollback()

	denied := errs.AlreadyExists("Interest already sent")
	err := repo.ModifyPair(context.Background(), 1, 2, func(a, b *User) error {
		assert.Equal(t, pq.Int64Array{2}, a.SentInterests)
		return denied
	})

	assert.ErrorIs(t, err, denied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSummaries_KeepsRequestedOrder(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT id, name, dp_image, gender, dob FROM users WHERE id = ANY\(\$1\)`).
		WithArgs("{3,1,2}").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "dp_image", "gender", "dob"}).
			AddRow(int64(1), "Ada", nil, "Woman", nil).
			AddRow(int64(2), "Bola", "http://img/2.png", "Man", nil))

	got, err := repo.GetSummaries(context.Background(), []int64{3, 1, 2})

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Ada", got[0].Name)
	assert.Equal(t, "Bola", got[1].Name)
	assert.Equal(t, "http://img/2.png", *got[1].DpImage)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSummaries_EmptyIDsSkipsQuery(t *testing.T) {
	repo, mock := newMockRepo(t)

	got, err := repo.GetSummaries(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE id = \$1`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(userColumnNames()))

	_, err := repo.GetByID(context.Background(), 5)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestCreate_DuplicateEmailIsConflict(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), &User{Name: "Ada", Email: "ada@example.com"})
	assert.ErrorIs(t, err, errs.ErrConflict)
}

func TestDelete_PullsReferences(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM users WHERE id = \$1`).
		WithArgs(int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE users SET\s+sent_interests\s+= array_remove`).
		WithArgs(int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), 4))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_MissingUser(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM users`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), 4)
	assert.True(t, errors.Is(err, errs.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearch_BuildsFilters(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`WHERE id <> \$1 AND name ILIKE \$2 AND country = \$3 AND gender = ANY\(\$4\)`).
		WithArgs(int64(1), "%ad\\%a%", "Nigeria", "{\"Woman\"}").
		WillReturnRows(sqlmock.NewRows(userColumnNames()).
			AddRow(userRow(2, "Ada", "{}", "{}", "{}", "{}")...))

	got, err := repo.Search(context.Background(), SearchFilter{
		ExcludeID: 1,
		Name:      "ad%a",
		Country:   "Nigeria",
		Genders:   []string{"Woman"},
	})

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Ada", got[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}
