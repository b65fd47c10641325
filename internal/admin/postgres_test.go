package admin

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/imadgeboyega/matchmaking-backend/internal/common/errs"
	"github.com/jmoiron/sqlx"
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

func TestPostgres_GenderCounts(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(`SELECT gender, COUNT\(\*\) AS count FROM users GROUP BY gender`).
		WillReturnRows(sqlmock.NewRows([]string{"gender", "count"}).
			AddRow("Man", int64(4)).
			AddRow("Woman", int64(5)).
			AddRow(nil, int64(2)))

	total, counts, err := repo.GenderCounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(11), total)
	assert.Equal(t, map[string]int64{"Man": 4, "Woman": 5}, counts)
}

func TestPostgres_BlockCounts(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(`unnest\(blocked_users\)`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "dp_image", "count"}).
			AddRow(int64(2), "Bob", "https://cdn.test/bob.png", int64(3)).
			AddRow(int64(1), "Alice", nil, int64(1)))

	blocks, err := repo.BlockCounts(context.Background())
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	require.NotNil(t, blocks[0].BlockedUser.DpImage)
	assert.Equal(t, "https://cdn.test/bob.png", *blocks[0].BlockedUser.DpImage)
	assert.Nil(t, blocks[1].BlockedUser.DpImage)
	assert.Equal(t, int64(3), blocks[0].Count)
}

func TestPostgres_RemoveUser(t *testing.T) {
	repo, mock := newMockRepo(t)
	deleted := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	adminID := int64(1)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO account_removals`).
		WithArgs(int64(2), "Bob", "bob@example.com", sqlmock.AnyArg(), int64(0), sqlmock.AnyArg(), sqlmock.AnyArg(), "spam").
		WillReturnRows(sqlmock.NewRows([]string{"id", "deleted_at"}).AddRow(int64(9), deleted))
	mock.ExpectExec(`DELETE FROM users WHERE id = \$1`).
		WithArgs(int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE users SET\s+sent_interests\s+= array_remove`).
		WithArgs(int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	rm := &Removal{UserID: 2, Name: "Bob", Email: "bob@example.com", DeletedBy: &adminID, Reason: "spam"}
	require.NoError(t, repo.RemoveUser(context.Background(), rm))
	assert.Equal(t, int64(9), rm.ID)
	assert.Equal(t, deleted, rm.DeletedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_RemoveMissingUserRollsBack(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO account_removals`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "deleted_at"}).AddRow(int64(9), time.Now()))
	mock.ExpectExec(`DELETE FROM users`).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.RemoveUser(context.Background(), &Removal{UserID: 5, Reason: "x"})
	assert.ErrorIs(t, err, errs.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_HistoryError(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(`FROM account_removals`).WillReturnError(errors.New("boom"))

	_, err := repo.History(context.Background())
	assert.ErrorContains(t, err, "failed to list removals")
}

func TestSnapshotScan(t *testing.T) {
	var s Snapshot
	require.NoError(t, s.Scan([]byte(`{"name":"Bob","height":"180"}`)))
	assert.Equal(t, "Bob", s.Name)
	assert.Equal(t, "180", s.Height)

	var r RemovedReports
	require.NoError(t, r.Scan(nil))
	assert.Nil(t, r)
	v, err := r.Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), v)
}
