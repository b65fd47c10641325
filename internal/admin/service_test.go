package admin_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/imadgeboyega/matchmaking-backend/internal/admin"
	"github.com/imadgeboyega/matchmaking-backend/internal/admin/admintest"
	"github.com/imadgeboyega/matchmaking-backend/internal/block"
	"github.com/imadgeboyega/matchmaking-backend/internal/block/blocktest"
	"github.com/imadgeboyega/matchmaking-backend/internal/common/errs"
	"github.com/imadgeboyega/matchmaking-backend/internal/common/retry"
	"github.com/imadgeboyega/matchmaking-backend/internal/notification"
	"github.com/imadgeboyega/matchmaking-backend/internal/storage"
	"github.com/imadgeboyega/matchmaking-backend/internal/users"
	"github.com/imadgeboyega/matchmaking-backend/internal/users/userstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	alice int64 = 1
	bob   int64 = 2
	carol int64 = 3
)

var testPolicy = retry.Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}

type fakeMedia struct {
	mu      sync.Mutex
	deleted []string
}

func (f *fakeMedia) Save(ctx context.Context, folder string, u storage.Upload) (string, error) {
	return "https://cdn.test/" + folder + "/" + u.Filename, nil
}

func (f *fakeMedia) Delete(ctx context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, url)
	return nil
}

type fixture struct {
	svc     *admin.Service
	repo    *admintest.Memory
	users   *userstest.Memory
	reports *blocktest.Reports
	media   *fakeMedia
	sms     *notification.MockSMSSender
}

func strPtr(s string) *string { return &s }

func newFixture(t *testing.T) *fixture {
	t.Helper()
	userRepo := userstest.NewMemory()
	a := userRepo.Add(alice, "Alice")
	a.Gender = strPtr(users.GenderWoman)
	a.Address = strPtr("12 Marina Road")
	userRepo.Put(a)
	b := userRepo.Add(bob, "Bob")
	b.Gender = strPtr(users.GenderMan)
	b.DpImage = strPtr("https://cdn.test/avatars/bob.png")
	b.Country = strPtr("Nigeria")
	b.Height = new(int)
	*b.Height = 180
	userRepo.Put(b)
	c := userRepo.Add(carol, "Carol")
	c.Gender = strPtr(users.GenderWoman)
	userRepo.Put(c)

	reports := blocktest.NewReports()
	repo := admintest.NewMemory(userRepo, reports)
	media := &fakeMedia{}
	sms := notification.NewMockSMSSender()
	notifier := notification.NewNotifier(notification.NewMockEmailSender(), sms, "help@example.com")

	return &fixture{
		svc:     admin.NewService(repo, userRepo, reports, media, notifier, testPolicy, bcrypt.MinCost),
		repo:    repo,
		users:   userRepo,
		reports: reports,
		media:   media,
		sms:     sms,
	}
}

func (f *fixture) report(t *testing.T, reporter, reported int64, msg string, at time.Time) {
	t.Helper()
	require.NoError(t, f.reports.Create(context.Background(), &block.Report{
		ReporterID: reporter, ReportedUserID: reported, Message: msg, CreatedAt: at,
	}))
}

func TestEnsureAdminAndLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.EnsureAdmin(ctx, "admin@hmail.com", "admin123"))
	require.NoError(t, f.svc.EnsureAdmin(ctx, "admin@hmail.com", "other"))

	a, err := f.svc.Login(ctx, admin.LoginRequest{Email: "admin@hmail.com", Password: "admin123"})
	require.NoError(t, err)
	assert.Equal(t, "admin@hmail.com", a.Email)

	_, err = f.svc.Login(ctx, admin.LoginRequest{Email: "admin@hmail.com", Password: "other"})
	assert.ErrorIs(t, err, errs.ErrUnauthenticated)
	assert.Equal(t, "Invalid credentials", errs.Message(err))

	_, err = f.svc.Login(ctx, admin.LoginRequest{Email: "nobody@hmail.com", Password: "admin123"})
	assert.ErrorIs(t, err, errs.ErrUnauthenticated)

	_, err = f.svc.Login(ctx, admin.LoginRequest{Email: "not-an-email", Password: "x"})
	assert.ErrorIs(t, err, errs.ErrInvalidOperation)
}

func TestDashboardReportsEveryGender(t *testing.T) {
	f := newFixture(t)

	dash, err := f.svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), dash.TotalUsers)
	assert.Equal(t, map[string]int64{
		users.GenderMan:              1,
		users.GenderWoman:            2,
		users.GenderTransgenderMan:   0,
		users.GenderTransgenderWoman: 0,
		users.GenderNonBinary:        0,
	}, dash.Genders)
}

func TestDashboardRetriesTransientFailures(t *testing.T) {
	f := newFixture(t)
	f.repo.FailNext(sql.ErrConnDone, sql.ErrConnDone, sql.ErrConnDone)

	_, err := f.svc.Dashboard(context.Background())
	assert.ErrorIs(t, err, errs.ErrTransientStore)
}

func TestReportsGroupedByReportedUser(t *testing.T) {
	f := newFixture(t)
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	f.report(t, alice, bob, "spam", base)
	f.report(t, carol, bob, "rude", base.Add(time.Minute))
	f.report(t, bob, carol, "fake profile", base.Add(2*time.Minute))

	groups, err := f.svc.Reports(context.Background())
	require.NoError(t, err)
	require.Len(t, groups, 2)

	assert.Equal(t, carol, groups[0].ReportedUser.ID)
	assert.Equal(t, 1, groups[0].Count)

	assert.Equal(t, bob, groups[1].ReportedUser.ID)
	assert.Equal(t, "Bob", groups[1].ReportedUser.Name)
	assert.Equal(t, 2, groups[1].Count)
	require.Len(t, groups[1].Reports, 2)
	assert.Equal(t, "rude", groups[1].Reports[0].Message)
	require.NotNil(t, groups[1].Reports[1].Reporter)
	assert.Equal(t, "alice@example.com", groups[1].Reports[1].Reporter.Email)
	assert.Equal(t, "12 Marina Road", groups[1].Reports[1].Reporter.Address)
	assert.Equal(t, "Not provided", groups[0].Reports[0].Reporter.Address)
}

func TestBlocks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, blocker := range []int64{alice, carol} {
		require.NoError(t, f.users.ModifyUser(ctx, blocker, func(u *users.User) error {
			u.BlockedUsers = append(u.BlockedUsers, bob)
			return nil
		}))
	}
	require.NoError(t, f.users.ModifyUser(ctx, bob, func(u *users.User) error {
		u.BlockedUsers = append(u.BlockedUsers, alice)
		return nil
	}))

	blocks, err := f.svc.Blocks(ctx)
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	assert.Equal(t, bob, blocks[0].BlockedUser.ID)
	assert.Equal(t, int64(2), blocks[0].Count)
	assert.Equal(t, alice, blocks[1].BlockedUser.ID)
	assert.Equal(t, int64(1), blocks[1].Count)
}

func TestRemoveUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	f.report(t, alice, bob, "spam", base)
	f.report(t, carol, bob, "", base.Add(time.Minute))
	f.report(t, bob, carol, "rude", base.Add(2*time.Minute))
	require.NoError(t, f.users.ModifyPair(ctx, alice, bob, func(a, b *users.User) error {
		a.AcceptedInterests = append(a.AcceptedInterests, bob)
		b.AcceptedInterests = append(b.AcceptedInterests, alice)
		return nil
	}))

	rm, err := f.svc.RemoveUser(ctx, 7, bob, "  repeated abuse ")
	require.NoError(t, err)

	assert.Equal(t, bob, rm.UserID)
	assert.Equal(t, "Bob", rm.Name)
	assert.Equal(t, "repeated abuse", rm.Reason)
	require.NotNil(t, rm.DeletedBy)
	assert.Equal(t, int64(7), *rm.DeletedBy)
	assert.Equal(t, 2, rm.ReportCount)
	assert.Equal(t, "No message", rm.Reports[0].Message)
	assert.Equal(t, "Carol", rm.Reports[0].Reporter.Name)
	assert.Equal(t, "Nigeria", rm.UserDetails.Country)
	assert.Equal(t, "180", rm.UserDetails.Height)
	assert.Equal(t, "Not provided", rm.UserDetails.Weight)
	assert.Equal(t, "Not provided", rm.UserDetails.Religion)

	assert.Nil(t, f.users.Get(bob))
	assert.Empty(t, f.users.Get(alice).AcceptedInterests)
	assert.Empty(t, f.reports.All())
	assert.Equal(t, []string{"https://cdn.test/avatars/bob.png"}, f.media.deleted)

	sent := f.sms.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "Your account has been removed by an administrator. Reason: repeated abuse", sent[0].Body)

	history, err := f.svc.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, bob, history[0].UserID)
}

func TestRemoveUserDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rm, err := f.svc.RemoveUser(ctx, 1, carol, "")
	require.NoError(t, err)
	assert.Equal(t, "No reason provided", rm.Reason)
	assert.Zero(t, rm.ReportCount)
	assert.Empty(t, rm.Reports)
	assert.Equal(t, "Your account has been removed by an administrator.", f.sms.Sent()[0].Body)

	_, err = f.svc.RemoveUser(ctx, 1, carol, "")
	assert.ErrorIs(t, err, errs.ErrNotFound)
	assert.Equal(t, "User not found", errs.Message(err))
}

func TestHistoryNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.svc.EnsureAdmin(ctx, "admin@hmail.com", "admin123"))
	a, err := f.svc.Login(ctx, admin.LoginRequest{Email: "admin@hmail.com", Password: "admin123"})
	require.NoError(t, err)

	_, err = f.svc.RemoveUser(ctx, a.ID, alice, "")
	require.NoError(t, err)
	_, err = f.svc.RemoveUser(ctx, a.ID, carol, "")
	require.NoError(t, err)

	history, err := f.svc.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, carol, history[0].UserID)
	assert.Equal(t, alice, history[1].UserID)
	require.NotNil(t, history[0].DeletedByEmail)
	assert.Equal(t, "admin@hmail.com", *history[0].DeletedByEmail)
}
