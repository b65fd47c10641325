package interest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/imadgeboyega/matchmaking-backend/internal/common/errs"
	"github.com/imadgeboyega/matchmaking-backend/internal/common/retry"
	"github.com/imadgeboyega/matchmaking-backend/internal/users"
	"github.com/imadgeboyega/matchmaking-backend/internal/users/userstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	alice int64 = 1
	bob   int64 = 2
)

func newTestService(t *testing.T) (*Service, *userstest.Memory) {
	t.Helper()
	repo := userstest.NewMemory()
	repo.Add(alice, "Alice")
	repo.Add(bob, "Bob")
	policy := retry.Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}
	return NewService(repo, policy), repo
}

func state(repo *userstest.Memory, a, b int64) State {
	return StateOf(repo.Get(a), repo.Get(b))
}

func TestSendInterest(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.SendInterest(ctx, alice, bob))

	a, b := repo.Get(alice), repo.Get(bob)
	assert.Equal(t, []int64{bob}, []int64(a.SentInterests))
	assert.Equal(t, []int64{alice}, []int64(b.ReceivedInterests))
	assert.Empty(t, a.ReceivedInterests)
	assert.Empty(t, a.AcceptedInterests)
	assert.Empty(t, b.SentInterests)
	assert.Empty(t, b.AcceptedInterests)
	assert.Equal(t, StatePendingAToB, state(repo, alice, bob))
	assert.Equal(t, StatePendingBToA, state(repo, bob, alice))
}

func TestSendInterest_Errors(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	err := svc.SendInterest(ctx, alice, alice)
	assert.ErrorIs(t, err, errs.ErrInvalidOperation)
	assert.Equal(t, "You cannot send interest to yourself", errs.Message(err))

	err = svc.SendInterest(ctx, alice, 99)
	assert.ErrorIs(t, err, errs.ErrNotFound)
	assert.Equal(t, "User not found", errs.Message(err))

	require.NoError(t, svc.SendInterest(ctx, alice, bob))
	err = svc.SendInterest(ctx, alice, bob)
	assert.ErrorIs(t, err, errs.ErrAlreadyExists)
	assert.Equal(t, "Interest already sent", errs.Message(err))
}

func TestAcceptOrToggle_AcceptThenDemote(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.SendInterest(ctx, alice, bob))

	accepted, err := svc.AcceptOrToggle(ctx, bob, alice)
	require.NoError(t, err)
	assert.True(t, accepted)
	assert.Equal(t, StateAccepted, state(repo, alice, bob))
	assert.Equal(t, StateAccepted, state(repo, bob, alice))
	assert.Empty(t, repo.Get(alice).SentInterests)
	assert.Empty(t, repo.Get(bob).ReceivedInterests)

	// a second accept demotes to pending from alice, not to none
	accepted, err = svc.AcceptOrToggle(ctx, bob, alice)
	require.NoError(t, err)
	assert.False(t, accepted)
	assert.Equal(t, StatePendingAToB, state(repo, alice, bob))
	assert.Empty(t, repo.Get(alice).AcceptedInterests)
	assert.Empty(t, repo.Get(bob).AcceptedInterests)
}

func TestAcceptOrToggle_NoRelation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AcceptOrToggle(ctx, bob, alice)
	assert.ErrorIs(t, err, errs.ErrInvalidOperation)
	assert.Equal(t, "No pending or accepted interest from this user", errs.Message(err))

	// only the receiver can accept
	require.NoError(t, svc.SendInterest(ctx, alice, bob))
	_, err = svc.AcceptOrToggle(ctx, alice, bob)
	assert.ErrorIs(t, err, errs.ErrInvalidOperation)

	_, err = svc.AcceptOrToggle(ctx, bob, 99)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestCrossedPendingIsNotMerged(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.SendInterest(ctx, alice, bob))
	require.NoError(t, svc.SendInterest(ctx, bob, alice))
	assert.Equal(t, StateCrossedPending, state(repo, alice, bob))

	accepted, err := svc.AcceptOrToggle(ctx, bob, alice)
	require.NoError(t, err)
	assert.True(t, accepted)
	assert.Equal(t, StateAccepted, state(repo, alice, bob))
	// bob's own pending interest towards alice is untouched
	assert.Contains(t, []int64(repo.Get(bob).SentInterests), alice)
}

func TestSendInterest_RejectedWhenAlreadyAccepted(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.SendInterest(ctx, alice, bob))
	_, err := svc.AcceptOrToggle(ctx, bob, alice)
	require.NoError(t, err)

	err = svc.SendInterest(ctx, alice, bob)
	assert.ErrorIs(t, err, errs.ErrAlreadyExists)
}

func TestReject(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	// no pending edge: no-op
	require.NoError(t, svc.Reject(ctx, bob, alice))
	assert.Equal(t, StateNone, state(repo, alice, bob))

	require.NoError(t, svc.SendInterest(ctx, alice, bob))
	require.NoError(t, svc.Reject(ctx, bob, alice))
	assert.Equal(t, StateNone, state(repo, alice, bob))

	// idempotent
	require.NoError(t, svc.Reject(ctx, bob, alice))

	assert.ErrorIs(t, svc.Reject(ctx, bob, 99), errs.ErrNotFound)
}

func TestReject_LeavesAcceptedAlone(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.SendInterest(ctx, alice, bob))
	_, err := svc.AcceptOrToggle(ctx, bob, alice)
	require.NoError(t, err)

	require.NoError(t, svc.Reject(ctx, bob, alice))
	assert.Equal(t, StateAccepted, state(repo, alice, bob))
}

func TestListInterests(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	carol := repo.Add(3, "Carol")
	dob := time.Date(1995, 1, 1, 0, 0, 0, 0, time.UTC)
	gender := users.GenderWoman
	carol.DateOfBirth = &dob
	carol.Gender = &gender
	repo.Put(carol)
	svc.now = func() time.Time { return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC) }

	require.NoError(t, svc.SendInterest(ctx, alice, bob))
	require.NoError(t, svc.SendInterest(ctx, 3, bob))
	_, err := svc.AcceptOrToggle(ctx, bob, 3)
	require.NoError(t, err)

	list, err := svc.ListInterests(ctx, bob)
	require.NoError(t, err)
	require.Len(t, list.Pending, 1)
	assert.Equal(t, "Alice", list.Pending[0].Name)
	require.Len(t, list.Accepted, 1)
	assert.Equal(t, "Carol", list.Accepted[0].Name)
	require.NotNil(t, list.Accepted[0].Age)
	assert.Equal(t, 31, *list.Accepted[0].Age)
	assert.Equal(t, "", list.DpImage)
}

func TestTransientFailuresAreRetried(t *testing.T) {
	svc, repo := newTestService(t)
	flaky := errors.New("i/o timeout")

	repo.FailNext(flaky, flaky)
	require.NoError(t, svc.SendInterest(context.Background(), alice, bob))
	assert.Equal(t, StatePendingAToB, state(repo, alice, bob))

	repo.FailNext(flaky, flaky, flaky)
	err := svc.Reject(context.Background(), bob, alice)
	assert.ErrorIs(t, err, errs.ErrTransientStore)
	assert.Equal(t, 500, errs.Status(err))
	assert.Equal(t, StatePendingAToB, state(repo, alice, bob))
}
