package retry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/imadgeboyega/matchmaking-backend/internal/common/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errFlaky = errors.New("connection reset by peer")

func fastPolicy() Policy {
	return Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
}

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := fastPolicy().Do(context.Background(), "users.get", func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errFlaky
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_ExhaustionWrapsOriginal(t *testing.T) {
	calls := 0
	err := fastPolicy().Do(context.Background(), "messages.create", func(ctx context.Context) error {
		calls++
		return errFlaky
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.ErrorIs(t, err, errs.ErrTransientStore)
	assert.ErrorIs(t, err, errFlaky)
	assert.Equal(t, 500, errs.Status(err))
}

func TestDo_PermanentErrorsAreNotRetried(t *testing.T) {
	permanent := []error{
		sql.ErrNoRows,
		errs.NotFound("User not found"),
		fmt.Errorf("wrapped: %w", errs.InvalidOperation("Message text is required.")),
		context.Canceled,
	}

	for _, perr := range permanent {
		calls := 0
		err := fastPolicy().Do(context.Background(), "op", func(ctx context.Context) error {
			calls++
			return perr
		})
		assert.Equal(t, 1, calls, perr.Error())
		assert.ErrorIs(t, err, perr)
		assert.NotErrorIs(t, err, errs.ErrTransientStore)
	}
}

func TestDo_SingleAttemptPolicy(t *testing.T) {
	p := Policy{MaxAttempts: 1, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}
	calls := 0
	err := p.Do(context.Background(), "op", func(ctx context.Context) error {
		calls++
		return errFlaky
	})

	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, errs.ErrTransientStore)
}

func TestDo_DelaysDoubleAndAreCapped(t *testing.T) {
	p := Policy{MaxAttempts: 4, BaseDelay: 10 * time.Millisecond, MaxDelay: 15 * time.Millisecond}
	var stamps []time.Time
	_ = p.Do(context.Background(), "op", func(ctx context.Context) error {
		stamps = append(stamps, time.Now())
		return errFlaky
	})

	require.Len(t, stamps, 4)
	// waits are 10ms, 15ms (capped from 20ms), 15ms (capped from 40ms)
	total := stamps[3].Sub(stamps[0])
	assert.GreaterOrEqual(t, total, 40*time.Millisecond)
	assert.Less(t, total, 500*time.Millisecond)
}

func TestDo_CancelledWhileWaiting(t *testing.T) {
	p := Policy{MaxAttempts: 3, BaseDelay: time.Second, MaxDelay: time.Second}
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	start := time.Now()
	err := p.Do(ctx, "op", func(ctx context.Context) error {
		calls++
		cancel()
		return errFlaky
	})

	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestValue(t *testing.T) {
	calls := 0
	v, err := Value(context.Background(), fastPolicy(), "count", func(ctx context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, errFlaky
		}
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, v)
}
