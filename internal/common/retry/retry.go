// internal/common/retry/retry.go
// Bounded exponential retry for store reads and writes

package retry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/imadgeboyega/matchmaking-backend/internal/common/errs"
	"github.com/imadgeboyega/matchmaking-backend/internal/common/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	goretry "github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

var (
	retriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_retries_total",
			Help: "Store operations retried after a transient failure",
		},
		[]string{"op"},
	)

	exhaustedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_retries_exhausted_total",
			Help: "Store operations that failed on every attempt",
		},
		[]string{"op"},
	)
)

// Policy bounds how a store call is retried.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultPolicy is 3 attempts starting at 100ms, doubling, capped at 2s.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   100 * time.Millisecond,
		MaxDelay:    2 * time.Second,
	}
}

func (p Policy) backoff() goretry.Backoff {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	b := goretry.NewExponential(p.BaseDelay)
	b = goretry.WithCappedDuration(p.MaxDelay, b)
	return goretry.WithMaxRetries(uint64(attempts-1), b)
}

// Do runs fn until it succeeds, returns a permanent error, or the policy runs out.
// Exhaustion wraps the last error in errs.ErrTransientStore.
func (p Policy) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	attempt := 0
	var lastTransient error

	err := goretry.Do(ctx, p.backoff(), func(ctx context.Context) error {
		attempt++
		err := fn(ctx)
		if err == nil || isPermanent(err) {
			lastTransient = nil
			return err
		}
		lastTransient = err
		if attempt < p.MaxAttempts {
			retriesTotal.WithLabelValues(op).Inc()
			logger.Warn(ctx, "store operation failed, retrying",
				zap.String("op", op),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
		}
		return goretry.RetryableError(err)
	})

	if err == nil || lastTransient == nil || ctx.Err() != nil {
		return err
	}

	exhaustedTotal.WithLabelValues(op).Inc()
	logger.Error(ctx, "store operation failed after retries",
		zap.String("op", op),
		zap.Int("attempts", attempt),
		zap.Error(lastTransient),
	)
	return fmt.Errorf("%w: %s: %w", errs.ErrTransientStore, op, lastTransient)
}

// Value is Do for calls that produce a result.
func Value[T any](ctx context.Context, p Policy, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := p.Do(ctx, op, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}

// isPermanent reports errors that another attempt cannot fix.
func isPermanent(err error) bool {
	switch {
	case errors.Is(err, sql.ErrNoRows),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, errs.ErrNotFound),
		errors.Is(err, errs.ErrInvalidOperation),
		errors.Is(err, errs.ErrAlreadyExists),
		errors.Is(err, errs.ErrConflict),
		errors.Is(err, errs.ErrNotAuthorized),
		errors.Is(err, errs.ErrUnauthenticated):
		return true
	}
	return errs.IsDomain(err)
}
