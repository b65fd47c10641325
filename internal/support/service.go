// internal/support/service.go

package support

import (
	"context"
	"errors"
	"strings"

	"github.com/imadgeboyega/matchmaking-backend/internal/common/errs"
	"github.com/imadgeboyega/matchmaking-backend/internal/common/logger"
	"github.com/imadgeboyega/matchmaking-backend/internal/common/retry"
	"github.com/imadgeboyega/matchmaking-backend/internal/users"
	"go.uber.org/zap"
)

// Notifier sends the help desk notices
type Notifier interface {
	SupportRequestReceived(ctx context.Context, requestID int64, email, mobile, message string)
	SupportRequestHandled(ctx context.Context, u *users.User)
}

type Service struct {
	requests Repository
	users    users.Repository
	notifier Notifier
	policy   retry.Policy
}

func NewService(requests Repository, userRepo users.Repository, notifier Notifier, policy retry.Policy) *Service {
	return &Service{requests: requests, users: userRepo, notifier: notifier, policy: policy}
}

// Submit files a help request with the user's contact details
func (s *Service) Submit(ctx context.Context, userID int64, message string) (*Request, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, errs.InvalidOperation("Message is required")
	}

	user, err := retry.Value(ctx, s.policy, "users.get", func(ctx context.Context) (*users.User, error) {
		return s.users.GetByID(ctx, userID)
	})
	if errors.Is(err, errs.ErrNotFound) {
		return nil, errs.NotFound("User not found")
	}
	if err != nil {
		return nil, err
	}

	req := &Request{UserID: &user.ID, Email: user.Email, Mobile: user.Mobile, Message: message}
	err = s.policy.Do(ctx, "support.create", func(ctx context.Context) error {
		return s.requests.Create(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "support request submitted", zap.Int64("request_id", req.ID), zap.Int64("user_id", userID))
	s.notifier.SupportRequestReceived(ctx, req.ID, req.Email, req.Mobile, req.Message)
	return req, nil
}

func (s *Service) List(ctx context.Context) ([]Request, error) {
	return retry.Value(ctx, s.policy, "support.list", func(ctx context.Context) ([]Request, error) {
		return s.requests.List(ctx)
	})
}

// MarkHandled flags a request as supported and lets the user know
func (s *Service) MarkHandled(ctx context.Context, id int64) error {
	if id <= 0 {
		return errs.InvalidOperation("ID is required")
	}

	req, err := retry.Value(ctx, s.policy, "support.get", func(ctx context.Context) (*Request, error) {
		return s.requests.GetByID(ctx, id)
	})
	if errors.Is(err, errs.ErrNotFound) {
		return errs.NotFound("Support request not found")
	}
	if err != nil {
		return err
	}

	err = s.policy.Do(ctx, "support.mark_supported", func(ctx context.Context) error {
		return s.requests.MarkSupported(ctx, id)
	})
	if errors.Is(err, errs.ErrNotFound) {
		return errs.NotFound("Support request not found")
	}
	if err != nil {
		return err
	}
	logger.Info(ctx, "support request handled", zap.Int64("request_id", id))

	if req.Supported || req.UserID == nil {
		return nil
	}
	user, err := s.users.GetByID(ctx, *req.UserID)
	if err != nil {
		logger.Warn(ctx, "skipping support notice", zap.Int64("request_id", id), zap.Error(err))
		return nil
	}
	s.notifier.SupportRequestHandled(ctx, user)
	return nil
}
