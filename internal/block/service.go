// internal/block/service.go
// Blocking is one-directional and leaves interest state alone; the access gate
// consults both users' blocked sets.

package block

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

type Service struct {
	users   users.Repository
	reports ReportRepository
	policy  retry.Policy
}

func NewService(userRepo users.Repository, reports ReportRepository, policy retry.Policy) *Service {
	return &Service{users: userRepo, reports: reports, policy: policy}
}

// BlockedUsers lists the users the given user has blocked
func (s *Service) BlockedUsers(ctx context.Context, userID int64) ([]BlockedUser, error) {
	user, err := s.getUser(ctx, userID, "User not found")
	if err != nil {
		return nil, err
	}

	summaries, err := retry.Value(ctx, s.policy, "users.summaries", func(ctx context.Context) ([]users.Summary, error) {
		return s.users.GetSummaries(ctx, user.BlockedUsers)
	})
	if err != nil {
		return nil, err
	}

	out := make([]BlockedUser, 0, len(summaries))
	for _, sum := range summaries {
		out = append(out, BlockedUser{ID: sum.ID, Name: sum.Name, DpImage: sum.DpImage})
	}
	return out, nil
}

// Block adds target to the user's blocked set
func (s *Service) Block(ctx context.Context, userID, targetID int64) error {
	if userID == targetID {
		return errs.InvalidOperation("Cannot block yourself")
	}
	if _, err := s.getUser(ctx, targetID, "User to block not found"); err != nil {
		return err
	}

	err := s.modifyUser(ctx, "block.block", userID, func(u *users.User) error {
		if users.Contains(u.BlockedUsers, targetID) {
			return errs.AlreadyExists("User is already blocked")
		}
		u.BlockedUsers = users.Add(u.BlockedUsers, targetID)
		return nil
	})
	if err != nil {
		return err
	}

	blockEvents.WithLabelValues("blocked").Inc()
	logger.Info(ctx, "user blocked", zap.Int64("user_id", userID), zap.Int64("target_id", targetID))
	return nil
}

// Unblock removes target from the user's blocked set
func (s *Service) Unblock(ctx context.Context, userID, targetID int64) error {
	err := s.modifyUser(ctx, "block.unblock", userID, func(u *users.User) error {
		if !users.Contains(u.BlockedUsers, targetID) {
			return errs.InvalidOperation("User was not blocked")
		}
		u.BlockedUsers = users.Remove(u.BlockedUsers, targetID)
		return nil
	})
	if err != nil {
		return err
	}

	blockEvents.WithLabelValues("unblocked").Inc()
	logger.Info(ctx, "user unblocked", zap.Int64("user_id", userID), zap.Int64("target_id", targetID))
	return nil
}

// Report files a complaint against target for the admin console
func (s *Service) Report(ctx context.Context, reporterID, targetID int64, message string) (*Report, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, errs.InvalidOperation("Report message is required")
	}
	if reporterID == targetID {
		return nil, errs.InvalidOperation("Cannot report yourself")
	}
	if _, err := s.getUser(ctx, targetID, "User to report not found"); err != nil {
		return nil, err
	}

	report := &Report{ReportedUserID: targetID, ReporterID: reporterID, Message: message}
	err := s.policy.Do(ctx, "reports.create", func(ctx context.Context) error {
		return s.reports.Create(ctx, report)
	})
	if err != nil {
		return nil, err
	}

	blockEvents.WithLabelValues("reported").Inc()
	logger.Info(ctx, "user reported",
		zap.Int64("report_id", report.ID), zap.Int64("reporter_id", reporterID), zap.Int64("reported_id", targetID))
	return report, nil
}

func (s *Service) getUser(ctx context.Context, id int64, missing string) (*users.User, error) {
	u, err := retry.Value(ctx, s.policy, "users.get", func(ctx context.Context) (*users.User, error) {
		return s.users.GetByID(ctx, id)
	})
	if errors.Is(err, errs.ErrNotFound) {
		return nil, errs.NotFound(missing)
	}
	return u, err
}

func (s *Service) modifyUser(ctx context.Context, op string, id int64, fn func(u *users.User) error) error {
	err := s.policy.Do(ctx, op, func(ctx context.Context) error {
		return s.users.ModifyUser(ctx, id, fn)
	})
	if errors.Is(err, errs.ErrNotFound) && !errs.IsDomain(err) {
		return errs.NotFound("User not found")
	}
	return err
}
