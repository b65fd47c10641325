// internal/notification/service.go

package notification

import (
	"context"
	"errors"

	"github.com/imadgeboyega/matchmaking-backend/internal/common/errs"
	"github.com/imadgeboyega/matchmaking-backend/internal/common/retry"
	"github.com/imadgeboyega/matchmaking-backend/internal/users"
)

// MessageCounter tracks which received messages a user has opened
type MessageCounter interface {
	UnviewedCount(ctx context.Context, userID int64) (int, error)
	MarkViewed(ctx context.Context, userID int64) error
}

// Counts is the badge data shown in the navigation bar
type Counts struct {
	MessageCount int    `json:"messageCount"`
	LikeCount    int    `json:"likeCount"`
	DpImage      string `json:"DpImage"`
}

type Service struct {
	users    users.Repository
	messages MessageCounter
	policy   retry.Policy
}

func NewService(userRepo users.Repository, messages MessageCounter, policy retry.Policy) *Service {
	return &Service{users: userRepo, messages: messages, policy: policy}
}

// Counts returns unviewed messages and received interests not in seen
func (s *Service) Counts(ctx context.Context, userID int64, seen []int64) (*Counts, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	unviewed, err := s.messages.UnviewedCount(ctx, userID)
	if err != nil {
		return nil, err
	}

	likes := 0
	for _, id := range user.ReceivedInterests {
		if !users.Contains(seen, id) {
			likes++
		}
	}

	return &Counts{MessageCount: unviewed, LikeCount: likes, DpImage: user.DpImageOrEmpty()}, nil
}

func (s *Service) MarkMessagesViewed(ctx context.Context, userID int64) error {
	return s.messages.MarkViewed(ctx, userID)
}

// ReceivedInterests returns the ids to remember as seen
func (s *Service) ReceivedInterests(ctx context.Context, userID int64) ([]int64, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return append([]int64{}, user.ReceivedInterests...), nil
}

func (s *Service) getUser(ctx context.Context, id int64) (*users.User, error) {
	u, err := retry.Value(ctx, s.policy, "users.get", func(ctx context.Context) (*users.User, error) {
		return s.users.GetByID(ctx, id)
	})
	if errors.Is(err, errs.ErrNotFound) {
		return nil, errs.NotFound("User not found")
	}
	return u, err
}
