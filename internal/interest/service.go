// internal/interest/service.go
// The interest state machine. Every transition edits both users' edge sets together.

package interest

import (
	"context"
	"errors"
	"time"

	"github.com/imadgeboyega/matchmaking-backend/internal/common/errs"
	"github.com/imadgeboyega/matchmaking-backend/internal/common/logger"
	"github.com/imadgeboyega/matchmaking-backend/internal/common/retry"
	"github.com/imadgeboyega/matchmaking-backend/internal/users"
	"go.uber.org/zap"
)

type Service struct {
	users  users.Repository
	policy retry.Policy
	now    func() time.Time
}

func NewService(repo users.Repository, policy retry.Policy) *Service {
	return &Service{users: repo, policy: policy, now: time.Now}
}

// SendInterest records a pending interest from sender to receiver
func (s *Service) SendInterest(ctx context.Context, senderID, receiverID int64) error {
	if senderID == receiverID {
		return errs.InvalidOperation("You cannot send interest to yourself")
	}

	err := s.modifyPair(ctx, "interest.send", senderID, receiverID, func(sender, receiver *users.User) error {
		if users.Contains(sender.SentInterests, receiver.ID) {
			return errs.AlreadyExists("Interest already sent")
		}
		if users.Contains(sender.AcceptedInterests, receiver.ID) {
			return errs.AlreadyExists("Interest already accepted")
		}
		sender.SentInterests = users.Add(sender.SentInterests, receiver.ID)
		receiver.ReceivedInterests = users.Add(receiver.ReceivedInterests, sender.ID)
		return nil
	})
	if err != nil {
		return err
	}

	recordTransition("sent")
	logger.Info(ctx, "interest sent", zap.Int64("sender_id", senderID), zap.Int64("receiver_id", receiverID))
	return nil
}

// AcceptOrToggle accepts a pending interest from sender, or, when the pair is
// already accepted, demotes it back to pending from sender to receiver.
func (s *Service) AcceptOrToggle(ctx context.Context, receiverID, senderID int64) (bool, error) {
	if receiverID == senderID {
		return false, errs.InvalidOperation("No pending or accepted interest from this user")
	}

	var accepted bool
	err := s.modifyPair(ctx, "interest.accept", receiverID, senderID, func(receiver, sender *users.User) error {
		pending := users.Contains(receiver.ReceivedInterests, sender.ID)
		wasAccepted := users.Contains(receiver.AcceptedInterests, sender.ID)

		switch {
		case wasAccepted:
			receiver.AcceptedInterests = users.Remove(receiver.AcceptedInterests, sender.ID)
			sender.AcceptedInterests = users.Remove(sender.AcceptedInterests, receiver.ID)
			receiver.ReceivedInterests = users.Add(receiver.ReceivedInterests, sender.ID)
			sender.SentInterests = users.Add(sender.SentInterests, receiver.ID)
			accepted = false
		case pending:
			receiver.AcceptedInterests = users.Add(receiver.AcceptedInterests, sender.ID)
			sender.AcceptedInterests = users.Add(sender.AcceptedInterests, receiver.ID)
			receiver.ReceivedInterests = users.Remove(receiver.ReceivedInterests, sender.ID)
			sender.SentInterests = users.Remove(sender.SentInterests, receiver.ID)
			accepted = true
		default:
			return errs.InvalidOperation("No pending or accepted interest from this user")
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	if accepted {
		recordTransition("accepted")
	} else {
		recordTransition("unaccepted")
	}
	logger.Info(ctx, "interest toggled",
		zap.Int64("receiver_id", receiverID), zap.Int64("sender_id", senderID), zap.Bool("accepted", accepted))
	return accepted, nil
}

// Reject drops a pending interest from sender to receiver. Rejecting nothing is a no-op.
func (s *Service) Reject(ctx context.Context, receiverID, senderID int64) error {
	if receiverID == senderID {
		return nil
	}

	err := s.modifyPair(ctx, "interest.reject", receiverID, senderID, func(receiver, sender *users.User) error {
		receiver.ReceivedInterests = users.Remove(receiver.ReceivedInterests, sender.ID)
		sender.SentInterests = users.Remove(sender.SentInterests, receiver.ID)
		return nil
	})
	if err != nil {
		return err
	}

	recordTransition("rejected")
	logger.Info(ctx, "interest rejected", zap.Int64("receiver_id", receiverID), zap.Int64("sender_id", senderID))
	return nil
}

// ListInterests returns cards for the user's received and accepted interests
func (s *Service) ListInterests(ctx context.Context, userID int64) (*List, error) {
	user, err := retry.Value(ctx, s.policy, "users.get", func(ctx context.Context) (*users.User, error) {
		return s.users.GetByID(ctx, userID)
	})
	if errors.Is(err, errs.ErrNotFound) {
		return nil, errs.NotFound("User not found")
	}
	if err != nil {
		return nil, err
	}

	pending, err := s.summaries(ctx, user.ReceivedInterests)
	if err != nil {
		return nil, err
	}
	accepted, err := s.summaries(ctx, user.AcceptedInterests)
	if err != nil {
		return nil, err
	}

	return &List{Pending: pending, Accepted: accepted, DpImage: user.DpImageOrEmpty()}, nil
}

func (s *Service) summaries(ctx context.Context, ids []int64) ([]users.Summary, error) {
	list, err := retry.Value(ctx, s.policy, "users.summaries", func(ctx context.Context) ([]users.Summary, error) {
		return s.users.GetSummaries(ctx, ids)
	})
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range list {
		list[i].Age = users.Age(list[i].DateOfBirth, now)
	}
	return list, nil
}

func (s *Service) modifyPair(ctx context.Context, op string, aID, bID int64, fn func(a, b *users.User) error) error {
	err := s.policy.Do(ctx, op, func(ctx context.Context) error {
		return s.users.ModifyPair(ctx, aID, bID, fn)
	})
	if errors.Is(err, errs.ErrNotFound) && !errs.IsDomain(err) {
		return errs.NotFound("User not found")
	}
	return err
}
