// internal/access/gate.go
// Decides whether two users may exchange messages or calls

package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/imadgeboyega/matchmaking-backend/internal/common/errs"
	"github.com/imadgeboyega/matchmaking-backend/internal/common/logger"
	"github.com/imadgeboyega/matchmaking-backend/internal/common/retry"
	"github.com/imadgeboyega/matchmaking-backend/internal/users"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Actions named in denial messages
const (
	ActionSendMessage      = "send message"
	ActionSendImage        = "send image message"
	ActionSendVoice        = "send voice message"
	ActionViewConversation = "view conversation"
	ActionPollMessages     = "poll messages"
	ActionInitiateCall     = "initiate call"
	ActionAnswerCall       = "answer call"
	ActionRejectCall       = "reject call"
	ActionExchangeICE      = "exchange ICE candidates"
	ActionPollCallAnswer   = "poll call answer"
	ActionEndCall          = "end call"
)

var gateDenials = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "access_gate_denials_total",
		Help: "Messaging and call requests refused by the access gate",
	},
	[]string{"reason"},
)

// Gate reads both parties fresh on every call; nothing is cached.
type Gate struct {
	users  users.Repository
	policy retry.Policy
}

func NewGate(repo users.Repository, policy retry.Policy) *Gate {
	return &Gate{users: repo, policy: policy}
}

// Check returns nil when sender may perform action towards receiver.
//
// Order: self-targeting, existence of both users, receiver in sender's accepted
// interests, and finally a block in either direction.
func (g *Gate) Check(ctx context.Context, action string, senderID, receiverID int64) error {
	if senderID == receiverID {
		gateDenials.WithLabelValues("self").Inc()
		return errs.InvalidOperation(fmt.Sprintf("Cannot %s to self.", action))
	}

	sender, err := g.load(ctx, senderID)
	if err != nil {
		return err
	}
	receiver, err := g.load(ctx, receiverID)
	if err != nil {
		return err
	}

	if !users.Contains(sender.AcceptedInterests, receiverID) {
		gateDenials.WithLabelValues("not_accepted").Inc()
		logger.Debug(ctx, "access denied: not an accepted interest",
			zap.String("action", action), zap.Int64("sender_id", senderID), zap.Int64("receiver_id", receiverID))
		return errs.NotAuthorized(fmt.Sprintf("Cannot %s: User is not an accepted interest.", action))
	}

	if users.Contains(sender.BlockedUsers, receiverID) || users.Contains(receiver.BlockedUsers, senderID) {
		gateDenials.WithLabelValues("blocked").Inc()
		logger.Debug(ctx, "access denied: blocked",
			zap.String("action", action), zap.Int64("sender_id", senderID), zap.Int64("receiver_id", receiverID))
		return errs.NotAuthorized(fmt.Sprintf("Cannot %s: User is blocked.", action))
	}

	return nil
}

func (g *Gate) load(ctx context.Context, id int64) (*users.User, error) {
	u, err := retry.Value(ctx, g.policy, "users.get", func(ctx context.Context) (*users.User, error) {
		return g.users.GetByID(ctx, id)
	})
	if errors.Is(err, errs.ErrNotFound) {
		gateDenials.WithLabelValues("not_found").Inc()
		return nil, errs.NotFound("User not found.")
	}
	return u, err
}
