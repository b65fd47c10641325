// internal/messaging/service.go
// Chat messages and WebRTC call signalling between accepted interests.
// Every read and write passes the access gate first.

package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/imadgeboyega/matchmaking-backend/internal/access"
	"github.com/imadgeboyega/matchmaking-backend/internal/common/errs"
	"github.com/imadgeboyega/matchmaking-backend/internal/common/logger"
	"github.com/imadgeboyega/matchmaking-backend/internal/common/retry"
	"github.com/imadgeboyega/matchmaking-backend/internal/storage"
	"github.com/imadgeboyega/matchmaking-backend/internal/users"
	"go.uber.org/zap"
)

const placeholderAvatar = "https://placehold.co/40x40/FF69B4/FFFFFF?text="

// PollConfig bounds a long-poll
type PollConfig struct {
	Timeout  time.Duration
	Interval time.Duration
}

type Config struct {
	Poll          PollConfig
	MaxUploadSize int64
}

type Service struct {
	messages Repository
	users    users.Repository
	gate     *access.Gate
	media    storage.MediaStore
	policy   retry.Policy
	cfg      Config
	now      func() time.Time
}

func NewService(messages Repository, userRepo users.Repository, gate *access.Gate, media storage.MediaStore, policy retry.Policy, cfg Config) *Service {
	return &Service{
		messages: messages,
		users:    userRepo,
		gate:     gate,
		media:    media,
		policy:   policy,
		cfg:      cfg,
		now:      time.Now,
	}
}

// timestamp is millisecond precision so it round-trips through lastChecked
func (s *Service) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// ListChatPartners returns the user's accepted interests minus the ones they blocked
func (s *Service) ListChatPartners(ctx context.Context, userID int64) ([]ChatPartner, error) {
	user, err := retry.Value(ctx, s.policy, "users.get", func(ctx context.Context) (*users.User, error) {
		return s.users.GetByID(ctx, userID)
	})
	if errors.Is(err, errs.ErrNotFound) {
		return nil, errs.NotFound("User not found.")
	}
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(user.AcceptedInterests))
	for _, id := range user.AcceptedInterests {
		if !users.Contains(user.BlockedUsers, id) {
			ids = append(ids, id)
		}
	}

	summaries, err := retry.Value(ctx, s.policy, "users.summaries", func(ctx context.Context) ([]users.Summary, error) {
		return s.users.GetSummaries(ctx, ids)
	})
	if err != nil {
		return nil, err
	}

	partners := make([]ChatPartner, 0, len(summaries))
	for _, sum := range summaries {
		avatar := sum.DpImageOrEmpty()
		if avatar == "" {
			avatar = placeholderAvatar + initials(sum.Name)
		}
		partners = append(partners, ChatPartner{ID: sum.ID, Name: sum.Name, DpImage: avatar})
	}
	return partners, nil
}

func initials(name string) string {
	r := []rune(strings.TrimSpace(name))
	if len(r) == 0 {
		return "?"
	}
	if len(r) > 2 {
		r = r[:2]
	}
	return strings.ToUpper(string(r))
}

// SendText stores a text message from sender to receiver
func (s *Service) SendText(ctx context.Context, senderID, receiverID int64, text string) (*Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errs.InvalidOperation("Message text is required.")
	}
	if senderID == receiverID {
		return nil, errs.InvalidOperation("Cannot send message to self.")
	}
	if err := s.gate.Check(ctx, access.ActionSendMessage, senderID, receiverID); err != nil {
		return nil, err
	}

	msg := &Message{SenderID: senderID, ReceiverID: receiverID, Kind: KindText, Text: text, Timestamp: s.timestamp()}
	if err := s.create(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// SendImage stores an uploaded image and a message pointing at it
func (s *Service) SendImage(ctx context.Context, senderID, receiverID int64, upload *storage.Upload) (*Message, error) {
	if upload == nil {
		return nil, errs.InvalidOperation("No image file uploaded.")
	}
	return s.sendMedia(ctx, access.ActionSendImage, KindImage, senderID, receiverID, upload)
}

// SendAudio stores an uploaded voice note and a message pointing at it
func (s *Service) SendAudio(ctx context.Context, senderID, receiverID int64, upload *storage.Upload) (*Message, error) {
	if upload == nil {
		return nil, errs.InvalidOperation("No audio file uploaded.")
	}
	return s.sendMedia(ctx, access.ActionSendVoice, KindAudio, senderID, receiverID, upload)
}

func (s *Service) sendMedia(ctx context.Context, action string, kind Kind, senderID, receiverID int64, upload *storage.Upload) (*Message, error) {
	allowed, folder := storage.ImageTypes, "images"
	if kind == KindAudio {
		allowed, folder = storage.AudioTypes, "audio"
	}
	if err := storage.Check(*upload, allowed, s.cfg.MaxUploadSize); err != nil {
		return nil, err
	}
	if senderID == receiverID {
		return nil, errs.InvalidOperation("Cannot send message to self.")
	}
	if err := s.gate.Check(ctx, action, senderID, receiverID); err != nil {
		return nil, err
	}

	url, err := s.media.Save(ctx, folder, *upload)
	if err != nil {
		return nil, err
	}

	msg := &Message{SenderID: senderID, ReceiverID: receiverID, Kind: kind, Timestamp: s.timestamp()}
	if kind == KindImage {
		msg.ImagePath = url
	} else {
		msg.AudioPath = url
	}

	if err := s.create(ctx, msg); err != nil {
		if derr := s.media.Delete(ctx, url); derr != nil {
			logger.Warn(ctx, "failed to discard orphaned upload", zap.String("url", url), zap.Error(derr))
		}
		return nil, err
	}
	return msg, nil
}

func (s *Service) create(ctx context.Context, msg *Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	err := s.policy.Do(ctx, "messages.create", func(ctx context.Context) error {
		return s.messages.Create(ctx, msg)
	})
	if err != nil {
		return err
	}

	messagesSent.WithLabelValues(string(msg.Kind)).Inc()
	logger.Info(ctx, "message sent",
		zap.Int64("message_id", msg.ID), zap.String("kind", string(msg.Kind)),
		zap.Int64("sender_id", msg.SenderID), zap.Int64("receiver_id", msg.ReceiverID))
	return nil
}

// GetConversation returns the full history between self and partner, oldest first
func (s *Service) GetConversation(ctx context.Context, selfID, partnerID int64) ([]Message, error) {
	if err := s.gate.Check(ctx, access.ActionViewConversation, selfID, partnerID); err != nil {
		return nil, err
	}
	return retry.Value(ctx, s.policy, "messages.conversation", func(ctx context.Context) ([]Message, error) {
		return s.messages.Conversation(ctx, selfID, partnerID)
	})
}

// PollMessages waits until a message newer than lastChecked exists between the
// pair, or the poll timeout elapses. A timeout yields an empty result. The wait
// ends early with ctx.Err() when the client goes away.
func (s *Service) PollMessages(ctx context.Context, selfID, partnerID int64, lastChecked time.Time) (*PollResult, error) {
	if err := s.gate.Check(ctx, access.ActionPollMessages, selfID, partnerID); err != nil {
		return nil, err
	}

	deadline := time.NewTimer(s.cfg.Poll.Timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(s.cfg.Poll.Interval)
	defer ticker.Stop()

	for {
		msgs, err := retry.Value(ctx, s.policy, "messages.since", func(ctx context.Context) ([]Message, error) {
			return s.messages.Since(ctx, selfID, partnerID, lastChecked)
		})
		if err != nil {
			return nil, err
		}
		if len(msgs) > 0 {
			pollOutcomes.WithLabelValues("messages").Inc()
			return &PollResult{Messages: msgs, LastChecked: msgs[len(msgs)-1].Timestamp.UnixMilli()}, nil
		}

		select {
		case <-ctx.Done():
			pollOutcomes.WithLabelValues("cancelled").Inc()
			return nil, ctx.Err()
		case <-deadline.C:
			pollOutcomes.WithLabelValues("timeout").Inc()
			return &PollResult{Messages: []Message{}, LastChecked: lastChecked.UnixMilli()}, nil
		case <-ticker.C:
		}
	}
}

// InitiateCall creates a call record carrying the caller's offer
func (s *Service) InitiateCall(ctx context.Context, callerID int64, req InitiateCallRequest) (*Message, error) {
	if !req.CallType.Valid() {
		return nil, errs.InvalidOperation("Invalid call type.")
	}
	if callerID == req.ReceiverID {
		return nil, errs.InvalidOperation("Cannot initiate call to self.")
	}
	if len(req.Offer) == 0 || string(req.Offer) == "null" {
		return nil, errs.InvalidOperation("Call offer is required.")
	}
	if err := s.gate.Check(ctx, access.ActionInitiateCall, callerID, req.ReceiverID); err != nil {
		return nil, err
	}

	now := s.timestamp()
	msg := &Message{
		SenderID:   callerID,
		ReceiverID: req.ReceiverID,
		Kind:       KindCall,
		Call:       &Call{Type: req.CallType, Start: now, SDP: SDP{Offer: req.Offer}},
		Timestamp:  now,
	}
	if err := s.create(ctx, msg); err != nil {
		return nil, err
	}
	callEvents.WithLabelValues("initiated").Inc()
	return msg, nil
}

// AnswerCall stores the callee's answer. Only the receiver may answer.
func (s *Service) AnswerCall(ctx context.Context, userID, callID int64, answer json.RawMessage) error {
	if len(answer) == 0 || string(answer) == "null" {
		return errs.InvalidOperation("Call answer is required.")
	}
	call, err := s.callFor(ctx, userID, callID, access.ActionAnswerCall, receiverOnly, "Unauthorized to answer this call.")
	if err != nil {
		return err
	}
	if call.Call.Rejected {
		return errs.InvalidOperation("Call was rejected.")
	}
	if call.Call.Ended() {
		return errs.InvalidOperation("Call has ended.")
	}

	err = s.policy.Do(ctx, "messages.set_answer", func(ctx context.Context) error {
		return s.messages.SetAnswer(ctx, callID, answer)
	})
	if err != nil {
		return s.callErr(err)
	}
	callEvents.WithLabelValues("answered").Inc()
	logger.Info(ctx, "call answered", zap.Int64("call_id", callID), zap.Int64("user_id", userID))
	return nil
}

// RejectCall marks the call rejected. Only the receiver may reject, and only before answering.
func (s *Service) RejectCall(ctx context.Context, userID, callID int64) error {
	call, err := s.callFor(ctx, userID, callID, access.ActionRejectCall, receiverOnly, "Unauthorized to reject this call.")
	if err != nil {
		return err
	}
	if call.Call.Rejected {
		return nil
	}
	if call.Call.Answered() {
		return errs.InvalidOperation("Call already answered.")
	}

	err = s.policy.Do(ctx, "messages.set_rejected", func(ctx context.Context) error {
		return s.messages.SetRejected(ctx, callID)
	})
	if err != nil {
		return s.callErr(err)
	}
	callEvents.WithLabelValues("rejected").Inc()
	logger.Info(ctx, "call rejected", zap.Int64("call_id", callID), zap.Int64("user_id", userID))
	return nil
}

// ExchangeIceCandidate replaces the call's last candidate
func (s *Service) ExchangeIceCandidate(ctx context.Context, userID, callID int64, candidate json.RawMessage) error {
	if len(candidate) == 0 || string(candidate) == "null" {
		return errs.InvalidOperation("ICE candidate is required.")
	}
	call, err := s.callFor(ctx, userID, callID, access.ActionExchangeICE, anyParticipant, "Unauthorized to exchange ICE candidates.")
	if err != nil {
		return err
	}
	if call.Call.Rejected {
		return errs.InvalidOperation("Call was rejected.")
	}

	err = s.policy.Do(ctx, "messages.set_candidate", func(ctx context.Context) error {
		return s.messages.SetLastCandidate(ctx, callID, candidate)
	})
	if err != nil {
		return s.callErr(err)
	}
	callEvents.WithLabelValues("ice_candidate").Inc()
	return nil
}

// PollIceCandidate returns the most recent candidate, or nil when none was sent
func (s *Service) PollIceCandidate(ctx context.Context, userID, callID int64) (json.RawMessage, error) {
	call, err := s.callFor(ctx, userID, callID, access.ActionExchangeICE, anyParticipant, "Unauthorized to access ICE candidates.")
	if err != nil {
		return nil, err
	}
	return call.Call.LastCandidate, nil
}

// PollAnswer returns the callee's answer, or nil while unanswered. Only the caller may read it.
func (s *Service) PollAnswer(ctx context.Context, userID, callID int64) (json.RawMessage, error) {
	call, err := s.callFor(ctx, userID, callID, access.ActionPollCallAnswer, senderOnly, "Unauthorized to access call answer.")
	if err != nil {
		return nil, err
	}
	return call.Call.SDP.Answer, nil
}

// EndCall records the call duration in whole seconds since the call started.
// Ending an ended call returns the recorded duration.
func (s *Service) EndCall(ctx context.Context, userID, callID int64) (int64, error) {
	call, err := s.callFor(ctx, userID, callID, access.ActionEndCall, anyParticipant, "Unauthorized to end this call.")
	if err != nil {
		return 0, err
	}
	if call.Call.Rejected {
		return 0, errs.InvalidOperation("Call was rejected.")
	}
	if call.Call.Ended() {
		return *call.Call.Duration, nil
	}

	duration := int64(s.now().Sub(call.Call.Start) / time.Second)
	if duration < 0 {
		duration = 0
	}

	err = s.policy.Do(ctx, "messages.set_duration", func(ctx context.Context) error {
		return s.messages.SetDuration(ctx, callID, duration)
	})
	if err != nil {
		return 0, s.callErr(err)
	}
	callEvents.WithLabelValues("ended").Inc()
	logger.Info(ctx, "call ended", zap.Int64("call_id", callID), zap.Int64("duration_seconds", duration))
	return duration, nil
}

// UnviewedCount is the number of messages the user has not opened yet
func (s *Service) UnviewedCount(ctx context.Context, userID int64) (int, error) {
	return retry.Value(ctx, s.policy, "messages.count_unviewed", func(ctx context.Context) (int, error) {
		return s.messages.CountUnviewed(ctx, userID)
	})
}

// MarkViewed flags every message received by the user as viewed
func (s *Service) MarkViewed(ctx context.Context, userID int64) error {
	return s.policy.Do(ctx, "messages.mark_viewed", func(ctx context.Context) error {
		return s.messages.MarkViewed(ctx, userID)
	})
}

type participantRule func(msg *Message, userID int64) bool

func receiverOnly(msg *Message, userID int64) bool   { return msg.ReceiverID == userID }
func senderOnly(msg *Message, userID int64) bool     { return msg.SenderID == userID }
func anyParticipant(msg *Message, userID int64) bool { return msg.Participant(userID) }

// callFor loads a call, checks the user's role on it and then runs the gate
// against the other participant
func (s *Service) callFor(ctx context.Context, userID, callID int64, action string, allowed participantRule, denial string) (*Message, error) {
	msg, err := retry.Value(ctx, s.policy, "messages.get", func(ctx context.Context) (*Message, error) {
		return s.messages.GetByID(ctx, callID)
	})
	if err != nil {
		return nil, s.callErr(err)
	}
	if msg.Kind != KindCall || msg.Call == nil {
		return nil, errs.NotFound("Call not found.")
	}
	if !allowed(msg, userID) {
		return nil, errs.NotAuthorized(denial)
	}
	if err := s.gate.Check(ctx, action, userID, msg.Peer(userID)); err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *Service) callErr(err error) error {
	if errors.Is(err, errs.ErrNotFound) && !errs.IsDomain(err) {
		return errs.NotFound("Call not found.")
	}
	return err
}
