// internal/messaging/models.go

package messaging

import (
	"encoding/json"
	"time"

	"github.com/imadgeboyega/matchmaking-backend/internal/common/errs"
)

// Kind names the single payload a message carries
type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
	KindAudio Kind = "audio"
	KindCall  Kind = "call"
)

type CallType string

const (
	CallAudio CallType = "audio"
	CallVideo CallType = "video"
)

func (t CallType) Valid() bool {
	return t == CallAudio || t == CallVideo
}

// SDP holds the opaque session descriptions exchanged by the two browsers
type SDP struct {
	Offer  json.RawMessage `json:"offer,omitempty"`
	Answer json.RawMessage `json:"answer,omitempty"`
}

// Call is the signalling state of a call record.
//
// created(offer) -> answered -> ended, or created -> rejected. LastCandidate is
// overwritten on every exchange.
type Call struct {
	Type          CallType        `json:"callType"`
	Start         time.Time       `json:"callStart"`
	Duration      *int64          `json:"callDuration,omitempty"`
	SDP           SDP             `json:"sdp"`
	LastCandidate json.RawMessage `json:"lastCandidate,omitempty"`
	Rejected      bool            `json:"callRejected"`
}

func (c *Call) Answered() bool {
	return len(c.SDP.Answer) > 0
}

func (c *Call) Ended() bool {
	return c.Duration != nil
}

// Message is one record in a conversation. Exactly one of Text, ImagePath,
// AudioPath and Call is set, as named by Kind.
type Message struct {
	ID         int64     `json:"id"`
	SenderID   int64     `json:"senderId"`
	ReceiverID int64     `json:"receiverId"`
	Kind       Kind      `json:"kind"`
	Text       string    `json:"text,omitempty"`
	ImagePath  string    `json:"imagePath,omitempty"`
	AudioPath  string    `json:"audioPath,omitempty"`
	Call       *Call     `json:"call,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	Viewed     bool      `json:"viewed"`
}

// Validate checks that the payload matches Kind and nothing else is set
func (m *Message) Validate() error {
	set := 0
	if m.Text != "" {
		set++
	}
	if m.ImagePath != "" {
		set++
	}
	if m.AudioPath != "" {
		set++
	}
	if m.Call != nil {
		set++
	}
	if set != 1 {
		return errs.InvalidOperation("A message carries exactly one payload.")
	}

	var ok bool
	switch m.Kind {
	case KindText:
		ok = m.Text != ""
	case KindImage:
		ok = m.ImagePath != ""
	case KindAudio:
		ok = m.AudioPath != ""
	case KindCall:
		ok = m.Call != nil && m.Call.Type.Valid()
	}
	if !ok {
		return errs.InvalidOperation("Invalid message payload.")
	}
	return nil
}

// Participant reports whether userID sent or received the message
func (m *Message) Participant(userID int64) bool {
	return m.SenderID == userID || m.ReceiverID == userID
}

// Peer returns the other participant
func (m *Message) Peer(userID int64) int64 {
	if m.SenderID == userID {
		return m.ReceiverID
	}
	return m.SenderID
}

// ChatPartner is one entry of the inbox listing
type ChatPartner struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	DpImage string `json:"DpImage"`
}

// PollResult is returned by a long-poll. An empty Messages means the poll timed out.
type PollResult struct {
	Messages    []Message `json:"messages"`
	LastChecked int64     `json:"lastChecked"`
}

// Request bodies

type SendTextRequest struct {
	ReceiverID int64  `json:"receiverId"`
	Text       string `json:"text"`
}

type InitiateCallRequest struct {
	ReceiverID int64           `json:"receiverId"`
	CallType   CallType        `json:"callType"`
	Offer      json.RawMessage `json:"offer"`
}

type AnswerCallRequest struct {
	CallID int64           `json:"callId" validate:"required,gt=0"`
	Answer json.RawMessage `json:"answer"`
}

type IceCandidateRequest struct {
	CallID    int64           `json:"callId" validate:"required,gt=0"`
	Candidate json.RawMessage `json:"candidate"`
}

type CallRequest struct {
	CallID int64 `json:"callId" validate:"required,gt=0"`
}

type InitiateCallResponse struct {
	CallID int64 `json:"callId"`
}

type EndCallResponse struct {
	Message      string `json:"message"`
	CallDuration int64  `json:"callDuration"`
}
