package messaging_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/imadgeboyega/matchmaking-backend/internal/access"
	"github.com/imadgeboyega/matchmaking-backend/internal/common/errs"
	"github.com/imadgeboyega/matchmaking-backend/internal/common/retry"
	"github.com/imadgeboyega/matchmaking-backend/internal/messaging"
	"github.com/imadgeboyega/matchmaking-backend/internal/messaging/messagingtest"
	"github.com/imadgeboyega/matchmaking-backend/internal/storage"
	"github.com/imadgeboyega/matchmaking-backend/internal/users"
	"github.com/imadgeboyega/matchmaking-backend/internal/users/userstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	alice int64 = 1
	bob   int64 = 2
	carol int64 = 3
)

type fakeMedia struct {
	mu      sync.Mutex
	saved   []string
	deleted []string
}

func (f *fakeMedia) Save(ctx context.Context, folder string, u storage.Upload) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	url := "https://cdn.test/" + folder + "/" + u.Filename
	f.saved = append(f.saved, url)
	return url, nil
}

func (f *fakeMedia) Delete(ctx context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, url)
	return nil
}

type fixture struct {
	svc      *messaging.Service
	users    *userstest.Memory
	messages *messagingtest.Memory
	media    *fakeMedia
}

func newFixture(t *testing.T, poll messaging.PollConfig) *fixture {
	t.Helper()
	userRepo := userstest.NewMemory()
	userRepo.Add(alice, "Alice")
	userRepo.Add(bob, "Bob")
	userRepo.Add(carol, "Carol")

	policy := retry.Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}
	msgRepo := messagingtest.NewMemory()
	media := &fakeMedia{}
	gate := access.NewGate(userRepo, policy)
	svc := messaging.NewService(msgRepo, userRepo, gate, media, policy, messaging.Config{
		Poll:          poll,
		MaxUploadSize: 1024,
	})
	return &fixture{svc: svc, users: userRepo, messages: msgRepo, media: media}
}

func defaultPoll() messaging.PollConfig {
	return messaging.PollConfig{Timeout: 200 * time.Millisecond, Interval: 10 * time.Millisecond}
}

func (f *fixture) match(a, b int64) {
	ua, ub := f.users.Get(a), f.users.Get(b)
	ua.AcceptedInterests = users.Add(ua.AcceptedInterests, b)
	ub.AcceptedInterests = users.Add(ub.AcceptedInterests, a)
	f.users.Put(ua)
	f.users.Put(ub)
}

func (f *fixture) block(blocker, blocked int64) {
	u := f.users.Get(blocker)
	u.BlockedUsers = users.Add(u.BlockedUsers, blocked)
	f.users.Put(u)
}

func png(name string) *storage.Upload {
	return &storage.Upload{Body: strings.NewReader("img"), Filename: name, ContentType: "image/png", Size: 3}
}

func TestSendText(t *testing.T) {
	f := newFixture(t, defaultPoll())
	f.match(alice, bob)
	ctx := context.Background()

	msg, err := f.svc.SendText(ctx, alice, bob, "hi")
	require.NoError(t, err)
	assert.NotZero(t, msg.ID)
	assert.Equal(t, messaging.KindText, msg.Kind)
	assert.Equal(t, msg.Timestamp, msg.Timestamp.Truncate(time.Millisecond))

	stored := f.messages.Get(msg.ID)
	require.NotNil(t, stored)
	assert.Equal(t, "hi", stored.Text)
	assert.False(t, stored.Viewed)
}

func TestSendText_Rejections(t *testing.T) {
	f := newFixture(t, defaultPoll())
	ctx := context.Background()

	_, err := f.svc.SendText(ctx, alice, bob, "   ")
	assert.Equal(t, "Message text is required.", errs.Message(err))

	_, err = f.svc.SendText(ctx, alice, alice, "hi")
	assert.ErrorIs(t, err, errs.ErrInvalidOperation)
	assert.Equal(t, "Cannot send message to self.", errs.Message(err))

	_, err = f.svc.SendText(ctx, alice, 99, "hi")
	assert.ErrorIs(t, err, errs.ErrNotFound)

	// a pending interest is not enough
	a, b := f.users.Get(alice), f.users.Get(bob)
	a.SentInterests = users.Add(a.SentInterests, bob)
	b.ReceivedInterests = users.Add(b.ReceivedInterests, alice)
	f.users.Put(a)
	f.users.Put(b)
	_, err = f.svc.SendText(ctx, alice, bob, "hi")
	assert.ErrorIs(t, err, errs.ErrNotAuthorized)
	assert.Equal(t, "Cannot send message: User is not an accepted interest.", errs.Message(err))

	f.match(alice, bob)
	f.block(bob, alice)
	_, err = f.svc.SendText(ctx, alice, bob, "hi")
	assert.ErrorIs(t, err, errs.ErrNotAuthorized)
	assert.Equal(t, "Cannot send message: User is blocked.", errs.Message(err))

	assert.Zero(t, f.messages.Len())
}

func TestSendImageAndAudio(t *testing.T) {
	f := newFixture(t, defaultPoll())
	f.match(alice, bob)
	ctx := context.Background()

	_, err := f.svc.SendImage(ctx, alice, bob, nil)
	assert.Equal(t, "No image file uploaded.", errs.Message(err))
	_, err = f.svc.SendAudio(ctx, alice, bob, nil)
	assert.Equal(t, "No audio file uploaded.", errs.Message(err))

	_, err = f.svc.SendAudio(ctx, alice, bob, png("x.png"))
	assert.ErrorIs(t, err, errs.ErrInvalidOperation)

	msg, err := f.svc.SendImage(ctx, alice, bob, png("cat.png"))
	require.NoError(t, err)
	assert.Equal(t, messaging.KindImage, msg.Kind)
	assert.Equal(t, "https://cdn.test/images/cat.png", msg.ImagePath)

	voice := &storage.Upload{Body: strings.NewReader("a"), Filename: "v.webm", ContentType: "audio/webm", Size: 1}
	msg, err = f.svc.SendAudio(ctx, bob, alice, voice)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/audio/v.webm", msg.AudioPath)
}

func TestSendImage_GateRunsBeforeUpload(t *testing.T) {
	f := newFixture(t, defaultPoll())

	_, err := f.svc.SendImage(context.Background(), alice, bob, png("cat.png"))
	assert.Equal(t, "Cannot send image message: User is not an accepted interest.", errs.Message(err))
	assert.Empty(t, f.media.saved)
}

func TestSendImage_DiscardsUploadWhenStoreFails(t *testing.T) {
	f := newFixture(t, defaultPoll())
	f.match(alice, bob)
	down := errors.New("connection reset")
	f.messages.FailNext(down, down, down)

	_, err := f.svc.SendImage(context.Background(), alice, bob, png("cat.png"))
	assert.ErrorIs(t, err, errs.ErrTransientStore)
	assert.Equal(t, f.media.saved, f.media.deleted)
}

func TestSendText_RetriesTransientFailure(t *testing.T) {
	f := newFixture(t, defaultPoll())
	f.match(alice, bob)
	f.messages.FailNext(errors.New("timeout"))

	msg, err := f.svc.SendText(context.Background(), alice, bob, "hi")
	require.NoError(t, err)
	assert.NotNil(t, f.messages.Get(msg.ID))
}

func TestGetConversation_OrderedByTimestamp(t *testing.T) {
	f := newFixture(t, defaultPoll())
	f.match(alice, bob)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	f.messages.Put(messaging.Message{SenderID: alice, ReceiverID: bob, Kind: messaging.KindText, Text: "t3", Timestamp: base.Add(3 * time.Second)})
	f.messages.Put(messaging.Message{SenderID: bob, ReceiverID: alice, Kind: messaging.KindText, Text: "t1", Timestamp: base.Add(time.Second)})
	f.messages.Put(messaging.Message{SenderID: alice, ReceiverID: carol, Kind: messaging.KindText, Text: "other", Timestamp: base})
	f.messages.Put(messaging.Message{SenderID: alice, ReceiverID: bob, Kind: messaging.KindText, Text: "t2", Timestamp: base.Add(2 * time.Second)})

	msgs, err := f.svc.GetConversation(context.Background(), alice, bob)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, []string{"t1", "t2", "t3"}, []string{msgs[0].Text, msgs[1].Text, msgs[2].Text})

	_, err = f.svc.GetConversation(context.Background(), alice, carol)
	assert.Equal(t, "Cannot view conversation: User is not an accepted interest.", errs.Message(err))
}

func TestPollMessages_ReturnsExistingImmediately(t *testing.T) {
	f := newFixture(t, messaging.PollConfig{Timeout: 5 * time.Second, Interval: time.Second})
	f.match(alice, bob)
	ts := time.Now().UTC().Truncate(time.Millisecond)
	f.messages.Put(messaging.Message{SenderID: bob, ReceiverID: alice, Kind: messaging.KindText, Text: "old", Timestamp: ts.Add(-time.Minute)})
	f.messages.Put(messaging.Message{SenderID: bob, ReceiverID: alice, Kind: messaging.KindText, Text: "new", Timestamp: ts})

	start := time.Now()
	res, err := f.svc.PollMessages(context.Background(), alice, bob, ts.Add(-time.Second))
	require.NoError(t, err)
	assert.Less(t, time.Since(start), time.Second)
	require.Len(t, res.Messages, 1)
	assert.Equal(t, "new", res.Messages[0].Text)
	assert.Equal(t, ts.UnixMilli(), res.LastChecked)
}

func TestPollMessages_WakesOnNewMessage(t *testing.T) {
	f := newFixture(t, messaging.PollConfig{Timeout: 5 * time.Second, Interval: 10 * time.Millisecond})
	f.match(alice, bob)
	since := time.Now().Add(-time.Millisecond)

	go func() {
		time.Sleep(30 * time.Millisecond)
		_, _ = f.svc.SendText(context.Background(), bob, alice, "ping")
	}()

	res, err := f.svc.PollMessages(context.Background(), alice, bob, since)
	require.NoError(t, err)
	require.Len(t, res.Messages, 1)
	assert.Equal(t, "ping", res.Messages[0].Text)
	assert.Equal(t, res.Messages[0].Timestamp.UnixMilli(), res.LastChecked)
}

func TestPollMessages_TimesOutEmpty(t *testing.T) {
	f := newFixture(t, messaging.PollConfig{Timeout: 80 * time.Millisecond, Interval: 10 * time.Millisecond})
	f.match(alice, bob)
	since := time.Now()

	start := time.Now()
	res, err := f.svc.PollMessages(context.Background(), alice, bob, since)
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Empty(t, res.Messages)
	assert.Equal(t, since.UnixMilli(), res.LastChecked)
	assert.GreaterOrEqual(t, elapsed, 80*time.Millisecond)
	assert.Less(t, elapsed, time.Second)
}

func TestPollMessages_StopsWhenClientLeaves(t *testing.T) {
	f := newFixture(t, messaging.PollConfig{Timeout: 10 * time.Second, Interval: 10 * time.Millisecond})
	f.match(alice, bob)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(30*time.Millisecond, cancel)

	start := time.Now()
	_, err := f.svc.PollMessages(ctx, alice, bob, time.Now())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestPollMessages_GateCheckedOnEntry(t *testing.T) {
	f := newFixture(t, defaultPoll())
	f.match(alice, bob)
	f.block(alice, bob)

	_, err := f.svc.PollMessages(context.Background(), alice, bob, time.Now())
	assert.Equal(t, "Cannot poll messages: User is blocked.", errs.Message(err))
}

func startCall(t *testing.T, f *fixture) int64 {
	t.Helper()
	call, err := f.svc.InitiateCall(context.Background(), alice, messaging.InitiateCallRequest{
		ReceiverID: bob,
		CallType:   messaging.CallAudio,
		Offer:      json.RawMessage(`{"type":"offer","sdp":"v=0"}`),
	})
	require.NoError(t, err)
	return call.ID
}

func TestCallFlow(t *testing.T) {
	f := newFixture(t, defaultPoll())
	f.match(alice, bob)
	ctx := context.Background()

	callID := startCall(t, f)
	stored := f.messages.Get(callID)
	require.NotNil(t, stored.Call)
	assert.Equal(t, messaging.KindCall, stored.Kind)
	assert.JSONEq(t, `{"type":"offer","sdp":"v=0"}`, string(stored.Call.SDP.Offer))

	answer, err := f.svc.PollAnswer(ctx, alice, callID)
	require.NoError(t, err)
	assert.Nil(t, answer)

	err = f.svc.AnswerCall(ctx, alice, callID, json.RawMessage(`{"type":"answer"}`))
	assert.ErrorIs(t, err, errs.ErrNotAuthorized)
	assert.Equal(t, "Unauthorized to answer this call.", errs.Message(err))

	require.NoError(t, f.svc.AnswerCall(ctx, bob, callID, json.RawMessage(`{"type":"answer"}`)))

	answer, err = f.svc.PollAnswer(ctx, alice, callID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"answer"}`, string(answer))

	_, err = f.svc.PollAnswer(ctx, bob, callID)
	assert.Equal(t, "Unauthorized to access call answer.", errs.Message(err))

	err = f.svc.RejectCall(ctx, bob, callID)
	assert.Equal(t, "Call already answered.", errs.Message(err))

	duration, err := f.svc.EndCall(ctx, bob, callID)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, duration, int64(0))

	_, err = f.svc.EndCall(ctx, carol, callID)
	assert.Equal(t, "Unauthorized to end this call.", errs.Message(err))
}

func TestEndCall_DurationInWholeSeconds(t *testing.T) {
	f := newFixture(t, defaultPoll())
	f.match(alice, bob)
	start := time.Now().Add(-90*time.Second - 400*time.Millisecond)
	callID := f.messages.Put(messaging.Message{
		SenderID: alice, ReceiverID: bob, Kind: messaging.KindCall, Timestamp: start,
		Call: &messaging.Call{Type: messaging.CallVideo, Start: start, SDP: messaging.SDP{Offer: json.RawMessage(`{}`)}},
	})

	duration, err := f.svc.EndCall(context.Background(), alice, callID)
	require.NoError(t, err)
	assert.Equal(t, int64(90), duration)

	again, err := f.svc.EndCall(context.Background(), bob, callID)
	require.NoError(t, err)
	assert.Equal(t, duration, again)
}

func TestIceCandidate_LastWriteWins(t *testing.T) {
	f := newFixture(t, defaultPoll())
	f.match(alice, bob)
	ctx := context.Background()
	callID := startCall(t, f)

	candidate, err := f.svc.PollIceCandidate(ctx, bob, callID)
	require.NoError(t, err)
	assert.Nil(t, candidate)

	require.NoError(t, f.svc.ExchangeIceCandidate(ctx, alice, callID, json.RawMessage(`{"candidate":"one"}`)))
	require.NoError(t, f.svc.ExchangeIceCandidate(ctx, bob, callID, json.RawMessage(`{"candidate":"two"}`)))

	candidate, err = f.svc.PollIceCandidate(ctx, alice, callID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"candidate":"two"}`, string(candidate))

	err = f.svc.ExchangeIceCandidate(ctx, carol, callID, json.RawMessage(`{"candidate":"x"}`))
	assert.Equal(t, "Unauthorized to exchange ICE candidates.", errs.Message(err))
	_, err = f.svc.PollIceCandidate(ctx, carol, callID)
	assert.Equal(t, "Unauthorized to access ICE candidates.", errs.Message(err))
}

func TestRejectCall(t *testing.T) {
	f := newFixture(t, defaultPoll())
	f.match(alice, bob)
	ctx := context.Background()
	callID := startCall(t, f)

	err := f.svc.RejectCall(ctx, alice, callID)
	assert.Equal(t, "Unauthorized to reject this call.", errs.Message(err))

	require.NoError(t, f.svc.RejectCall(ctx, bob, callID))
	require.NoError(t, f.svc.RejectCall(ctx, bob, callID))
	assert.True(t, f.messages.Get(callID).Call.Rejected)

	err = f.svc.AnswerCall(ctx, bob, callID, json.RawMessage(`{}`))
	assert.Equal(t, "Call was rejected.", errs.Message(err))
	_, err = f.svc.EndCall(ctx, alice, callID)
	assert.Equal(t, "Call was rejected.", errs.Message(err))
}

func TestCallOperations_Errors(t *testing.T) {
	f := newFixture(t, defaultPoll())
	f.match(alice, bob)
	ctx := context.Background()

	_, err := f.svc.InitiateCall(ctx, alice, messaging.InitiateCallRequest{ReceiverID: bob, CallType: "fax", Offer: json.RawMessage(`{}`)})
	assert.Equal(t, "Invalid call type.", errs.Message(err))

	_, err = f.svc.InitiateCall(ctx, alice, messaging.InitiateCallRequest{ReceiverID: alice, CallType: messaging.CallAudio, Offer: json.RawMessage(`{}`)})
	assert.Equal(t, "Cannot initiate call to self.", errs.Message(err))

	_, err = f.svc.InitiateCall(ctx, alice, messaging.InitiateCallRequest{ReceiverID: carol, CallType: messaging.CallAudio, Offer: json.RawMessage(`{}`)})
	assert.ErrorIs(t, err, errs.ErrNotAuthorized)

	err = f.svc.AnswerCall(ctx, bob, 404, json.RawMessage(`{}`))
	assert.ErrorIs(t, err, errs.ErrNotFound)
	assert.Equal(t, "Call not found.", errs.Message(err))

	text, err := f.svc.SendText(ctx, alice, bob, "hi")
	require.NoError(t, err)
	_, err = f.svc.EndCall(ctx, alice, text.ID)
	assert.Equal(t, "Call not found.", errs.Message(err))
}

func TestCallOperations_GateReevaluated(t *testing.T) {
	f := newFixture(t, defaultPoll())
	f.match(alice, bob)
	callID := startCall(t, f)

	f.block(bob, alice)

	_, err := f.svc.PollIceCandidate(context.Background(), alice, callID)
	assert.ErrorIs(t, err, errs.ErrNotAuthorized)
	assert.Equal(t, "Cannot exchange ICE candidates: User is blocked.", errs.Message(err))
}

func TestListChatPartners(t *testing.T) {
	f := newFixture(t, defaultPoll())
	f.match(alice, bob)
	f.match(alice, carol)
	f.block(alice, carol)
	b := f.users.Get(bob)
	avatar := "https://cdn.test/bob.png"
	b.DpImage = &avatar
	f.users.Put(b)
	f.users.Add(4, "dee")
	f.match(alice, 4)

	partners, err := f.svc.ListChatPartners(context.Background(), alice)
	require.NoError(t, err)
	assert.Equal(t, []messaging.ChatPartner{
		{ID: bob, Name: "Bob", DpImage: avatar},
		{ID: 4, Name: "dee", DpImage: "https://placehold.co/40x40/FF69B4/FFFFFF?text=DE"},
	}, partners)

	_, err = f.svc.ListChatPartners(context.Background(), 99)
	assert.Equal(t, "User not found.", errs.Message(err))
}

func TestUnviewedCountAndMarkViewed(t *testing.T) {
	f := newFixture(t, defaultPoll())
	f.match(alice, bob)
	ctx := context.Background()

	for _, text := range []string{"a", "b"} {
		_, err := f.svc.SendText(ctx, bob, alice, text)
		require.NoError(t, err)
	}
	_, err := f.svc.SendText(ctx, alice, bob, "c")
	require.NoError(t, err)

	n, err := f.svc.UnviewedCount(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, f.svc.MarkViewed(ctx, alice))
	n, err = f.svc.UnviewedCount(ctx, alice)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = f.svc.UnviewedCount(ctx, bob)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
