// internal/auth/session.go
// Server-side sessions kept in Redis and referenced by a signed cookie

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/imadgeboyega/matchmaking-backend/internal/common/utils"
)

var ErrSessionNotFound = errors.New("session not found")

// Session is the per-browser state. A session may carry a user login, an admin login, or both.
type Session struct {
	ID         string  `json:"id"`
	UserID     int64   `json:"userId,omitempty"`
	Name       string  `json:"name,omitempty"`
	Email      string  `json:"email,omitempty"`
	Mobile     string  `json:"mobile,omitempty"`
	DpImage    *string `json:"DpImage,omitempty"`
	AdminID    int64   `json:"adminId,omitempty"`
	AdminEmail string  `json:"adminEmail,omitempty"`

	// SeenInterests are the received-interest ids the user has already looked at
	SeenInterests []int64 `json:"seenInterests,omitempty"`
}

// Store persists sessions by id
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

type redisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore keeps each session as a JSON string under "sess:<id>"
func NewRedisStore(client *redis.Client) Store {
	return &redisStore{client: client, prefix: "sess:"}
}

func (s *redisStore) Get(ctx context.Context, id string) (*Session, error) {
	raw, err := s.client.Get(ctx, s.prefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &sess, nil
}

func (s *redisStore) Save(ctx context.Context, sess *Session, ttl time.Duration) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.client.Set(ctx, s.prefix+sess.ID, raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *redisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.prefix+id).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// SessionConfig configures the session cookie
type SessionConfig struct {
	Secret     string
	CookieName string
	MaxAge     time.Duration
	Secure     bool
}

// Sessions ties the store to the cookie carrying the signed session id
type Sessions struct {
	store Store
	cfg   SessionConfig
}

func NewSessions(store Store, cfg SessionConfig) *Sessions {
	return &Sessions{store: store, cfg: cfg}
}

// Load returns the session referenced by the request cookie
func (m *Sessions) Load(r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(m.cfg.CookieName)
	if err != nil {
		return nil, ErrSessionNotFound
	}

	id, err := utils.ParseSessionToken(cookie.Value, m.cfg.Secret)
	if err != nil {
		return nil, ErrSessionNotFound
	}

	return m.store.Get(r.Context(), id)
}

// Start persists a new session (fresh id) and sets the cookie
func (m *Sessions) Start(ctx context.Context, w http.ResponseWriter, sess *Session) error {
	sess.ID = uuid.New().String()
	if err := m.store.Save(ctx, sess, m.cfg.MaxAge); err != nil {
		return err
	}

	token, err := utils.SignSessionToken(sess.ID, m.cfg.Secret, m.cfg.MaxAge)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.cfg.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   m.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Save writes back changes to an existing session
func (m *Sessions) Save(ctx context.Context, sess *Session) error {
	return m.store.Save(ctx, sess, m.cfg.MaxAge)
}

// Destroy deletes the session and clears the cookie
func (m *Sessions) Destroy(ctx context.Context, w http.ResponseWriter, sess *Session) error {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.cfg.Secure,
	})
	if sess == nil {
		return nil
	}
	return m.store.Delete(ctx, sess.ID)
}
