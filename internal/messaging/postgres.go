// internal/messaging/postgres.go

package messaging

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/imadgeboyega/matchmaking-backend/internal/common/errs"
	"github.com/jmoiron/sqlx"
)

const messageColumns = `id, sender_id, receiver_id, kind, text, image_path, audio_path,
	call_type, call_start, call_duration, sdp_offer, sdp_answer, last_candidate, call_rejected,
	sent_at, viewed`

// messageRow mirrors the nullable sibling columns of the messages table
type messageRow struct {
	ID            int64          `db:"id"`
	SenderID      int64          `db:"sender_id"`
	ReceiverID    int64          `db:"receiver_id"`
	Kind          string         `db:"kind"`
	Text          sql.NullString `db:"text"`
	ImagePath     sql.NullString `db:"image_path"`
	AudioPath     sql.NullString `db:"audio_path"`
	CallType      sql.NullString `db:"call_type"`
	CallStart     sql.NullTime   `db:"call_start"`
	CallDuration  sql.NullInt64  `db:"call_duration"`
	SDPOffer      []byte         `db:"sdp_offer"`
	SDPAnswer     []byte         `db:"sdp_answer"`
	LastCandidate []byte         `db:"last_candidate"`
	CallRejected  bool           `db:"call_rejected"`
	SentAt        time.Time      `db:"sent_at"`
	Viewed        bool           `db:"viewed"`
}

func (row messageRow) toMessage() Message {
	m := Message{
		ID:         row.ID,
		SenderID:   row.SenderID,
		ReceiverID: row.ReceiverID,
		Kind:       Kind(row.Kind),
		Text:       row.Text.String,
		ImagePath:  row.ImagePath.String,
		AudioPath:  row.AudioPath.String,
		Timestamp:  row.SentAt,
		Viewed:     row.Viewed,
	}
	if m.Kind == KindCall {
		call := &Call{
			Type:          CallType(row.CallType.String),
			Start:         row.CallStart.Time,
			SDP:           SDP{Offer: rawJSON(row.SDPOffer), Answer: rawJSON(row.SDPAnswer)},
			LastCandidate: rawJSON(row.LastCandidate),
			Rejected:      row.CallRejected,
		}
		if row.CallDuration.Valid {
			d := row.CallDuration.Int64
			call.Duration = &d
		}
		m.Call = call
	}
	return m
}

type postgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL message repository
func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func notFound(id int64) error {
	return fmt.Errorf("message %d: %w", id, errs.ErrNotFound)
}

func (r *postgresRepository) Create(ctx context.Context, msg *Message) error {
	query := `
		INSERT INTO messages (
			sender_id, receiver_id, kind, text, image_path, audio_path,
			call_type, call_start, sdp_offer, sent_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`

	var callType, callStart, offer interface{}
	if msg.Call != nil {
		callType = string(msg.Call.Type)
		callStart = msg.Call.Start
		offer = jsonValue(msg.Call.SDP.Offer)
	}

	err := r.db.QueryRowxContext(ctx, query,
		msg.SenderID, msg.ReceiverID, string(msg.Kind),
		nullString(msg.Text), nullString(msg.ImagePath), nullString(msg.AudioPath),
		callType, callStart, offer, msg.Timestamp,
	).Scan(&msg.ID)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*Message, error) {
	var row messageRow
	err := r.db.GetContext(ctx, &row, `SELECT `+messageColumns+` FROM messages WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	m := row.toMessage()
	return &m, nil
}

func (r *postgresRepository) Conversation(ctx context.Context, a, b int64) ([]Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages
		WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1)
		ORDER BY sent_at ASC, id ASC`
	return r.list(ctx, query, a, b)
}

func (r *postgresRepository) Since(ctx context.Context, a, b int64, after time.Time) ([]Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages
		WHERE ((sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1))
		  AND sent_at > $3
		ORDER BY sent_at ASC, id ASC`
	return r.list(ctx, query, a, b, after)
}

func (r *postgresRepository) list(ctx context.Context, query string, args ...interface{}) ([]Message, error) {
	var rows []messageRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	out := make([]Message, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toMessage())
	}
	return out, nil
}

func (r *postgresRepository) SetAnswer(ctx context.Context, id int64, answer json.RawMessage) error {
	return r.update(ctx, id, `UPDATE messages SET sdp_answer = $2 WHERE id = $1 AND kind = 'call'`, jsonValue(answer))
}

func (r *postgresRepository) SetRejected(ctx context.Context, id int64) error {
	return r.update(ctx, id, `UPDATE messages SET call_rejected = TRUE WHERE id = $1 AND kind = 'call'`)
}

func (r *postgresRepository) SetLastCandidate(ctx context.Context, id int64, candidate json.RawMessage) error {
	return r.update(ctx, id, `UPDATE messages SET last_candidate = $2 WHERE id = $1 AND kind = 'call'`, jsonValue(candidate))
}

func (r *postgresRepository) SetDuration(ctx context.Context, id int64, seconds int64) error {
	return r.update(ctx, id, `UPDATE messages SET call_duration = $2 WHERE id = $1 AND kind = 'call'`, seconds)
}

func (r *postgresRepository) update(ctx context.Context, id int64, query string, args ...interface{}) error {
	res, err := r.db.ExecContext(ctx, query, append([]interface{}{id}, args...)...)
	if err != nil {
		return fmt.Errorf("failed to update call: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return notFound(id)
	}
	return nil
}

func (r *postgresRepository) CountUnviewed(ctx context.Context, receiverID int64) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM messages WHERE receiver_id = $1 AND viewed = FALSE`, receiverID)
	if err != nil {
		return 0, fmt.Errorf("failed to count unviewed messages: %w", err)
	}
	return n, nil
}

func (r *postgresRepository) MarkViewed(ctx context.Context, receiverID int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE messages SET viewed = TRUE WHERE receiver_id = $1 AND viewed = FALSE`, receiverID)
	if err != nil {
		return fmt.Errorf("failed to mark messages viewed: %w", err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// jsonValue maps an empty document to SQL NULL
func jsonValue(raw json.RawMessage) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

func rawJSON(b []byte) json.RawMessage {
	if len(b) == 0 {
		return nil
	}
	out := make(json.RawMessage, len(b))
	copy(out, b)
	return out
}
