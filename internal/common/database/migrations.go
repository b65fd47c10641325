// internal/common/database/migrations.go
// Schema bootstrap. Every statement is idempotent so it runs on each start.

package database

import (
	"context"
	"fmt"

	"github.com/imadgeboyega/matchmaking-backend/internal/common/logger"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Migrations are applied in order inside one transaction
var Migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		email VARCHAR(255) NOT NULL UNIQUE,
		mobile VARCHAR(20) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		dp_image TEXT,
		country VARCHAR(100),
		state VARCHAR(100),
		district VARCHAR(100),
		religion VARCHAR(100),
		caste VARCHAR(100),
		current_place VARCHAR(255),
		gender VARCHAR(30),
		orientation VARCHAR(30),
		marital_status VARCHAR(30),
		dob DATE,
		height INTEGER,
		weight INTEGER,
		education TEXT,
		profession TEXT,
		income TEXT,
		languages TEXT,
		habits TEXT,
		diet TEXT,
		partner_expectations TEXT,
		family_details TEXT,
		horoscope TEXT,
		address TEXT,
		profile_image TEXT,
		email_notifications BOOLEAN NOT NULL DEFAULT TRUE,
		sms_notifications BOOLEAN NOT NULL DEFAULT TRUE,
		sent_interests BIGINT[] NOT NULL DEFAULT '{}',
		received_interests BIGINT[] NOT NULL DEFAULT '{}',
		accepted_interests BIGINT[] NOT NULL DEFAULT '{}',
		blocked_users BIGINT[] NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_users_gender ON users(gender)`,
	`CREATE INDEX IF NOT EXISTS idx_users_country ON users(country)`,

	`CREATE TABLE IF NOT EXISTS messages (
		id BIGSERIAL PRIMARY KEY,
		sender_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		receiver_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		kind VARCHAR(10) NOT NULL CHECK (kind IN ('text', 'image', 'audio', 'call')),
		text TEXT,
		image_path TEXT,
		audio_path TEXT,
		call_type VARCHAR(10) CHECK (call_type IN ('audio', 'video')),
		call_start TIMESTAMPTZ,
		call_duration BIGINT,
		sdp_offer JSONB,
		sdp_answer JSONB,
		last_candidate JSONB,
		call_rejected BOOLEAN NOT NULL DEFAULT FALSE,
		sent_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		viewed BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_pair ON messages(sender_id, receiver_id, sent_at)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_receiver_unviewed ON messages(receiver_id) WHERE viewed = FALSE`,

	`CREATE TABLE IF NOT EXISTS reports (
		id BIGSERIAL PRIMARY KEY,
		reported_user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		reporter_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		message TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reports_reported ON reports(reported_user_id)`,

	`CREATE TABLE IF NOT EXISTS admins (
		id BIGSERIAL PRIMARY KEY,
		email VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS account_removals (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL,
		name VARCHAR(100) NOT NULL,
		email VARCHAR(255) NOT NULL,
		user_details JSONB NOT NULL,
		report_count INTEGER NOT NULL DEFAULT 0,
		reports JSONB NOT NULL DEFAULT '[]',
		deleted_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		deleted_by BIGINT REFERENCES admins(id) ON DELETE SET NULL,
		reason TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS support_requests (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT REFERENCES users(id) ON DELETE SET NULL,
		email VARCHAR(255) NOT NULL,
		mobile VARCHAR(20) NOT NULL,
		message TEXT NOT NULL,
		supported BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// Migrate creates any missing tables and indexes
func Migrate(ctx context.Context, db *sqlx.DB) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration: %w", err)
	}
	defer tx.Rollback()

	for i, stmt := range Migrations {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migrations: %w", err)
	}
	logger.Info(ctx, "database migrations applied", zap.Int("statements", len(Migrations)))
	return nil
}
