package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// migrations are applied in order by Apply. Statements must be idempotent.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS dm_conversations (
		id            TEXT PRIMARY KEY,
		pair_key      TEXT NOT NULL UNIQUE,
		participant_a TEXT NOT NULL,
		participant_b TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS dm_messages (
		id              TEXT PRIMARY KEY,
		conversation_id TEXT NOT NULL REFERENCES dm_conversations(id),
		sender_id       TEXT NOT NULL,
		recipient_id    TEXT NOT NULL,
		content         TEXT NOT NULL,
		status          TEXT NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL,
		read_at         TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_dm_messages_conversation
		ON dm_messages (conversation_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_dm_messages_unread
		ON dm_messages (conversation_id, recipient_id) WHERE read_at IS NULL`,
}

// Apply runs the embedded schema migrations against db.
func Apply(ctx context.Context, db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration %d: %w", i+1, err)
		}
	}
	return nil
}
