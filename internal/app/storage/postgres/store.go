// Package postgres implements the durable conversation and message stores
// backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/thefreed/feedcore/internal/app/domain/conversation"
	"github.com/thefreed/feedcore/internal/app/domain/message"
	"github.com/thefreed/feedcore/internal/app/storage"
	"github.com/thefreed/feedcore/internal/apperrors"
)

// Store implements ConversationStore and MessageStore on a PostgreSQL
// database handle.
type Store struct {
	db *sql.DB
}

var _ storage.ConversationStore = (*Store)(nil)
var _ storage.MessageStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// --- ConversationStore ---------------------------------------------------

func (s *Store) EnsureConversation(ctx context.Context, a, b string) (conversation.Conversation, bool, error) {
	lo, hi := conversation.SortPair(a, b)
	key := conversation.PairKey(a, b)

	// Insert-if-absent on the pair key; the unique constraint arbitrates
	// concurrent first contact and the reselect observes the winner.
	id := uuid.NewString()
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO dm_conversations (id, pair_key, participant_a, participant_b, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (pair_key) DO NOTHING
	`, id, key, lo, hi, now)
	if err != nil {
		return conversation.Conversation{}, false, err
	}

	created := false
	if rows, err := res.RowsAffected(); err == nil && rows == 1 {
		created = true
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, participant_a, participant_b, created_at
		FROM dm_conversations
		WHERE pair_key = $1
	`, key)

	conv, err := scanConversation(row)
	if err != nil {
		return conversation.Conversation{}, false, err
	}
	return conv, created, nil
}

func (s *Store) GetConversation(ctx context.Context, id string) (conversation.Conversation, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, participant_a, participant_b, created_at
		FROM dm_conversations
		WHERE id = $1
	`, id)

	conv, err := scanConversation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return conversation.Conversation{}, apperrors.NewNotFoundError("conversation", id)
	}
	return conv, err
}

// --- MessageStore --------------------------------------------------------

func (s *Store) AppendMessage(ctx context.Context, msg message.Message) (message.Message, error) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	msg.CreatedAt = time.Now().UTC()
	if msg.Status == "" {
		msg.Status = message.StatusSent
	}
	msg.ReadAt = nil

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO dm_messages (id, conversation_id, sender_id, recipient_id, content, status, created_at, read_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULL)
	`, msg.ID, msg.ConversationID, msg.SenderID, msg.RecipientID, msg.Content, string(msg.Status), msg.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "foreign_key_violation" {
			return message.Message{}, apperrors.NewNotFoundError("conversation", msg.ConversationID)
		}
		return message.Message{}, err
	}
	return msg, nil
}

func (s *Store) ListMessages(ctx context.Context, conversationID string) ([]message.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, conversation_id, sender_id, recipient_id, content, status, created_at, read_at
		FROM dm_messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC, id ASC
	`, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]message.Message, 0)
	for rows.Next() {
		var (
			msg    message.Message
			status string
			readAt sql.NullTime
		)
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.SenderID, &msg.RecipientID,
			&msg.Content, &status, &msg.CreatedAt, &readAt); err != nil {
			return nil, err
		}
		msg.Status = message.Status(status)
		if readAt.Valid {
			at := readAt.Time.UTC()
			msg.ReadAt = &at
		}
		result = append(result, msg)
	}
	return result, rows.Err()
}

func (s *Store) MarkRead(ctx context.Context, conversationID, readerID string, at time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE dm_messages
		SET read_at = $3, status = $4
		WHERE conversation_id = $1 AND recipient_id = $2 AND read_at IS NULL
	`, conversationID, readerID, at.UTC(), string(message.StatusRead))
	if err != nil {
		return 0, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(rows), nil
}

func scanConversation(row *sql.Row) (conversation.Conversation, error) {
	var (
		conv conversation.Conversation
		a, b string
	)
	if err := row.Scan(&conv.ID, &a, &b, &conv.CreatedAt); err != nil {
		return conversation.Conversation{}, err
	}
	conv.Participants = []string{a, b}
	conv.CreatedAt = conv.CreatedAt.UTC()
	return conv, nil
}
