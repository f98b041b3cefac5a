// Package messaging implements direct message delivery, listing and read
// receipts on top of the conversation directory.
package messaging

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/thefreed/feedcore/internal/app/domain/conversation"
	"github.com/thefreed/feedcore/internal/app/domain/message"
	"github.com/thefreed/feedcore/internal/app/metrics"
	"github.com/thefreed/feedcore/internal/app/pagination"
	"github.com/thefreed/feedcore/internal/app/services/directory"
	"github.com/thefreed/feedcore/internal/app/storage"
	"github.com/thefreed/feedcore/internal/apperrors"
	"github.com/thefreed/feedcore/pkg/logger"
)

// Sentinel validation errors surfaced to transport layers.
var (
	ErrEmptyContent   = apperrors.NewValidationError("content", "content is required")
	ErrContentTooLong = apperrors.NewValidationError("content", "content exceeds maximum length")
	ErrSelfAddressed  = apperrors.NewValidationError("recipient", "cannot message self")
)

// Service owns the direct message ledger operations. Conversations are
// resolved through the directory service so every entry point shares the
// one-conversation-per-pair guarantee.
type Service struct {
	directory *directory.Service
	messages  storage.MessageStore
	log       *logger.Logger
}

// New constructs a messaging service.
func New(dir *directory.Service, messages storage.MessageStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("messaging")
	}
	return &Service{directory: dir, messages: messages, log: log}
}

// Send validates and appends a direct message, resolving the pair's
// conversation first. Content length is counted in runes. The resolved
// conversation is returned alongside the stored message.
func (s *Service) Send(ctx context.Context, senderID, recipientID, content string) (conversation.Conversation, message.Message, error) {
	senderID = strings.TrimSpace(senderID)
	recipientID = strings.TrimSpace(recipientID)
	if senderID == "" {
		return conversation.Conversation{}, message.Message{}, apperrors.RequiredError("sender")
	}
	if recipientID == "" {
		return conversation.Conversation{}, message.Message{}, apperrors.RequiredError("recipient")
	}
	if senderID == recipientID {
		return conversation.Conversation{}, message.Message{}, ErrSelfAddressed
	}
	if content == "" {
		return conversation.Conversation{}, message.Message{}, ErrEmptyContent
	}
	if utf8.RuneCountInString(content) > message.MaxContentLength {
		return conversation.Conversation{}, message.Message{}, ErrContentTooLong
	}

	conv, _, err := s.directory.Ensure(ctx, senderID, recipientID)
	if err != nil {
		return conversation.Conversation{}, message.Message{}, err
	}

	msg, err := s.messages.AppendMessage(ctx, message.Message{
		ConversationID: conv.ID,
		SenderID:       senderID,
		RecipientID:    recipientID,
		Content:        content,
	})
	if err != nil {
		return conversation.Conversation{}, message.Message{}, err
	}

	metrics.RecordDirectMessage(string(msg.Status))
	s.log.WithField("conversation_id", conv.ID).
		WithField("message_id", msg.ID).
		Info("direct message sent")
	return conv, msg, nil
}

// List returns the conversation and a page of its messages, newest first,
// along with the cursor for the next page.
func (s *Service) List(ctx context.Context, conversationID string, limit int, cursor string) (conversation.Conversation, []message.Message, string, error) {
	conv, err := s.directory.Get(ctx, conversationID)
	if err != nil {
		return conversation.Conversation{}, nil, "", err
	}

	page, next, err := s.page(ctx, conv.ID, limit, cursor)
	if err != nil {
		return conversation.Conversation{}, nil, "", err
	}
	return conv, page, next, nil
}

// ListWith resolves the pair's conversation, creating it on first contact,
// and returns it with a page of its messages.
func (s *Service) ListWith(ctx context.Context, subjectID, otherID string, limit int, cursor string) (conversation.Conversation, []message.Message, string, error) {
	subjectID = strings.TrimSpace(subjectID)
	otherID = strings.TrimSpace(otherID)
	if subjectID != "" && subjectID == otherID {
		return conversation.Conversation{}, nil, "", ErrSelfAddressed
	}

	conv, _, err := s.directory.Ensure(ctx, subjectID, otherID)
	if err != nil {
		return conversation.Conversation{}, nil, "", err
	}

	page, next, err := s.page(ctx, conv.ID, limit, cursor)
	if err != nil {
		return conversation.Conversation{}, nil, "", err
	}
	return conv, page, next, nil
}

// MarkRead stamps every unread message addressed to readerID in the
// conversation, returning how many were updated and the receipt timestamp.
func (s *Service) MarkRead(ctx context.Context, conversationID, readerID string) (int, time.Time, error) {
	readerID = strings.TrimSpace(readerID)
	if readerID == "" {
		return 0, time.Time{}, apperrors.RequiredError("reader")
	}

	conv, err := s.directory.Get(ctx, conversationID)
	if err != nil {
		return 0, time.Time{}, err
	}
	if !conv.Has(readerID) {
		return 0, time.Time{}, apperrors.NewValidationError("reader", "not a participant of the conversation")
	}

	at := time.Now().UTC()
	count, err := s.messages.MarkRead(ctx, conversationID, readerID, at)
	if err != nil {
		return 0, time.Time{}, err
	}

	metrics.RecordMessagesRead(count)
	if count > 0 {
		s.log.WithField("conversation_id", conversationID).
			WithField("reader_id", readerID).
			WithField("peer_id", conv.Other(readerID)).
			WithField("count", count).
			Info("messages marked read")
	}
	return count, at, nil
}

func (s *Service) page(ctx context.Context, conversationID string, limit int, cursor string) ([]message.Message, string, error) {
	ledger, err := s.messages.ListMessages(ctx, conversationID)
	if err != nil {
		return nil, "", err
	}

	page, next := pagination.Paginate(ledger, func(msg message.Message) string {
		return pagination.Token(msg.CreatedAt, msg.ID)
	}, pagination.ClampLimit(limit), cursor)
	return page, next, nil
}
