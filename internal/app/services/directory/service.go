// Package directory manages the one-conversation-per-pair directory.
package directory

import (
	"context"
	"strings"

	"github.com/thefreed/feedcore/internal/app/domain/conversation"
	"github.com/thefreed/feedcore/internal/app/metrics"
	"github.com/thefreed/feedcore/internal/app/storage"
	"github.com/thefreed/feedcore/internal/apperrors"
	"github.com/thefreed/feedcore/pkg/logger"
)

// Service resolves participant pairs to their single conversation.
type Service struct {
	store storage.ConversationStore
	log   *logger.Logger
}

// New constructs a directory service.
func New(store storage.ConversationStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("directory")
	}
	return &Service{store: store, log: log}
}

// Ensure returns the conversation for the unordered pair (a, b), creating it
// on first contact. The boolean reports whether this call created it.
func (s *Service) Ensure(ctx context.Context, a, b string) (conversation.Conversation, bool, error) {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if a == "" || b == "" {
		return conversation.Conversation{}, false, apperrors.RequiredError("participant")
	}
	if a == b {
		return conversation.Conversation{}, false, apperrors.NewValidationError("participant", "cannot converse with self")
	}

	conv, created, err := s.store.EnsureConversation(ctx, a, b)
	if err != nil {
		return conversation.Conversation{}, false, err
	}
	if created {
		metrics.RecordConversationCreated()
		s.log.WithField("conversation_id", conv.ID).
			WithField("pair", conversation.PairKey(a, b)).
			Info("conversation created")
	}
	return conv, created, nil
}

// Get fetches a conversation by id.
func (s *Service) Get(ctx context.Context, id string) (conversation.Conversation, error) {
	if strings.TrimSpace(id) == "" {
		return conversation.Conversation{}, apperrors.RequiredError("conversation_id")
	}
	return s.store.GetConversation(ctx, id)
}
