package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/thefreed/feedcore/internal/app/domain/conversation"
	"github.com/thefreed/feedcore/internal/app/domain/feed"
	"github.com/thefreed/feedcore/internal/app/domain/message"
	"github.com/thefreed/feedcore/internal/app/domain/post"
	"github.com/thefreed/feedcore/internal/app/domain/profile"
	"github.com/thefreed/feedcore/internal/app/pagination"
	"github.com/thefreed/feedcore/internal/app/storage"
	"github.com/thefreed/feedcore/internal/apperrors"
)

// Store is an in-memory implementation of the storage interfaces. It is safe
// for concurrent use and backs both tests and single-node deployments.
type Store struct {
	mu            sync.RWMutex
	conversations map[string]conversation.Conversation
	pairIndex     map[string]string
	messages      map[string][]message.Message
	follows       map[string]map[string]struct{}
	posts         map[string]post.Post
	profiles      map[string]profile.Profile
}

var _ storage.ConversationStore = (*Store)(nil)
var _ storage.MessageStore = (*Store)(nil)
var _ storage.RelationshipStore = (*Store)(nil)
var _ storage.ContentStore = (*Store)(nil)
var _ storage.ProfileStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		conversations: make(map[string]conversation.Conversation),
		pairIndex:     make(map[string]string),
		messages:      make(map[string][]message.Message),
		follows:       make(map[string]map[string]struct{}),
		posts:         make(map[string]post.Post),
		profiles:      make(map[string]profile.Profile),
	}
}

// ConversationStore implementation ---------------------------------------

func (s *Store) EnsureConversation(_ context.Context, a, b string) (conversation.Conversation, bool, error) {
	key := conversation.PairKey(a, b)

	// The whole check-then-create runs under one lock so concurrent
	// first-contact calls for the same pair observe exactly one creation.
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.pairIndex[key]; ok {
		return cloneConversation(s.conversations[id]), false, nil
	}

	lo, hi := conversation.SortPair(a, b)
	conv := conversation.Conversation{
		ID:           uuid.NewString(),
		Participants: []string{lo, hi},
		CreatedAt:    time.Now().UTC(),
	}
	s.pairIndex[key] = conv.ID
	s.conversations[conv.ID] = conv
	s.messages[conv.ID] = nil
	return cloneConversation(conv), true, nil
}

func (s *Store) GetConversation(_ context.Context, id string) (conversation.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.conversations[id]
	if !ok {
		return conversation.Conversation{}, apperrors.NewNotFoundError("conversation", id)
	}
	return cloneConversation(conv), nil
}

// MessageStore implementation --------------------------------------------

func (s *Store) AppendMessage(_ context.Context, msg message.Message) (message.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.conversations[msg.ConversationID]; !ok {
		return message.Message{}, apperrors.NewNotFoundError("conversation", msg.ConversationID)
	}

	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	msg.CreatedAt = time.Now().UTC()
	if msg.Status == "" {
		msg.Status = message.StatusSent
	}
	msg.ReadAt = nil

	s.messages[msg.ConversationID] = append(s.messages[msg.ConversationID], msg)
	return cloneMessage(msg), nil
}

func (s *Store) ListMessages(_ context.Context, conversationID string) ([]message.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ledger := s.messages[conversationID]
	result := make([]message.Message, 0, len(ledger))
	for _, msg := range ledger {
		result = append(result, cloneMessage(msg))
	}
	return result, nil
}

func (s *Store) MarkRead(_ context.Context, conversationID, readerID string, at time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	at = at.UTC()
	count := 0
	ledger := s.messages[conversationID]
	for i := range ledger {
		if ledger[i].RecipientID != readerID || !ledger[i].Status.CanAdvanceTo(message.StatusRead) {
			continue
		}
		stamp := at
		ledger[i].ReadAt = &stamp
		ledger[i].Status = message.StatusRead
		count++
	}
	return count, nil
}

// RelationshipStore implementation ---------------------------------------

func (s *Store) FetchFollowing(_ context.Context, subject string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set := s.follows[subject]
	result := make([]string, 0, len(set))
	for followee := range set {
		result = append(result, followee)
	}
	sort.Strings(result)
	return result, nil
}

func (s *Store) Follow(_ context.Context, follower, followee string) error {
	if follower == "" || followee == "" {
		return apperrors.RequiredError("identity")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.follows[follower] == nil {
		s.follows[follower] = make(map[string]struct{})
	}
	s.follows[follower][followee] = struct{}{}
	return nil
}

// ContentStore implementation --------------------------------------------

func (s *Store) CreatePost(_ context.Context, p post.Post) (post.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if p.Visibility == "" {
		p.Visibility = feed.VisibilityPublic
	}
	p.Hashtags = append([]string(nil), p.Hashtags...)

	s.posts[p.ID] = p
	return clonePost(p), nil
}

func (s *Store) ListPosts(_ context.Context) ([]post.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]post.Post, 0, len(s.posts))
	for _, p := range s.posts {
		result = append(result, clonePost(p))
	}
	return result, nil
}

func (s *Store) FetchCandidates(_ context.Context, authorIDs []string, limit int, cursor string) ([]feed.Item, error) {
	authors := make(map[string]struct{}, len(authorIDs))
	for _, id := range authorIDs {
		authors[id] = struct{}{}
	}

	s.mu.RLock()
	items := make([]feed.Item, 0)
	for _, p := range s.posts {
		if _, ok := authors[p.AuthorID]; !ok {
			continue
		}
		if p.Visibility != feed.VisibilityPublic && p.Visibility != feed.VisibilityFollowers {
			continue
		}
		items = append(items, p.Item())
	}
	s.mu.RUnlock()

	page, _ := pagination.Paginate(items, func(it feed.Item) string {
		return pagination.Token(it.CreatedAt, it.PostRef)
	}, limit, cursor)
	return page, nil
}

// ProfileStore implementation --------------------------------------------

func (s *Store) CreateProfile(_ context.Context, p profile.Profile) (profile.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	s.profiles[p.ID] = p
	return p, nil
}

func (s *Store) GetProfile(_ context.Context, id string) (profile.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[id]
	if !ok {
		return profile.Profile{}, apperrors.NewNotFoundError("profile", id)
	}
	return p, nil
}

func (s *Store) ListProfiles(_ context.Context) ([]profile.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]profile.Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Username < result[j].Username })
	return result, nil
}

// Helpers ----------------------------------------------------------------

func cloneConversation(conv conversation.Conversation) conversation.Conversation {
	conv.Participants = append([]string(nil), conv.Participants...)
	return conv
}

func cloneMessage(msg message.Message) message.Message {
	if msg.ReadAt != nil {
		at := *msg.ReadAt
		msg.ReadAt = &at
	}
	return msg
}

func clonePost(p post.Post) post.Post {
	p.Hashtags = append([]string(nil), p.Hashtags...)
	return p
}
