package storage

import (
	"context"
	"time"

	"github.com/thefreed/feedcore/internal/app/domain/conversation"
	"github.com/thefreed/feedcore/internal/app/domain/feed"
	"github.com/thefreed/feedcore/internal/app/domain/message"
	"github.com/thefreed/feedcore/internal/app/domain/post"
	"github.com/thefreed/feedcore/internal/app/domain/profile"
)

// ConversationStore owns conversation records and the pair index.
type ConversationStore interface {
	// EnsureConversation returns the single conversation for the unordered
	// pair (a, b), creating it atomically on first contact. The boolean
	// reports whether this call created it. Implementations must guarantee
	// exactly one conversation per pair even under concurrent first-contact
	// calls.
	EnsureConversation(ctx context.Context, a, b string) (conversation.Conversation, bool, error)
	GetConversation(ctx context.Context, id string) (conversation.Conversation, error)
}

// MessageStore owns each conversation's append-only message ledger.
type MessageStore interface {
	// AppendMessage assigns a fresh id and creation timestamp and appends
	// the message to its conversation's ledger. All-or-nothing; the append
	// is visible to subsequent reads immediately.
	AppendMessage(ctx context.Context, msg message.Message) (message.Message, error)
	// ListMessages returns a snapshot of the conversation's ledger in
	// append order.
	ListMessages(ctx context.Context, conversationID string) ([]message.Message, error)
	// MarkRead stamps every unread message addressed to readerID with at
	// and advances its status to read, returning the number updated.
	MarkRead(ctx context.Context, conversationID, readerID string, at time.Time) (int, error)
}

// RelationshipStore is the following-set collaborator consumed by the feed
// assembler.
type RelationshipStore interface {
	FetchFollowing(ctx context.Context, subject string) ([]string, error)
	Follow(ctx context.Context, follower, followee string) error
}

// ContentStore is the content collaborator behind the feed projection and
// search.
type ContentStore interface {
	CreatePost(ctx context.Context, p post.Post) (post.Post, error)
	ListPosts(ctx context.Context) ([]post.Post, error)
	// FetchCandidates returns up to limit feed items authored by authorIDs,
	// visibility-filtered, ordered descending by creation time, starting
	// strictly after the cursor.
	FetchCandidates(ctx context.Context, authorIDs []string, limit int, cursor string) ([]feed.Item, error)
}

// ProfileStore persists user profiles for search.
type ProfileStore interface {
	CreateProfile(ctx context.Context, p profile.Profile) (profile.Profile, error)
	GetProfile(ctx context.Context, id string) (profile.Profile, error)
	ListProfiles(ctx context.Context) ([]profile.Profile, error)
}
