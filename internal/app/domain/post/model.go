// Package post defines the content record behind the feed projection and
// search.
package post

import (
	"time"

	"github.com/thefreed/feedcore/internal/app/domain/feed"
)

// Post is an authored piece of content. The content store owns these; the
// feed only ever sees the Item projection.
type Post struct {
	ID         string          `json:"id"`
	AuthorID   string          `json:"authorId"`
	Content    string          `json:"content"`
	Language   string          `json:"lang,omitempty"`
	Hashtags   []string        `json:"hashtags,omitempty"`
	Visibility feed.Visibility `json:"visibility"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// Item returns the feed projection of the post.
func (p Post) Item() feed.Item {
	return feed.Item{
		PostRef:    p.ID,
		AuthorID:   p.AuthorID,
		CreatedAt:  p.CreatedAt,
		Visibility: p.Visibility,
	}
}
