// Package feed defines the read-only feed projection served to clients.
package feed

import "time"

// Mode names a feed ordering strategy. Only chronological ordering exists.
const ModeChronological = "chronological"

// Visibility of a post within the feed.
type Visibility string

const (
	VisibilityPublic    Visibility = "public"
	VisibilityFollowers Visibility = "followers"
	VisibilityPrivate   Visibility = "private"
)

// Item is a projection supplied by the content collaborator. The core never
// mutates items.
type Item struct {
	PostRef    string     `json:"postRef"`
	AuthorID   string     `json:"authorId"`
	CreatedAt  time.Time  `json:"createdAt"`
	Visibility Visibility `json:"visibility"`
}

// Page is one assembled window of a subject's feed.
type Page struct {
	Items      []Item `json:"items"`
	NextCursor string `json:"nextCursor,omitempty"`
	HasMore    bool   `json:"hasMore"`
	Mode       string `json:"mode"`
}
