// Package conversation defines the 1:1 conversation record owned by the
// directory.
package conversation

import "time"

// Conversation is the canonical record for an unordered pair of identities.
// Participants are stored sorted so lookups are order-independent. A
// conversation is created on first contact and never deleted or merged.
type Conversation struct {
	ID           string    `json:"id"`
	Participants []string  `json:"participants"`
	CreatedAt    time.Time `json:"createdAt"`
}

// SortPair returns the two identities in canonical order.
func SortPair(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}

// PairKey derives the deterministic, order-independent directory key for a
// pair of identities.
func PairKey(a, b string) string {
	lo, hi := SortPair(a, b)
	return lo + "::" + hi
}

// Other returns the participant that is not id, or "" when id is not a
// participant.
func (c Conversation) Other(id string) string {
	for _, p := range c.Participants {
		if p != id {
			return p
		}
	}
	return ""
}

// Has reports whether id participates in the conversation.
func (c Conversation) Has(id string) bool {
	for _, p := range c.Participants {
		if p == id {
			return true
		}
	}
	return false
}
