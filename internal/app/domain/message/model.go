// Package message defines the direct-message record owned by a
// conversation's ledger.
package message

import "time"

// Status is the delivery state of a message. Transitions are forward-only:
// sent -> delivered -> read.
type Status string

const (
	StatusSent      Status = "sent"
	StatusDelivered Status = "delivered"
	StatusRead      Status = "read"
)

// MaxContentLength is the maximum message body length, counted in runes.
const MaxContentLength = 2000

// Message is an entry in a conversation ledger. Records are append-only:
// after creation only Status and ReadAt may change, and only forward.
// ReadAt is set exactly once.
type Message struct {
	ID             string     `json:"id"`
	ConversationID string     `json:"conversationId"`
	SenderID       string     `json:"senderId"`
	RecipientID    string     `json:"recipientId"`
	Content        string     `json:"content"`
	Status         Status     `json:"status"`
	CreatedAt      time.Time  `json:"createdAt"`
	ReadAt         *time.Time `json:"readAt"`
}

// CanAdvanceTo reports whether the status may move forward to next.
func (s Status) CanAdvanceTo(next Status) bool {
	return rank(next) > rank(s)
}

func rank(s Status) int {
	switch s {
	case StatusSent:
		return 0
	case StatusDelivered:
		return 1
	case StatusRead:
		return 2
	}
	return -1
}
