package domain

import "time"

// Message content types.
const (
	ContentTypeText  = "text"
	ContentTypeFile  = "file"
	ContentTypeEmoji = "emoji"
)

// ValidContentType reports whether t is a known message content type.
func ValidContentType(t string) bool {
	switch t {
	case ContentTypeText, ContentTypeFile, ContentTypeEmoji:
		return true
	}
	return false
}

// Message is a room message. Immutable once persisted. Sender name and
// email are denormalized into the record so history reads need no join.
type Message struct {
	ID          string    `json:"id"`
	RoomID      string    `json:"room_id"`
	SenderID    string    `json:"sender_id"`
	SenderName  string    `json:"sender_name"`
	SenderEmail string    `json:"sender_email,omitempty"`
	Content     string    `json:"content"`
	ContentType string    `json:"content_type"`
	CreatedAt   time.Time `json:"created_at"`
}

// DirectMessage is a point-to-point message between two identities,
// persisted regardless of the recipient's online status. Read is the only
// field the core ever mutates, flipped when the recipient opens the
// conversation.
type DirectMessage struct {
	ID          string    `json:"id"`
	SenderID    string    `json:"sender_id"`
	SenderName  string    `json:"sender_name"`
	RecipientID string    `json:"recipient_id"`
	Content     string    `json:"content"`
	ContentType string    `json:"content_type"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"created_at"`
}
