package entity

import "time"

const (
	MessageText     = "TEXT"
	MessageImage    = "IMAGE"
	MessageFile     = "FILE"
	MessageSystem   = "SYSTEM"
	MessageLocation = "LOCATION"
)

// Attachment references bytes that live in blob storage. The core never
// stores the bytes themselves.
type Attachment struct {
	URL  string `json:"url" firestore:"url"`
	Kind string `json:"kind" firestore:"kind"`
	Name string `json:"name,omitempty" firestore:"name,omitempty"`
	Size int64  `json:"size,omitempty" firestore:"size,omitempty"`
}

type Message struct {
	ID             string       `json:"id" firestore:"id"`
	ConversationID string       `json:"conversation_id" firestore:"conversationId"`
	SenderID       string       `json:"sender_id" firestore:"senderId"`
	Body           string       `json:"body" firestore:"body"`
	Kind           string       `json:"kind" firestore:"kind"` // "TEXT", "IMAGE", "FILE", "SYSTEM", "LOCATION"
	Attachments    []Attachment `json:"attachments,omitempty" firestore:"attachments,omitempty"`
	// ReadBy maps principal ID to the time that principal read the message.
	// A map keeps read marking idempotent: writing the same key twice holds
	// one entry.
	ReadBy    map[string]time.Time `json:"read_by" firestore:"readBy"`
	CreatedAt time.Time            `json:"created_at" firestore:"createdAt"`
}

func (m *Message) ReadByPrincipal(principalID string) bool {
	_, ok := m.ReadBy[principalID]
	return ok
}
