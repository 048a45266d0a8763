package entity

import "time"

const (
	StatusActive  = "ACTIVE"
	StatusClosed  = "CLOSED"
	StatusDeleted = "DELETED"
)

const (
	PrincipalCustomer = "CUSTOMER"
	PrincipalStore    = "STORE"
	PrincipalCourier  = "COURIER"
	PrincipalSupport  = "SUPPORT"
)

// Participant is the denormalized profile of a principal inside a
// conversation. DisplayName and Type are resolved once at creation time
// and cached on the document from then on.
type Participant struct {
	PrincipalID string    `json:"principal_id" firestore:"principalId"`
	DisplayName string    `json:"display_name" firestore:"displayName"`
	Type        string    `json:"type" firestore:"type"` // "CUSTOMER", "STORE", "COURIER", "SUPPORT"
	UnreadCount int64     `json:"unread_count" firestore:"unreadCount"`
	LastReadAt  time.Time `json:"last_read_at" firestore:"lastReadAt"`
}

type Conversation struct {
	ID             string                  `json:"id" firestore:"id"`
	Kind           string                  `json:"kind" firestore:"kind"` // "DIRECT", "SUPPORT", "DISPATCH"
	ParticipantIDs []string                `json:"participant_ids" firestore:"participantIds"`
	Participants   map[string]*Participant `json:"participants" firestore:"participants"` // keyed by principal ID
	// UnreadFor lists every principal with unreadCount > 0. It exists so the
	// hot "has unread?" query is a single array-contains with Limit(1) and is
	// maintained in the same document update as the counters.
	UnreadFor       []string               `json:"-" firestore:"unreadFor"`
	Status          string                 `json:"status" firestore:"status"` // "ACTIVE", "CLOSED", "DELETED"
	LastMessageID   string                 `json:"last_message_id,omitempty" firestore:"lastMessageId,omitempty"`
	LastMessageBody string                 `json:"last_message_body,omitempty" firestore:"lastMessageBody,omitempty"`
	LastMessageAt   time.Time              `json:"last_message_at" firestore:"lastMessageAt"`
	Metadata        map[string]interface{} `json:"metadata,omitempty" firestore:"metadata,omitempty"`
	CreatedAt       time.Time              `json:"created_at" firestore:"createdAt"`
	UpdatedAt       time.Time              `json:"updated_at" firestore:"updatedAt"`
}

func (c *Conversation) IsParticipant(principalID string) bool {
	for _, id := range c.ParticipantIDs {
		if id == principalID {
			return true
		}
	}
	return false
}

func (c *Conversation) UnreadCountFor(principalID string) int64 {
	if p, ok := c.Participants[principalID]; ok {
		return p.UnreadCount
	}
	return 0
}

var statusRank = map[string]int{
	StatusActive:  0,
	StatusClosed:  1,
	StatusDeleted: 2,
}

// CanTransitionTo enforces the one-way ACTIVE -> CLOSED -> DELETED lifecycle.
func (c *Conversation) CanTransitionTo(status string) bool {
	from, ok := statusRank[c.Status]
	if !ok {
		return false
	}
	to, ok := statusRank[status]
	if !ok {
		return false
	}
	return to > from
}
