package entity

// Principal is the identity-provider view of an actor: an opaque id plus
// the display profile the chat core denormalizes onto conversations.
type Principal struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Type        string `json:"type"` // "CUSTOMER", "STORE", "COURIER", "SUPPORT"
}
