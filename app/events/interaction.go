// Package events holds payload pieces shared by every event family.
package events

// Interaction identifies a deferred slash command response that a later
// event edits with the command's result.
type Interaction struct {
	ApplicationID string `json:"application_id"`
	Token         string `json:"token"`
}

// Valid reports whether the interaction can still be answered.
func (i *Interaction) Valid() bool {
	return i != nil && i.ApplicationID != "" && i.Token != ""
}
