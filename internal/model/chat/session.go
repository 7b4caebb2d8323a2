package chat

import "time"

// Session captures a browser conversation bound to the configured persona.
type Session struct {
	ID        string      `json:"id"`
	User      Participant `json:"user"`
	Agent     Participant `json:"agent"`
	CreatedAt time.Time   `json:"createdAt"`
}
