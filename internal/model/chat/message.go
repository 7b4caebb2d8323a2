package chat

import "time"

// Message is a single immutable turn in the transcript.
type Message struct {
	ID        string    `json:"id"`
	SenderID  string    `json:"senderId"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Participant is one side of the conversation.
type Participant struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl"`
}

// Fixed participant identifiers. Every session has exactly these two.
const (
	UserID  = "user"
	AgentID = "agent"
)
