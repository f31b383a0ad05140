package models

// Role tags the author of a Message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one utterance in a conversation with a suspect.
type Message struct {
	Role    Role   `json:"role"    db:"role"`
	Content string `json:"content" db:"content"`
}
