package models

import "time"

// Role of a conversation message.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Conversation struct {
	ID              int64     `json:"id" db:"id"`
	Title           string    `json:"title" db:"title"`
	Language        string    `json:"language" db:"language"`
	DifficultyLevel string    `json:"difficulty_level" db:"difficulty_level"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

type Message struct {
	ID             int64     `json:"id" db:"id"`
	ConversationID int64     `json:"conversation_id" db:"conversation_id"`
	Role           string    `json:"role" db:"role"`
	Content        string    `json:"content" db:"content"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}
