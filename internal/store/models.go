package store

import "time"

// Identifiers are opaque strings in the backend's native format. Distinct
// types keep a chat id from being passed where a project id is expected.
type (
	UserID    string
	ProjectID string
	ChatID    string
	MessageID string
)

type User struct {
	ID        UserID  `json:"_id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	AvatarURL *string `json:"avatar_url"`
}

// Project.UserID is a caller-supplied owner key and is not checked against
// the users collection.
type Project struct {
	ID          ProjectID `json:"_id"`
	UserID      UserID    `json:"user_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
}

type Chat struct {
	ID        ChatID    `json:"_id"`
	ProjectID ProjectID `json:"project_id"`
	Title     string    `json:"title"`
}

type Message struct {
	ID        MessageID  `json:"_id"`
	ChatID    ChatID     `json:"chat_id"`
	Role      string     `json:"role"` // "user" or "assistant", not enforced
	Content   string     `json:"content"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Info describes the backing database for the diagnostic endpoint.
type Info struct {
	Driver      string
	Name        string
	Collections []string
}
