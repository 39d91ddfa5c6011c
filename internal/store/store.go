package store

import (
	"context"
	"fmt"
)

// Collection names shared by every backend.
const (
	CollectionUsers    = "user"
	CollectionProjects = "project"
	CollectionChats    = "chat"
	CollectionMessages = "message"
)

// Store is the document store used by the services. Point lookups return
// (nil, nil) when no record matches; errors are reserved for transport and
// driver failures.
type Store interface {
	// ValidID reports whether id is well formed for this backend.
	ValidID(id string) bool

	UpsertUserByEmail(ctx context.Context, user User) (UserID, error)
	GetUser(ctx context.Context, id UserID) (*User, error)

	CreateProject(ctx context.Context, project Project) (ProjectID, error)
	GetProject(ctx context.Context, id ProjectID) (*Project, error)
	ListProjectsByUser(ctx context.Context, userID UserID) ([]Project, error)

	CreateChat(ctx context.Context, chat Chat) (ChatID, error)
	GetChat(ctx context.Context, id ChatID) (*Chat, error)
	ListChatsByProject(ctx context.Context, projectID ProjectID) ([]Chat, error)

	CreateMessage(ctx context.Context, msg Message) (MessageID, error)
	ListMessagesByChat(ctx context.Context, chatID ChatID) ([]Message, error)

	Info(ctx context.Context) (Info, error)
	Close(ctx context.Context) error
}

// Drivers accepted by Open.
const (
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Open connects to the backend named by driver.
func Open(ctx context.Context, driver, url, dbName string) (Store, error) {
	switch driver {
	case DriverMongo:
		if url == "" {
			return nil, fmt.Errorf("mongo store requires DATABASE_URL")
		}
		s, err := NewMongoStore(ctx, url, dbName)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverSQLite:
		if url == "" {
			return nil, fmt.Errorf("sqlite store requires DATABASE_URL")
		}
		s, err := NewSQLiteStore(url)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}
