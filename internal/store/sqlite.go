package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serialises writers.
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err = store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) Close(context.Context) error {
	return s.db.Close()
}

// No foreign keys: a dangling reference surfaces as a lookup that finds
// nothing.
func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS users (
        id TEXT PRIMARY KEY, -- UUID
        name TEXT NOT NULL,
        email TEXT UNIQUE NOT NULL,
        avatar_url TEXT
    );

    CREATE TABLE IF NOT EXISTS projects (
        id TEXT PRIMARY KEY, -- UUID
        user_id TEXT NOT NULL,
        name TEXT NOT NULL,
        description TEXT
    );

    CREATE TABLE IF NOT EXISTS chats (
        id TEXT PRIMARY KEY, -- UUID
        project_id TEXT NOT NULL,
        title TEXT NOT NULL
    );

    CREATE TABLE IF NOT EXISTS messages (
        id TEXT PRIMARY KEY, -- UUID
        chat_id TEXT NOT NULL,
        role TEXT NOT NULL,
        content TEXT NOT NULL,
        created_at DATETIME
    );

    CREATE INDEX IF NOT EXISTS idx_project_user_id ON projects (user_id);
    CREATE INDEX IF NOT EXISTS idx_chat_project_id ON chats (project_id);
    CREATE INDEX IF NOT EXISTS idx_message_chat_id ON messages (chat_id);
    `
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// User methods
func (s *SQLiteStore) UpsertUserByEmail(ctx context.Context, user User) (UserID, error) {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO users (id, name, email, avatar_url) VALUES (?, ?, ?, ?)
        ON CONFLICT (email) DO UPDATE SET name = excluded.name, avatar_url = excluded.avatar_url`,
		uuid.NewString(), user.Name, user.Email, nullString(user.AvatarURL))
	if err != nil {
		return "", fmt.Errorf("failed to upsert user: %w", err)
	}

	var id string
	if err := s.db.QueryRowContext(ctx, "SELECT id FROM users WHERE email = ?", user.Email).Scan(&id); err != nil {
		return "", fmt.Errorf("failed to read upserted user: %w", err)
	}
	return UserID(id), nil
}

func (s *SQLiteStore) GetUser(ctx context.Context, id UserID) (*User, error) {
	var user User
	var avatarURL sql.NullString
	err := s.db.QueryRowContext(ctx, "SELECT id, name, email, avatar_url FROM users WHERE id = ?", string(id)).Scan(&user.ID, &user.Name, &user.Email, &avatarURL)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // User not found
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	if avatarURL.Valid {
		user.AvatarURL = &avatarURL.String
	}
	return &user, nil
}

// Project methods
func (s *SQLiteStore) CreateProject(ctx context.Context, project Project) (ProjectID, error) {
	id := uuid.NewString()
	stmt, err := s.db.PrepareContext(ctx, "INSERT INTO projects (id, user_id, name, description) VALUES (?, ?, ?, ?)")
	if err != nil {
		return "", fmt.Errorf("failed to prepare project insert: %w", err)
	}
	defer stmt.Close()

	if _, err = stmt.ExecContext(ctx, id, string(project.UserID), project.Name, nullString(project.Description)); err != nil {
		return "", fmt.Errorf("failed to execute project insert: %w", err)
	}
	return ProjectID(id), nil
}

func (s *SQLiteStore) GetProject(ctx context.Context, id ProjectID) (*Project, error) {
	row := s.db.QueryRowContext(ctx, "SELECT id, user_id, name, description FROM projects WHERE id = ?", string(id))
	project, err := scanProject(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return project, nil
}

func (s *SQLiteStore) ListProjectsByUser(ctx context.Context, userID UserID) ([]Project, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, user_id, name, description FROM projects WHERE user_id = ? ORDER BY rowid ASC", string(userID))
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	projects := make([]Project, 0)
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project row: %w", err)
		}
		projects = append(projects, *project)
	}
	return projects, rows.Err()
}

// Chat methods
func (s *SQLiteStore) CreateChat(ctx context.Context, chat Chat) (ChatID, error) {
	id := uuid.NewString()
	stmt, err := s.db.PrepareContext(ctx, "INSERT INTO chats (id, project_id, title) VALUES (?, ?, ?)")
	if err != nil {
		return "", fmt.Errorf("failed to prepare chat insert: %w", err)
	}
	defer stmt.Close()

	if _, err = stmt.ExecContext(ctx, id, string(chat.ProjectID), chat.Title); err != nil {
		return "", fmt.Errorf("failed to execute chat insert: %w", err)
	}
	return ChatID(id), nil
}

func (s *SQLiteStore) GetChat(ctx context.Context, id ChatID) (*Chat, error) {
	var chat Chat
	err := s.db.QueryRowContext(ctx, "SELECT id, project_id, title FROM chats WHERE id = ?", string(id)).Scan(&chat.ID, &chat.ProjectID, &chat.Title)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get chat: %w", err)
	}
	return &chat, nil
}

func (s *SQLiteStore) ListChatsByProject(ctx context.Context, projectID ProjectID) ([]Chat, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, project_id, title FROM chats WHERE project_id = ? ORDER BY rowid ASC", string(projectID))
	if err != nil {
		return nil, fmt.Errorf("failed to query chats: %w", err)
	}
	defer rows.Close()

	chats := make([]Chat, 0)
	for rows.Next() {
		var chat Chat
		if err := rows.Scan(&chat.ID, &chat.ProjectID, &chat.Title); err != nil {
			return nil, fmt.Errorf("failed to scan chat row: %w", err)
		}
		chats = append(chats, chat)
	}
	return chats, rows.Err()
}

// Message methods
func (s *SQLiteStore) CreateMessage(ctx context.Context, msg Message) (MessageID, error) {
	id := uuid.NewString()
	createdAt := time.Now().UTC()
	if msg.CreatedAt != nil {
		createdAt = msg.CreatedAt.UTC()
	}

	stmt, err := s.db.PrepareContext(ctx, "INSERT INTO messages (id, chat_id, role, content, created_at) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return "", fmt.Errorf("failed to prepare message insert: %w", err)
	}
	defer stmt.Close()

	if _, err = stmt.ExecContext(ctx, id, string(msg.ChatID), msg.Role, msg.Content, createdAt); err != nil {
		return "", fmt.Errorf("failed to execute message insert: %w", err)
	}
	return MessageID(id), nil
}

func (s *SQLiteStore) ListMessagesByChat(ctx context.Context, chatID ChatID) ([]Message, error) {
	query := "SELECT id, chat_id, role, content, created_at FROM messages WHERE chat_id = ? ORDER BY rowid ASC"
	rows, err := s.db.QueryContext(ctx, query, string(chatID))
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	messages := make([]Message, 0)
	for rows.Next() {
		var msg Message
		var createdAt sql.NullTime
		if err := rows.Scan(&msg.ID, &msg.ChatID, &msg.Role, &msg.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		if createdAt.Valid {
			t := createdAt.Time.UTC()
			msg.CreatedAt = &t
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

func (s *SQLiteStore) Info(ctx context.Context) (Info, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		return Info{}, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	info := Info{Driver: DriverSQLite, Name: "main"}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return Info{}, fmt.Errorf("failed to scan table name: %w", err)
		}
		info.Collections = append(info.Collections, name)
	}
	return info, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*Project, error) {
	var project Project
	var description sql.NullString
	if err := row.Scan(&project.ID, &project.UserID, &project.Name, &description); err != nil {
		return nil, err
	}
	if description.Valid {
		project.Description = &description.String
	}
	return &project, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
