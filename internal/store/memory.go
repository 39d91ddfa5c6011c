package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps every collection in-process. Lists are returned in
// insertion order.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[UserID]User
	byEmail  map[string]UserID
	projects []Project
	chats    []Chat
	messages []Message
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:   make(map[UserID]User),
		byEmail: make(map[string]UserID),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (m *MemoryStore) ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (m *MemoryStore) UpsertUserByEmail(_ context.Context, user User) (UserID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.byEmail[user.Email]; ok {
		existing := m.users[id]
		existing.Name = user.Name
		existing.AvatarURL = user.AvatarURL
		m.users[id] = existing
		return id, nil
	}
	user.ID = UserID(uuid.NewString())
	m.users[user.ID] = user
	m.byEmail[user.Email] = user.ID
	return user.ID, nil
}

func (m *MemoryStore) GetUser(_ context.Context, id UserID) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if u, ok := m.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (m *MemoryStore) CreateProject(_ context.Context, project Project) (ProjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	project.ID = ProjectID(uuid.NewString())
	m.projects = append(m.projects, project)
	return project.ID, nil
}

func (m *MemoryStore) GetProject(_ context.Context, id ProjectID) (*Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.projects {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, nil
}

func (m *MemoryStore) ListProjectsByUser(_ context.Context, userID UserID) ([]Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]Project, 0)
	for _, p := range m.projects {
		if p.UserID == userID {
			res = append(res, p)
		}
	}
	return res, nil
}

func (m *MemoryStore) CreateChat(_ context.Context, chat Chat) (ChatID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	chat.ID = ChatID(uuid.NewString())
	m.chats = append(m.chats, chat)
	return chat.ID, nil
}

func (m *MemoryStore) GetChat(_ context.Context, id ChatID) (*Chat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.chats {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, nil
}

func (m *MemoryStore) ListChatsByProject(_ context.Context, projectID ProjectID) ([]Chat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]Chat, 0)
	for _, c := range m.chats {
		if c.ProjectID == projectID {
			res = append(res, c)
		}
	}
	return res, nil
}

func (m *MemoryStore) CreateMessage(_ context.Context, msg Message) (MessageID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg.ID = MessageID(uuid.NewString())
	if msg.CreatedAt == nil {
		now := m.now()
		msg.CreatedAt = &now
	}
	m.messages = append(m.messages, msg)
	return msg.ID, nil
}

func (m *MemoryStore) ListMessagesByChat(_ context.Context, chatID ChatID) ([]Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]Message, 0)
	for _, msg := range m.messages {
		if msg.ChatID == chatID {
			res = append(res, msg)
		}
	}
	return res, nil
}

func (m *MemoryStore) Info(_ context.Context) (Info, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var collections []string
	if len(m.users) > 0 {
		collections = append(collections, CollectionUsers)
	}
	if len(m.projects) > 0 {
		collections = append(collections, CollectionProjects)
	}
	if len(m.chats) > 0 {
		collections = append(collections, CollectionChats)
	}
	if len(m.messages) > 0 {
		collections = append(collections, CollectionMessages)
	}
	sort.Strings(collections)
	return Info{Driver: DriverMemory, Name: "memory", Collections: collections}, nil
}

func (m *MemoryStore) Close(context.Context) error { return nil }
