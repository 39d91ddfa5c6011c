package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runStoreSuite exercises the behaviour every backend must share.
func runStoreSuite(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("upsert user by email", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		avatar := "https://example.com/a.png"
		first, err := s.UpsertUserByEmail(ctx, User{Name: "Ada", Email: "ada@example.com", AvatarURL: &avatar})
		require.NoError(t, err)
		require.True(t, s.ValidID(string(first)))

		second, err := s.UpsertUserByEmail(ctx, User{Name: "Ada L.", Email: "ada@example.com"})
		require.NoError(t, err)
		assert.Equal(t, first, second)

		got, err := s.GetUser(ctx, first)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "Ada L.", got.Name)
		assert.Equal(t, "ada@example.com", got.Email)
		assert.Nil(t, got.AvatarURL)

		other, err := s.UpsertUserByEmail(ctx, User{Name: "Bob", Email: "bob@example.com"})
		require.NoError(t, err)
		assert.NotEqual(t, first, other)
	})

	t.Run("projects", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		desc := "first"
		p1, err := s.CreateProject(ctx, Project{UserID: "u1", Name: "Demo", Description: &desc})
		require.NoError(t, err)
		p2, err := s.CreateProject(ctx, Project{UserID: "u1", Name: "Second"})
		require.NoError(t, err)
		_, err = s.CreateProject(ctx, Project{UserID: "u2", Name: "Theirs"})
		require.NoError(t, err)

		got, err := s.GetProject(ctx, p1)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, UserID("u1"), got.UserID)
		assert.Equal(t, "Demo", got.Name)
		require.NotNil(t, got.Description)
		assert.Equal(t, "first", *got.Description)

		list, err := s.ListProjectsByUser(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, p1, list[0].ID)
		assert.Equal(t, p2, list[1].ID)
		assert.Nil(t, list[1].Description)

		empty, err := s.ListProjectsByUser(ctx, "nobody")
		require.NoError(t, err)
		assert.NotNil(t, empty)
		assert.Empty(t, empty)
	})

	t.Run("missing records are nil without error", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		id, err := s.CreateProject(ctx, Project{UserID: "u1", Name: "Demo"})
		require.NoError(t, err)
		chatID, err := s.CreateChat(ctx, Chat{ProjectID: id, Title: "t"})
		require.NoError(t, err)

		// Ids of the other kind are well formed but never match.
		p, err := s.GetProject(ctx, ProjectID(chatID))
		require.NoError(t, err)
		assert.Nil(t, p)

		c, err := s.GetChat(ctx, ChatID(id))
		require.NoError(t, err)
		assert.Nil(t, c)
	})

	t.Run("chats and messages", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		projectID, err := s.CreateProject(ctx, Project{UserID: "u1", Name: "Demo"})
		require.NoError(t, err)
		chatID, err := s.CreateChat(ctx, Chat{ProjectID: projectID, Title: "Hello"})
		require.NoError(t, err)

		chat, err := s.GetChat(ctx, chatID)
		require.NoError(t, err)
		require.NotNil(t, chat)
		assert.Equal(t, projectID, chat.ProjectID)
		assert.Equal(t, "Hello", chat.Title)

		chats, err := s.ListChatsByProject(ctx, projectID)
		require.NoError(t, err)
		require.Len(t, chats, 1)
		assert.Equal(t, chatID, chats[0].ID)

		_, err = s.CreateMessage(ctx, Message{ChatID: chatID, Role: RoleUser, Content: "hello"})
		require.NoError(t, err)
		_, err = s.CreateMessage(ctx, Message{ChatID: chatID, Role: RoleAssistant, Content: "Echo: hello"})
		require.NoError(t, err)

		msgs, err := s.ListMessagesByChat(ctx, chatID)
		require.NoError(t, err)
		require.Len(t, msgs, 2)
		assert.Equal(t, RoleUser, msgs[0].Role)
		assert.Equal(t, "hello", msgs[0].Content)
		assert.Equal(t, RoleAssistant, msgs[1].Role)
		assert.Equal(t, "Echo: hello", msgs[1].Content)
		assert.NotNil(t, msgs[0].CreatedAt)
	})

	t.Run("info lists collections", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		_, err := s.CreateProject(ctx, Project{UserID: "u1", Name: "Demo"})
		require.NoError(t, err)

		info, err := s.Info(ctx)
		require.NoError(t, err)
		assert.NotEmpty(t, info.Driver)
		assert.NotEmpty(t, info.Collections)
	})
}

func TestMemoryStore(t *testing.T) {
	runStoreSuite(t, func(t *testing.T) Store {
		return NewMemoryStore()
	})
}

func TestMemoryStore_ValidID(t *testing.T) {
	s := NewMemoryStore()
	assert.True(t, s.ValidID("7f1c6c1e-4a0e-4c43-9f5a-0f7c7a9c3c11"))
	assert.False(t, s.ValidID("u1"))
	assert.False(t, s.ValidID(""))
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, DriverMemory, "", "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	_, err = Open(ctx, DriverMongo, "", "")
	assert.Error(t, err)

	_, err = Open(ctx, DriverSQLite, "", "")
	assert.Error(t, err)

	_, err = Open(ctx, "postgres", "postgres://localhost", "")
	assert.Error(t, err)
}
