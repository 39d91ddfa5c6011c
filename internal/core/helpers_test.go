package core

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gwi.com/project-chat/internal/store"
)

var errStoreDown = errors.New("connection refused")

// spyStore counts the calls that reach the backing store and can be told
// to fail them.
type spyStore struct {
	store.Store
	reads   atomic.Int32
	writes  atomic.Int32
	failGet bool
	failMsg int32 // fail the nth CreateMessage (1-based), 0 never
}

func newSpyStore() *spyStore {
	return &spyStore{Store: store.NewMemoryStore()}
}

func (s *spyStore) GetProject(ctx context.Context, id store.ProjectID) (*store.Project, error) {
	s.reads.Add(1)
	if s.failGet {
		return nil, errStoreDown
	}
	return s.Store.GetProject(ctx, id)
}

func (s *spyStore) GetChat(ctx context.Context, id store.ChatID) (*store.Chat, error) {
	s.reads.Add(1)
	if s.failGet {
		return nil, errStoreDown
	}
	return s.Store.GetChat(ctx, id)
}

func (s *spyStore) CreateChat(ctx context.Context, chat store.Chat) (store.ChatID, error) {
	s.writes.Add(1)
	return s.Store.CreateChat(ctx, chat)
}

func (s *spyStore) CreateMessage(ctx context.Context, msg store.Message) (store.MessageID, error) {
	n := s.writes.Add(1)
	if s.failMsg != 0 && n == s.failMsg {
		return "", errStoreDown
	}
	return s.Store.CreateMessage(ctx, msg)
}

func (s *spyStore) resetCounts() {
	s.reads.Store(0)
	s.writes.Store(0)
}

// fixture creates a project and chat owned by "owner".
type fixture struct {
	store     *spyStore
	projectID store.ProjectID
	chatID    store.ChatID
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	s := newSpyStore()

	projectID, err := s.CreateProject(ctx, store.Project{UserID: "owner", Name: "Demo"})
	require.NoError(t, err)
	chatID, err := s.CreateChat(ctx, store.Chat{ProjectID: projectID, Title: "First"})
	require.NoError(t, err)

	s.resetCounts()
	return fixture{store: s, projectID: projectID, chatID: chatID}
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}
