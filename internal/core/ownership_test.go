package core

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gwi.com/project-chat/internal/store"
)

func TestOwnership_Project(t *testing.T) {
	f := newFixture(t)
	o := NewOwnership(f.store)
	ctx := context.Background()

	tests := []struct {
		name      string
		userID    store.UserID
		projectID string
		wantErr   error
		wantReads int32
	}{
		{"owner", "owner", string(f.projectID), nil, 1},
		{"foreign project reads as missing", "intruder", string(f.projectID), ErrProjectNotFound, 1},
		{"missing project", "owner", uuid.NewString(), ErrProjectNotFound, 1},
		{"malformed id never reaches store", "owner", "not-an-id", ErrInvalidID, 0},
		{"empty id", "owner", "", ErrInvalidID, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.store.resetCounts()
			project, err := o.Project(ctx, tt.userID, tt.projectID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, project)
			} else {
				require.NoError(t, err)
				assert.Equal(t, f.projectID, project.ID)
			}
			assert.Equal(t, tt.wantReads, f.store.reads.Load())
		})
	}
}

func TestOwnership_Chat(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// A chat whose project no longer resolves.
	orphan, err := f.store.CreateChat(ctx, store.Chat{ProjectID: store.ProjectID(uuid.NewString()), Title: "orphan"})
	require.NoError(t, err)
	// A chat whose stored project id is not even well formed.
	garbled, err := f.store.CreateChat(ctx, store.Chat{ProjectID: "garbled", Title: "garbled"})
	require.NoError(t, err)

	o := NewOwnership(f.store)

	tests := []struct {
		name      string
		userID    store.UserID
		chatID    string
		wantErr   error
		wantReads int32
	}{
		{"owner", "owner", string(f.chatID), nil, 2},
		{"foreign chat is forbidden", "intruder", string(f.chatID), ErrForbidden, 2},
		{"missing chat", "owner", uuid.NewString(), ErrChatNotFound, 1},
		{"chat with missing project is forbidden", "owner", string(orphan), ErrForbidden, 2},
		{"chat with malformed project id is forbidden", "owner", string(garbled), ErrForbidden, 1},
		{"malformed id never reaches store", "owner", "xyz", ErrInvalidID, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.store.resetCounts()
			chat, err := o.Chat(ctx, tt.userID, tt.chatID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, chat)
			} else {
				require.NoError(t, err)
				assert.Equal(t, f.chatID, chat.ID)
			}
			assert.Equal(t, tt.wantReads, f.store.reads.Load())
		})
	}
}

func TestOwnership_NotFoundAndForbiddenStayDistinct(t *testing.T) {
	assert.ErrorIs(t, ErrChatNotFound, ErrNotFound)
	assert.ErrorIs(t, ErrProjectNotFound, ErrNotFound)
	assert.NotErrorIs(t, ErrForbidden, ErrNotFound)
	assert.NotErrorIs(t, ErrChatNotFound, ErrForbidden)
}

func TestOwnership_StoreErrorsPropagate(t *testing.T) {
	f := newFixture(t)
	f.store.failGet = true
	o := NewOwnership(f.store)
	ctx := context.Background()

	_, err := o.Project(ctx, "owner", string(f.projectID))
	require.Error(t, err)
	assert.ErrorIs(t, err, errStoreDown)
	assert.NotErrorIs(t, err, ErrNotFound)

	_, err = o.Chat(ctx, "owner", string(f.chatID))
	require.Error(t, err)
	assert.ErrorIs(t, err, errStoreDown)
	assert.NotErrorIs(t, err, ErrForbidden)
}

func TestOwnership_NoStore(t *testing.T) {
	o := NewOwnership(nil)
	ctx := context.Background()

	_, err := o.Project(ctx, "owner", uuid.NewString())
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = o.Chat(ctx, "owner", uuid.NewString())
	assert.ErrorIs(t, err, ErrUnavailable)
}
