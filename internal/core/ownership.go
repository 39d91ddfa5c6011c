package core

import (
	"context"
	"errors"
	"fmt"

	"gwi.com/project-chat/internal/store"
)

// Ownership walks a resource's chain (message -> chat -> project -> user)
// with one point lookup per level and stops at the first broken link.
//
// The user id is whatever the caller claims; nothing binds it to the
// request, so these checks only keep tenants from stumbling into each
// other's data.
type Ownership struct {
	store store.Store
}

func NewOwnership(s store.Store) *Ownership {
	return &Ownership{store: s}
}

// Project returns the project if it exists and belongs to userID. A missing
// project and a foreign one both yield ErrProjectNotFound.
func (o *Ownership) Project(ctx context.Context, userID store.UserID, projectID string) (*store.Project, error) {
	if o.store == nil {
		return nil, ErrUnavailable
	}
	if !o.store.ValidID(projectID) {
		return nil, ErrInvalidID
	}
	return o.ownedProject(ctx, userID, store.ProjectID(projectID))
}

// Chat returns the chat if its project belongs to userID. A missing chat is
// ErrChatNotFound; a chat whose project is missing or foreign is
// ErrForbidden. Message reads and writes authorize through their chat.
func (o *Ownership) Chat(ctx context.Context, userID store.UserID, chatID string) (*store.Chat, error) {
	if o.store == nil {
		return nil, ErrUnavailable
	}
	if !o.store.ValidID(chatID) {
		return nil, ErrInvalidID
	}

	chat, err := o.store.GetChat(ctx, store.ChatID(chatID))
	if err != nil {
		return nil, fmt.Errorf("failed to look up chat %s: %w", chatID, err)
	}
	if chat == nil {
		return nil, ErrChatNotFound
	}

	// The stored project_id is free text; a malformed one is a broken link.
	if !o.store.ValidID(string(chat.ProjectID)) {
		return nil, ErrForbidden
	}
	if _, err := o.ownedProject(ctx, userID, chat.ProjectID); err != nil {
		if errors.Is(err, ErrProjectNotFound) {
			return nil, ErrForbidden
		}
		return nil, err
	}
	return chat, nil
}

func (o *Ownership) ownedProject(ctx context.Context, userID store.UserID, projectID store.ProjectID) (*store.Project, error) {
	project, err := o.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up project %s: %w", projectID, err)
	}
	if project == nil || project.UserID != userID {
		return nil, ErrProjectNotFound
	}
	return project, nil
}
