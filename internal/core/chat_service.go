package core

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gwi.com/project-chat/internal/store"
)

// ChatService owns projects, chats and messages. Every operation below the
// project level re-derives ownership from the stored chain.
type ChatService struct {
	dbStore   store.Store
	ownership *Ownership
	logger    *zap.Logger
}

func NewChatService(db store.Store, logger *zap.Logger) *ChatService {
	return &ChatService{
		dbStore:   db,
		ownership: NewOwnership(db),
		logger:    logger.Named("chat"),
	}
}

func (s *ChatService) CreateProject(ctx context.Context, userID store.UserID, name string, description *string) (store.ProjectID, error) {
	if s.dbStore == nil {
		return "", ErrUnavailable
	}
	id, err := s.dbStore.CreateProject(ctx, store.Project{UserID: userID, Name: name, Description: description})
	if err != nil {
		return "", fmt.Errorf("failed to create project in DB: %w", err)
	}
	s.logger.Debug("project created", zap.String("project_id", string(id)), zap.String("user_id", string(userID)))
	return id, nil
}

func (s *ChatService) ListProjects(ctx context.Context, userID store.UserID) ([]store.Project, error) {
	if s.dbStore == nil {
		return nil, ErrUnavailable
	}
	return s.dbStore.ListProjectsByUser(ctx, userID)
}

func (s *ChatService) CreateChat(ctx context.Context, userID store.UserID, projectID, title string) (store.ChatID, error) {
	project, err := s.ownership.Project(ctx, userID, projectID)
	if err != nil {
		return "", err
	}

	id, err := s.dbStore.CreateChat(ctx, store.Chat{ProjectID: project.ID, Title: title})
	if err != nil {
		return "", fmt.Errorf("failed to create chat in DB: %w", err)
	}
	s.logger.Debug("chat created", zap.String("chat_id", string(id)), zap.String("project_id", projectID))
	return id, nil
}

func (s *ChatService) ListChats(ctx context.Context, userID store.UserID, projectID string) ([]store.Chat, error) {
	project, err := s.ownership.Project(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	return s.dbStore.ListChatsByProject(ctx, project.ID)
}

func (s *ChatService) PostMessage(ctx context.Context, userID store.UserID, chatID, role, content string) (store.MessageID, error) {
	chat, err := s.ownership.Chat(ctx, userID, chatID)
	if err != nil {
		return "", err
	}

	id, err := s.dbStore.CreateMessage(ctx, store.Message{ChatID: chat.ID, Role: role, Content: content})
	if err != nil {
		return "", fmt.Errorf("failed to store message: %w", err)
	}
	return id, nil
}

func (s *ChatService) ListMessages(ctx context.Context, userID store.UserID, chatID string) ([]store.Message, error) {
	chat, err := s.ownership.Chat(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}
	return s.dbStore.ListMessagesByChat(ctx, chat.ID)
}
