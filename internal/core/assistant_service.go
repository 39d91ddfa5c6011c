package core

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gwi.com/project-chat/internal/store"
)

const echoPrefix = "Echo: "

// Reply is the placeholder assistant: it echoes the prompt back.
func Reply(prompt string) string {
	return echoPrefix + prompt
}

type AssistantService struct {
	dbStore   store.Store
	ownership *Ownership
	logger    *zap.Logger
}

func NewAssistantService(db store.Store, logger *zap.Logger) *AssistantService {
	return &AssistantService{
		dbStore:   db,
		ownership: NewOwnership(db),
		logger:    logger.Named("assistant"),
	}
}

// Complete stores the prompt and the reply as two messages in the chat and
// returns the reply. The two inserts are independent: if the second fails
// the prompt stays without an answer.
func (s *AssistantService) Complete(ctx context.Context, userID store.UserID, chatID, prompt string) (string, error) {
	chat, err := s.ownership.Chat(ctx, userID, chatID)
	if err != nil {
		return "", err
	}

	reply := Reply(prompt)

	if _, err := s.dbStore.CreateMessage(ctx, store.Message{ChatID: chat.ID, Role: store.RoleUser, Content: prompt}); err != nil {
		return "", fmt.Errorf("failed to store user message: %w", err)
	}
	if _, err := s.dbStore.CreateMessage(ctx, store.Message{ChatID: chat.ID, Role: store.RoleAssistant, Content: reply}); err != nil {
		s.logger.Error("prompt stored without reply", zap.String("chat_id", chatID), zap.Error(err))
		return "", fmt.Errorf("failed to store assistant message: %w", err)
	}
	return reply, nil
}
