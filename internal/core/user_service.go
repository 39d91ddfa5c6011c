package core

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gwi.com/project-chat/internal/store"
)

// UserService handles the placeholder login: there are no credentials, the
// email alone identifies the user.
type UserService struct {
	dbStore store.Store
	logger  *zap.Logger
}

func NewUserService(db store.Store, logger *zap.Logger) *UserService {
	return &UserService{dbStore: db, logger: logger.Named("user")}
}

// Login upserts the user keyed by email, overwriting name and avatar, and
// returns the stable user id.
func (s *UserService) Login(ctx context.Context, name, email string, avatarURL *string) (store.UserID, error) {
	if s.dbStore == nil {
		return "", ErrUnavailable
	}
	id, err := s.dbStore.UpsertUserByEmail(ctx, store.User{Name: name, Email: email, AvatarURL: avatarURL})
	if err != nil {
		return "", fmt.Errorf("failed to upsert user %s: %w", email, err)
	}
	s.logger.Info("user logged in", zap.String("user_id", string(id)))
	return id, nil
}
