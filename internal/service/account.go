package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cjjwisniewski/seeker-functions/internal/repository"
)

// AccountService removes user accounts and everything hanging off them.
type AccountService struct {
	users       repository.UserRepository
	checkStates repository.CheckStateRepository
	logger      *slog.Logger
}

// NewAccountService creates a new account service.
func NewAccountService(users repository.UserRepository, checkStates repository.CheckStateRepository, logger *slog.Logger) *AccountService {
	return &AccountService{users: users, checkStates: checkStates, logger: logger}
}

// DeleteAccount removes the user row (the seeking list cascades with it) and
// the user's scan freshness record. Returns ErrNotFound when the account is
// already gone.
func (s *AccountService) DeleteAccount(ctx context.Context, userID string) error {
	if err := s.users.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete account %s: %w", userID, err)
	}

	if err := s.checkStates.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete account %s check state: %w", userID, err)
	}

	s.logger.InfoContext(ctx, "account deleted", slog.String("user_id", userID))
	return nil
}
