package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/cjjwisniewski/seeker-functions/internal/domain"
	"github.com/cjjwisniewski/seeker-functions/internal/repository"
	apperrors "github.com/cjjwisniewski/seeker-functions/pkg/errors"
)

// SeekingService implements the business logic for the seeking-list API.
type SeekingService struct {
	seeking repository.SeekingRepository
	users   repository.UserRepository
	logger  *slog.Logger
}

// NewSeekingService creates a new seeking service.
func NewSeekingService(seeking repository.SeekingRepository, users repository.UserRepository, logger *slog.Logger) *SeekingService {
	return &SeekingService{seeking: seeking, users: users, logger: logger}
}

// AddItem adds a card to the user's seeking list. The new item starts with
// cleared marketplace state; the stock reconciler fills it in on the user's
// next scan.
func (s *SeekingService) AddItem(ctx context.Context, item *domain.SeekingItem) error {
	if item.UserID == "" {
		return apperrors.InvalidInput("user id is required")
	}
	if !slices.Contains(domain.ValidFinishes(), item.Finish) {
		return apperrors.InvalidInput(fmt.Sprintf("invalid finish %q", item.Finish))
	}

	item.Stock = false
	item.LowPriceCents = nil
	item.BlueprintID = nil

	if err := s.seeking.Create(ctx, item); err != nil {
		return fmt.Errorf("add seeking item: %w", err)
	}

	s.logger.InfoContext(ctx, "seeking item added",
		slog.String("user_id", item.UserID),
		slog.String("set_code", item.SetCode),
		slog.String("row_key", item.RowKey()),
	)
	return nil
}

// DeleteItem removes a card from the user's seeking list by its
// partition/row-key address.
func (s *SeekingService) DeleteItem(ctx context.Context, userID, setCode, rowKey string) error {
	if err := s.seeking.Delete(ctx, userID, setCode, rowKey); err != nil {
		return fmt.Errorf("delete seeking item: %w", err)
	}

	s.logger.InfoContext(ctx, "seeking item deleted",
		slog.String("user_id", userID),
		slog.String("set_code", setCode),
		slog.String("row_key", rowKey),
	)
	return nil
}

// List returns the user's full seeking list.
func (s *SeekingService) List(ctx context.Context, userID string) ([]domain.SeekingItem, error) {
	items, err := s.seeking.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list seeking items: %w", err)
	}
	return items, nil
}

// ListUserIDs returns all known user ids. Admin only; the handler enforces
// that.
func (s *SeekingService) ListUserIDs(ctx context.Context) ([]string, error) {
	ids, err := s.users.ListIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list user ids: %w", err)
	}
	return ids, nil
}
