package services

import (
	"context"
	"fmt"

	"groupbid-backend/internal/auctionerrors"
	"groupbid-backend/internal/models"
	"groupbid-backend/internal/repository"

	"github.com/shopspring/decimal"
)

const defaultItemDurationSeconds = 60

// LiveFeedService manages rapid-fire live feed sessions and the item
// queue each one works through.
type LiveFeedService struct {
	liveFeedRepo repository.LiveFeedRepository
}

// NewLiveFeedService creates a new live feed service
func NewLiveFeedService(liveFeedRepo repository.LiveFeedRepository) *LiveFeedService {
	return &LiveFeedService{liveFeedRepo: liveFeedRepo}
}

// CreateSessionInput holds the fields for a new live feed session.
type CreateSessionInput struct {
	UserID          string
	FacebookGroupID *string
	Name            string
	BidIncrement    decimal.Decimal
	ItemDuration    int
}

// CreateSession creates an inactive session. A zero increment or duration
// falls back to the defaults (10.00 / 60s).
func (s *LiveFeedService) CreateSession(ctx context.Context, in CreateSessionInput) (*models.LiveFeedSession, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("service: %w - session name is required", auctionerrors.ErrValidation)
	}
	if in.UserID == "" {
		return nil, fmt.Errorf("service: %w - user id is required", auctionerrors.ErrValidation)
	}
	if in.BidIncrement.IsNegative() || in.ItemDuration < 0 {
		return nil, fmt.Errorf("service: %w - increment and duration must not be negative", auctionerrors.ErrValidation)
	}

	increment := in.BidIncrement
	if increment.IsZero() {
		increment = defaultMinIncrement
	}
	duration := in.ItemDuration
	if duration == 0 {
		duration = defaultItemDurationSeconds
	}

	session, err := s.liveFeedRepo.CreateSession(ctx, repository.CreateSessionInput{
		Name:            in.Name,
		UserID:          in.UserID,
		FacebookGroupID: in.FacebookGroupID,
		BidIncrement:    increment,
		ItemDuration:    duration,
	})
	if err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	return session, nil
}

// GetSession retrieves a session with its items.
func (s *LiveFeedService) GetSession(ctx context.Context, id string) (*models.LiveFeedSession, []models.LiveFeedItem, error) {
	session, err := s.liveFeedRepo.GetSession(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("service: %w", err)
	}
	items, err := s.liveFeedRepo.ListItemsForSession(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("service: %w", err)
	}
	return session, items, nil
}

// ListSessions returns the user's sessions, newest first.
func (s *LiveFeedService) ListSessions(ctx context.Context, userID string) ([]models.LiveFeedSession, error) {
	sessions, err := s.liveFeedRepo.ListSessionsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	return sessions, nil
}

// ActivateSession marks a session active, starting from the first item in
// the queue. That item moves from pending to active.
func (s *LiveFeedService) ActivateSession(ctx context.Context, id string) (*models.LiveFeedSession, error) {
	active := true
	index := 0
	session, err := s.liveFeedRepo.UpdateSession(ctx, id, repository.SessionUpdate{
		IsActive:         &active,
		CurrentItemIndex: &index,
	})
	if err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}

	items, err := s.liveFeedRepo.ListItemsForSession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	if len(items) > 0 {
		status := models.ItemActive
		if _, err := s.liveFeedRepo.UpdateItem(ctx, items[0].ID, repository.ItemUpdate{Status: &status}); err != nil {
			return nil, fmt.Errorf("service: %w", err)
		}
	}
	return session, nil
}

// DeleteSession removes a session and its items. Deleting an absent
// session is not an error.
func (s *LiveFeedService) DeleteSession(ctx context.Context, id string) (bool, error) {
	deleted, err := s.liveFeedRepo.DeleteSession(ctx, id)
	if err != nil {
		return false, fmt.Errorf("service: %w", err)
	}
	return deleted, nil
}

// AddItem appends an item to the end of the session's queue.
func (s *LiveFeedService) AddItem(ctx context.Context, sessionID string, in repository.CreateItemInput) (*models.LiveFeedItem, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("service: %w - item name is required", auctionerrors.ErrValidation)
	}
	if in.StartingBid.IsNegative() {
		return nil, fmt.Errorf("service: %w - starting bid must not be negative", auctionerrors.ErrValidation)
	}
	if _, err := s.liveFeedRepo.GetSession(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}

	items, err := s.liveFeedRepo.ListItemsForSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}

	in.SessionID = sessionID
	in.OrderIndex = len(items)
	item, err := s.liveFeedRepo.CreateItem(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	return item, nil
}

// UpdateItem merges the provided fields into an item.
func (s *LiveFeedService) UpdateItem(ctx context.Context, id string, upd repository.ItemUpdate) (*models.LiveFeedItem, error) {
	item, err := s.liveFeedRepo.UpdateItem(ctx, id, upd)
	if err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	return item, nil
}

// RemoveItem deletes an item from the queue. Removing an absent item is
// not an error.
func (s *LiveFeedService) RemoveItem(ctx context.Context, id string) (bool, error) {
	deleted, err := s.liveFeedRepo.DeleteItem(ctx, id)
	if err != nil {
		return false, fmt.Errorf("service: %w", err)
	}
	return deleted, nil
}

// AdvanceItem closes out the session's current item, marking it sold when
// a bid came in and passed otherwise, then moves the cursor to the next
// item. When the queue is exhausted the session goes inactive.
func (s *LiveFeedService) AdvanceItem(ctx context.Context, sessionID string) (*models.LiveFeedSession, *models.LiveFeedItem, error) {
	session, err := s.liveFeedRepo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("service: %w", err)
	}
	if !session.IsActive {
		return nil, nil, fmt.Errorf("service: %w - session %s is not active", auctionerrors.ErrValidation, sessionID)
	}

	items, err := s.liveFeedRepo.ListItemsForSession(ctx, sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("service: %w", err)
	}
	if session.CurrentItemIndex >= len(items) {
		return nil, nil, fmt.Errorf("service: %w - no current item in session %s", auctionerrors.ErrValidation, sessionID)
	}

	current := items[session.CurrentItemIndex]
	status := models.ItemPassed
	if current.CurrentBid != nil && current.CurrentBid.IsPositive() {
		status = models.ItemSold
	}
	closed, err := s.liveFeedRepo.UpdateItem(ctx, current.ID, repository.ItemUpdate{Status: &status})
	if err != nil {
		return nil, nil, fmt.Errorf("service: %w", err)
	}

	nextIndex := session.CurrentItemIndex + 1
	upd := repository.SessionUpdate{CurrentItemIndex: &nextIndex}
	if nextIndex < len(items) {
		active := models.ItemActive
		if _, err := s.liveFeedRepo.UpdateItem(ctx, items[nextIndex].ID, repository.ItemUpdate{Status: &active}); err != nil {
			return nil, nil, fmt.Errorf("service: %w", err)
		}
	} else {
		inactive := false
		upd.IsActive = &inactive
	}
	session, err = s.liveFeedRepo.UpdateSession(ctx, sessionID, upd)
	if err != nil {
		return nil, nil, fmt.Errorf("service: %w", err)
	}
	return session, closed, nil
}
