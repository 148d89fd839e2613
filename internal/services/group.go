package services

import (
	"context"
	"fmt"

	"groupbid-backend/internal/auctionerrors"
	"groupbid-backend/internal/models"
	"groupbid-backend/internal/repository"
)

// GroupService manages the facebook groups a user runs auctions in.
type GroupService struct {
	groupRepo repository.GroupRepository
}

// NewGroupService creates a new group service
func NewGroupService(groupRepo repository.GroupRepository) *GroupService {
	return &GroupService{groupRepo: groupRepo}
}

// RegisterGroupInput holds the fields for registering a group.
type RegisterGroupInput struct {
	FacebookGroupID string
	Name            string
	MemberCount     *int
	UserID          string
}

// RegisterGroup records a facebook group for the user. The facebook group
// id is unique across all users; a group already registered fails with
// ErrDuplicateKey.
func (s *GroupService) RegisterGroup(ctx context.Context, in RegisterGroupInput) (*models.FacebookGroup, error) {
	if in.FacebookGroupID == "" {
		return nil, fmt.Errorf("service: %w - facebook group id is required", auctionerrors.ErrValidation)
	}
	if in.Name == "" {
		return nil, fmt.Errorf("service: %w - group name is required", auctionerrors.ErrValidation)
	}
	if in.UserID == "" {
		return nil, fmt.Errorf("service: %w - user id is required", auctionerrors.ErrValidation)
	}

	group, err := s.groupRepo.CreateGroup(ctx, repository.CreateGroupInput{
		FacebookGroupID: in.FacebookGroupID,
		Name:            in.Name,
		MemberCount:     in.MemberCount,
		UserID:          in.UserID,
	})
	if err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	return group, nil
}

// ListGroups returns the user's active groups, sorted by name.
func (s *GroupService) ListGroups(ctx context.Context, userID string) ([]models.FacebookGroup, error) {
	groups, err := s.groupRepo.ListActiveGroupsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	return groups, nil
}

// DeactivateGroup hides a group from the user's active list without
// touching the auctions already posted to it.
func (s *GroupService) DeactivateGroup(ctx context.Context, id string) (*models.FacebookGroup, error) {
	inactive := false
	group, err := s.groupRepo.UpdateGroup(ctx, id, repository.GroupUpdate{IsActive: &inactive})
	if err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	return group, nil
}
