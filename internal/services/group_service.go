package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/chameleon/server/internal/models"
	"github.com/chameleon/server/internal/repository"
)

// GroupService handles group business logic. All mutations rewrite the full
// group document, so they are serialized behind a single mutex.
type GroupService struct {
	groupRepo repository.GroupRepo
	userRepo  repository.UserRepo
	hub       *WebSocketHub

	mu sync.Mutex
}

// NewGroupService creates a new GroupService. The hub may be nil when live
// updates are disabled.
func NewGroupService(groupRepo repository.GroupRepo, userRepo repository.UserRepo, hub *WebSocketHub) *GroupService {
	return &GroupService{
		groupRepo: groupRepo,
		userRepo:  userRepo,
		hub:       hub,
	}
}

// CreateGroup creates a new group owned by the given user. The owner is
// always the first member.
func (s *GroupService) CreateGroup(ctx context.Context, ownerID, name string) (*models.Group, error) {
	group, err := models.NewGroup(name, ownerID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	groups, err := s.groupRepo.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read groups: %w", err)
	}

	groups = append(groups, *group)
	if err := s.groupRepo.WriteAll(ctx, groups); err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	s.notifyGroup(group, WSTypeGroupUpdated)
	return group, nil
}

// GetGroupsForUser returns the groups the user is a member of, in storage
// order.
func (s *GroupService) GetGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error) {
	groups, err := s.groupRepo.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read groups: %w", err)
	}

	result := make([]*models.Group, 0)
	for i := range groups {
		if groups[i].HasMember(userID) {
			result = append(result, &groups[i])
		}
	}
	return result, nil
}

// GroupIDsForUser returns the set of group ids the user belongs to. Used by
// the recipe visibility check.
func (s *GroupService) GroupIDsForUser(ctx context.Context, userID string) (map[string]bool, error) {
	groups, err := s.GetGroupsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make(map[string]bool, len(groups))
	for _, g := range groups {
		ids[g.ID] = true
	}
	return ids, nil
}

// AddMember adds a user to a group. Adding an existing member changes
// nothing. Returns nil without error if the group does not exist.
func (s *GroupService) AddMember(ctx context.Context, groupID, userID string) (*models.Group, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, models.ErrUserNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	groups, err := s.groupRepo.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read groups: %w", err)
	}

	for i := range groups {
		if groups[i].ID != groupID {
			continue
		}
		if groups[i].AddMember(userID) {
			if err := s.groupRepo.WriteAll(ctx, groups); err != nil {
				return nil, fmt.Errorf("failed to update group: %w", err)
			}
		}
		s.notifyGroup(&groups[i], WSTypeGroupUpdated)
		return &groups[i], nil
	}

	return nil, nil
}

// RemoveMember removes a user from a group. Returns nil without error if the
// group does not exist. Removing the owner is permitted; the group then has
// an owner who is no longer a member.
func (s *GroupService) RemoveMember(ctx context.Context, groupID, userID string) (*models.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	groups, err := s.groupRepo.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read groups: %w", err)
	}

	for i := range groups {
		if groups[i].ID != groupID {
			continue
		}
		groups[i].RemoveMember(userID)
		if err := s.groupRepo.WriteAll(ctx, groups); err != nil {
			return nil, fmt.Errorf("failed to update group: %w", err)
		}
		s.notifyGroup(&groups[i], WSTypeGroupUpdated)
		return &groups[i], nil
	}

	return nil, nil
}

// DeleteGroup removes a group. Deleting an unknown group is a no-op. Shares
// pointing at the deleted group simply stop granting visibility; they are not
// cleaned up here.
func (s *GroupService) DeleteGroup(ctx context.Context, groupID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	groups, err := s.groupRepo.ReadAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to read groups: %w", err)
	}

	var deleted *models.Group
	filtered := groups[:0]
	for i := range groups {
		if groups[i].ID == groupID {
			g := groups[i]
			deleted = &g
			continue
		}
		filtered = append(filtered, groups[i])
	}

	if deleted == nil {
		return nil
	}

	if err := s.groupRepo.WriteAll(ctx, filtered); err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}

	s.notifyGroup(deleted, WSTypeGroupDeleted)
	return nil
}

func (s *GroupService) notifyGroup(group *models.Group, msgType string) {
	if s.hub == nil {
		return
	}
	msg := WSMessage{Type: msgType, Payload: group}
	for _, member := range group.Members {
		s.hub.SendToUser(member, msg)
	}
	// The owner may have been removed from the member list but still cares.
	if !group.HasMember(group.OwnerID) {
		s.hub.SendToUser(group.OwnerID, msg)
	}
}
