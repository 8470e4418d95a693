// Package groups manages user groups and their memberships.
package groups

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/commercegrid/backoffice/internal/app/domain/group"
	"github.com/commercegrid/backoffice/internal/app/storage"
	"github.com/commercegrid/backoffice/pkg/logger"
)

// MemberResult itemises the outcome of one user ID within a membership
// batch operation.
type MemberResult struct {
	UserID  string `json:"user_id"`
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

// Service manages groups.
type Service struct {
	users storage.UserStore
	store storage.GroupStore
	log   *logger.Logger
}

// New constructs a group service.
func New(users storage.UserStore, store storage.GroupStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("groups")
	}
	return &Service{users: users, store: store, log: log}
}

// Create registers a new group.
func (s *Service) Create(ctx context.Context, name, description string) (group.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return group.Group{}, fmt.Errorf("name is required")
	}

	created, err := s.store.CreateGroup(ctx, group.Group{Name: name, Description: strings.TrimSpace(description)})
	if err != nil {
		return group.Group{}, err
	}
	s.log.WithField("group_id", created.ID).Info("group created")
	return created, nil
}

// Update modifies a group's name and description.
func (s *Service) Update(ctx context.Context, id string, name, description *string) (group.Group, error) {
	g, err := s.store.GetGroup(ctx, id)
	if err != nil {
		return group.Group{}, err
	}

	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return group.Group{}, fmt.Errorf("name cannot be empty")
		}
		g.Name = trimmed
	}
	if description != nil {
		g.Description = strings.TrimSpace(*description)
	}

	return s.store.UpdateGroup(ctx, g)
}

// Get returns one group.
func (s *Service) Get(ctx context.Context, id string) (group.Group, error) {
	return s.store.GetGroup(ctx, id)
}

// List returns all groups ordered by creation time.
func (s *Service) List(ctx context.Context) ([]group.Group, error) {
	return s.store.ListGroups(ctx)
}

// Delete removes one group and its memberships.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.DeleteGroup(ctx, id)
}

// Members returns a group's membership rows.
func (s *Service) Members(ctx context.Context, groupID string) ([]group.Membership, error) {
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	return s.store.ListMemberships(ctx, groupID)
}

// AddMembers adds users to a group, reporting the outcome per user ID.
// Unknown users are itemised as failures; known ones are added regardless.
func (s *Service) AddMembers(ctx context.Context, groupID string, userIDs []string, actor string) ([]MemberResult, error) {
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	if len(userIDs) == 0 {
		return nil, fmt.Errorf("user_ids is required")
	}

	results := make([]MemberResult, 0, len(userIDs))
	for _, userID := range userIDs {
		res := MemberResult{UserID: userID, OK: true}
		if _, err := s.users.GetUser(ctx, userID); err != nil {
			res.OK = false
			res.Message = "user not found"
			results = append(results, res)
			continue
		}
		if _, err := s.store.AddMembership(ctx, group.Membership{GroupID: groupID, UserID: userID, AddedBy: actor}); err != nil {
			res.OK = false
			res.Message = err.Error()
		}
		results = append(results, res)
	}

	s.log.WithField("group_id", groupID).WithField("requested", len(userIDs)).Info("members added")
	return results, nil
}

// RemoveMembers removes users from a group, reporting the outcome per user
// ID. Users that were not members are itemised rather than failing the
// whole batch.
func (s *Service) RemoveMembers(ctx context.Context, groupID string, userIDs []string) ([]MemberResult, error) {
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	if len(userIDs) == 0 {
		return nil, fmt.Errorf("user_ids is required")
	}

	results := make([]MemberResult, 0, len(userIDs))
	for _, userID := range userIDs {
		res := MemberResult{UserID: userID, OK: true}
		if err := s.store.RemoveMembership(ctx, groupID, userID); err != nil {
			res.OK = false
			if errors.Is(err, storage.ErrNotFound) {
				res.Message = "not a member"
			} else {
				res.Message = err.Error()
			}
		}
		results = append(results, res)
	}
	return results, nil
}
