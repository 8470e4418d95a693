// Package users manages back-office user accounts.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/commercegrid/backoffice/internal/app/domain/user"
	"github.com/commercegrid/backoffice/internal/app/storage"
	"github.com/commercegrid/backoffice/pkg/logger"
)

// ErrInvalidCredentials is returned by Authenticate for a bad email/password
// combination or a disabled account.
var ErrInvalidCredentials = errors.New("invalid credentials")

// DeleteResult itemises the outcome of one ID within a batch delete.
type DeleteResult struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
	Message string `json:"message,omitempty"`
}

// Service manages user accounts.
type Service struct {
	store storage.UserStore
	log   *logger.Logger
}

// New constructs a user service.
func New(store storage.UserStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("users")
	}
	return &Service{store: store, log: log}
}

// Create registers a new user with a bcrypt-hashed password.
func (s *Service) Create(ctx context.Context, email, displayName, password string, role user.Role) (user.User, error) {
	email = strings.TrimSpace(email)
	displayName = strings.TrimSpace(displayName)

	if email == "" || !strings.Contains(email, "@") {
		return user.User{}, fmt.Errorf("a valid email is required")
	}
	if displayName == "" {
		return user.User{}, fmt.Errorf("display_name is required")
	}
	if len(password) < 8 {
		return user.User{}, fmt.Errorf("password must be at least 8 characters")
	}
	if role == "" {
		role = user.RoleViewer
	}
	if !user.ValidRole(role) {
		return user.User{}, fmt.Errorf("unknown role %q", role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return user.User{}, err
	}

	created, err := s.store.CreateUser(ctx, user.User{
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: string(hash),
		Role:         role,
		Status:       user.StatusActive,
	})
	if err != nil {
		return user.User{}, err
	}

	s.log.WithField("user_id", created.ID).WithField("role", created.Role).Info("user created")
	return created, nil
}

// Update modifies mutable fields on a user.
func (s *Service) Update(ctx context.Context, id string, displayName *string, role *user.Role) (user.User, error) {
	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		return user.User{}, err
	}

	if displayName != nil {
		trimmed := strings.TrimSpace(*displayName)
		if trimmed == "" {
			return user.User{}, fmt.Errorf("display_name cannot be empty")
		}
		u.DisplayName = trimmed
	}
	if role != nil {
		if !user.ValidRole(*role) {
			return user.User{}, fmt.Errorf("unknown role %q", *role)
		}
		u.Role = *role
	}

	return s.store.UpdateUser(ctx, u)
}

// SetStatus enables or disables a user account.
func (s *Service) SetStatus(ctx context.Context, id string, status user.Status) (user.User, error) {
	if !user.ValidStatus(status) {
		return user.User{}, fmt.Errorf("unknown status %q", status)
	}
	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		return user.User{}, err
	}
	u.Status = status

	updated, err := s.store.UpdateUser(ctx, u)
	if err != nil {
		return user.User{}, err
	}
	s.log.WithField("user_id", id).WithField("status", status).Info("user status changed")
	return updated, nil
}

// ChangePassword replaces a user's password hash.
func (s *Service) ChangePassword(ctx context.Context, id, password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	_, err = s.store.UpdateUser(ctx, u)
	return err
}

// Authenticate verifies an email/password pair for an active account.
func (s *Service) Authenticate(ctx context.Context, email, password string) (user.User, error) {
	u, err := s.store.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return user.User{}, ErrInvalidCredentials
		}
		return user.User{}, err
	}
	if u.Status != user.StatusActive {
		return user.User{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return user.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// Get returns one user.
func (s *Service) Get(ctx context.Context, id string) (user.User, error) {
	return s.store.GetUser(ctx, id)
}

// List returns all users ordered by creation time.
func (s *Service) List(ctx context.Context) ([]user.User, error) {
	return s.store.ListUsers(ctx)
}

// Delete removes one user.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.DeleteUser(ctx, id)
}

// BatchDelete removes several users, reporting the outcome per ID. Partial
// success is expected: failed IDs are itemised, successful ones are gone.
func (s *Service) BatchDelete(ctx context.Context, ids []string) []DeleteResult {
	results := make([]DeleteResult, 0, len(ids))
	for _, id := range ids {
		res := DeleteResult{ID: id, Deleted: true}
		if err := s.store.DeleteUser(ctx, id); err != nil {
			res.Deleted = false
			if errors.Is(err, storage.ErrNotFound) {
				res.Message = "user not found"
			} else {
				res.Message = err.Error()
			}
		}
		results = append(results, res)
	}
	return results
}
