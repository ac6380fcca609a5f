package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/odyssey-erp/odyssey-admin/internal/rbac"
	"github.com/odyssey-erp/odyssey-admin/internal/shared"
	"github.com/odyssey-erp/odyssey-admin/internal/users"
)

// Service wraps authentication business rules.
type Service struct {
	directory Directory
}

// NewService constructs a new Service.
func NewService(directory Directory) *Service {
	return &Service{directory: directory}
}

// Authenticate validates username/password credentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (users.User, error) {
	user, err := s.directory.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return users.User{}, shared.ErrInvalidCredentials
		}
		return users.User{}, fmt.Errorf("auth: authenticate: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return users.User{}, shared.ErrInvalidCredentials
	}
	return user, nil
}

// Identify resolves the actor behind a session user id. Unknown ids, including members
// deleted since they signed in, yield a nil actor.
func (s *Service) Identify(ctx context.Context, userID string) (*rbac.Actor, error) {
	if userID == "" {
		return nil, nil
	}
	user, err := s.directory.Lookup(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("auth: identify: %w", err)
	}
	return user.Actor(), nil
}
