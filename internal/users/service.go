package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/odyssey-erp/odyssey-admin/internal/rbac"
	"github.com/odyssey-erp/odyssey-admin/internal/shared"
	"github.com/odyssey-erp/odyssey-admin/internal/store"
)

// Service applies the team authorization rules around the member store.
type Service struct {
	repo       store.Store[User]
	table      *rbac.Table
	validate   *validator.Validate
	now        func() time.Time
	hashCost   int
	writeMutex sync.Mutex
}

// NewService builds Service instance.
func NewService(repo store.Store[User], table *rbac.Table) *Service {
	if table == nil {
		table = rbac.Default()
	}
	return &Service{
		repo:     repo,
		table:    table,
		validate: shared.NewValidator(),
		now:      time.Now,
		hashCost: bcrypt.DefaultCost,
	}
}

// Table exposes the permission table used by the service.
func (s *Service) Table() *rbac.Table {
	return s.table
}

// List returns the members actor is allowed to see.
func (s *Service) List(ctx context.Context, actor *rbac.Actor) ([]User, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("users: list: %w", err)
	}
	return rbac.FilterAccessible(s.table, actor, all), nil
}

// Get fetches a member actor may view.
func (s *Service) Get(ctx context.Context, actor *rbac.Actor, id string) (User, error) {
	user, err := s.Lookup(ctx, id)
	if err != nil {
		return User{}, err
	}
	if !s.table.CanView(actor, user) {
		return User{}, fmt.Errorf("users: view %s: %w", id, shared.ErrForbidden)
	}
	return user, nil
}

// Create adds a member. Requires the users.create permission.
func (s *Service) Create(ctx context.Context, actor *rbac.Actor, in Input) (User, error) {
	if !s.table.HasPermission(actor, rbac.PermUsersCreate) {
		return User{}, fmt.Errorf("users: create: %w", shared.ErrForbidden)
	}
	in = in.normalized()
	if err := s.validateInput(in, true); err != nil {
		return User{}, err
	}
	role := rbac.RoleUser
	if in.Role != "" && s.table.CanAssignRole(actor, nil) {
		role = in.Role
	}
	hash, err := s.hashPassword(in.Password)
	if err != nil {
		return User{}, err
	}

	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()
	if err := s.ensureUniqueUsername(ctx, in.Username, ""); err != nil {
		return User{}, err
	}
	now := s.now().UTC()
	user := User{
		ID:           uuid.NewString(),
		Role:         role,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	applyInput(&user, in)
	created, err := s.repo.Insert(ctx, user)
	if err != nil {
		return User{}, fmt.Errorf("users: create: %w", translate(err))
	}
	return created, nil
}

// Update edits a member actor is allowed to edit. The role only changes when actor may
// assign it; the password only when a new one is supplied.
func (s *Service) Update(ctx context.Context, actor *rbac.Actor, id string, in Input) (User, error) {
	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()

	user, err := s.Lookup(ctx, id)
	if err != nil {
		return User{}, err
	}
	if !s.table.CanEdit(actor, user) {
		return User{}, fmt.Errorf("users: edit %s: %w", id, shared.ErrForbidden)
	}
	in = in.normalized()
	if err := s.validateInput(in, false); err != nil {
		return User{}, err
	}
	if err := s.ensureUniqueUsername(ctx, in.Username, user.ID); err != nil {
		return User{}, err
	}
	if in.Role != "" && s.table.CanAssignRole(actor, user) {
		user.Role = in.Role
	}
	if in.Password != "" {
		hash, err := s.hashPassword(in.Password)
		if err != nil {
			return User{}, err
		}
		user.PasswordHash = hash
	}
	applyInput(&user, in)
	user.UpdatedAt = s.now().UTC()

	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return User{}, fmt.Errorf("users: update %s: %w", id, translate(err))
	}
	return updated, nil
}

// Delete removes a member. Members never delete themselves.
func (s *Service) Delete(ctx context.Context, actor *rbac.Actor, id string) error {
	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()

	user, err := s.Lookup(ctx, id)
	if err != nil {
		return err
	}
	if !s.table.CanDelete(actor, user) {
		return fmt.Errorf("users: delete %s: %w", id, shared.ErrForbidden)
	}
	if err := s.repo.Remove(ctx, id); err != nil {
		return fmt.Errorf("users: delete %s: %w", id, translate(err))
	}
	return nil
}

// Lookup fetches a member without authorization. It backs the identity provider.
func (s *Service) Lookup(ctx context.Context, id string) (User, error) {
	user, err := s.repo.Get(ctx, strings.TrimSpace(id))
	if err != nil {
		return User{}, fmt.Errorf("users: get %s: %w", id, translate(err))
	}
	return user, nil
}

// FindByUsername resolves a login name, ignoring case.
func (s *Service) FindByUsername(ctx context.Context, username string) (User, error) {
	username = strings.TrimSpace(username)
	all, err := s.repo.List(ctx)
	if err != nil {
		return User{}, fmt.Errorf("users: find: %w", err)
	}
	for _, u := range all {
		if strings.EqualFold(u.Username, username) {
			return u, nil
		}
	}
	return User{}, fmt.Errorf("users: find %q: %w", username, shared.ErrNotFound)
}

func (s *Service) validateInput(in Input, creating bool) error {
	err := shared.ValidateStruct(s.validate, in)
	fields := shared.AsFieldErrors(err)
	if err != nil && fields == nil {
		return err
	}
	if creating && in.Password == "" {
		if fields == nil {
			fields = shared.FieldErrors{}
		}
		fields["password"] = "is required for new users"
	}
	if len(fields) > 0 {
		return fields
	}
	return nil
}

func (s *Service) ensureUniqueUsername(ctx context.Context, username, selfID string) error {
	existing, err := s.FindByUsername(ctx, username)
	if errors.Is(err, shared.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID == selfID {
		return nil
	}
	return fmt.Errorf("%w: username %s is already taken", shared.ErrDuplicate, username)
}

func (s *Service) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return "", fmt.Errorf("users: hash password: %w", err)
	}
	return string(hash), nil
}

func applyInput(user *User, in Input) {
	user.Name = in.Name
	user.Email = in.Email
	user.Phone = in.Phone
	user.Username = in.Username
	user.ProfilePicture = in.ProfilePicture
	user.Biography = in.Biography
	user.AboutMe = in.AboutMe
	user.Experiences = make([]Experience, 0, len(in.Experiences))
	for _, exp := range in.Experiences {
		if exp.ID == "" {
			exp.ID = uuid.NewString()
		}
		user.Experiences = append(user.Experiences, exp)
	}
}

func translate(err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return shared.ErrNotFound
	case errors.Is(err, store.ErrDuplicate):
		return shared.ErrDuplicate
	default:
		return err
	}
}
