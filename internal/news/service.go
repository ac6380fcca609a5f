package news

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/odyssey-erp/odyssey-admin/internal/rbac"
	"github.com/odyssey-erp/odyssey-admin/internal/shared"
	"github.com/odyssey-erp/odyssey-admin/internal/store"
)

// Service applies the news permissions around the post store.
type Service struct {
	repo     store.Store[Post]
	table    *rbac.Table
	validate *validator.Validate
	now      func() time.Time
}

// NewService builds Service instance.
func NewService(repo store.Store[Post], table *rbac.Table) *Service {
	if table == nil {
		table = rbac.Default()
	}
	return &Service{repo: repo, table: table, validate: shared.NewValidator(), now: time.Now}
}

// List returns every post, newest first.
func (s *Service) List(ctx context.Context, actor *rbac.Actor) ([]Post, error) {
	if err := s.require(actor, rbac.PermNewsView, "list"); err != nil {
		return nil, err
	}
	posts, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("news: list: %w", err)
	}
	slices.SortStableFunc(posts, func(a, b Post) int {
		return b.PublishedAt.Compare(a.PublishedAt)
	})
	return posts, nil
}

// Get fetches a single post.
func (s *Service) Get(ctx context.Context, actor *rbac.Actor, id string) (Post, error) {
	if err := s.require(actor, rbac.PermNewsView, "view"); err != nil {
		return Post{}, err
	}
	post, err := s.repo.Get(ctx, id)
	if err != nil {
		return Post{}, fmt.Errorf("news: get %s: %w", id, translate(err))
	}
	return post, nil
}

// Create publishes a new post authored by actor.
func (s *Service) Create(ctx context.Context, actor *rbac.Actor, in Input) (Post, error) {
	if err := s.require(actor, rbac.PermNewsCreate, "create"); err != nil {
		return Post{}, err
	}
	in = in.normalized()
	if err := shared.ValidateStruct(s.validate, in); err != nil {
		return Post{}, err
	}
	now := s.now().UTC()
	post := Post{
		ID:          uuid.NewString(),
		Author:      actor.Name,
		AuthorID:    actor.ID,
		PublishedAt: now,
		UpdatedAt:   now,
	}
	applyInput(&post, in)
	created, err := s.repo.Insert(ctx, post)
	if err != nil {
		return Post{}, fmt.Errorf("news: create: %w", translate(err))
	}
	return created, nil
}

// Update edits a post. The editing actor becomes the recorded author.
func (s *Service) Update(ctx context.Context, actor *rbac.Actor, id string, in Input) (Post, error) {
	if err := s.require(actor, rbac.PermNewsEdit, "edit"); err != nil {
		return Post{}, err
	}
	post, err := s.repo.Get(ctx, id)
	if err != nil {
		return Post{}, fmt.Errorf("news: get %s: %w", id, translate(err))
	}
	in = in.normalized()
	if err := shared.ValidateStruct(s.validate, in); err != nil {
		return Post{}, err
	}
	applyInput(&post, in)
	post.Author = actor.Name
	post.AuthorID = actor.ID
	post.UpdatedAt = s.now().UTC()
	updated, err := s.repo.Update(ctx, post)
	if err != nil {
		return Post{}, fmt.Errorf("news: update %s: %w", id, translate(err))
	}
	return updated, nil
}

// Delete removes a post.
func (s *Service) Delete(ctx context.Context, actor *rbac.Actor, id string) error {
	if err := s.require(actor, rbac.PermNewsDelete, "delete"); err != nil {
		return err
	}
	if err := s.repo.Remove(ctx, id); err != nil {
		return fmt.Errorf("news: delete %s: %w", id, translate(err))
	}
	return nil
}

func (s *Service) require(actor *rbac.Actor, p rbac.Permission, op string) error {
	if !s.table.HasPermission(actor, p) {
		return fmt.Errorf("news: %s: %w", op, shared.ErrForbidden)
	}
	return nil
}

func applyInput(post *Post, in Input) {
	post.Title = in.Title
	post.Content = in.Content
	post.Excerpt = in.Excerpt
	post.BannerImage = in.BannerImage
	post.Images = in.Images
	post.Status = in.Status
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
