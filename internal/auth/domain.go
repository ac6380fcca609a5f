package auth

import (
	"context"

	"github.com/odyssey-erp/odyssey-admin/internal/users"
)

// Directory resolves accounts for sign-in and per-request identity.
type Directory interface {
	FindByUsername(ctx context.Context, username string) (users.User, error)
	Lookup(ctx context.Context, id string) (users.User, error)
}

type loginForm struct {
	Username string `form:"username" validate:"required,max=60"`
	Password string `form:"password" validate:"required,max=72"`
}
