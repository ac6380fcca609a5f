package users

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/odyssey-erp/odyssey-admin/internal/rbac"
	"github.com/odyssey-erp/odyssey-admin/internal/store"
)

// AdminID is the identifier of the bootstrap administrator.
const AdminID = "1"

// Seed installs the bootstrap administrator when repo is empty.
func Seed(ctx context.Context, repo store.Store[User], adminPassword string) error {
	existing, err := repo.List(ctx)
	if err != nil {
		return fmt.Errorf("users: seed: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}
	if adminPassword == "" {
		return fmt.Errorf("users: seed: admin password must be provided")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("users: seed: %w", err)
	}
	now := time.Now().UTC()
	admin := User{
		ID:           AdminID,
		Name:         "Super Administrator",
		Email:        "admin@company.com",
		Phone:        "+1 (555) 123-4567",
		Username:     "admin",
		PasswordHash: string(hash),
		Role:         rbac.RoleSuperAdmin,
		Biography:    "Experienced administrator with over 10 years in team management.",
		AboutMe:      "Passionate about building great teams and delivering exceptional results.",
		Experiences: []Experience{{
			ID:          "1",
			Company:     "Tech Corp",
			Position:    "Senior Manager",
			Duration:    "2020 - Present",
			Description: "Leading cross-functional teams and driving strategic initiatives.",
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := repo.Insert(ctx, admin); err != nil {
		return fmt.Errorf("users: seed: %w", err)
	}
	return nil
}
