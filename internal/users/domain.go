package users

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/odyssey-erp/odyssey-admin/internal/rbac"
)

// Experience is one entry of a member's work history.
type Experience struct {
	ID          string `json:"id"`
	Company     string `json:"company" form:"company" validate:"max=120"`
	Position    string `json:"position" form:"position" validate:"max=120"`
	Duration    string `json:"duration" form:"duration" validate:"max=60"`
	Description string `json:"description" form:"description" validate:"max=2000"`
}

// User represents a team member account.
type User struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	Email          string       `json:"email"`
	Phone          string       `json:"phone,omitempty"`
	Username       string       `json:"username"`
	PasswordHash   string       `json:"-"`
	Role           rbac.Role    `json:"role"`
	ProfilePicture string       `json:"profile_picture,omitempty"`
	Biography      string       `json:"biography,omitempty"`
	AboutMe        string       `json:"about_me,omitempty"`
	Experiences    []Experience `json:"experiences,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// GetID implements rbac.Entity and store.Record.
func (u User) GetID() string {
	return u.ID
}

// Actor returns the identity used for authorization checks.
func (u User) Actor() *rbac.Actor {
	return &rbac.Actor{ID: u.ID, Role: u.Role, Name: u.Name}
}

// Initial is the avatar fallback letter.
func (u User) Initial() string {
	r, _ := utf8.DecodeRuneInString(strings.TrimSpace(u.Name))
	if r == utf8.RuneError {
		return "?"
	}
	return strings.ToUpper(string(r))
}

// Input carries the editable fields of a member.
type Input struct {
	Name           string       `form:"name" validate:"required,max=120"`
	Email          string       `form:"email" validate:"required,email,max=254"`
	Phone          string       `form:"phone" validate:"max=40"`
	Username       string       `form:"username" validate:"required,max=60"`
	Password       string       `form:"password" validate:"max=72"`
	Role           rbac.Role    `form:"role" validate:"omitempty,oneof=super_admin user"`
	ProfilePicture string       `form:"profile_picture" validate:"max=2048"`
	Biography      string       `form:"biography" validate:"max=2000"`
	AboutMe        string       `form:"about_me" validate:"max=4000"`
	Experiences    []Experience `form:"experiences" validate:"dive"`
}

func (in Input) normalized() Input {
	out := Input{
		Name:           strings.TrimSpace(in.Name),
		Email:          strings.TrimSpace(in.Email),
		Phone:          strings.TrimSpace(in.Phone),
		Username:       strings.TrimSpace(in.Username),
		Password:       normalizedPassword(in.Password),
		Role:           in.Role,
		ProfilePicture: strings.TrimSpace(in.ProfilePicture),
		Biography:      strings.TrimSpace(in.Biography),
		AboutMe:        strings.TrimSpace(in.AboutMe),
	}
	for _, exp := range in.Experiences {
		exp.Company = strings.TrimSpace(exp.Company)
		exp.Position = strings.TrimSpace(exp.Position)
		exp.Duration = strings.TrimSpace(exp.Duration)
		exp.Description = strings.TrimSpace(exp.Description)
		if exp.Company == "" && exp.Position == "" {
			continue
		}
		out.Experiences = append(out.Experiences, exp)
	}
	return out
}

// normalizedPassword keeps a password byte for byte so it matches what the login form
// sends. A whitespace-only value counts as no password.
func normalizedPassword(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	return raw
}

// InputFrom pre-fills an edit form.
func InputFrom(u User) Input {
	return Input{
		Name:           u.Name,
		Email:          u.Email,
		Phone:          u.Phone,
		Username:       u.Username,
		Role:           u.Role,
		ProfilePicture: u.ProfilePicture,
		Biography:      u.Biography,
		AboutMe:        u.AboutMe,
		Experiences:    append([]Experience(nil), u.Experiences...),
	}
}
