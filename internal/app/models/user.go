package models

import (
	"strings"
	"time"
)

// User defines the user model based on the 'users' table
type User struct {
	ID            int64        `json:"id" db:"id"`
	Email         string       `json:"email" db:"email"`
	PasswordHash  *string      `json:"-" db:"password_hash"` // NULL for accounts created through OAuth
	Name          string       `json:"name" db:"name"`
	Role          RoleType     `json:"role" db:"role"`
	EmailVerified bool         `json:"email_verified" db:"email_verified"`
	AuthProvider  AuthProvider `json:"auth_provider" db:"auth_provider"`
	ProviderID    *string      `json:"-" db:"provider_id"`
	AvatarURL     *string      `json:"avatar_url,omitempty" db:"avatar_url"`
	CreatedAt     time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at" db:"updated_at"`
}

// Identity returns the token identity of the user
func (u *User) Identity() Identity {
	return Identity{ID: u.ID, Email: u.Email, Role: u.Role}
}

// HasPassword reports whether the user can sign in with a password
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// UserProfile defines the optional profile fields stored in 'user_profiles'
type UserProfile struct {
	UserID    int64     `json:"-" db:"user_id"`
	Phone     *string   `json:"phone,omitempty" db:"phone"`
	Bio       *string   `json:"bio,omitempty" db:"bio"`
	Location  *string   `json:"location,omitempty" db:"location"`
	ResumeURL *string   `json:"resume_url,omitempty" db:"resume_url"`
	Skills    []string  `json:"skills" db:"skills"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// UserWithProfile is the user plus profile fields returned by /auth/me
type UserWithProfile struct {
	User
	Profile *UserProfile `json:"profile"`
}

// NewUser carries the fields needed to insert a credential record
type NewUser struct {
	Email         string
	PasswordHash  *string
	Name          string
	Role          RoleType
	EmailVerified bool
	AuthProvider  AuthProvider
	ProviderID    *string
	AvatarURL     *string
}

// UserUpdate lists the user columns a profile edit may change; nil fields are left alone
type UserUpdate struct {
	Name      *string
	AvatarURL *string
}

// ProfileUpdate lists the profile columns a profile edit may change; nil fields are left alone
type ProfileUpdate struct {
	Phone     *string
	Bio       *string
	Location  *string
	ResumeURL *string
	Skills    []string
}

// IsEmpty reports whether the update changes nothing
func (p ProfileUpdate) IsEmpty() bool {
	return p.Phone == nil && p.Bio == nil && p.Location == nil && p.ResumeURL == nil && p.Skills == nil
}

// UserFilter narrows the admin user listing
type UserFilter struct {
	Search string
	Role   RoleType
}

// NormalizeEmail returns the comparison key used for email lookups
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
