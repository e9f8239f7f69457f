package dto

import (
	"time"

	"github.com/yigit/jobboard/internal/app/models"
)

// RegisterRequest represents the data needed to register a local account
type RegisterRequest struct {
	Email    string          `json:"email" binding:"required,email,max=255" example:"jane@example.com"`
	Password string          `json:"password" binding:"required,min=8,max=72" example:"s3cretpass"`
	Name     string          `json:"name" binding:"required,notblank,min=2,max=100" example:"Jane Doe"`
	Role     models.RoleType `json:"role" binding:"omitempty,oneof=user employer" example:"employer"`
}

// LoginRequest represents the data needed to sign in with a password
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"jane@example.com"`
	Password string `json:"password" binding:"required" example:"s3cretpass"`
}

// OAuthLoginRequest carries either an authorization code or a provider access token
type OAuthLoginRequest struct {
	Code        string `json:"code" binding:"required_without=AccessToken"`
	RedirectURI string `json:"redirect_uri" binding:"omitempty,url"`
	AccessToken string `json:"access_token" binding:"required_without=Code"`
}

// UpdateProfileRequest lists the profile fields a user may change
type UpdateProfileRequest struct {
	Name      *string  `json:"name" binding:"omitempty,notblank,min=2,max=100"`
	AvatarURL *string  `json:"avatar_url" binding:"omitempty,url,max=2048"`
	Phone     *string  `json:"phone" binding:"omitempty,max=30"`
	Bio       *string  `json:"bio" binding:"omitempty,max=2000"`
	Location  *string  `json:"location" binding:"omitempty,max=200"`
	ResumeURL *string  `json:"resume_url" binding:"omitempty,url,max=2048"`
	Skills    []string `json:"skills" binding:"omitempty,max=50,dive,notblank,max=100"`
}

// ChangePasswordRequest represents a password change
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=72,nefield=CurrentPassword"`
}

// AuthResponse is returned by every endpoint that starts a session
type AuthResponse struct {
	User      *models.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	ExpiresIn int          `json:"expires_in"`
}
