package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/jobboard/internal/app/models"
	"github.com/yigit/jobboard/internal/app/models/dto"
	"github.com/yigit/jobboard/internal/app/repositories"
	"github.com/yigit/jobboard/internal/pkg/apperrors"
	"github.com/yigit/jobboard/internal/pkg/auth"
	"github.com/yigit/jobboard/internal/pkg/email"
	"github.com/yigit/jobboard/internal/pkg/oauth"
	"github.com/yigit/jobboard/internal/pkg/sanitize"
)

// Auth errors
var (
	ErrInvalidCredentials = apperrors.NewCustomError(apperrors.ErrInvalidCredentials, "Invalid email or password")
	ErrWrongPassword      = apperrors.NewValidationError("Current password is incorrect", currentPasswordField)
	ErrAccountGone        = apperrors.NewUnauthenticatedError("Account no longer exists")

	// Provider sign-in only attaches to an existing account when the provider vouches for the email
	ErrProviderEmailUnverified = apperrors.NewConflictError("An account with this email already exists; sign in with your password instead")
	ErrProviderLinkConflict    = apperrors.NewConflictError("This account is already linked to another sign-in provider")
	ErrProviderLinkAdmin       = apperrors.NewForbiddenError("Administrator accounts cannot sign in through a provider")
)

var currentPasswordField = apperrors.FieldError{Field: "current_password", Message: "current_password is incorrect"}

// TokenIssuer signs identity tokens
type TokenIssuer interface {
	Issue(identity models.Identity) (*auth.IssuedToken, error)
}

// AuthService handles credentials, sessions and profiles
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	OAuthLogin(ctx context.Context, provider models.AuthProvider, req *dto.OAuthLoginRequest) (*dto.AuthResponse, error)
	Refresh(ctx context.Context, identity models.Identity) (*dto.AuthResponse, error)
	Me(ctx context.Context, identity models.Identity) (*models.UserWithProfile, error)
	UpdateProfile(ctx context.Context, identity models.Identity, req *dto.UpdateProfileRequest) (*models.UserWithProfile, error)
	ChangePassword(ctx context.Context, identity models.Identity, req *dto.ChangePasswordRequest) error
}

type authServiceImpl struct {
	userRepo     repositories.IUserRepository
	tokens       TokenIssuer
	hasher       auth.PasswordHasher
	emailService email.EmailService
	providers    map[models.AuthProvider]oauth.Provider
	logger       zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo repositories.IUserRepository,
	tokens TokenIssuer,
	hasher auth.PasswordHasher,
	emailService email.EmailService,
	providers []oauth.Provider,
	logger zerolog.Logger,
) AuthService {
	byName := make(map[models.AuthProvider]oauth.Provider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}
	return &authServiceImpl{
		userRepo:     userRepo,
		tokens:       tokens,
		hasher:       hasher,
		emailService: emailService,
		providers:    byName,
		logger:       logger,
	}
}

func (s *authServiceImpl) session(user *models.User) (*dto.AuthResponse, error) {
	token, err := s.tokens.Issue(user.Identity())
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to issue token", err)
	}
	return &dto.AuthResponse{
		User:      user,
		Token:     token.Token,
		ExpiresAt: token.ExpiresAt,
		ExpiresIn: token.ExpiresIn,
	}, nil
}

// Register creates a local account and starts a session
func (s *authServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	emailAddr := models.NormalizeEmail(req.Email)
	role := req.Role
	if role == "" {
		role = models.RoleUser
	}
	if role == models.RoleAdmin {
		return nil, apperrors.NewValidationError("Invalid role", apperrors.FieldError{Field: "role", Message: "role must be one of: user employer"})
	}

	// The unique index is authoritative; this check only spares a bcrypt round
	if _, err := s.userRepo.GetByEmail(ctx, emailAddr); err == nil {
		return nil, apperrors.ErrEmailAlreadyExists
	} else if !errors.Is(err, apperrors.ErrUserNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to hash password", err)
	}

	user, err := s.userRepo.Create(ctx, models.NewUser{
		Email:        emailAddr,
		PasswordHash: &hash,
		Name:         sanitize.Text(req.Name),
		Role:         role,
		AuthProvider: models.ProviderLocal,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("userID", user.ID).Str("role", string(user.Role)).Msg("User registered")

	if err := s.emailService.SendWelcomeEmail(user.Email, user.Name); err != nil {
		s.logger.Warn().Err(err).Int64("userID", user.ID).Msg("Failed to send welcome email")
	}

	return s.session(user)
}

// Login verifies a password. Unknown emails and wrong passwords fail the same way.
func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.HasPassword() || !s.hasher.Compare(req.Password, *user.PasswordHash) {
		s.logger.Warn().Int64("userID", user.ID).Msg("Failed login attempt")
		return nil, ErrInvalidCredentials
	}

	return s.session(user)
}

// OAuthLogin resolves a provider credential into a local account: by provider id,
// then by a provider-verified email (linking the provider to a non-admin account
// with no other link), otherwise a new user-role account.
func (s *authServiceImpl) OAuthLogin(ctx context.Context, providerName models.AuthProvider, req *dto.OAuthLoginRequest) (*dto.AuthResponse, error) {
	provider, ok := s.providers[providerName]
	if !ok || !provider.Enabled() {
		return nil, apperrors.NewBadRequestError(fmt.Sprintf("%s sign-in is not configured", providerName))
	}

	profile, err := provider.Resolve(ctx, oauth.Credential{
		Code:        req.Code,
		RedirectURI: req.RedirectURI,
		AccessToken: req.AccessToken,
	})
	if err != nil {
		switch {
		case errors.Is(err, oauth.ErrNoCredential):
			return nil, apperrors.NewBadRequestError("Authorization code or access token is required")
		case errors.Is(err, oauth.ErrNoEmail):
			return nil, apperrors.NewBadRequestError("The provider account has no email address")
		}
		return nil, apperrors.NewInternalError(fmt.Sprintf("Failed to verify %s credential", providerName), err)
	}

	user, err := s.userRepo.GetByProvider(ctx, profile.Provider, profile.ProviderID)
	if err == nil {
		return s.session(user)
	}
	if !errors.Is(err, apperrors.ErrUserNotFound) {
		return nil, err
	}

	var avatar *string
	if profile.AvatarURL != "" {
		avatar = &profile.AvatarURL
	}

	user, err = s.userRepo.GetByEmail(ctx, profile.Email)
	switch {
	case err == nil:
		switch {
		case !profile.EmailVerified:
			return nil, ErrProviderEmailUnverified
		case user.Role == models.RoleAdmin:
			s.logger.Warn().Int64("userID", user.ID).Str("provider", string(profile.Provider)).Msg("Refused provider link onto admin account")
			return nil, ErrProviderLinkAdmin
		case user.ProviderID != nil:
			return nil, ErrProviderLinkConflict
		}
		if err := s.userRepo.LinkProvider(ctx, user.ID, profile.Provider, profile.ProviderID, profile.EmailVerified, avatar); err != nil {
			return nil, err
		}
		s.logger.Info().Int64("userID", user.ID).Str("provider", string(profile.Provider)).Msg("Linked provider to existing account")
		if user, err = s.userRepo.GetByID(ctx, user.ID); err != nil {
			return nil, err
		}
	case errors.Is(err, apperrors.ErrUserNotFound):
		providerID := profile.ProviderID
		user, err = s.userRepo.Create(ctx, models.NewUser{
			Email:         profile.Email,
			Name:          sanitize.Text(profile.Name),
			Role:          models.RoleUser,
			EmailVerified: profile.EmailVerified,
			AuthProvider:  profile.Provider,
			ProviderID:    &providerID,
			AvatarURL:     avatar,
		})
		if err != nil {
			return nil, err
		}
		s.logger.Info().Int64("userID", user.ID).Str("provider", string(profile.Provider)).Msg("User registered through provider")
	default:
		return nil, err
	}

	return s.session(user)
}

// Refresh re-reads the user so role changes and deletions take effect
func (s *authServiceImpl) Refresh(ctx context.Context, identity models.Identity) (*dto.AuthResponse, error) {
	user, err := s.userRepo.GetByID(ctx, identity.ID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, ErrAccountGone
		}
		return nil, err
	}
	return s.session(user)
}

// Me returns the user with profile fields
func (s *authServiceImpl) Me(ctx context.Context, identity models.Identity) (*models.UserWithProfile, error) {
	user, err := s.userRepo.GetByID(ctx, identity.ID)
	if err != nil {
		return nil, err
	}
	profile, err := s.userRepo.GetProfile(ctx, identity.ID)
	if err != nil {
		return nil, err
	}
	return &models.UserWithProfile{User: *user, Profile: profile}, nil
}

// UpdateProfile writes the allow-listed user and profile fields
func (s *authServiceImpl) UpdateProfile(ctx context.Context, identity models.Identity, req *dto.UpdateProfileRequest) (*models.UserWithProfile, error) {
	userUpdate := models.UserUpdate{
		Name:      sanitize.TextPtr(req.Name),
		AvatarURL: trimmed(req.AvatarURL),
	}
	if err := s.userRepo.UpdateFields(ctx, identity.ID, userUpdate); err != nil {
		return nil, err
	}

	profileUpdate := models.ProfileUpdate{
		Phone:     trimmed(req.Phone),
		Bio:       sanitize.TextPtr(req.Bio),
		Location:  sanitize.TextPtr(req.Location),
		ResumeURL: trimmed(req.ResumeURL),
	}
	if req.Skills != nil {
		profileUpdate.Skills = sanitize.Texts(req.Skills)
	}
	if !profileUpdate.IsEmpty() {
		if _, err := s.userRepo.UpsertProfile(ctx, identity.ID, profileUpdate); err != nil {
			return nil, err
		}
	}

	return s.Me(ctx, identity)
}

// ChangePassword replaces the password after checking the current one
func (s *authServiceImpl) ChangePassword(ctx context.Context, identity models.Identity, req *dto.ChangePasswordRequest) error {
	user, err := s.userRepo.GetByID(ctx, identity.ID)
	if err != nil {
		return err
	}
	if !user.HasPassword() {
		return apperrors.ErrPasswordNotSet
	}
	if !s.hasher.Compare(req.CurrentPassword, *user.PasswordHash) {
		return ErrWrongPassword
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return apperrors.NewInternalError("Failed to hash password", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}

	s.logger.Info().Int64("userID", user.ID).Msg("Password changed")
	return nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
