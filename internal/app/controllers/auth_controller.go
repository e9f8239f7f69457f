package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/jobboard/internal/app/models"
	"github.com/yigit/jobboard/internal/app/models/dto"
	"github.com/yigit/jobboard/internal/app/services"
	"github.com/yigit/jobboard/internal/middleware"
	"github.com/yigit/jobboard/internal/pkg/apperrors"
	"github.com/yigit/jobboard/internal/pkg/ratelimit"
)

// AuthController handles authentication related operations
type AuthController struct {
	authService services.AuthService
	failures    *ratelimit.Limiter
	logger      zerolog.Logger
}

// NewAuthController creates a new AuthController. failures counts wrong
// passwords per client IP and email; it may be nil.
func NewAuthController(authService services.AuthService, failures *ratelimit.Limiter, logger zerolog.Logger) *AuthController {
	return &AuthController{
		authService: authService,
		failures:    failures,
		logger:      logger,
	}
}

// Register handles user registration
// @Summary Register a new user
// @Description Creates a local account with role user or employer and returns a session token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Registration data"
// @Success 201 {object} dto.APIResponse{data=dto.AuthResponse} "Account created"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 409 {object} dto.ErrorResponse "Email already exists"
// @Failure 429 {object} dto.ErrorResponse "Too many attempts"
// @Router /auth/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req dto.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Debug().Err(err).Msg("Invalid registration payload")
		middleware.HandleBindError(ctx, err)
		return
	}

	resp, err := c.authService.Register(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(resp, "Registration successful"))
}

// Login handles password sign-in
// @Summary Sign in with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.APIResponse{data=dto.AuthResponse}
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Failure 429 {object} dto.ErrorResponse "Too many attempts"
// @Router /auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	rctx := ctx.Request.Context()
	subject := ratelimit.Subject(ctx.ClientIP(), req.Email)
	blocked, wait, err := c.failures.Blocked(rctx, subject)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Login failure counter unavailable")
	}
	if blocked {
		middleware.AbortTooManyAttempts(ctx, wait)
		return
	}

	resp, err := c.authService.Login(rctx, &req)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidCredentials) {
			if _, _, herr := c.failures.Allow(rctx, subject); herr != nil {
				c.logger.Warn().Err(herr).Msg("Failed to record login failure")
			}
		}
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.failures.Reset(rctx, subject); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to reset login failures")
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, "Login successful"))
}

// OAuthLogin returns the handler exchanging a provider credential for a local session
// @Summary Sign in with an external provider
// @Description Accepts an authorization code (with optional redirect_uri) or a provider access token. Creates the account on first sign-in. A provider-verified email links an existing non-admin account that has no other provider.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.OAuthLoginRequest true "Provider credential"
// @Success 200 {object} dto.APIResponse{data=dto.AuthResponse}
// @Failure 400 {object} dto.ErrorResponse "Provider disabled or credential rejected"
// @Router /auth/google [post]
// @Router /auth/linkedin [post]
func (c *AuthController) OAuthLogin(provider models.AuthProvider) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var req dto.OAuthLoginRequest
		if err := ctx.ShouldBindJSON(&req); err != nil {
			middleware.HandleBindError(ctx, err)
			return
		}

		resp, err := c.authService.OAuthLogin(ctx.Request.Context(), provider, &req)
		if err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}

		ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, "Login successful"))
	}
}

// Refresh re-issues a token for the current user
// @Summary Refresh the session token
// @Description Re-reads the user so role changes are picked up. Deleted users get 401.
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.AuthResponse}
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/refresh [post]
func (c *AuthController) Refresh(ctx *gin.Context) {
	identity, ok := identityOrAbort(ctx)
	if !ok {
		return
	}

	resp, err := c.authService.Refresh(ctx.Request.Context(), identity)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, "Token refreshed"))
}

// Logout acknowledges a sign-out; tokens are stateless and discarded by the client
// @Summary Sign out
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse
// @Router /auth/logout [post]
func (c *AuthController) Logout(ctx *gin.Context) {
	if identity, ok := middleware.CurrentIdentity(ctx); ok {
		c.logger.Debug().Int64("userID", identity.ID).Msg("User signed out")
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Logged out"))
}

// Me returns the current user with profile fields
// @Summary Get current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=models.UserWithProfile}
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /auth/me [get]
func (c *AuthController) Me(ctx *gin.Context) {
	identity, ok := identityOrAbort(ctx)
	if !ok {
		return
	}

	user, err := c.authService.Me(ctx.Request.Context(), identity)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(user, ""))
}

// UpdateProfile updates the allow-listed profile fields
// @Summary Update profile
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateProfileRequest true "Profile fields"
// @Success 200 {object} dto.APIResponse{data=models.UserWithProfile}
// @Failure 400 {object} dto.ErrorResponse
// @Router /auth/profile [put]
func (c *AuthController) UpdateProfile(ctx *gin.Context) {
	identity, ok := identityOrAbort(ctx)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	user, err := c.authService.UpdateProfile(ctx.Request.Context(), identity, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(user, "Profile updated"))
}

// ChangePassword replaces the password after checking the current one
// @Summary Change password
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ChangePasswordRequest true "Current and new password"
// @Success 200 {object} dto.APIResponse
// @Failure 400 {object} dto.ErrorResponse "Wrong current password or OAuth-only account"
// @Router /auth/change-password [put]
func (c *AuthController) ChangePassword(ctx *gin.Context) {
	identity, ok := identityOrAbort(ctx)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	if err := c.authService.ChangePassword(ctx.Request.Context(), identity, &req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Password changed"))
}
