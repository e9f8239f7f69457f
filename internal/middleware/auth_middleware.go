package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/jobboard/internal/app/models"
	"github.com/yigit/jobboard/internal/app/models/dto"
	"github.com/yigit/jobboard/internal/pkg/auth"
	"github.com/yigit/jobboard/internal/pkg/logger"
)

const identityKey = "identity"

// TokenVerifier verifies a bearer token and returns the embedded identity
type TokenVerifier interface {
	Verify(token string) (models.Identity, error)
}

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	verifier TokenVerifier
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(verifier TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// Authenticate requires a valid bearer token.
// A missing header yields 401, a malformed, invalid or expired token yields 403.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		m.authenticate(c, c.GetHeader("Authorization"))
	}
}

// AuthenticateWebSocket accepts the token from the "token" query parameter when
// the Authorization header is absent, since browsers cannot set headers on upgrade.
func (m *AuthMiddleware) AuthenticateWebSocket() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			if token := c.Query("token"); token != "" {
				header = "Bearer " + token
			}
		}
		m.authenticate(c, header)
	}
}

func (m *AuthMiddleware) authenticate(c *gin.Context, header string) {
	token, err := auth.ExtractBearerToken(header)
	if errors.Is(err, auth.ErrMissingToken) {
		abortWith(c, http.StatusUnauthorized, "Access token is required")
		return
	}
	if err != nil {
		abortWith(c, http.StatusForbidden, "Invalid or expired token")
		return
	}

	identity, err := m.verifier.Verify(token)
	if err != nil {
		logger.Debug().Err(err).Str("path", c.FullPath()).Msg("Rejected bearer token")
		abortWith(c, http.StatusForbidden, "Invalid or expired token")
		return
	}

	c.Set(identityKey, identity)
	c.Next()
}

// OptionalAuthenticate attaches an identity when a valid token is presented and never fails
func (m *AuthMiddleware) OptionalAuthenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ExtractBearerToken(c.GetHeader("Authorization"))
		if err == nil {
			if identity, err := m.verifier.Verify(token); err == nil {
				c.Set(identityKey, identity)
			}
		}
		c.Next()
	}
}

// RequireRole allows the request only when the attached identity has one of roles.
// It must run after Authenticate; without an identity it yields 401.
func (m *AuthMiddleware) RequireRole(roles ...models.RoleType) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := CurrentIdentity(c)
		if !ok {
			abortWith(c, http.StatusUnauthorized, "Authentication required")
			return
		}
		if !identity.HasRole(roles...) {
			abortWith(c, http.StatusForbidden, "Insufficient permissions")
			return
		}
		c.Next()
	}
}

// CurrentIdentity returns the identity attached by the authentication middleware
func CurrentIdentity(c *gin.Context) (models.Identity, bool) {
	v, exists := c.Get(identityKey)
	if !exists {
		return models.Identity{}, false
	}
	identity, ok := v.(models.Identity)
	return identity, ok
}

func abortWith(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(message))
}
