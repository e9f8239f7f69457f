package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/yigit/jobboard/internal/app/models"
	"github.com/yigit/jobboard/internal/pkg/apperrors"
)

// DefaultTokenTTL is the fixed validity window of an issued token
const DefaultTokenTTL = 7 * 24 * time.Hour

// Token errors. Both unwrap to apperrors.ErrTokenInvalid.
var (
	ErrInvalidToken = fmt.Errorf("%w", apperrors.ErrTokenInvalid)
	ErrExpiredToken = fmt.Errorf("token expired: %w", apperrors.ErrTokenInvalid)
	ErrMissingToken = errors.New("authorization header missing")
)

// JWTConfig defines JWT configuration settings
type JWTConfig struct {
	SecretKey   string
	TokenTTL    time.Duration
	TokenIssuer string
}

// JWTService issues and verifies identity tokens. It holds no per-token state.
type JWTService struct {
	config JWTConfig
	now    func() time.Time
}

// NewJWTService creates a new JWT service
func NewJWTService(config JWTConfig) *JWTService {
	if config.TokenTTL <= 0 {
		config.TokenTTL = DefaultTokenTTL
	}
	return &JWTService{
		config: config,
		now:    time.Now,
	}
}

// WithClock replaces the time source, used to issue tokens at a fixed instant
func (s *JWTService) WithClock(now func() time.Time) *JWTService {
	s.now = now
	return s
}

// Claims defines JWT token content
type Claims struct {
	UserID int64           `json:"userId"`
	Email  string          `json:"email"`
	Role   models.RoleType `json:"role"`
	jwt.RegisteredClaims
}

// IssuedToken is a signed token with its expiry
type IssuedToken struct {
	Token     string
	ExpiresAt time.Time
	ExpiresIn int
}

// Issue signs a token for the identity, valid for the configured window from now
func (s *JWTService) Issue(identity models.Identity) (*IssuedToken, error) {
	now := s.now()
	expiresAt := now.Add(s.config.TokenTTL)

	claims := &Claims{
		UserID: identity.ID,
		Email:  identity.Email,
		Role:   identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.config.TokenIssuer,
			Subject:   strconv.FormatInt(identity.ID, 10),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.SecretKey))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &IssuedToken{
		Token:     signed,
		ExpiresAt: expiresAt,
		ExpiresIn: int(s.config.TokenTTL.Seconds()),
	}, nil
}

// Verify checks signature and expiry and returns the embedded identity
func (s *JWTService) Verify(tokenString string) (models.Identity, error) {
	if tokenString == "" {
		return models.Identity{}, ErrInvalidToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.SecretKey), nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return models.Identity{}, ErrExpiredToken
		}
		return models.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return models.Identity{}, ErrInvalidToken
	}

	if claims.UserID <= 0 || claims.Email == "" || !claims.Role.Valid() {
		return models.Identity{}, ErrInvalidToken
	}

	return models.Identity{ID: claims.UserID, Email: claims.Email, Role: claims.Role}, nil
}

// ExtractBearerToken extracts the token from an "Authorization: Bearer <token>" header value
func ExtractBearerToken(authHeader string) (string, error) {
	authHeader = strings.TrimSpace(authHeader)
	if authHeader == "" {
		return "", ErrMissingToken
	}

	scheme, token, found := strings.Cut(authHeader, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrInvalidToken
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrInvalidToken
	}
	return token, nil
}
