package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/yigit/jobboard/internal/app/models"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/linkedin"
)

// Userinfo endpoints of the supported providers
const (
	GoogleUserInfoURL   = "https://www.googleapis.com/oauth2/v2/userinfo"
	LinkedInUserInfoURL = "https://api.linkedin.com/v2/userinfo"
)

var (
	// ErrNotConfigured is returned when the provider has no client credentials
	ErrNotConfigured = errors.New("oauth provider is not configured")
	// ErrNoCredential is returned when neither a code nor an access token was supplied
	ErrNoCredential = errors.New("authorization code or access token is required")
	// ErrNoEmail is returned when the provider profile carries no email address
	ErrNoEmail = errors.New("provider did not return an email address")
)

// Credential is what the client obtained from the provider
type Credential struct {
	Code        string
	RedirectURI string
	AccessToken string
}

// Profile is the normalized identity returned by a provider
type Profile struct {
	Provider      models.AuthProvider
	ProviderID    string
	Email         string
	EmailVerified bool
	Name          string
	AvatarURL     string
}

// Provider resolves a client credential into a provider profile
type Provider interface {
	Name() models.AuthProvider
	Enabled() bool
	Resolve(ctx context.Context, cred Credential) (*Profile, error)
}

// ClientConfig holds the registered application credentials
type ClientConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

type profileDecoder func(body []byte) (*Profile, error)

type provider struct {
	name        models.AuthProvider
	config      oauth2.Config
	userInfoURL string
	decode      profileDecoder
	httpClient  *http.Client
}

// Option customizes a provider
type Option func(*provider)

// WithUserInfoURL overrides the userinfo endpoint
func WithUserInfoURL(url string) Option {
	return func(p *provider) { p.userInfoURL = url }
}

// WithEndpoint overrides the token endpoint
func WithEndpoint(endpoint oauth2.Endpoint) Option {
	return func(p *provider) { p.config.Endpoint = endpoint }
}

// WithHTTPClient sets the client used for token exchange and profile requests
func WithHTTPClient(client *http.Client) Option {
	return func(p *provider) { p.httpClient = client }
}

// NewGoogleProvider creates a Google sign-in provider
func NewGoogleProvider(cfg ClientConfig, opts ...Option) Provider {
	p := &provider{
		name: models.ProviderGoogle,
		config: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		userInfoURL: GoogleUserInfoURL,
		decode:      decodeGoogle,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewLinkedInProvider creates a LinkedIn (OpenID Connect) sign-in provider
func NewLinkedInProvider(cfg ClientConfig, opts ...Option) Provider {
	p := &provider{
		name: models.ProviderLinkedIn,
		config: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint:     linkedin.Endpoint,
		},
		userInfoURL: LinkedInUserInfoURL,
		decode:      decodeLinkedIn,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *provider) Name() models.AuthProvider {
	return p.name
}

func (p *provider) Enabled() bool {
	return p.config.ClientID != "" && p.config.ClientSecret != ""
}

// Resolve exchanges the code when one is given, then fetches the userinfo profile
func (p *provider) Resolve(ctx context.Context, cred Credential) (*Profile, error) {
	if !p.Enabled() {
		return nil, ErrNotConfigured
	}
	if p.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	}

	var token *oauth2.Token
	switch {
	case cred.Code != "":
		config := p.config
		if cred.RedirectURI != "" {
			config.RedirectURL = cred.RedirectURI
		}
		t, err := config.Exchange(ctx, cred.Code)
		if err != nil {
			return nil, fmt.Errorf("failed to exchange %s code: %w", p.name, err)
		}
		token = t
	case cred.AccessToken != "":
		token = &oauth2.Token{AccessToken: cred.AccessToken, TokenType: "Bearer"}
	default:
		return nil, ErrNoCredential
	}

	client := p.config.Client(ctx, token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build userinfo request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s user info: %w", p.name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s user info: %w", p.name, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s user info returned status %d", p.name, resp.StatusCode)
	}

	profile, err := p.decode(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s user info: %w", p.name, err)
	}
	profile.Provider = p.name
	profile.Email = models.NormalizeEmail(profile.Email)
	if profile.ProviderID == "" {
		return nil, fmt.Errorf("%s user info has no subject id", p.name)
	}
	if profile.Email == "" {
		return nil, ErrNoEmail
	}
	if strings.TrimSpace(profile.Name) == "" {
		profile.Name = strings.Split(profile.Email, "@")[0]
	}
	return profile, nil
}

func decodeGoogle(body []byte) (*Profile, error) {
	var u struct {
		ID            string `json:"id"`
		Email         string `json:"email"`
		VerifiedEmail bool   `json:"verified_email"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}
	if err := json.Unmarshal(body, &u); err != nil {
		return nil, err
	}
	return &Profile{
		ProviderID:    u.ID,
		Email:         u.Email,
		EmailVerified: u.VerifiedEmail,
		Name:          u.Name,
		AvatarURL:     u.Picture,
	}, nil
}

func decodeLinkedIn(body []byte) (*Profile, error) {
	var u struct {
		Sub           string `json:"sub"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
		GivenName     string `json:"given_name"`
		FamilyName    string `json:"family_name"`
		Picture       string `json:"picture"`
	}
	if err := json.Unmarshal(body, &u); err != nil {
		return nil, err
	}
	name := u.Name
	if name == "" {
		name = strings.TrimSpace(u.GivenName + " " + u.FamilyName)
	}
	return &Profile{
		ProviderID:    u.Sub,
		Email:         u.Email,
		EmailVerified: u.EmailVerified,
		Name:          name,
		AvatarURL:     u.Picture,
	}, nil
}
