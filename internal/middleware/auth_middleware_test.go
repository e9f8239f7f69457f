package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yigit/jobboard/internal/app/models"
	"github.com/yigit/jobboard/internal/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestJWT() *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{SecretKey: "middleware-test-secret", TokenIssuer: "test"})
}

func issue(t *testing.T, svc *auth.JWTService, role models.RoleType) string {
	t.Helper()
	tok, err := svc.Issue(models.Identity{ID: 7, Email: "u@example.com", Role: role})
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	return tok.Token
}

func newGuardedRouter(m *AuthMiddleware, handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	chain := append(handlers, func(c *gin.Context) {
		identity, ok := CurrentIdentity(c)
		c.JSON(http.StatusOK, gin.H{"authenticated": ok, "id": identity.ID})
	})
	r.GET("/x", chain...)
	return r
}

func do(r http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ── Authenticate ───────────────────────────────────────────────

func TestAuthenticate(t *testing.T) {
	svc := newTestJWT()
	m := NewAuthMiddleware(svc)
	r := newGuardedRouter(m, m.Authenticate())

	expired := newTestJWT().WithClock(func() time.Time { return time.Now().Add(-8 * 24 * time.Hour) })

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusForbidden},
		{"garbage token", "Bearer not-a-jwt", http.StatusForbidden},
		{"expired token", "Bearer " + issue(t, expired, models.RoleUser), http.StatusForbidden},
		{"valid token", "Bearer " + issue(t, svc, models.RoleUser), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, tt.header)
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.want, w.Body.String())
			}
			var body map[string]any
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if tt.want != http.StatusOK {
				if body["success"] != false || body["message"] == "" {
					t.Errorf("unexpected failure envelope: %v", body)
				}
			} else if body["id"] != float64(7) {
				t.Errorf("identity not attached: %v", body)
			}
		})
	}
}

func TestAuthenticateWebSocket_QueryToken(t *testing.T) {
	svc := newTestJWT()
	m := NewAuthMiddleware(svc)
	r := gin.New()
	r.GET("/ws", m.AuthenticateWebSocket(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/ws?token="+issue(t, svc, models.RoleUser), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
}

// ── RequireRole ────────────────────────────────────────────────

func TestRequireRole(t *testing.T) {
	svc := newTestJWT()
	m := NewAuthMiddleware(svc)
	r := newGuardedRouter(m, m.Authenticate(), m.RequireRole(models.RoleEmployer, models.RoleAdmin))

	tests := []struct {
		role models.RoleType
		want int
	}{
		{models.RoleUser, http.StatusForbidden},
		{models.RoleEmployer, http.StatusOK},
		{models.RoleAdmin, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			if w := do(r, "Bearer "+issue(t, svc, tt.role)); w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestRequireRole_WithoutIdentity(t *testing.T) {
	m := NewAuthMiddleware(newTestJWT())
	r := newGuardedRouter(m, m.RequireRole(models.RoleAdmin))
	if w := do(r, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

// ── OptionalAuthenticate ───────────────────────────────────────

func TestOptionalAuthenticate(t *testing.T) {
	svc := newTestJWT()
	m := NewAuthMiddleware(svc)
	r := newGuardedRouter(m, m.OptionalAuthenticate())

	tests := []struct {
		name     string
		header   string
		wantAuth bool
	}{
		{"no header", "", false},
		{"bad token", "Bearer nope", false},
		{"valid token", "Bearer " + issue(t, svc, models.RoleUser), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, tt.header)
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", w.Code)
			}
			var body map[string]any
			_ = json.Unmarshal(w.Body.Bytes(), &body)
			if body["authenticated"] != tt.wantAuth {
				t.Errorf("authenticated = %v, want %v", body["authenticated"], tt.wantAuth)
			}
		})
	}
}
