package oauth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yigit/jobboard/internal/app/models"
	"golang.org/x/oauth2"
)

var testClient = ClientConfig{ClientID: "client", ClientSecret: "secret", RedirectURL: "http://localhost/cb"}

func newProviderServer(t *testing.T, userinfo string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.PostForm.Get("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"provider-token","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer provider-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(userinfo))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func endpoint(srv *httptest.Server) oauth2.Endpoint {
	return oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"}
}

// ── Google ─────────────────────────────────────────────────────

func TestGoogleProvider_ResolveCode(t *testing.T) {
	srv := newProviderServer(t, `{"id":"g-123","email":"Jane@Example.com","verified_email":true,"name":"Jane","picture":"https://img/j.png"}`)
	p := NewGoogleProvider(testClient, WithEndpoint(endpoint(srv)), WithUserInfoURL(srv.URL+"/userinfo"))

	profile, err := p.Resolve(context.Background(), Credential{Code: "good-code"})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if profile.Provider != models.ProviderGoogle || profile.ProviderID != "g-123" {
		t.Errorf("unexpected provider identity: %+v", profile)
	}
	if profile.Email != "jane@example.com" || !profile.EmailVerified || profile.AvatarURL != "https://img/j.png" {
		t.Errorf("unexpected profile: %+v", profile)
	}
}

func TestGoogleProvider_ResolveAccessToken(t *testing.T) {
	srv := newProviderServer(t, `{"id":"g-1","email":"a@b.co","name":""}`)
	p := NewGoogleProvider(testClient, WithUserInfoURL(srv.URL+"/userinfo"))

	profile, err := p.Resolve(context.Background(), Credential{AccessToken: "provider-token"})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if profile.Name != "a" {
		t.Errorf("Name = %q, want fallback from email", profile.Name)
	}
}

func TestGoogleProvider_Failures(t *testing.T) {
	srv := newProviderServer(t, `{"id":"g-1","email":""}`)

	tests := []struct {
		name    string
		p       Provider
		cred    Credential
		wantErr error
	}{
		{"not configured", NewGoogleProvider(ClientConfig{}), Credential{Code: "x"}, ErrNotConfigured},
		{"no credential", NewGoogleProvider(testClient), Credential{}, ErrNoCredential},
		{"no email", NewGoogleProvider(testClient, WithUserInfoURL(srv.URL+"/userinfo")), Credential{AccessToken: "provider-token"}, ErrNoEmail},
		{"bad code", NewGoogleProvider(testClient, WithEndpoint(endpoint(srv)), WithUserInfoURL(srv.URL+"/userinfo")), Credential{Code: "bad"}, nil},
		{"rejected token", NewGoogleProvider(testClient, WithUserInfoURL(srv.URL+"/userinfo")), Credential{AccessToken: "wrong"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.p.Resolve(context.Background(), tt.cred)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// ── LinkedIn ───────────────────────────────────────────────────

func TestLinkedInProvider_Resolve(t *testing.T) {
	srv := newProviderServer(t, `{"sub":"li-9","email":"pat@corp.io","email_verified":true,"given_name":"Pat","family_name":"Lee"}`)
	p := NewLinkedInProvider(testClient, WithEndpoint(endpoint(srv)), WithUserInfoURL(srv.URL+"/userinfo"))

	if p.Name() != models.ProviderLinkedIn {
		t.Fatalf("Name() = %q", p.Name())
	}
	profile, err := p.Resolve(context.Background(), Credential{Code: "good-code", RedirectURI: "http://localhost/other"})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if profile.ProviderID != "li-9" || profile.Name != "Pat Lee" || profile.Email != "pat@corp.io" {
		t.Errorf("unexpected profile: %+v", profile)
	}
}
