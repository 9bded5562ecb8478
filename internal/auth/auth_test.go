package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
)

func TestMapProviderError(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"EMAIL_NOT_FOUND", "No account exists with that email. Try signing up instead."},
		{"INVALID_PASSWORD", "Incorrect password. Please try again."},
		// the ambiguous credential code is read as a wrong password
		{"INVALID_LOGIN_CREDENTIALS", "Incorrect password. Please try again."},
		{"USER_DISABLED", "This account has been disabled. Contact support for help."},
		{"TOO_MANY_ATTEMPTS_TRY_LATER", "Too many attempts. Please wait a few minutes and try again."},
		{"EMAIL_EXISTS", "An account with that email already exists. Try signing in."},
		{"SOMETHING_NEW", "Sign-in failed. Please check your details and try again."},
		{"", "Sign-in failed. Please check your details and try again."},
	}
	for _, tt := range tests {
		if got := MapProviderError(tt.code); got != tt.want {
			t.Errorf("MapProviderError(%q) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestSignInSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "accounts:signInWithPassword") {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "api-key" {
			t.Errorf("key = %q", r.URL.Query().Get("key"))
		}
		json.NewEncoder(w).Encode(map[string]string{
			"localId":      "u-42",
			"email":        "eve@example.com",
			"idToken":      "tok",
			"refreshToken": "refresh",
			"expiresIn":    "3600",
		})
	}))
	defer srv.Close()

	p := NewProvider(srv.URL, "api-key")
	session, err := p.SignIn(context.Background(), "eve@example.com", "hunter22")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if session.UserID != "u-42" || session.IDToken != "tok" {
		t.Fatalf("session = %+v", session)
	}
	token, err := session.Token(context.Background())
	if err != nil || token != "tok" {
		t.Fatalf("token source broken: %q %v", token, err)
	}
}

func TestSignInMapsProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "EMAIL_NOT_FOUND"},
		})
	}))
	defer srv.Close()

	p := NewProvider(srv.URL, "api-key")
	_, err := p.SignIn(context.Background(), "ghost@example.com", "pw")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "No account exists") {
		t.Fatalf("error not mapped: %v", err)
	}
}

func TestSessionRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")

	if s, err := LoadSession(path); err != nil || s != nil {
		t.Fatalf("missing session should be (nil, nil), got %v %v", s, err)
	}

	in := &Session{UserID: "u-1", Email: "a@b.c", IDToken: "tok"}
	if err := SaveSession(path, in); err != nil {
		t.Fatalf("save: %v", err)
	}
	out, err := LoadSession(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if out.UserID != "u-1" || out.IDToken != "tok" {
		t.Fatalf("round trip lost data: %+v", out)
	}

	if err := ClearSession(path); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if s, _ := LoadSession(path); s != nil {
		t.Fatalf("session should be gone after clear")
	}
	// clearing twice is fine
	if err := ClearSession(path); err != nil {
		t.Fatalf("second clear: %v", err)
	}
}
