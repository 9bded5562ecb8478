// Package auth signs users in against the identity provider's REST
// API and keeps the resulting session on disk. The rest of the app
// only ever sees it as an opaque bearer-token source.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultProviderURL = "https://identitytoolkit.googleapis.com/v1"

type Provider struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// Session is a signed-in user. It satisfies client.TokenSource.
type Session struct {
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name,omitempty"`
	IDToken      string    `json:"id_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func (s *Session) Token(ctx context.Context) (string, error) {
	if s == nil || s.IDToken == "" {
		return "", fmt.Errorf("not signed in")
	}
	return s.IDToken, nil
}

func NewProvider(baseURL, apiKey string) *Provider {
	if baseURL == "" {
		baseURL = defaultProviderURL
	}
	return &Provider{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: 20 * time.Second},
	}
}

type credentialResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

func (p *Provider) SignIn(ctx context.Context, email, password string) (*Session, error) {
	return p.credentialCall(ctx, "accounts:signInWithPassword", email, password)
}

func (p *Provider) SignUp(ctx context.Context, email, password string) (*Session, error) {
	return p.credentialCall(ctx, "accounts:signUp", email, password)
}

func (p *Provider) credentialCall(ctx context.Context, endpoint, email, password string) (*Session, error) {
	reqBody, err := json.Marshal(map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
	if err != nil {
		return nil, fmt.Errorf("encode credentials: %w", err)
	}

	url := fmt.Sprintf("%s/%s?key=%s", p.BaseURL, endpoint, p.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute auth request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read auth response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s", MapProviderError(providerErrorCode(body)))
	}

	var parsed credentialResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode auth response: %w", err)
	}

	session := &Session{
		UserID:       parsed.LocalID,
		Email:        parsed.Email,
		DisplayName:  parsed.DisplayName,
		IDToken:      parsed.IDToken,
		RefreshToken: parsed.RefreshToken,
	}
	if secs, err := time.ParseDuration(parsed.ExpiresIn + "s"); err == nil {
		session.ExpiresAt = time.Now().Add(secs)
	}
	return session, nil
}

func providerErrorCode(body []byte) string {
	var parsed struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ""
	}
	// codes occasionally arrive suffixed, e.g. "TOO_MANY_ATTEMPTS_TRY_LATER : ..."
	code, _, _ := strings.Cut(parsed.Error.Message, " ")
	return code
}

// MapProviderError converts a provider error code into the fixed
// human string shown to the user. The ambiguous invalid-credential
// code is interpreted as a wrong password rather than an unknown
// account; that is a guess, but it is right far more often.
func MapProviderError(code string) string {
	switch code {
	case "INVALID_EMAIL":
		return "That email address doesn't look right."
	case "EMAIL_NOT_FOUND":
		return "No account exists with that email. Try signing up instead."
	case "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS":
		return "Incorrect password. Please try again."
	case "USER_DISABLED":
		return "This account has been disabled. Contact support for help."
	case "TOO_MANY_ATTEMPTS_TRY_LATER":
		return "Too many attempts. Please wait a few minutes and try again."
	case "EMAIL_EXISTS":
		return "An account with that email already exists. Try signing in."
	case "WEAK_PASSWORD":
		return "Please choose a stronger password (at least 6 characters)."
	default:
		return "Sign-in failed. Please check your details and try again."
	}
}
