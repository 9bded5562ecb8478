// Package client wraps the PickBetter backend HTTP API. Every method
// decodes into loosely typed payloads and leaves shaping to the
// normalize package; the only errors returned here are transport
// failures.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

const (
	defaultChatTimeout = 45 * time.Second
	userAgent          = "labelscan/1.0"
)

// TokenSource yields the bearer token for authenticated calls. The
// auth package's Session implements it; an anonymous client may pass
// nil.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Backend is the surface the scan coordinator needs. Implemented by
// *Client and by the offline demo backend.
type Backend interface {
	Scan(ctx context.Context, barcode string) (map[string]any, int, error)
	Contribute(ctx context.Context, in ContributionInput) (*ContributionResult, error)
	Chat(ctx context.Context, messages []ChatMessage, profile map[string]any) (string, error)
}

type Client struct {
	BaseURL     string
	HTTPClient  *http.Client
	Tokens      TokenSource
	ChatTimeout time.Duration
}

type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// ContributionInput is the multipart form for POST /contribute/. The
// nutrition label photo is required, the ingredients photo optional.
type ContributionInput struct {
	Barcode          string
	NutritionImage   io.Reader
	NutritionName    string
	IngredientsImage io.Reader
	IngredientsName  string
	ProductName      string
	Brand            string
}

// ContributionResult reports how a contribution landed. RateLimited
// marks the 429 soft-success path: the user still gets a thank-you,
// but no analysis payload was produced.
type ContributionResult struct {
	Payload     map[string]any
	Message     string
	RateLimited bool
}

// ChatFallback is returned when the chat call exceeds its timeout.
const ChatFallback = "Sorry, I took too long to think about that. Please ask me again."

func New(baseURL string, tokens TokenSource) *Client {
	return &Client{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		HTTPClient:  &http.Client{},
		Tokens:      tokens,
		ChatTimeout: defaultChatTimeout,
	}
}

// Scan posts /products/scan/{barcode} and returns the decoded body
// plus HTTP status. Non-2xx statuses are not errors here: the
// normalizer routes on them. An undecodable body comes back as an
// empty payload, never an error.
func (c *Client) Scan(ctx context.Context, barcode string) (map[string]any, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/products/scan/"+barcode, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create scan request: %w", err)
	}
	if err := c.authorize(ctx, req); err != nil {
		return nil, 0, err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("execute scan request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("read scan response: %w", err)
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		payload = map[string]any{}
	}
	return payload, resp.StatusCode, nil
}

// Contribute uploads the label photos for an unknown barcode. 429 is
// a soft success so the user is thanked instead of alarmed; other
// non-2xx statuses are hard failures with the backend detail message.
func (c *Client) Contribute(ctx context.Context, in ContributionInput) (*ContributionResult, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	if err := form.WriteField("barcode", in.Barcode); err != nil {
		return nil, fmt.Errorf("write barcode field: %w", err)
	}
	if in.ProductName != "" {
		if err := form.WriteField("product_name", in.ProductName); err != nil {
			return nil, fmt.Errorf("write product_name field: %w", err)
		}
	}
	if in.Brand != "" {
		if err := form.WriteField("brand", in.Brand); err != nil {
			return nil, fmt.Errorf("write brand field: %w", err)
		}
	}
	if in.NutritionImage == nil {
		return nil, fmt.Errorf("nutrition label image is required")
	}
	part, err := form.CreateFormFile("nutrition_image", fileName(in.NutritionName, "nutrition.jpg"))
	if err != nil {
		return nil, fmt.Errorf("create nutrition image part: %w", err)
	}
	if _, err := io.Copy(part, in.NutritionImage); err != nil {
		return nil, fmt.Errorf("copy nutrition image: %w", err)
	}
	if in.IngredientsImage != nil {
		part, err := form.CreateFormFile("ingredients_image", fileName(in.IngredientsName, "ingredients.jpg"))
		if err != nil {
			return nil, fmt.Errorf("create ingredients image part: %w", err)
		}
		if _, err := io.Copy(part, in.IngredientsImage); err != nil {
			return nil, fmt.Errorf("copy ingredients image: %w", err)
		}
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("finish multipart form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/contribute/", &buf)
	if err != nil {
		return nil, fmt.Errorf("create contribution request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	if err := c.authorize(ctx, req); err != nil {
		return nil, err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute contribution request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read contribution response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return &ContributionResult{
			Message:     "Thank you for your contribution! We're processing a lot of submissions right now; yours is queued for review.",
			RateLimited: true,
		}, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("contribution failed with status %d: %s", resp.StatusCode, detailMessage(body))
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		payload = map[string]any{}
	}
	message, _ := payload["message"].(string)
	if message == "" {
		message = "Thank you for your contribution!"
	}
	return &ContributionResult{Payload: payload, Message: message}, nil
}

// Chat posts the running conversation plus the user's profile subset.
// The call is bounded by ChatTimeout; on expiry the fallback message
// is returned instead of an error. Cancellation stops waiting but
// cannot retract a request already sent.
func (c *Client) Chat(ctx context.Context, messages []ChatMessage, profile map[string]any) (string, error) {
	timeout := c.ChatTimeout
	if timeout <= 0 {
		timeout = defaultChatTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	reqBody, err := json.Marshal(map[string]any{
		"messages":     messages,
		"user_profile": profile,
	})
	if err != nil {
		return "", fmt.Errorf("encode chat request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/chat", bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if err := c.authorize(ctx, req); err != nil {
		return "", err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return ChatFallback, nil
		}
		return "", fmt.Errorf("execute chat request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return ChatFallback, nil
		}
		return "", fmt.Errorf("read chat response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("chat failed with status %d: %s", resp.StatusCode, detailMessage(body))
	}

	var parsed struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	return parsed.Response, nil
}

// ProfileResponse echoes the saved profile; custom needs the backend
// could not match to a standard option come back flagged pending.
type ProfileResponse struct {
	UserID            string   `json:"user_id"`
	CustomNeeds       []string `json:"custom_needs"`
	CustomNeedsStatus string   `json:"custom_needs_status"`
}

// SaveProfile persists the profile via POST /user/profile.
func (c *Client) SaveProfile(ctx context.Context, profile any) (*ProfileResponse, error) {
	reqBody, err := json.Marshal(profile)
	if err != nil {
		return nil, fmt.Errorf("encode profile: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/user/profile", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create profile request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if err := c.authorize(ctx, req); err != nil {
		return nil, err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute profile request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read profile response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("profile save failed with status %d: %s", resp.StatusCode, detailMessage(body))
	}

	var parsed ProfileResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode profile response: %w", err)
	}
	return &parsed, nil
}

func (c *Client) authorize(ctx context.Context, req *http.Request) error {
	req.Header.Set("User-Agent", userAgent)
	if c.Tokens == nil {
		return nil
	}
	token, err := c.Tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("fetch bearer token: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return nil
}

// detailMessage pulls the backend's "detail" field out of an error
// body, falling back to the raw text.
func detailMessage(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return "no details provided"
	}
	return trimmed
}

func fileName(name, fallback string) string {
	if name != "" {
		return name
	}
	return fallback
}
