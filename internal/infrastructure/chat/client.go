// Package chat wraps the external communications platform's server-side
// API: user upserts and user-token minting. The client is an injected,
// explicitly-owned instance; it is created once at process start and passed
// to the services that need it.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const defaultBaseURL = "https://chat.linguameet-api.io"
const defaultTimeout = 10 * time.Second

// Config captures the credentials and endpoint of the chat platform.
type Config struct {
	APIKey    string
	APISecret string
	BaseURL   string
	Timeout   time.Duration
}

// Client talks to the chat platform. Safe for concurrent use.
type Client struct {
	apiKey  string
	secret  []byte
	baseURL string
	http    *http.Client
}

func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		apiKey:  cfg.APIKey,
		secret:  []byte(cfg.APISecret),
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// UpsertUser creates or updates the user on the chat platform.
func (c *Client) UpsertUser(ctx context.Context, userID, name, image string) error {
	payload := map[string]any{
		"users": map[string]any{
			userID: map[string]any{
				"id":    userID,
				"name":  name,
				"image": image,
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("chat upsert encode: %w", err)
	}

	url := fmt.Sprintf("%s/users?api_key=%s", c.baseURL, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("chat upsert request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	token, err := c.serverToken()
	if err != nil {
		return fmt.Errorf("chat upsert auth: %w", err)
	}
	req.Header.Set("Authorization", token)

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("chat upsert: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("chat upsert: status %d: %s", res.StatusCode, msg)
	}
	return nil
}

// UserToken mints a client-side token scoped to userID. The frontend hands
// it to the platform's SDK to open chat and video sessions.
func (c *Client) UserToken(userID string) (string, error) {
	claims := jwt.MapClaims{"user_id": userID}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(c.secret)
}

// serverToken authenticates this process against the platform's server API.
func (c *Client) serverToken() (string, error) {
	claims := jwt.MapClaims{"server": true}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(c.secret)
}
