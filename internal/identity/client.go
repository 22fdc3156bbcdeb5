// Package identity talks to the external credential-verification service.
// Credentials are never checked locally; the verifier owns them.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrInvalidCredentials is returned when the verifier rejects the login.
var ErrInvalidCredentials = errors.New("identity: invalid credentials")

// Profile carries the subset of the verifier's profile payload we keep.
type Profile struct {
	Name        string `json:"name"`
	ExternalRef string `json:"srn"`
	Program     string `json:"program"`
	Branch      string `json:"branch"`
}

// Client calls the verifier's authenticate endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a client with the given timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Verify submits credentials and returns the profile on success.
// ErrInvalidCredentials distinguishes a rejected login from verifier outages.
func (c *Client) Verify(ctx context.Context, username, password string) (*Profile, error) {
	body, err := json.Marshal(map[string]any{
		"username": username,
		"password": password,
		"profile":  true,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/authenticate", c.baseURL), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("identity service error: %s", raw)
	}

	var payload struct {
		Status  bool     `json:"status"`
		Message string   `json:"message"`
		Profile *Profile `json:"profile"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		// Proxies in front of the identity service answer 4xx with HTML;
		// treat any rejection status as bad credentials rather than an outage.
		if resp.StatusCode >= 400 {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("decode identity response: %w", err)
	}

	if !payload.Status || resp.StatusCode >= 400 {
		return nil, ErrInvalidCredentials
	}
	if payload.Profile == nil {
		payload.Profile = &Profile{Name: username}
	}
	return payload.Profile, nil
}
