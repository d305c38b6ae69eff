package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// Validator resolves a session token to the authenticated user id.
// The auth collaborator is an external service; this package only
// consumes its validation endpoint.
type Validator interface {
	ValidateToken(ctx context.Context, token string) (int, error)
}

// HTTPClient validates tokens against the auth service.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient constructs a validator bound to the auth service URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

// ValidateToken verifies the session token and returns the user id.
func (c *HTTPClient) ValidateToken(ctx context.Context, token string) (int, error) {
	body, err := json.Marshal(map[string]string{"token": token})
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/session/validate", bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("auth request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("auth service status %d", resp.StatusCode)
	}

	var out struct {
		Valid  bool `json:"valid"`
		UserID int  `json:"userId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, err
	}
	if !out.Valid || out.UserID == 0 {
		return 0, errors.New("invalid token")
	}
	return out.UserID, nil
}

// DevValidator accepts tokens that are a bare user id. Only wired when
// no auth service address is configured.
type DevValidator struct{}

// ValidateToken parses the token as the user id.
func (DevValidator) ValidateToken(_ context.Context, token string) (int, error) {
	id, err := strconv.Atoi(token)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid token")
	}
	return id, nil
}
