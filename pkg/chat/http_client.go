package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	errGroupNotFound = "error-room-not-found"
	errUserNotFound  = "error-invalid-user"
)

// HTTPClient talks to a Rocket.Chat compatible REST API, authenticated as the
// technical user.
type HTTPClient struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client

	mu        sync.Mutex
	authToken string
	userID    string
}

// ClientOption configures an HTTPClient.
type ClientOption func(*HTTPClient)

// WithHTTPClient sets the HTTP client used for backend calls.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *HTTPClient) {
		c.httpClient = client
	}
}

// NewHTTPClient creates a chat backend client with the technical user's
// credentials.
func NewHTTPClient(baseURL, username, password string, opts ...ClientOption) *HTTPClient {
	client := &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		username:   username,
		password:   password,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// UserID returns the chat backend id of the authenticated technical user.
func (c *HTTPClient) UserID(ctx context.Context) (string, error) {
	if err := c.ensureLogin(ctx); err != nil {
		return "", err
	}
	return c.userID, nil
}

func (c *HTTPClient) GroupMembers(ctx context.Context, groupID string) ([]GroupMember, error) {
	var result struct {
		apiResponse
		Members []GroupMember `json:"members"`
	}
	query := url.Values{"roomId": {groupID}}
	if err := c.get(ctx, "groups.members", query, &result); err != nil {
		return nil, err
	}
	if err := result.asError(); err != nil {
		return nil, err
	}
	return result.Members, nil
}

func (c *HTTPClient) AddUserToGroup(ctx context.Context, userID, groupID string) error {
	return c.roomUserCall(ctx, "groups.invite", userID, groupID)
}

func (c *HTTPClient) RemoveUserFromGroup(ctx context.Context, userID, groupID string) error {
	return c.roomUserCall(ctx, "groups.kick", userID, groupID)
}

func (c *HTTPClient) LeaveGroup(ctx context.Context, groupID string) error {
	var result apiResponse
	if err := c.post(ctx, "groups.leave", map[string]string{"roomId": groupID}, &result); err != nil {
		return err
	}
	return result.asError()
}

func (c *HTTPClient) DeleteGroup(ctx context.Context, groupID string) error {
	var result apiResponse
	if err := c.post(ctx, "groups.delete", map[string]string{"roomId": groupID}, &result); err != nil {
		return err
	}
	return result.asError()
}

func (c *HTTPClient) DeleteUser(ctx context.Context, userID string) error {
	var result apiResponse
	if err := c.post(ctx, "users.delete", map[string]string{"userId": userID}, &result); err != nil {
		return err
	}
	return result.asError()
}

func (c *HTTPClient) roomUserCall(ctx context.Context, endpoint, userID, groupID string) error {
	var result apiResponse
	payload := map[string]string{"roomId": groupID, "userId": userID}
	if err := c.post(ctx, endpoint, payload, &result); err != nil {
		return err
	}
	return result.asError()
}

// apiResponse is the common envelope of the chat backend REST API.
type apiResponse struct {
	Success   bool   `json:"success"`
	ErrorType string `json:"errorType"`
	ErrorMsg  string `json:"error"`
}

func (r apiResponse) asError() error {
	if r.Success {
		return nil
	}
	switch r.ErrorType {
	case errGroupNotFound:
		return ErrGroupNotFound
	case errUserNotFound:
		return ErrUserNotFound
	}
	return fmt.Errorf("chat backend call failed: %s (%s)", r.ErrorMsg, r.ErrorType)
}

func (c *HTTPClient) get(ctx context.Context, endpoint string, query url.Values, result any) error {
	rawURL := fmt.Sprintf("%s/api/v1/%s?%s", c.baseURL, endpoint, query.Encode())
	return c.call(ctx, http.MethodGet, rawURL, nil, result)
}

func (c *HTTPClient) post(ctx context.Context, endpoint string, payload any, result any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", endpoint, err)
	}
	rawURL := fmt.Sprintf("%s/api/v1/%s", c.baseURL, endpoint)
	return c.call(ctx, http.MethodPost, rawURL, body, result)
}

func (c *HTTPClient) call(ctx context.Context, method, rawURL string, payload []byte, result any) error {
	if err := c.ensureLogin(ctx); err != nil {
		return err
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("X-Auth-Token", c.authToken)
	req.Header.Set("X-User-Id", c.userID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response (status %d): %w", resp.StatusCode, err)
	}
	return nil
}

func (c *HTTPClient) ensureLogin(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.authToken != "" {
		return nil
	}

	payload, err := json.Marshal(map[string]string{
		"user":     c.username,
		"password": c.password,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal login payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/v1/login", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to login to chat backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("chat backend login returned status %d: %s", resp.StatusCode, respBody)
	}

	var loginResp struct {
		Status string `json:"status"`
		Data   struct {
			AuthToken string `json:"authToken"`
			UserID    string `json:"userId"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&loginResp); err != nil {
		return fmt.Errorf("failed to decode login response: %w", err)
	}
	if loginResp.Status != "success" {
		return fmt.Errorf("chat backend login failed with status %q", loginResp.Status)
	}

	c.authToken = loginResp.Data.AuthToken
	c.userID = loginResp.Data.UserID
	return nil
}
