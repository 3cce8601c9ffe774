package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// HTTPClient talks to a Keycloak-compatible admin REST API.
type HTTPClient struct {
	baseURL     string
	realm       string
	clientID    string
	username    string
	password    string
	httpClient  *http.Client
	tokenLeeway time.Duration

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient sets the HTTP client used for admin API calls.
func WithHTTPClient(client *http.Client) Option {
	return func(c *HTTPClient) {
		c.httpClient = client
	}
}

// WithTokenLeeway sets how long before expiry the admin token is renewed.
func WithTokenLeeway(leeway time.Duration) Option {
	return func(c *HTTPClient) {
		c.tokenLeeway = leeway
	}
}

// NewHTTPClient creates an identity provider client authenticating with the
// given admin credentials.
func NewHTTPClient(baseURL, realm, clientID, username, password string, opts ...Option) *HTTPClient {
	client := &HTTPClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		realm:       realm,
		clientID:    clientID,
		username:    username,
		password:    password,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		tokenLeeway: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

func (c *HTTPClient) DeleteUser(ctx context.Context, userID string) error {
	status, body, err := c.do(ctx, http.MethodDelete, c.adminURL("users/"+userID), nil)
	if err != nil {
		return fmt.Errorf("failed to delete identity user %s: %w", userID, err)
	}
	switch {
	case status == http.StatusNotFound:
		return ErrNotFound
	case status >= 300:
		return fmt.Errorf("identity provider returned status %d deleting user %s: %s",
			status, userID, body)
	}
	return nil
}

func (c *HTTPClient) DeactivateUser(ctx context.Context, userID string) error {
	payload, err := json.Marshal(map[string]any{"enabled": false})
	if err != nil {
		return fmt.Errorf("failed to marshal deactivate payload: %w", err)
	}
	status, body, err := c.do(ctx, http.MethodPut, c.adminURL("users/"+userID), payload)
	if err != nil {
		return fmt.Errorf("failed to deactivate identity user %s: %w", userID, err)
	}
	switch {
	case status == http.StatusNotFound:
		return ErrNotFound
	case status >= 300:
		return fmt.Errorf("identity provider returned status %d deactivating user %s: %s",
			status, userID, body)
	}
	return nil
}

func (c *HTTPClient) GetUserRoles(ctx context.Context, userID string) ([]string, error) {
	status, body, err := c.do(ctx, http.MethodGet,
		c.adminURL("users/"+userID+"/role-mappings/realm"), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get roles for identity user %s: %w", userID, err)
	}
	if status == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if status >= 300 {
		return nil, fmt.Errorf("identity provider returned status %d reading roles of user %s: %s",
			status, userID, body)
	}

	var mappings []struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(body, &mappings); err != nil {
		return nil, fmt.Errorf("failed to decode role mappings: %w", err)
	}
	roles := make([]string, 0, len(mappings))
	for _, m := range mappings {
		roles = append(roles, m.Name)
	}
	return roles, nil
}

func (c *HTTPClient) adminURL(path string) string {
	return fmt.Sprintf("%s/admin/realms/%s/%s", c.baseURL, c.realm, path)
}

func (c *HTTPClient) do(ctx context.Context, method, rawURL string, payload []byte) (int, []byte, error) {
	token, err := c.adminToken(ctx)
	if err != nil {
		return 0, nil, err
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return resp.StatusCode, respBody, nil
}

// adminToken returns a cached admin access token, renewing it shortly before
// the expiry claim embedded in the token.
func (c *HTTPClient) adminToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Add(c.tokenLeeway).Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	form := url.Values{
		"grant_type": {"password"},
		"client_id":  {c.clientID},
		"username":   {c.username},
		"password":   {c.password},
	}
	tokenURL := fmt.Sprintf("%s/realms/%s/protocol/openid-connect/token", c.baseURL, c.realm)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to obtain admin token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("identity provider login returned status %d: %s",
			resp.StatusCode, body)
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}

	c.accessToken = tokenResp.AccessToken
	c.tokenExpiry = c.resolveExpiry(tokenResp.AccessToken, tokenResp.ExpiresIn)
	return c.accessToken, nil
}

// resolveExpiry prefers the exp claim of the token itself over the advertised
// expires_in, since the claim survives clock drift between both services.
func (c *HTTPClient) resolveExpiry(accessToken string, expiresIn int) time.Time {
	claims := jwt.MapClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(accessToken, claims)
	if err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			return exp.Time
		}
	}
	slog.Debug("Admin token has no readable exp claim, falling back to expires_in",
		"expires_in", expiresIn)
	return time.Now().Add(time.Duration(expiresIn) * time.Second)
}
