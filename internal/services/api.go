// HTTP implementation of [Backend] against the content platform's REST API
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/soconhq/socon/internal/shared"
)

// APIClient implements [Backend] over HTTP.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIClient creates a backend client for the given base URL.
func NewAPIClient(baseURL string, client *http.Client) *APIClient {
	if baseURL == "" {
		baseURL = "http://localhost:8000"
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &APIClient{
		baseURL:    baseURL,
		httpClient: client,
	}
}

// ProviderStatus implements [Backend].
func (a *APIClient) ProviderStatus(ctx context.Context, platform string) (*ProviderStatus, error) {
	var status ProviderStatus
	path := fmt.Sprintf("/api/social/%s/status", platform)
	if err := a.getJSON(ctx, path, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Connections implements [Backend].
func (a *APIClient) Connections(ctx context.Context) ([]ConnectionRecord, error) {
	var records []ConnectionRecord
	if err := a.getJSON(ctx, "/api/social/connections", &records); err != nil {
		return nil, err
	}
	return records, nil
}

// authorizationResponse accepts both the current and legacy response shapes of
// GET /api/social/{platform}/connect.
type authorizationResponse struct {
	Success          bool   `json:"success"`
	AuthorizationURL string `json:"authorization_url"`
	OAuthURL         string `json:"oauth_url"`
}

// AuthorizationURL implements [Backend].
func (a *APIClient) AuthorizationURL(ctx context.Context, platform, returnURL string) (string, error) {
	path := fmt.Sprintf("/api/social/%s/connect?return_url=%s", platform, url.QueryEscape(returnURL))

	var resp authorizationResponse
	if err := a.getJSON(ctx, path, &resp); err != nil {
		return "", err
	}

	authURL := resp.AuthorizationURL
	if authURL == "" {
		authURL = resp.OAuthURL
	}
	if authURL == "" {
		return "", fmt.Errorf("%w: backend returned no authorization URL for %s", shared.ErrAPIRequest, platform)
	}

	return authURL, nil
}

// Disconnect implements [Backend].
func (a *APIClient) Disconnect(ctx context.Context, platform string) error {
	path := fmt.Sprintf("/api/social/%s", platform)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, a.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", shared.ErrConnectionNotFound, platform)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: disconnect returned status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	return nil
}

// TestConnection implements [Backend].
func (a *APIClient) TestConnection(ctx context.Context, platform string) (*TestResult, error) {
	path := fmt.Sprintf("/api/social/%s/test", platform)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: test returned status %d, body: %s", shared.ErrAPIRequest, resp.StatusCode, string(body))
	}

	var result TestResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode test result: %w", err)
	}

	return &result, nil
}

// getJSON performs a GET request and decodes the JSON response into out.
func (a *APIClient) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: GET %s returned status %d", shared.ErrAPIRequest, path, resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}

	return nil
}
