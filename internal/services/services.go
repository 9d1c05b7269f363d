// package services defines clients for the content platform backend
package services

import (
	"context"
	"time"

	"github.com/soconhq/socon/internal/models"
)

// Backend is the REST surface of the content platform that manages social connections.
type Backend interface {
	// ProviderStatus reports whether the server holds app credentials for the platform.
	ProviderStatus(ctx context.Context, platform string) (*ProviderStatus, error)

	// Connections lists every social connection the backend knows about.
	Connections(ctx context.Context) ([]ConnectionRecord, error)

	// AuthorizationURL asks the backend to start an OAuth flow and returns the
	// provider consent URL the browser should open. returnURL is where the
	// provider redirects once the user decides.
	AuthorizationURL(ctx context.Context, platform, returnURL string) (string, error)

	// Disconnect removes the platform connection on the backend.
	Disconnect(ctx context.Context, platform string) error

	// TestConnection runs a health check against the connected account.
	TestConnection(ctx context.Context, platform string) (*TestResult, error)
}

// ProviderStatus is the response of GET /api/social/{platform}/status.
type ProviderStatus struct {
	Configured bool `json:"configured"`
}

// ConnectionRecord is one element of GET /api/social/connections.
type ConnectionRecord struct {
	Platform         string         `json:"platform"`
	IsActive         bool           `json:"is_active"`
	PlatformUsername string         `json:"platform_username"`
	Metadata         map[string]any `json:"metadata"`
	CreatedAt        time.Time      `json:"created_at"`
}

// TestResult is the response of POST /api/social/{platform}/test.
type TestResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Status converts a backend record into the snapshot shape the store tracks.
func (r ConnectionRecord) Status() models.ConnectionStatus {
	status := models.ConnectionStatus{
		Platform:  r.Platform,
		Connected: r.IsActive,
		Username:  r.PlatformUsername,
	}
	if r.IsActive && !r.CreatedAt.IsZero() {
		t := r.CreatedAt
		status.ConnectedAt = &t
	}
	if name, ok := r.Metadata["display_name"].(string); ok {
		status.DisplayName = name
	}
	if url, ok := r.Metadata["profile_picture_url"].(string); ok {
		status.ProfilePictureURL = url
	}
	if raw, ok := r.Metadata["token_expires_at"].(string); ok {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			status.TokenExpiresAt = &t
		}
	}
	return status
}

// FindConnection returns the record for a platform, or nil when absent.
func FindConnection(records []ConnectionRecord, platform string) *ConnectionRecord {
	for i := range records {
		if records[i].Platform == platform {
			return &records[i]
		}
	}
	return nil
}
