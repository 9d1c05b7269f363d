// package models defines the data model for the social connection client
package models

import (
	"fmt"
	"time"
)

// Model defines the base interface for all persistent models in the connection client.
// Implementations include Connection.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// ConnectionStatus is the per-platform connection snapshot the UI renders from.
//
// A zero-value status with Platform set represents a disconnected platform.
type ConnectionStatus struct {
	Platform          string     `json:"platform"`
	Connected         bool       `json:"connected"`
	Username          string     `json:"username,omitempty"`
	DisplayName       string     `json:"display_name,omitempty"`
	ProfilePictureURL string     `json:"profile_picture_url,omitempty"`
	ConnectedAt       *time.Time `json:"connected_at,omitempty"`
	TokenExpiresAt    *time.Time `json:"token_expires_at,omitempty"`
}

// EmptyStatus returns the disconnected status for a platform.
func EmptyStatus(platform string) ConnectionStatus {
	return ConnectionStatus{Platform: platform}
}

// Validate enforces the status invariant: a connected platform always has a username.
func (s ConnectionStatus) Validate() error {
	if s.Platform == "" {
		return fmt.Errorf("platform is required")
	}
	if s.Connected && s.Username == "" {
		return fmt.Errorf("connected status requires a username")
	}
	return nil
}

// Expired reports whether the platform's token has passed its expiry.
func (s ConnectionStatus) Expired() bool {
	if s.TokenExpiresAt == nil {
		return false
	}
	return time.Now().After(*s.TokenExpiresAt)
}

// ExpiresSoon reports whether the token expires within seven days.
func (s ConnectionStatus) ExpiresSoon() bool {
	if s.TokenExpiresAt == nil {
		return false
	}
	return time.Until(*s.TokenExpiresAt) < 7*24*time.Hour
}

// Connection is the database-backed record of a connected platform account.
type Connection struct {
	id                string
	sequence          int
	platform          string
	username          string
	displayName       string
	profilePictureURL string
	connectedAt       *time.Time
	tokenExpiresAt    *time.Time
	createdAt         time.Time
	updatedAt         time.Time
	deletedAt         *time.Time
}

// NewConnection creates a connection record for a platform account.
func NewConnection(sequence int, platform, username string) *Connection {
	now := time.Now()
	return &Connection{
		sequence:  sequence,
		platform:  platform,
		username:  username,
		createdAt: now,
		updatedAt: now,
	}
}

// FromStatus builds a connection record from a live status snapshot.
func FromStatus(sequence int, status ConnectionStatus) *Connection {
	c := NewConnection(sequence, status.Platform, status.Username)
	c.displayName = status.DisplayName
	c.profilePictureURL = status.ProfilePictureURL
	c.connectedAt = status.ConnectedAt
	c.tokenExpiresAt = status.TokenExpiresAt
	return c
}

func (c *Connection) ID() string                 { return c.id }
func (c *Connection) Sequence() int              { return c.sequence }
func (c *Connection) Platform() string           { return c.platform }
func (c *Connection) Username() string           { return c.username }
func (c *Connection) DisplayName() string        { return c.displayName }
func (c *Connection) ProfilePicture() string     { return c.profilePictureURL }
func (c *Connection) ConnectedAt() *time.Time    { return c.connectedAt }
func (c *Connection) TokenExpiresAt() *time.Time { return c.tokenExpiresAt }
func (c *Connection) CreatedAt() time.Time       { return c.createdAt }
func (c *Connection) UpdatedAt() time.Time       { return c.updatedAt }
func (c *Connection) DeletedAt() *time.Time      { return c.deletedAt }

func (c *Connection) SetID(id string)                { c.id = id }
func (c *Connection) SetDisplayName(name string)     { c.displayName = name }
func (c *Connection) SetProfilePicture(url string)   { c.profilePictureURL = url }
func (c *Connection) SetConnectedAt(t *time.Time)    { c.connectedAt = t }
func (c *Connection) SetTokenExpiresAt(t *time.Time) { c.tokenExpiresAt = t }
func (c *Connection) SetUpdatedAt(t time.Time)       { c.updatedAt = t }
func (c *Connection) SetDeletedAt(t *time.Time)      { c.deletedAt = t }

// Validate checks required fields before persistence.
func (c *Connection) Validate() error {
	if c.platform == "" {
		return fmt.Errorf("platform is required")
	}
	if c.username == "" {
		return fmt.Errorf("username is required")
	}
	return nil
}

// Status converts the record to the snapshot shape the UI and store consume.
func (c *Connection) Status() ConnectionStatus {
	return ConnectionStatus{
		Platform:          c.platform,
		Connected:         c.deletedAt == nil,
		Username:          c.username,
		DisplayName:       c.displayName,
		ProfilePictureURL: c.profilePictureURL,
		ConnectedAt:       c.connectedAt,
		TokenExpiresAt:    c.tokenExpiresAt,
	}
}
