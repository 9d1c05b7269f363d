package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/soconhq/socon/internal/models"
	"github.com/soconhq/socon/internal/shared"
)

// ConnectionRepository implements [models.Repository] for [models.Connection] persistence.
type ConnectionRepository struct {
	db *sql.DB
}

// NewConnectionRepository creates a new [ConnectionRepository] with the given database connection
func NewConnectionRepository(db *sql.DB) *ConnectionRepository {
	return &ConnectionRepository{db: db}
}

// Create inserts a new connection into the database with generated ID and sequence
func (r *ConnectionRepository) Create(conn *models.Connection) error {
	sequence, err := NextSequence(r.db, "connections")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	conn.SetID(id)

	if err := conn.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO connections (id, sequence, platform, username, display_name, profile_picture_url, connected_at, token_expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query, id, sequence, conn.Platform(), conn.Username(), conn.DisplayName(),
		conn.ProfilePicture(), conn.ConnectedAt(), conn.TokenExpiresAt(), conn.CreatedAt(), conn.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert connection: %w", err)
	}

	return nil
}

// Get retrieves a connection by ID, excluding soft-deleted connections
func (r *ConnectionRepository) Get(id string) (*models.Connection, error) {
	query := `
		SELECT id, sequence, platform, username, display_name, profile_picture_url, connected_at, token_expires_at, created_at, updated_at, deleted_at
		FROM connections
		WHERE id = ? AND deleted_at IS NULL
	`

	conn, err := scanConnection(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", shared.ErrConnectionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query connection: %w", err)
	}

	return conn, nil
}

// GetByPlatform retrieves the active connection for a platform.
func (r *ConnectionRepository) GetByPlatform(platform string) (*models.Connection, error) {
	query := `
		SELECT id, sequence, platform, username, display_name, profile_picture_url, connected_at, token_expires_at, created_at, updated_at, deleted_at
		FROM connections
		WHERE platform = ? AND deleted_at IS NULL
	`

	conn, err := scanConnection(r.db.QueryRow(query, platform))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", shared.ErrConnectionNotFound, platform)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query connection: %w", err)
	}

	return conn, nil
}

// Update modifies an existing connection in the database
func (r *ConnectionRepository) Update(conn *models.Connection) error {
	if err := conn.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	conn.SetUpdatedAt(now)

	query := `
		UPDATE connections
		SET username = ?, display_name = ?, profile_picture_url = ?, connected_at = ?, token_expires_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, conn.Username(), conn.DisplayName(), conn.ProfilePicture(),
		conn.ConnectedAt(), conn.TokenExpiresAt(), now, conn.ID())
	if err != nil {
		return fmt.Errorf("failed to update connection: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("connection not found or already deleted: %s", conn.ID())
	}

	return nil
}

// Delete soft-deletes a connection by ID
func (r *ConnectionRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE connections
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete connection: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("connection not found or already deleted: %s", id)
	}

	return nil
}

// List retrieves all connections matching the given criteria, excluding soft-deleted connections
func (r *ConnectionRepository) List(criteria map[string]any) ([]*models.Connection, error) {
	query := `
		SELECT id, sequence, platform, username, display_name, profile_picture_url, connected_at, token_expires_at, created_at, updated_at, deleted_at
		FROM connections
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if platform, ok := criteria["platform"].(string); ok && platform != "" {
		query += " AND platform = ?"
		args = append(args, platform)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query connections: %w", err)
	}
	defer rows.Close()

	var connections []*models.Connection
	for rows.Next() {
		conn, err := scanConnection(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan connection: %w", err)
		}
		connections = append(connections, conn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return connections, nil
}

// SaveStatus caches a connected platform status, updating the active row
// for the platform when one exists and inserting otherwise.
func (r *ConnectionRepository) SaveStatus(status models.ConnectionStatus) error {
	if err := status.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if !status.Connected {
		return r.ClearPlatform(status.Platform)
	}

	existing, err := r.GetByPlatform(status.Platform)
	if err == nil {
		updated := models.FromStatus(existing.Sequence(), status)
		updated.SetID(existing.ID())
		return r.Update(updated)
	}

	conn := models.FromStatus(0, status)
	return r.Create(conn)
}

// ClearPlatform soft-deletes the active connection for a platform. Clearing
// a platform with no cached row is not an error.
func (r *ConnectionRepository) ClearPlatform(platform string) error {
	query := `
		UPDATE connections
		SET deleted_at = ?
		WHERE platform = ? AND deleted_at IS NULL
	`

	if _, err := r.db.Exec(query, time.Now(), platform); err != nil {
		return fmt.Errorf("failed to clear connection: %w", err)
	}
	return nil
}

// scanner abstracts sql.Row and sql.Rows for connection scanning.
type scanner interface {
	Scan(dest ...any) error
}

func scanConnection(row scanner) (*models.Connection, error) {
	var (
		id                string
		sequence          int
		platform          string
		username          string
		displayName       sql.NullString
		profilePictureURL sql.NullString
		connectedAt       sql.NullTime
		tokenExpiresAt    sql.NullTime
		createdAt         time.Time
		updatedAt         time.Time
		deletedAt         sql.NullTime
	)

	err := row.Scan(&id, &sequence, &platform, &username, &displayName, &profilePictureURL,
		&connectedAt, &tokenExpiresAt, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}

	conn := models.NewConnection(sequence, platform, username)
	conn.SetID(id)
	conn.SetUpdatedAt(updatedAt)
	if displayName.Valid {
		conn.SetDisplayName(displayName.String)
	}
	if profilePictureURL.Valid {
		conn.SetProfilePicture(profilePictureURL.String)
	}
	if connectedAt.Valid {
		conn.SetConnectedAt(&connectedAt.Time)
	}
	if tokenExpiresAt.Valid {
		conn.SetTokenExpiresAt(&tokenExpiresAt.Time)
	}
	if deletedAt.Valid {
		conn.SetDeletedAt(&deletedAt.Time)
	}

	return conn, nil
}
