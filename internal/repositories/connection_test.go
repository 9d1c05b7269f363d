package repositories

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/soconhq/socon/internal/models"
	"github.com/soconhq/socon/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func TestConnectionRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewConnectionRepository(db)
		conn := models.NewConnection(0, "twitter", "alice")

		if err := repo.Create(conn); err != nil {
			t.Fatalf("failed to create connection: %v", err)
		}

		if conn.ID() == "" {
			t.Error("connection ID should be set after creation")
		}
	})

	t.Run("Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewConnectionRepository(db)
		conn := models.NewConnection(0, "twitter", "alice")
		conn.SetDisplayName("Alice A.")

		if err := repo.Create(conn); err != nil {
			t.Fatalf("failed to create connection: %v", err)
		}

		got, err := repo.Get(conn.ID())
		if err != nil {
			t.Fatalf("failed to get connection: %v", err)
		}

		if got.Platform() != "twitter" || got.Username() != "alice" {
			t.Errorf("unexpected connection: %s/%s", got.Platform(), got.Username())
		}

		if got.DisplayName() != "Alice A." {
			t.Errorf("expected display name preserved, got %q", got.DisplayName())
		}
	})

	t.Run("get not found", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewConnectionRepository(db)
		if _, err := repo.Get("missing"); !errors.Is(err, shared.ErrConnectionNotFound) {
			t.Errorf("expected ErrConnectionNotFound, got %v", err)
		}
	})

	t.Run("GetByPlatform", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewConnectionRepository(db)
		if err := repo.Create(models.NewConnection(0, "twitter", "alice")); err != nil {
			t.Fatalf("failed to create connection: %v", err)
		}
		if err := repo.Create(models.NewConnection(0, "instagram", "bob")); err != nil {
			t.Fatalf("failed to create connection: %v", err)
		}

		got, err := repo.GetByPlatform("instagram")
		if err != nil {
			t.Fatalf("failed to get connection: %v", err)
		}

		if got.Username() != "bob" {
			t.Errorf("expected bob, got %s", got.Username())
		}
	})

	t.Run("Update", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewConnectionRepository(db)
		conn := models.NewConnection(0, "twitter", "alice")
		if err := repo.Create(conn); err != nil {
			t.Fatalf("failed to create connection: %v", err)
		}

		conn.SetDisplayName("Alice Updated")
		if err := repo.Update(conn); err != nil {
			t.Fatalf("failed to update connection: %v", err)
		}

		got, err := repo.Get(conn.ID())
		if err != nil {
			t.Fatalf("failed to get connection: %v", err)
		}

		if got.DisplayName() != "Alice Updated" {
			t.Errorf("expected updated display name, got %q", got.DisplayName())
		}
	})

	t.Run("delete hides the row", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewConnectionRepository(db)
		conn := models.NewConnection(0, "twitter", "alice")
		if err := repo.Create(conn); err != nil {
			t.Fatalf("failed to create connection: %v", err)
		}

		if err := repo.Delete(conn.ID()); err != nil {
			t.Fatalf("failed to delete connection: %v", err)
		}

		if _, err := repo.Get(conn.ID()); !errors.Is(err, shared.ErrConnectionNotFound) {
			t.Errorf("expected ErrConnectionNotFound after delete, got %v", err)
		}

		if err := repo.Delete(conn.ID()); err == nil {
			t.Error("expected error deleting an already deleted connection")
		}
	})

	t.Run("list filters by platform", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewConnectionRepository(db)
		if err := repo.Create(models.NewConnection(0, "twitter", "alice")); err != nil {
			t.Fatalf("failed to create connection: %v", err)
		}
		if err := repo.Create(models.NewConnection(0, "instagram", "bob")); err != nil {
			t.Fatalf("failed to create connection: %v", err)
		}

		all, err := repo.List(map[string]any{})
		if err != nil {
			t.Fatalf("failed to list connections: %v", err)
		}
		if len(all) != 2 {
			t.Fatalf("expected 2 connections, got %d", len(all))
		}

		filtered, err := repo.List(map[string]any{"platform": "twitter"})
		if err != nil {
			t.Fatalf("failed to list connections: %v", err)
		}
		if len(filtered) != 1 || filtered[0].Username() != "alice" {
			t.Errorf("expected only alice, got %d rows", len(filtered))
		}
	})
}

func TestConnectionRepositorySaveStatus(t *testing.T) {
	connectedStatus := func(username string) models.ConnectionStatus {
		now := time.Now().UTC().Truncate(time.Second)
		return models.ConnectionStatus{
			Platform:    "twitter",
			Connected:   true,
			Username:    username,
			ConnectedAt: &now,
		}
	}

	t.Run("inserts when no cached row exists", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewConnectionRepository(db)
		if err := repo.SaveStatus(connectedStatus("alice")); err != nil {
			t.Fatalf("failed to save status: %v", err)
		}

		got, err := repo.GetByPlatform("twitter")
		if err != nil {
			t.Fatalf("failed to get connection: %v", err)
		}
		if got.Username() != "alice" {
			t.Errorf("expected alice, got %s", got.Username())
		}
	})

	t.Run("updates the existing row in place", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewConnectionRepository(db)
		if err := repo.SaveStatus(connectedStatus("alice")); err != nil {
			t.Fatalf("failed to save status: %v", err)
		}
		if err := repo.SaveStatus(connectedStatus("alice_renamed")); err != nil {
			t.Fatalf("failed to save status: %v", err)
		}

		rows, err := repo.List(map[string]any{"platform": "twitter"})
		if err != nil {
			t.Fatalf("failed to list connections: %v", err)
		}
		if len(rows) != 1 {
			t.Fatalf("expected a single cached row, got %d", len(rows))
		}
		if rows[0].Username() != "alice_renamed" {
			t.Errorf("expected alice_renamed, got %s", rows[0].Username())
		}
	})

	t.Run("disconnected status clears the cache", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewConnectionRepository(db)
		if err := repo.SaveStatus(connectedStatus("alice")); err != nil {
			t.Fatalf("failed to save status: %v", err)
		}
		if err := repo.SaveStatus(models.EmptyStatus("twitter")); err != nil {
			t.Fatalf("failed to save empty status: %v", err)
		}

		if _, err := repo.GetByPlatform("twitter"); !errors.Is(err, shared.ErrConnectionNotFound) {
			t.Errorf("expected cache cleared, got %v", err)
		}
	})

	t.Run("clearing an empty cache is not an error", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewConnectionRepository(db)
		if err := repo.ClearPlatform("twitter"); err != nil {
			t.Errorf("expected success, got %v", err)
		}
	})
}
