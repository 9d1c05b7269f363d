package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/soconhq/socon/internal/models"
	"github.com/soconhq/socon/internal/services"
	"github.com/soconhq/socon/internal/shared"
	tu "github.com/soconhq/socon/internal/testing"
)

func activeRecord(platform, username string) services.ConnectionRecord {
	return services.ConnectionRecord{Platform: platform, IsActive: true, PlatformUsername: username}
}

func TestStore(t *testing.T) {
	t.Run("empty by default", func(t *testing.T) {
		s := New(&tu.MockBackend{}, nil)

		status := s.Status("twitter")
		if status.Connected {
			t.Error("expected disconnected status before any load")
		}
		if status.Platform != "twitter" {
			t.Errorf("unexpected platform %q", status.Platform)
		}
	})

	t.Run("load applies backend state", func(t *testing.T) {
		backend := &tu.MockBackend{
			ConnectionsFunc: func(ctx context.Context) ([]services.ConnectionRecord, error) {
				return []services.ConnectionRecord{activeRecord("twitter", "alice")}, nil
			},
		}
		s := New(backend, nil)

		status, err := s.Load(context.Background(), "twitter")
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if !status.Connected || status.Username != "alice" {
			t.Errorf("unexpected status %+v", status)
		}
		if got := s.Status("twitter"); got.Username != "alice" {
			t.Errorf("store did not retain loaded status: %+v", got)
		}
	})

	t.Run("load of absent platform is disconnected", func(t *testing.T) {
		s := New(&tu.MockBackend{}, nil)

		status, err := s.Load(context.Background(), "threads")
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if status.Connected {
			t.Error("expected disconnected status for platform absent from backend")
		}
	})

	t.Run("duplicate concurrent load rejected", func(t *testing.T) {
		release := make(chan struct{})
		started := make(chan struct{})
		backend := &tu.MockBackend{
			ConnectionsFunc: func(ctx context.Context) ([]services.ConnectionRecord, error) {
				close(started)
				<-release
				return []services.ConnectionRecord{activeRecord("twitter", "alice")}, nil
			},
		}
		s := New(backend, nil)

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Load(context.Background(), "twitter")
		}()

		<-started
		if _, err := s.Load(context.Background(), "twitter"); !errors.Is(err, shared.ErrLoadInFlight) {
			t.Errorf("expected ErrLoadInFlight, got %v", err)
		}

		close(release)
		wg.Wait()
	})

	t.Run("clear invalidates in-flight load", func(t *testing.T) {
		release := make(chan struct{})
		started := make(chan struct{})
		backend := &tu.MockBackend{
			ConnectionsFunc: func(ctx context.Context) ([]services.ConnectionRecord, error) {
				close(started)
				<-release
				return []services.ConnectionRecord{activeRecord("twitter", "alice")}, nil
			},
		}
		s := New(backend, nil)

		done := make(chan error, 1)
		go func() {
			_, err := s.Load(context.Background(), "twitter")
			done <- err
		}()

		<-started
		s.Clear("twitter")
		close(release)

		if err := <-done; !errors.Is(err, shared.ErrStaleLoad) {
			t.Errorf("expected ErrStaleLoad, got %v", err)
		}

		// The disconnect wins: the stale backend result must not be applied.
		if status := s.Status("twitter"); status.Connected {
			t.Errorf("expected disconnected status after clear, got %+v", status)
		}
	})

	t.Run("apply enforces the username invariant", func(t *testing.T) {
		s := New(&tu.MockBackend{}, nil)

		bad := models.ConnectionStatus{Platform: "twitter", Connected: true}
		if err := s.Apply(bad); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument for connected status without username, got %v", err)
		}

		good := models.ConnectionStatus{Platform: "twitter", Connected: true, Username: "alice"}
		if err := s.Apply(good); err != nil {
			t.Fatalf("apply failed: %v", err)
		}
		if got := s.Status("twitter"); got.Username != "alice" {
			t.Errorf("apply did not stick: %+v", got)
		}
	})

	t.Run("load error preserves prior state", func(t *testing.T) {
		backend := &tu.MockBackend{
			ConnectionsFunc: func(ctx context.Context) ([]services.ConnectionRecord, error) {
				return nil, shared.ErrServiceUnavailable
			},
		}
		s := New(backend, nil)
		s.Apply(models.ConnectionStatus{Platform: "twitter", Connected: true, Username: "alice"})

		if _, err := s.Load(context.Background(), "twitter"); err == nil {
			t.Fatal("expected load error")
		}
		if got := s.Status("twitter"); !got.Connected {
			t.Errorf("failed load should not wipe prior state: %+v", got)
		}
	})
}
