package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/soconhq/socon/internal/models"
	"github.com/soconhq/socon/internal/services"
	"github.com/soconhq/socon/internal/shared"
)

// platformState tracks one platform's snapshot plus the bookkeeping that keeps
// concurrent loads and disconnects coherent.
type platformState struct {
	status models.ConnectionStatus

	// loading guards against a second Load being issued while one is in flight.
	loading bool

	// generation increments on every Clear. A Load that began under an older
	// generation discards its result instead of resurrecting a disconnected
	// platform.
	generation uint64
}

// Store holds the in-memory per-platform connection state the UI renders from.
//
// All platforms start disconnected; Load populates them from the backend,
// Apply records a successful authorization, Clear resets on disconnect.
type Store struct {
	backend services.Backend
	logger  *log.Logger

	mu        sync.Mutex
	platforms map[string]*platformState
}

// New creates a store backed by the given backend client.
func New(backend services.Backend, logger *log.Logger) *Store {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Store{
		backend:   backend,
		logger:    logger,
		platforms: make(map[string]*platformState),
	}
}

// state returns the tracked state for a platform, creating the empty record on first use.
// Callers must hold s.mu.
func (s *Store) state(platform string) *platformState {
	st, ok := s.platforms[platform]
	if !ok {
		st = &platformState{status: models.EmptyStatus(platform)}
		s.platforms[platform] = st
	}
	return st
}

// Status returns the current snapshot for a platform.
func (s *Store) Status(platform string) models.ConnectionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state(platform).status
}

// Load fetches the platform's connection state from the backend and applies it.
//
// A second Load for the same platform while one is in flight fails with
// ErrLoadInFlight. A Clear issued while the fetch is outstanding wins: the
// fetched result is discarded and ErrStaleLoad returned.
func (s *Store) Load(ctx context.Context, platform string) (models.ConnectionStatus, error) {
	s.mu.Lock()
	st := s.state(platform)
	if st.loading {
		s.mu.Unlock()
		return models.EmptyStatus(platform), fmt.Errorf("%w: %s", shared.ErrLoadInFlight, platform)
	}
	st.loading = true
	generation := st.generation
	s.mu.Unlock()

	records, err := s.backend.Connections(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	st.loading = false

	if err != nil {
		return st.status, err
	}

	if st.generation != generation {
		s.logger.Debug("discarding stale status load", "platform", platform)
		return st.status, fmt.Errorf("%w: %s", shared.ErrStaleLoad, platform)
	}

	status := models.EmptyStatus(platform)
	if record := services.FindConnection(records, platform); record != nil {
		status = record.Status()
	}
	if err := status.Validate(); err != nil {
		return st.status, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	st.status = status
	return status, nil
}

// Apply records a status snapshot, typically after a successful authorization.
func (s *Store) Apply(status models.ConnectionStatus) error {
	if err := status.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state(status.Platform).status = status
	return nil
}

// Clear resets a platform to disconnected and invalidates any in-flight Load.
func (s *Store) Clear(platform string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state(platform)
	st.generation++
	st.status = models.EmptyStatus(platform)
}
