package connect

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/soconhq/socon/internal/models"
	"github.com/soconhq/socon/internal/shared"
)

// State identifies where a connection attempt is in its lifecycle.
type State int

const (
	StateIdle State = iota
	StateOpening
	StateAwaiting
	StateCompleted
	StateTimedOut
	StateLaunchFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateOpening:
		return "opening"
	case StateAwaiting:
		return "awaiting-completion"
	case StateCompleted:
		return "completed"
	case StateTimedOut:
		return "timed-out"
	case StateLaunchFailed:
		return "launch-failed"
	default:
		return "unknown"
	}
}

// Outcome is the terminal result of one connection attempt.
type Outcome struct {
	State  State
	Status *models.ConnectionStatus
	Err    error
}

// Session tracks one in-flight connection attempt and owns every scheduled
// handle created for it: the poll ticker, the grace and timeout timers, and
// the loopback callback server.
//
// Two watches race to resolve a session. Resolve is first-wins: the losing
// watch's attempt is a no-op, so at most one transition out of
// awaiting-completion ever fires. Teardown releases every handle and is safe
// to call any number of times from any path, including cancellation.
type Session struct {
	id       string
	platform string

	mu       sync.Mutex
	state    State
	resolved bool

	ticker *time.Ticker
	timers []*time.Timer
	server *http.Server

	quit         chan struct{}
	done         chan Outcome
	teardownOnce sync.Once
}

func newSession(platform string) *Session {
	return &Session{
		id:       shared.GenerateID(),
		platform: platform,
		state:    StateOpening,
		quit:     make(chan struct{}),
		done:     make(chan Outcome, 1),
	}
}

// ID returns the session's unique identifier, used for log correlation.
func (s *Session) ID() string { return s.id }

// Platform returns the platform this attempt is for.
func (s *Session) Platform() string { return s.platform }

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// Resolved reports whether a terminal outcome has already been applied.
func (s *Session) Resolved() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolved
}

// Resolve applies a terminal outcome. The first caller wins and triggers
// teardown; later calls return false and have no effect.
func (s *Session) Resolve(outcome Outcome) bool {
	s.mu.Lock()
	if s.resolved {
		s.mu.Unlock()
		return false
	}
	s.resolved = true
	s.state = outcome.State
	s.mu.Unlock()

	s.Teardown()
	s.done <- outcome
	return true
}

// Done returns the channel carrying the session's single terminal outcome.
func (s *Session) Done() <-chan Outcome {
	return s.done
}

// Quit returns a channel closed when the session is torn down, used by
// watch goroutines to exit.
func (s *Session) Quit() <-chan struct{} {
	return s.quit
}

func (s *Session) trackTicker(t *time.Ticker) {
	s.mu.Lock()
	s.ticker = t
	s.mu.Unlock()
}

func (s *Session) trackTimer(t *time.Timer) *time.Timer {
	s.mu.Lock()
	s.timers = append(s.timers, t)
	s.mu.Unlock()
	return t
}

func (s *Session) trackServer(srv *http.Server) {
	s.mu.Lock()
	s.server = srv
	s.mu.Unlock()
}

// Teardown stops every handle the session owns and finalizes the session,
// so a Resolve racing a cancellation cannot land afterward. Idempotent;
// runs on every exit path so no ticker, timer, or listener outlives the
// attempt.
func (s *Session) Teardown() {
	s.teardownOnce.Do(func() {
		close(s.quit)

		s.mu.Lock()
		s.resolved = true
		ticker := s.ticker
		timers := s.timers
		srv := s.server
		s.mu.Unlock()

		if ticker != nil {
			ticker.Stop()
		}
		for _, t := range timers {
			t.Stop()
		}
		if srv != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(ctx)
		}
	})
}
