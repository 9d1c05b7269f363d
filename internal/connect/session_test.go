package connect

import (
	"sync"
	"testing"
	"time"
)

func TestSessionResolve(t *testing.T) {
	t.Run("first resolution wins", func(t *testing.T) {
		session := newSession("twitter")

		if !session.Resolve(Outcome{State: StateCompleted}) {
			t.Fatal("first resolve should succeed")
		}

		if session.Resolve(Outcome{State: StateTimedOut}) {
			t.Error("second resolve should be a no-op")
		}

		outcome := <-session.Done()
		if outcome.State != StateCompleted {
			t.Errorf("expected completed, got %s", outcome.State)
		}
	})

	t.Run("concurrent resolution delivers exactly one outcome", func(t *testing.T) {
		session := newSession("twitter")

		var wins int32
		var mu sync.Mutex
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			state := StateCompleted
			if i%2 == 1 {
				state = StateTimedOut
			}
			go func(s State) {
				defer wg.Done()
				if session.Resolve(Outcome{State: s}) {
					mu.Lock()
					wins++
					mu.Unlock()
				}
			}(state)
		}
		wg.Wait()

		if wins != 1 {
			t.Errorf("expected exactly one winning resolve, got %d", wins)
		}

		select {
		case <-session.Done():
		case <-time.After(time.Second):
			t.Fatal("expected an outcome on Done")
		}
	})

	t.Run("resolve closes quit channel", func(t *testing.T) {
		session := newSession("twitter")
		session.Resolve(Outcome{State: StateCompleted})

		select {
		case <-session.Quit():
		case <-time.After(time.Second):
			t.Fatal("quit channel should be closed after resolve")
		}
	})
}

func TestSessionTeardown(t *testing.T) {
	t.Run("idempotent", func(t *testing.T) {
		session := newSession("twitter")
		session.trackTicker(time.NewTicker(time.Hour))
		session.trackTimer(time.NewTimer(time.Hour))

		session.Teardown()
		session.Teardown()

		select {
		case <-session.Quit():
		case <-time.After(time.Second):
			t.Fatal("quit channel should be closed")
		}
	})

	t.Run("late resolve after teardown is ignored", func(t *testing.T) {
		session := newSession("twitter")
		session.Teardown()

		// Teardown without resolution leaves the session unresolved; a
		// caller that tore down on cancellation must not see an outcome.
		session.Resolve(Outcome{State: StateCompleted})

		if session.State() == StateCompleted {
			t.Error("resolve after teardown should not transition state")
		}
	})
}

func TestSessionState(t *testing.T) {
	session := newSession("twitter")
	if session.State() != StateOpening {
		t.Errorf("expected opening, got %s", session.State())
	}

	session.setState(StateAwaiting)
	if session.State() != StateAwaiting {
		t.Errorf("expected awaiting, got %s", session.State())
	}
}

func TestStateString(t *testing.T) {
	cases := map[State]string{
		StateIdle:         "idle",
		StateOpening:      "opening",
		StateAwaiting:     "awaiting-completion",
		StateCompleted:    "completed",
		StateTimedOut:     "timed-out",
		StateLaunchFailed: "launch-failed",
	}

	for state, want := range cases {
		if got := state.String(); got != want {
			t.Errorf("expected %s, got %s", want, got)
		}
	}
}
