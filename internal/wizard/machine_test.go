package wizard

import (
	"errors"
	"sync"
	"testing"

	"github.com/soconhq/socon/internal/shared"
)

func twoStepMachine(gate *bool) *Machine {
	return NewMachine(
		StepDef{
			Name:       "first",
			CanAdvance: func(data Data) bool { return *gate },
		},
		StepDef{Name: "second"},
	)
}

func TestMachineAdvance(t *testing.T) {
	t.Run("blocked when predicate is false", func(t *testing.T) {
		gate := false
		m := twoStepMachine(&gate)

		if m.Advance() {
			t.Error("advance should report false")
		}

		if m.Step() != 1 {
			t.Errorf("step should be unchanged, got %d", m.Step())
		}
	})

	t.Run("advances when predicate holds", func(t *testing.T) {
		gate := true
		m := twoStepMachine(&gate)

		if !m.Advance() {
			t.Fatal("advance should succeed")
		}

		if m.Step() != 2 {
			t.Errorf("expected step 2, got %d", m.Step())
		}
	})

	t.Run("nil predicate always allows", func(t *testing.T) {
		m := NewMachine(StepDef{Name: "open"}, StepDef{Name: "end"})
		if !m.Advance() {
			t.Error("advance should succeed with a nil predicate")
		}
	})

	t.Run("terminal step does not advance", func(t *testing.T) {
		gate := true
		m := twoStepMachine(&gate)
		m.Advance()

		if m.Advance() {
			t.Error("advance past the terminal step should report false")
		}

		if !m.AtTerminal() {
			t.Error("machine should sit on the terminal step")
		}
	})

	t.Run("pre-fill reads prior data exactly", func(t *testing.T) {
		m := NewMachine(
			StepDef{Name: "source"},
			StepDef{
				Name: "target",
				PreFill: func(data Data) map[string]string {
					return map[string]string{"title": data["discovered_title"]}
				},
			},
		)

		m.Set("discovered_title", "My Feed")
		m.Advance()

		if got := m.Get("title"); got != "My Feed" {
			t.Errorf("expected pre-filled value %q, got %q", "My Feed", got)
		}
	})

	t.Run("pre-fill cannot mutate prior data", func(t *testing.T) {
		m := NewMachine(
			StepDef{Name: "source"},
			StepDef{
				Name: "target",
				PreFill: func(data Data) map[string]string {
					data["original"] = "clobbered"
					return nil
				},
			},
		)

		m.Set("original", "kept")
		m.Advance()

		if got := m.Get("original"); got != "kept" {
			t.Errorf("prior data should be untouched, got %q", got)
		}
	})
}

func TestMachineRetreat(t *testing.T) {
	t.Run("moves back without pre-fill", func(t *testing.T) {
		calls := 0
		m := NewMachine(
			StepDef{Name: "first"},
			StepDef{
				Name: "second",
				PreFill: func(data Data) map[string]string {
					calls++
					return nil
				},
			},
		)

		m.Advance()
		m.Retreat()
		m.Advance()

		if m.Step() != 2 {
			t.Errorf("expected step 2, got %d", m.Step())
		}

		if calls != 2 {
			t.Errorf("pre-fill should run on each entry via Advance, got %d calls", calls)
		}
	})

	t.Run("first step stays put", func(t *testing.T) {
		m := NewMachine(StepDef{Name: "only"})
		if m.Retreat() {
			t.Error("retreat on step 1 should report false")
		}
	})
}

func TestMachineFinalize(t *testing.T) {
	terminal := func() *Machine {
		m := NewMachine(StepDef{Name: "first"}, StepDef{Name: "last"})
		m.Advance()
		return m
	}

	t.Run("runs the submit action once", func(t *testing.T) {
		m := terminal()
		calls := 0

		if err := m.Finalize(func(data Data) error { calls++; return nil }); err != nil {
			t.Fatalf("expected success, got %v", err)
		}

		if err := m.Finalize(func(data Data) error { calls++; return nil }); err != nil {
			t.Fatalf("repeat finalize should be a no-op, got %v", err)
		}

		if calls != 1 {
			t.Errorf("expected exactly one submission, got %d", calls)
		}

		if !m.Finalized() {
			t.Error("machine should report finalized")
		}
	})

	t.Run("rejects concurrent submission", func(t *testing.T) {
		m := terminal()

		entered := make(chan struct{})
		release := make(chan struct{})
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Finalize(func(data Data) error {
				close(entered)
				<-release
				return nil
			})
		}()

		<-entered
		err := m.Finalize(func(data Data) error { return nil })
		if !errors.Is(err, shared.ErrAttemptInFlight) {
			t.Errorf("expected ErrAttemptInFlight, got %v", err)
		}

		close(release)
		wg.Wait()
	})

	t.Run("failure re-arms for retry", func(t *testing.T) {
		m := terminal()

		submitErr := errors.New("backend down")
		if err := m.Finalize(func(data Data) error { return submitErr }); !errors.Is(err, submitErr) {
			t.Fatalf("expected the submit error, got %v", err)
		}

		if m.Finalized() {
			t.Error("a failed submission should not mark the machine finalized")
		}

		if err := m.Finalize(func(data Data) error { return nil }); err != nil {
			t.Errorf("retry should succeed, got %v", err)
		}
	})

	t.Run("rejected off the terminal step", func(t *testing.T) {
		m := NewMachine(StepDef{Name: "first"}, StepDef{Name: "last"})
		if err := m.Finalize(func(data Data) error { return nil }); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}
