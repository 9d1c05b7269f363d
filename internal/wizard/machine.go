package wizard

import (
	"fmt"
	"sync"

	"github.com/soconhq/socon/internal/shared"
)

// Data is the wizard's accumulated field values, keyed by step-local field
// name. Later steps may read values written by earlier steps; pre-fill
// functions receive a copy so prior data is never mutated in place.
type Data map[string]string

func (d Data) clone() Data {
	out := make(Data, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// StepDef describes one wizard step.
type StepDef struct {
	// Name identifies the step in rendering and tests.
	Name string

	// CanAdvance gates leaving this step. A nil predicate always allows it.
	CanAdvance func(data Data) bool

	// PreFill runs when this step is entered via Advance. It reads the data
	// accumulated so far and returns this step's initial field values.
	// Retreating back into a step does not re-run it.
	PreFill func(data Data) map[string]string
}

// Machine is a linear step machine with 1-indexed steps. Advancement past a
// step requires its CanAdvance predicate; the terminal step finalizes
// instead of advancing.
type Machine struct {
	mu         sync.Mutex
	steps      []StepDef
	step       int
	data       Data
	finalizing bool
	finalized  bool
}

// NewMachine creates a machine positioned at step 1.
func NewMachine(steps ...StepDef) *Machine {
	if len(steps) == 0 {
		panic("wizard: machine needs at least one step")
	}
	return &Machine{steps: steps, step: 1, data: make(Data)}
}

// Step returns the current 1-indexed step number.
func (m *Machine) Step() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.step
}

// Steps returns the total number of steps.
func (m *Machine) Steps() int { return len(m.steps) }

// Current returns the current step's definition.
func (m *Machine) Current() StepDef {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.steps[m.step-1]
}

// Get reads a field value.
func (m *Machine) Get(field string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[field]
}

// Set writes a field value for the current step.
func (m *Machine) Set(field, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[field] = value
}

// Snapshot returns a copy of the accumulated data.
func (m *Machine) Snapshot() Data {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.clone()
}

// CanAdvance reports whether the current step's predicate holds.
func (m *Machine) CanAdvance() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.canAdvanceLocked()
}

func (m *Machine) canAdvanceLocked() bool {
	predicate := m.steps[m.step-1].CanAdvance
	return predicate == nil || predicate(m.data.clone())
}

// AtTerminal reports whether the machine sits on the last step.
func (m *Machine) AtTerminal() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.step == len(m.steps)
}

// Advance moves to the next step and runs its pre-fill. When the current
// step's predicate is false, or the machine is already on the terminal step,
// the state is unchanged and Advance reports false.
func (m *Machine) Advance() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.step == len(m.steps) || !m.canAdvanceLocked() {
		return false
	}

	m.step++
	if prefill := m.steps[m.step-1].PreFill; prefill != nil {
		for field, value := range prefill(m.data.clone()) {
			m.data[field] = value
		}
	}
	return true
}

// Retreat moves to the previous step without re-running pre-fill. On the
// first step it reports false and changes nothing.
func (m *Machine) Retreat() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.step == 1 {
		return false
	}
	m.step--
	return true
}

// Finalize runs the terminal submit action exactly once at a time. A second
// call while one is in flight fails with ErrAttemptInFlight; a call after a
// successful submission is a no-op. A failed submission re-arms the machine
// so the user can retry.
func (m *Machine) Finalize(submit func(data Data) error) error {
	m.mu.Lock()
	if m.step != len(m.steps) {
		m.mu.Unlock()
		return fmt.Errorf("%w: not on the final step", shared.ErrInvalidInput)
	}
	if m.finalized {
		m.mu.Unlock()
		return nil
	}
	if m.finalizing {
		m.mu.Unlock()
		return fmt.Errorf("%w: submission in progress", shared.ErrAttemptInFlight)
	}
	if !m.canAdvanceLocked() {
		m.mu.Unlock()
		return fmt.Errorf("%w: final step incomplete", shared.ErrInvalidInput)
	}
	m.finalizing = true
	data := m.data.clone()
	m.mu.Unlock()

	err := submit(data)

	m.mu.Lock()
	m.finalizing = false
	if err == nil {
		m.finalized = true
	}
	m.mu.Unlock()

	return err
}

// Finalized reports whether the submit action has completed successfully.
func (m *Machine) Finalized() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.finalized
}
