package wizard

import (
	"testing"
)

func TestConnectFlow(t *testing.T) {
	t.Run("platform step gates on a known platform", func(t *testing.T) {
		m := NewConnectFlow()

		if m.Advance() {
			t.Error("advance should fail with no platform chosen")
		}

		m.Set(FieldPlatform, "friendster")
		if m.Advance() {
			t.Error("advance should fail on an unknown platform")
		}

		m.Set(FieldPlatform, "twitter")
		if !m.Advance() {
			t.Error("advance should succeed on a known platform")
		}
	})

	t.Run("credentials step requires valid key and secret", func(t *testing.T) {
		m := NewConnectFlow()
		m.Set(FieldPlatform, "twitter")
		m.Advance()

		if m.Advance() {
			t.Error("advance should fail with empty credentials")
		}

		m.Set(FieldClientID, "aB9dE3fG7hJ2kL5mN8pQ")
		if m.Advance() {
			t.Error("advance should fail with only the key")
		}

		m.Set(FieldClientSecret, "rS4tU6vW1xY3zA5bC7dE9fG2hJ4kL6mN8pQ0rS2tU4vW6xY8")
		if !m.Advance() {
			t.Error("advance should succeed with both credentials")
		}
	})

	t.Run("review step is pre-filled with the discovered username", func(t *testing.T) {
		m := NewConnectFlow()
		m.Set(FieldPlatform, "twitter")
		m.Advance()
		m.Set(FieldClientID, "aB9dE3fG7hJ2kL5mN8pQ")
		m.Set(FieldClientSecret, "rS4tU6vW1xY3zA5bC7dE9fG2hJ4kL6mN8pQ0rS2tU4vW6xY8")
		m.Advance()

		if m.Advance() {
			t.Error("authorize step should block until a username is discovered")
		}

		m.Set(FieldUsername, "alice")
		if !m.Advance() {
			t.Fatal("advance into review should succeed")
		}

		if got := m.Get(FieldReviewUsername); got != "alice" {
			t.Errorf("review should be pre-filled with alice, got %q", got)
		}
	})
}
