package models

import (
	"testing"
	"time"
)

func TestConnectionStatusValidate(t *testing.T) {
	t.Run("requires a platform", func(t *testing.T) {
		if err := (ConnectionStatus{}).Validate(); err == nil {
			t.Error("expected an error for a missing platform")
		}
	})

	t.Run("connected requires a username", func(t *testing.T) {
		status := ConnectionStatus{Platform: "twitter", Connected: true}
		if err := status.Validate(); err == nil {
			t.Error("expected an error for a connected status without a username")
		}

		status.Username = "alice"
		if err := status.Validate(); err != nil {
			t.Errorf("expected success, got %v", err)
		}
	})

	t.Run("disconnected needs no username", func(t *testing.T) {
		if err := EmptyStatus("twitter").Validate(); err != nil {
			t.Errorf("expected success, got %v", err)
		}
	})
}

func TestConnectionStatusExpiry(t *testing.T) {
	t.Run("no expiry recorded", func(t *testing.T) {
		status := ConnectionStatus{Platform: "twitter"}
		if status.Expired() || status.ExpiresSoon() {
			t.Error("a status without an expiry should never report expired")
		}
	})

	t.Run("past expiry", func(t *testing.T) {
		past := time.Now().Add(-time.Hour)
		status := ConnectionStatus{Platform: "twitter", TokenExpiresAt: &past}
		if !status.Expired() {
			t.Error("expected expired")
		}
	})

	t.Run("expiring within a week", func(t *testing.T) {
		soon := time.Now().Add(48 * time.Hour)
		status := ConnectionStatus{Platform: "twitter", TokenExpiresAt: &soon}
		if status.Expired() {
			t.Error("token is not yet expired")
		}
		if !status.ExpiresSoon() {
			t.Error("expected expires soon")
		}
	})
}

func TestConnectionFromStatus(t *testing.T) {
	now := time.Now()
	status := ConnectionStatus{
		Platform:          "twitter",
		Connected:         true,
		Username:          "alice",
		DisplayName:       "Alice A.",
		ProfilePictureURL: "https://cdn.example.net/alice.png",
		ConnectedAt:       &now,
	}

	conn := FromStatus(3, status)
	if err := conn.Validate(); err != nil {
		t.Fatalf("expected a valid connection, got %v", err)
	}

	got := conn.Status()
	if got.Platform != status.Platform || got.Username != status.Username {
		t.Errorf("round trip lost identity fields: %+v", got)
	}
	if got.DisplayName != status.DisplayName || got.ProfilePictureURL != status.ProfilePictureURL {
		t.Errorf("round trip lost profile fields: %+v", got)
	}
	if !got.Connected {
		t.Error("an undeleted record should report connected")
	}

	deleted := time.Now()
	conn.SetDeletedAt(&deleted)
	if conn.Status().Connected {
		t.Error("a soft-deleted record should report disconnected")
	}
}
