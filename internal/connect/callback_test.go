package connect

import (
	"errors"
	"net/url"
	"testing"

	"github.com/soconhq/socon/internal/shared"
)

func TestParseCallback(t *testing.T) {
	t.Run("successful callback", func(t *testing.T) {
		values, _ := url.ParseQuery("platform=twitter&success=true&username=alice")
		result := ParseCallback(values)
		if result == nil {
			t.Fatal("expected a result")
		}

		if !result.Success {
			t.Error("expected success")
		}

		if result.Platform != "twitter" {
			t.Errorf("expected platform twitter, got %s", result.Platform)
		}

		if result.Username != "alice" {
			t.Errorf("expected username alice, got %s", result.Username)
		}
	})

	t.Run("error callback", func(t *testing.T) {
		values, _ := url.ParseQuery("platform=instagram&error=user_denied")
		result := ParseCallback(values)
		if result == nil {
			t.Fatal("expected a result")
		}

		if result.Success {
			t.Error("expected failure")
		}

		if result.ErrorCode != "user_denied" {
			t.Errorf("expected error code user_denied, got %s", result.ErrorCode)
		}
	})

	t.Run("missing platform is not a callback", func(t *testing.T) {
		values, _ := url.ParseQuery("success=true&username=alice")
		if result := ParseCallback(values); result != nil {
			t.Errorf("expected nil, got %+v", result)
		}
	})

	t.Run("platform alone is not a callback", func(t *testing.T) {
		values, _ := url.ParseQuery("platform=twitter")
		if result := ParseCallback(values); result != nil {
			t.Errorf("expected nil, got %+v", result)
		}
	})

	t.Run("success false without error is not a callback", func(t *testing.T) {
		values, _ := url.ParseQuery("platform=twitter&success=false")
		if result := ParseCallback(values); result != nil {
			t.Errorf("expected nil, got %+v", result)
		}
	})

	t.Run("error takes precedence over success", func(t *testing.T) {
		values, _ := url.ParseQuery("platform=twitter&success=true&error=oauth_failed")
		result := ParseCallback(values)
		if result == nil {
			t.Fatal("expected a result")
		}

		if result.Success {
			t.Error("expected failure when error is present")
		}
	})
}

func TestCallbackResultErr(t *testing.T) {
	cases := []struct {
		name string
		code string
		want error
	}{
		{"user denied", "user_denied", shared.ErrUserDenied},
		{"server error", "server_error", shared.ErrServiceUnavailable},
		{"oauth failed", "oauth_failed", shared.ErrAuthFailed},
		{"unknown code", "something_else", shared.ErrAuthFailed},
		{"empty code", "", shared.ErrAuthFailed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := &CallbackResult{Platform: "twitter", ErrorCode: tc.code}
			if err := result.Err(); !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}

	t.Run("success has no error", func(t *testing.T) {
		result := &CallbackResult{Platform: "twitter", Success: true}
		if err := result.Err(); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})
}

func TestErrorRemedy(t *testing.T) {
	t.Run("known code has specific steps", func(t *testing.T) {
		remedy := ErrorRemedy("user_denied")
		if remedy.Message == "" {
			t.Error("expected a message")
		}

		if len(remedy.Steps) == 0 {
			t.Error("expected remediation steps")
		}
	})

	t.Run("unknown code falls back to default", func(t *testing.T) {
		remedy := ErrorRemedy("no_such_code")
		if remedy.Message != defaultRemedy.Message {
			t.Errorf("expected default remedy, got %q", remedy.Message)
		}
	})
}
