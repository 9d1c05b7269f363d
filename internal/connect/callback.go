package connect

import (
	"fmt"
	"net/url"

	"github.com/soconhq/socon/internal/shared"
)

// CallbackResult is the normalized form of a connection callback's query parameters.
type CallbackResult struct {
	Platform  string
	Success   bool
	Username  string
	ErrorCode string
}

// ParseCallback inspects redirect query parameters and extracts a connection
// result. Returns nil when the parameters do not form a recognized callback:
// a platform plus either success=true&username=<u> or error=<code>.
func ParseCallback(query url.Values) *CallbackResult {
	platform := query.Get("platform")
	if platform == "" {
		return nil
	}

	if code := query.Get("error"); code != "" {
		return &CallbackResult{Platform: platform, ErrorCode: code}
	}

	if query.Get("success") == "true" {
		return &CallbackResult{
			Platform: platform,
			Success:  true,
			Username: query.Get("username"),
		}
	}

	return nil
}

// Err maps the callback's error code onto the shared error taxonomy.
// Returns nil for successful callbacks.
func (r *CallbackResult) Err() error {
	if r.Success {
		return nil
	}
	switch r.ErrorCode {
	case "user_denied":
		return fmt.Errorf("%w: %s", shared.ErrUserDenied, r.Platform)
	case "server_error":
		return fmt.Errorf("%w: %s returned a server error", shared.ErrServiceUnavailable, r.Platform)
	case "oauth_failed", "":
		return fmt.Errorf("%w: %s", shared.ErrAuthFailed, r.Platform)
	default:
		return fmt.Errorf("%w: %s (%s)", shared.ErrAuthFailed, r.Platform, r.ErrorCode)
	}
}

// Remedy is a user-facing explanation with ordered remediation steps.
type Remedy struct {
	Message string
	Steps   []string
}

var errorRemedies = map[string]Remedy{
	"user_denied": {
		Message: "Authorization was declined.",
		Steps: []string{
			"Run the connect command again when you are ready",
			"Approve the requested permissions on the provider's consent page",
		},
	},
	"oauth_failed": {
		Message: "The provider rejected the authorization.",
		Steps: []string{
			"Check that the app credentials configured on the server are current",
			"Try connecting again",
		},
	},
	"server_error": {
		Message: "The provider reported a server error.",
		Steps: []string{
			"Wait a moment and try connecting again",
			"Check the provider's status page if the error persists",
		},
	},
}

var defaultRemedy = Remedy{
	Message: "The connection attempt failed.",
	Steps:   []string{"Try connecting again"},
}

// ErrorRemedy returns the user-facing message and remediation steps for an error code.
func ErrorRemedy(code string) Remedy {
	if remedy, ok := errorRemedies[code]; ok {
		return remedy
	}
	return defaultRemedy
}
