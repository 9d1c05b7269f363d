package providers

import (
	"fmt"
	"strings"

	"github.com/soconhq/socon/internal/shared"
)

// Platform identifies a supported social platform.
type Platform string

const (
	Twitter   Platform = "twitter"
	Instagram Platform = "instagram"
	Threads   Platform = "threads"
	LinkedIn  Platform = "linkedin"
	Generic   Platform = "generic"
)

// String returns the wire name of the platform, used in backend paths and callback payloads.
func (p Platform) String() string { return string(p) }

// Config describes one platform's connection behavior. The table below replaces
// per-platform branching: the controller, wizard, and CLI are all generic over it.
type Config struct {
	Platform    Platform
	DisplayName string

	// MessageType is the `type` field expected in callback payloads, e.g. "twitter_oauth_complete".
	MessageType string

	// TokenBased marks OAuth2 platforms whose connections carry a token expiry.
	TokenBased bool

	// DirectOAuth marks platforms authorized against user-supplied endpoints
	// instead of through the backend's registered app.
	DirectOAuth bool

	Scopes []string

	// KeyRules and SecretRules validate user-supplied app credentials in the wizard.
	KeyRules    Rules
	SecretRules Rules
}

var registry = map[Platform]Config{
	Twitter: {
		Platform:    Twitter,
		DisplayName: "Twitter / X",
		MessageType: "twitter_oauth_complete",
		TokenBased:  true,
		Scopes:      []string{"tweet.read", "tweet.write", "users.read", "offline.access"},
		KeyRules:    Rules{MinLength: 18, DisallowSpaces: true, Charset: CharsetAlphanumeric},
		SecretRules: Rules{MinLength: 40, DisallowSpaces: true, Charset: CharsetAlphanumeric},
	},
	Instagram: {
		Platform:    Instagram,
		DisplayName: "Instagram",
		MessageType: "instagram_oauth_complete",
		TokenBased:  true,
		Scopes:      []string{"instagram_basic", "instagram_content_publish"},
		KeyRules:    Rules{MinLength: 15, DisallowSpaces: true, Charset: CharsetAlphanumeric},
		SecretRules: Rules{MinLength: 32, DisallowSpaces: true, Charset: CharsetAlphanumeric},
	},
	Threads: {
		Platform:    Threads,
		DisplayName: "Threads",
		MessageType: "threads_oauth_complete",
		TokenBased:  true,
		Scopes:      []string{"threads_basic", "threads_content_publish"},
		KeyRules:    Rules{MinLength: 15, DisallowSpaces: true, Charset: CharsetAlphanumeric},
		SecretRules: Rules{MinLength: 32, DisallowSpaces: true, Charset: CharsetAlphanumeric},
	},
	LinkedIn: {
		Platform:    LinkedIn,
		DisplayName: "LinkedIn",
		MessageType: "linkedin_oauth_complete",
		TokenBased:  true,
		Scopes:      []string{"w_member_social", "r_liteprofile"},
		KeyRules:    Rules{MinLength: 12, DisallowSpaces: true, Charset: CharsetAlphanumeric},
		SecretRules: Rules{MinLength: 16, DisallowSpaces: true, Charset: CharsetAlphanumeric},
	},
	Generic: {
		Platform:    Generic,
		DisplayName: "Custom provider",
		MessageType: "generic_oauth_complete",
		TokenBased:  true,
		DirectOAuth: true,
		KeyRules:    Rules{MinLength: 8, DisallowSpaces: true, Charset: CharsetAlphanumeric},
		SecretRules: Rules{MinLength: 8, DisallowSpaces: true, Charset: CharsetAlphanumeric},
	},
}

// Lookup resolves a platform name to its configuration.
func Lookup(name string) (Config, error) {
	cfg, ok := registry[Platform(strings.ToLower(strings.TrimSpace(name)))]
	if !ok {
		return Config{}, fmt.Errorf("%w: %q", shared.ErrUnknownPlatform, name)
	}
	return cfg, nil
}

// All returns every platform configuration in a stable order.
func All() []Config {
	out := make([]Config, 0, len(registry))
	for _, p := range []Platform{Twitter, Instagram, Threads, LinkedIn, Generic} {
		out = append(out, registry[p])
	}
	return out
}
