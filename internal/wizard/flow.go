package wizard

import (
	"github.com/soconhq/socon/internal/providers"
)

// Field names used by the connect flow.
const (
	FieldPlatform       = "platform"
	FieldClientID       = "client_id"
	FieldClientSecret   = "client_secret"
	FieldUsername       = "username"
	FieldReviewUsername = "review_username"
)

// NewConnectFlow builds the four-step connection wizard:
// pick a platform, enter app credentials, authorize, review.
//
// The review step is pre-filled from the username the authorize step
// discovered, so what the user confirms is exactly what came back from the
// provider.
func NewConnectFlow() *Machine {
	return NewMachine(
		StepDef{
			Name: "platform",
			CanAdvance: func(data Data) bool {
				_, err := providers.Lookup(data[FieldPlatform])
				return err == nil
			},
		},
		StepDef{
			Name:       "credentials",
			CanAdvance: credentialsComplete,
		},
		StepDef{
			Name: "authorize",
			CanAdvance: func(data Data) bool {
				return data[FieldUsername] != ""
			},
		},
		StepDef{
			Name: "review",
			PreFill: func(data Data) map[string]string {
				return map[string]string{FieldReviewUsername: data[FieldUsername]}
			},
		},
	)
}

// credentialsComplete holds when both credential fields pass the platform's
// format rules.
func credentialsComplete(data Data) bool {
	cfg, err := providers.Lookup(data[FieldPlatform])
	if err != nil {
		return false
	}

	if providers.Validate(data[FieldClientID], cfg.KeyRules).Verdict != providers.VerdictValid {
		return false
	}
	return providers.Validate(data[FieldClientSecret], cfg.SecretRules).Verdict == providers.VerdictValid
}
