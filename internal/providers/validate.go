package providers

import (
	"fmt"
	"strings"
)

// Charset names an allowed character set for credential values.
type Charset int

const (
	CharsetAny Charset = iota
	// CharsetAlphanumeric allows letters, digits, '-' and '_'.
	CharsetAlphanumeric
)

// Rules describes the shape a pasted credential must have for one provider.
type Rules struct {
	// Prefix is a required literal prefix such as "sk-"; empty means none.
	Prefix         string
	MinLength      int
	DisallowSpaces bool
	Charset        Charset

	// PlaceholderTokens overrides the default placeholder list when non-nil.
	PlaceholderTokens []string
}

// Verdict is the tri-state outcome of validating a credential.
type Verdict int

const (
	VerdictUnknown Verdict = iota // nothing to validate yet
	VerdictValid
	VerdictInvalid
)

// Result carries the verdict plus a user-facing message when invalid.
type Result struct {
	Verdict Verdict
	Message string
}

// defaultPlaceholders are substrings that mark pasted sample text rather than a real credential.
var defaultPlaceholders = []string{"your-", "your_", "test", "placeholder", "example", "xxx", "changeme", "<", ">"}

// Validate checks a raw credential value against provider rules.
//
// Checks run in order and short-circuit on the first failure:
// empty input, placeholder detection, minimum length, embedded spaces, charset/prefix.
// The function is pure and cheap enough to re-run on every input event.
func Validate(raw string, rules Rules) Result {
	value := strings.TrimSpace(raw)
	if value == "" {
		return Result{Verdict: VerdictUnknown}
	}

	placeholders := rules.PlaceholderTokens
	if placeholders == nil {
		placeholders = defaultPlaceholders
	}
	lower := strings.ToLower(value)
	for _, token := range placeholders {
		if strings.Contains(lower, token) {
			return invalid("this looks like a placeholder value, paste your real credential")
		}
	}

	if rules.MinLength > 0 && len(value) < rules.MinLength {
		return invalid(fmt.Sprintf("too short: expected at least %d characters", rules.MinLength))
	}

	if rules.DisallowSpaces && strings.ContainsRune(value, ' ') {
		return invalid("should not contain spaces")
	}

	if rules.Prefix != "" && !strings.HasPrefix(value, rules.Prefix) {
		got := value
		if len(got) > len(rules.Prefix)+4 {
			got = got[:len(rules.Prefix)+4]
		}
		return invalid(fmt.Sprintf("expected a value starting with %q, got %q...", rules.Prefix, got))
	}

	if rules.Charset == CharsetAlphanumeric {
		rest := strings.TrimPrefix(value, rules.Prefix)
		for _, r := range rest {
			if !isAllowedRune(r) {
				return invalid(fmt.Sprintf("contains unexpected character %q: only letters, digits, '-' and '_' are allowed", r))
			}
		}
	}

	return Result{Verdict: VerdictValid}
}

func invalid(msg string) Result {
	return Result{Verdict: VerdictInvalid, Message: msg}
}

func isAllowedRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '-' || r == '_':
		return true
	}
	return false
}
