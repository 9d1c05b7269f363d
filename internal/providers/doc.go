// Package providers holds the per-platform configuration table and credential validation rules.
//
// # Configuration Table
//
// Each supported platform (Twitter, Instagram, Threads, LinkedIn, plus a generic
// bring-your-own-app provider) is described by a [Config] value keyed by [Platform].
// Code that varies by platform consumes the table instead of branching on names,
// so adding a platform is a table entry rather than a code change.
//
// # Credential Validation
//
// [Validate] checks a pasted key or secret against a provider's [Rules]: placeholder
// detection, minimum length, space and character-set checks, and optional literal
// prefixes. The result is tri-state ([VerdictUnknown], [VerdictValid], [VerdictInvalid])
// so empty input renders as "not yet checked" rather than an error.
package providers
