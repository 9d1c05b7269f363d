// Package wizard implements the interactive connection flow.
//
// A pure step [Machine] holds the state: a 1-indexed step position and the
// field values accumulated so far. Each step gates advancement on a
// predicate over that data, and entering a step may pre-fill its fields from
// what earlier steps collected. The bubbletea [Model] renders the concrete
// four-step connect flow (platform, credentials, authorize, review) on top
// of the machine.
package wizard
