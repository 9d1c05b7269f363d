// Package store tracks in-memory per-platform connection state.
//
// The [Store] is the single place connection snapshots are mutated: the
// controller applies successful authorizations, disconnect clears, and status
// commands load from the backend. Two coherence guards matter here: a loading
// flag that rejects duplicate concurrent loads for the same platform, and a
// per-platform generation counter bumped on Clear so a disconnect invalidates
// any load still in flight, so a stale response is discarded rather than
// resurrecting a disconnected platform.
package store
