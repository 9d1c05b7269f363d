// package repositories provides the persistence layer for cached connection state.
//
// Each repository implements models.Repository[T] for a specific entity type,
// handling CRUD operations, soft deletes, and sequence generation. The cache
// backs offline status output; the backend remains the source of truth.
package repositories
