// Package models defines domain entities and persistence interfaces for the socon connection client.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs representing backend state
//   - [ConnectionStatus] : Per-platform connected/disconnected snapshot with account metadata
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [Connection] : Cached platform connections with token expiry tracking
//
// All persistent entities implement the Model interface providing ID generation, timestamps, validation, and soft delete support.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
