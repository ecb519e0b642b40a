// Package repository implements the uniform KV abstraction of
// spec.md §4.2: get/create/put/delete, with create conditional on key
// absence. Two real backends are provided (DynamoDB, Redis), selected
// by the db_provider environment variable, plus an in-memory backend
// used by test suites.
package repository

import "context"

// Repository is the storage abstraction every other component depends
// on: config documents, lock rows.
type Repository interface {
	// Get returns the raw bytes stored at key, or nil if absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Create stores value at key only if key is currently absent. On
	// collision it returns (false, nil) — never an error.
	Create(ctx context.Context, key string, value []byte) (bool, error)

	// Put stores value at key unconditionally.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes key, reporting whether it had been present.
	Delete(ctx context.Context, key string) (bool, error)
}
