// Package repositories provides persistence layer implementations for all model types.
//
// Each repository implements models.Repository[T] for a specific entity type,
// handling CRUD operations, soft deletes, and sequence generation.
//
// The only persisted entity in the drive proxy is the transfer ledger:
// authorization grants are deliberately memory-only and never stored here.
package repositories
