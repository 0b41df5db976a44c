// Package repositories implements SQLite persistence for all domain entities.
//
// Each repository handles CRUD operations with atomic sequence generation for human-readable ordering.
// All repositories support soft deletes via deleted_at timestamps and exclude deleted records from queries by default.
//
// Key Implementations:
//   - [EntryRepository] : Library entry persistence with path-based lookups,
//     single-query batch loads for the sync engine, and applied-metadata writes
//
// Sequence numbers provide stable, human-readable ordering (e.g., entry #42) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
//
// [EntryRepository.GetBatch] is the sync engine's snapshot read: it issues
// exactly one query per batch (IN-list over deduplicated IDs) and never
// queries at all for an empty ID list.
package repositories
