// Package models defines domain entities and persistence interfaces for the cadenza library manager.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs passed between layers
//   - [Entry] : A local library entry (one audio file's metadata)
//   - [Candidate] : A provider-side match returned by a catalog search
//   - [TrackData] : The full provider payload fetched when applying a selection
//   - [EntryUpdate] : The metadata written back to an entry on apply
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [PersistedEntry] : Library entries with sequence ordering and soft deletes
//
// All persistent entities implement the [Model] interface providing ID generation, timestamps, validation, and soft delete support.
// The [Repository] interface defines standard CRUD operations for database access.
package models
