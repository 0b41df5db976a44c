// Package tasks orchestrates batch metadata sync between the local library and external providers with real-time progress reporting.
//
// # Core Operations
//
// The [SyncEngine] interface defines two operations:
//
//  1. [SyncEngine.SearchCandidates] : Look up provider candidates for a batch of entries
//     - Loads a snapshot of the requested entries from the library
//     - Searches the provider concurrently, one task per input id
//     - Records ranked candidates (or the failure) per entry
//
//  2. [SyncEngine.ApplySelections] : Persist chosen candidates back to the library
//     - Fetches the full track payload for each selection
//     - Downloads referenced cover art
//     - Serializes writes to the library store
//
// Both operations tolerate partial failure: an entry that cannot be searched
// or applied is recorded in the [Report] and the batch moves on. Only a
// failed snapshot load aborts a run.
//
// # Concurrency Model
//
// Each input id gets its own goroutine, gated by a [Controller] so at most
// MaxConcurrent provider calls run at once. Tasks pace themselves via
// [Limits.MinDelay], served while the slot is held so the delay bounds
// throughput rather than just dispatch. Outcomes land at their input
// position, so reports preserve input order even though completion order
// differs.
//
// # Rate-Limit Feedback
//
// A fresh [RateLimitMonitor] per batch tracks the most recent provider
// rate-limit signal. For ten seconds after a signal every task waits
// [Limits.ThrottledDelay] instead of MinDelay; the window expires lazily and
// a quiet provider restores normal pacing without coordination.
//
// # Progress Reporting
//
// All operations use non-blocking channel sends for progress updates.
//
// The [ProgressUpdate] struct carries the phase, completion counters, and
// per-item outcome kinds for CLI or TUI rendering. Updates use select with
// default so a slow or absent consumer never stalls the batch.
package tasks
