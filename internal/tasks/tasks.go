// package tasks implements batch metadata sync operations for the local library.
//
// The core abstraction is SyncEngine, which orchestrates candidate searches and selection applies.
// Operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/lunamoth/cadenza/internal/models"
	"github.com/lunamoth/cadenza/internal/providers"
	"github.com/lunamoth/cadenza/internal/shared"
)

// EntryStore defines the library persistence operations the engine depends on.
// This abstraction allows for easier testing and decoupling from concrete implementation.
type EntryStore interface {
	// GetBatch loads a snapshot of the requested entries keyed by id. Unknown
	// ids are simply absent from the result.
	GetBatch(ctx context.Context, ids []string) (map[string]models.Entry, error)

	// ApplyUpdate writes provider metadata back onto a library entry.
	ApplyUpdate(ctx context.Context, id string, upd models.EntryUpdate) error
}

// ArtworkFetcher downloads cover art referenced by provider track data.
type ArtworkFetcher interface {
	Download(ctx context.Context, imageURL string) ([]byte, error)
}

// SyncEngine defines batch operations for syncing library metadata with a provider.
type SyncEngine interface {
	// SearchCandidates looks up ranked provider candidates for each entry id.
	// Per-item failures are recorded in the report; only a failed snapshot
	// load aborts the batch.
	SearchCandidates(ctx context.Context, ids []string, progress chan<- ProgressUpdate) (*Report[[]models.Candidate], error)

	// ApplySelections fetches full track metadata for each chosen candidate,
	// downloads referenced artwork, and persists the update to the library.
	ApplySelections(ctx context.Context, selections []Selection, progress chan<- ProgressUpdate) (*Report[models.TrackData], error)
}

// Engine implements SyncEngine for batch metadata operations.
// Contains dependencies on the library store, a metadata provider, and an artwork fetcher.
type Engine struct {
	store    EntryStore
	provider providers.Provider
	artwork  ArtworkFetcher

	searchLimits Limits
	applyLimits  Limits

	// writeMu serializes library writes during apply runs so concurrent
	// workers never interleave inside the store.
	writeMu sync.Mutex
}

var _ SyncEngine = (*Engine)(nil)

// NewEngine creates a new Engine with the provided dependencies and default
// limits for both phases. The artwork fetcher may be nil, in which case
// artwork downloads are skipped.
func NewEngine(store EntryStore, provider providers.Provider, artwork ArtworkFetcher) *Engine {
	return &Engine{
		store:        store,
		provider:     provider,
		artwork:      artwork,
		searchLimits: SearchLimits(),
		applyLimits:  ApplyLimits(),
	}
}

// SetSearchLimits overrides the limits for search batches. Out-of-range
// fields fall back to the search defaults.
func (e *Engine) SetSearchLimits(limits Limits) {
	e.searchLimits = limits.normalized(SearchLimits())
}

// SetApplyLimits overrides the limits for apply batches. Out-of-range fields
// fall back to the apply defaults.
func (e *Engine) SetApplyLimits(limits Limits) {
	e.applyLimits = limits.normalized(ApplyLimits())
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// SearchCandidates looks up provider candidates for each entry id.
func (e *Engine) SearchCandidates(ctx context.Context, ids []string, progress chan<- ProgressUpdate) (*Report[[]models.Candidate], error) {
	if e.store == nil {
		return nil, fmt.Errorf("%w: library store not initialized", shared.ErrServiceUnavailable)
	}
	if e.provider == nil {
		return nil, fmt.Errorf("%w: metadata provider not initialized", shared.ErrServiceUnavailable)
	}

	op := func(ctx context.Context, _ int, entry models.Entry) ([]models.Candidate, error) {
		return e.provider.Search(ctx, entry)
	}
	return runBatch(ctx, e, e.searchLimits, Searching, ids, progress, op)
}

// ApplySelections fetches full metadata for each selection and persists it.
func (e *Engine) ApplySelections(ctx context.Context, selections []Selection, progress chan<- ProgressUpdate) (*Report[models.TrackData], error) {
	if e.store == nil {
		return nil, fmt.Errorf("%w: library store not initialized", shared.ErrServiceUnavailable)
	}
	if e.provider == nil {
		return nil, fmt.Errorf("%w: metadata provider not initialized", shared.ErrServiceUnavailable)
	}

	ids := make([]string, len(selections))
	for i, sel := range selections {
		ids[i] = sel.EntryID
	}

	op := func(ctx context.Context, idx int, entry models.Entry) (models.TrackData, error) {
		return e.applyOne(ctx, entry, selections[idx].Candidate)
	}
	return runBatch(ctx, e, e.applyLimits, Applying, ids, progress, op)
}

// applyOne performs the full apply sequence for a single entry: fetch the
// track payload, download artwork when the payload references any, then
// write the update under writeMu.
func (e *Engine) applyOne(ctx context.Context, entry models.Entry, candidate models.Candidate) (models.TrackData, error) {
	td, err := e.provider.GetTrack(ctx, candidate.ProviderID)
	if err != nil {
		return models.TrackData{}, err
	}

	var artwork []byte
	if td.ArtworkURL != "" && e.artwork != nil {
		artwork, err = e.artwork.Download(ctx, td.ArtworkURL)
		if err != nil {
			return models.TrackData{}, fmt.Errorf("artwork download failed: %w", err)
		}
	}

	e.writeMu.Lock()
	defer e.writeMu.Unlock()
	if err := e.store.ApplyUpdate(ctx, entry.ID, models.NewEntryUpdate(*td, artwork)); err != nil {
		return models.TrackData{}, err
	}
	return *td, nil
}
