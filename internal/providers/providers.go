// package providers defines interface Provider for external metadata catalogs
package providers

import (
	"context"

	"github.com/lunamoth/cadenza/internal/models"
)

// Provider defines the interface for external metadata catalogs that can be
// searched for candidate matches and queried for full track payloads.
//
// Implementations are safe for concurrent use: the sync engine calls them
// from multiple workers at once.
type Provider interface {
	// Search locates candidate matches for a local library entry, ranked
	// best-first. A search that finds nothing returns an empty slice, not
	// an error.
	Search(ctx context.Context, entry models.Entry) ([]models.Candidate, error)

	// GetTrack fetches the full track payload for a provider track ID.
	GetTrack(ctx context.Context, providerID string) (*models.TrackData, error)

	// Name returns the name of the provider (e.g., "Spotify")
	Name() string
}
