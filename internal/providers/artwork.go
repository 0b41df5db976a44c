package providers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxArtworkBytes caps artwork downloads; anything larger than this is not
// cover art.
const maxArtworkBytes = 10 << 20

// ArtworkFetcher downloads cover art referenced by candidate payloads.
type ArtworkFetcher struct {
	client   *http.Client
	maxBytes int64
}

// NewArtworkFetcher creates an ArtworkFetcher. A nil client gets a default
// with a 30 second timeout.
func NewArtworkFetcher(client *http.Client) *ArtworkFetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &ArtworkFetcher{client: client, maxBytes: maxArtworkBytes}
}

// Download fetches the image at imageURL and returns the raw bytes.
//
// Rate-limit responses classify the same way as API calls so the sync
// engine can react to them.
func (f *ArtworkFetcher) Download(ctx context.Context, imageURL string) ([]byte, error) {
	if imageURL == "" {
		return nil, fmt.Errorf("empty artwork URL provided")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create artwork request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download artwork: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, classifyResponse(resp)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read artwork data: %w", err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("artwork exceeds %d byte limit", f.maxBytes)
	}

	return data, nil
}
