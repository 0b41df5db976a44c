// Spotify Web API implementation of [Provider]
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/
package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"

	"github.com/lunamoth/cadenza/internal/models"
	"github.com/lunamoth/cadenza/internal/shared"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"
)

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	defaultRequestsPerSecond = 10.0
	defaultSearchLimit       = 5
	maxSearchLimit           = 10
)

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	ReleaseDate string         `json:"release_date"`
	Images      []SpotifyImage `json:"images"`
}

type externalIDs struct {
	ISRC string `json:"isrc"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Artists     []SpotifyArtist `json:"artists"`
	Album       SpotifyAlbum    `json:"album"`
	DurationMS  int             `json:"duration_ms"`
	ExternalIDs externalIDs     `json:"external_ids"`
	Popularity  int             `json:"popularity"`
}

// SpotifySearchResponse represents the track portion of a search response.
type SpotifySearchResponse struct {
	Tracks struct {
		Items []SpotifyTrack `json:"items"`
		Total int            `json:"total"`
	} `json:"tracks"`
}

// SpotifyProvider implements the [Provider] interface against the Spotify
// Web API using the client-credentials flow (no user authorization).
//
// A client-side [rate.Limiter] paces outgoing requests; the sync engine's
// adaptive delays sit on top of that.
type SpotifyProvider struct {
	baseURL     string
	httpClient  *http.Client
	limiter     *rate.Limiter
	searchLimit int
}

// NewSpotifyProvider creates a Spotify provider from config. The returned
// client caches and refreshes its token automatically; ctx bounds the
// lifetime of token refresh requests.
func NewSpotifyProvider(ctx context.Context, cfg shared.ProviderConfig) (*SpotifyProvider, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("%w: provider client_id and client_secret are required", shared.ErrMissingCredentials)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = spotifyBaseURL
	}

	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = spotifyTokenURL
	}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRequestsPerSecond
	}

	searchLimit := cfg.SearchLimit
	if searchLimit <= 0 {
		searchLimit = defaultSearchLimit
	}
	if searchLimit > maxSearchLimit {
		searchLimit = maxSearchLimit
	}

	credentials := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     tokenURL,
	}

	return &SpotifyProvider{
		baseURL:     baseURL,
		httpClient:  credentials.Client(ctx),
		limiter:     rate.NewLimiter(rate.Limit(rps), 1),
		searchLimit: searchLimit,
	}, nil
}

func (s *SpotifyProvider) Name() string {
	return "Spotify"
}

// Search locates candidate matches for entry using Spotify's field-filter
// query syntax, ranked by match score (best first).
func (s *SpotifyProvider) Search(ctx context.Context, entry models.Entry) ([]models.Candidate, error) {
	if entry.Title == "" {
		return nil, fmt.Errorf("%w: entry title required for search", shared.ErrInvalidInput)
	}

	query := buildTrackQuery(entry)
	endpoint := fmt.Sprintf("/search?type=track&limit=%d&q=%s", s.searchLimit, url.QueryEscape(query))

	var response SpotifySearchResponse
	if err := s.doRequest(ctx, http.MethodGet, endpoint, &response); err != nil {
		return nil, err
	}

	candidates := make([]models.Candidate, 0, len(response.Tracks.Items))
	for rank, track := range response.Tracks.Items {
		candidates = append(candidates, candidateFromTrack(track, entry, rank))
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	return candidates, nil
}

// GetTrack fetches the full payload for a single track ID.
func (s *SpotifyProvider) GetTrack(ctx context.Context, providerID string) (*models.TrackData, error) {
	if providerID == "" {
		return nil, fmt.Errorf("%w: provider track ID required", shared.ErrInvalidInput)
	}

	var track SpotifyTrack
	endpoint := "/tracks/" + url.PathEscape(providerID)
	if err := s.doRequest(ctx, http.MethodGet, endpoint, &track); err != nil {
		return nil, err
	}

	td := trackDataFromTrack(track)
	return &td, nil
}

// doRequest performs a paced, authenticated HTTP request against the API.
func (s *SpotifyProvider) doRequest(ctx context.Context, method, endpoint string, result any) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("request pacing interrupted: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return classifyResponse(resp)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// buildTrackQuery assembles a field-filtered search query from the entry's
// current metadata.
func buildTrackQuery(entry models.Entry) string {
	query := "track:" + entry.Title
	if entry.Artist != "" {
		query += " artist:" + entry.Artist
	}
	return query
}

// candidateFromTrack maps a search hit to a ranked [models.Candidate].
func candidateFromTrack(track SpotifyTrack, entry models.Entry, rank int) models.Candidate {
	return models.Candidate{
		ProviderID: track.ID,
		Title:      track.Name,
		Artist:     primaryArtist(track),
		Album:      track.Album.Name,
		Year:       releaseYear(track.Album.ReleaseDate),
		ArtworkURL: largestImage(track.Album.Images),
		Score:      matchScore(entry, track, rank),
	}
}

// trackDataFromTrack maps a full track payload to [models.TrackData].
func trackDataFromTrack(track SpotifyTrack) models.TrackData {
	return models.TrackData{
		ProviderID: track.ID,
		Title:      track.Name,
		Artist:     primaryArtist(track),
		Album:      track.Album.Name,
		Year:       releaseYear(track.Album.ReleaseDate),
		Duration:   track.DurationMS / 1000,
		ISRC:       track.ExternalIDs.ISRC,
		ArtworkURL: largestImage(track.Album.Images),
	}
}

// matchScore ranks a search hit against the entry's current metadata.
// Exact title+artist matches outrank title-only matches, which outrank the
// provider's own result ordering.
func matchScore(entry models.Entry, track SpotifyTrack, rank int) float64 {
	want := shared.NormalizeTrackKey(entry.Title, entry.Artist)
	got := shared.NormalizeTrackKey(track.Name, primaryArtist(track))

	switch {
	case got == want:
		return 1.0
	case shared.NormalizeTrackKey(track.Name, "") == shared.NormalizeTrackKey(entry.Title, ""):
		return 0.8
	default:
		score := 0.5 - 0.05*float64(rank)
		if score < 0.1 {
			score = 0.1
		}
		return score
	}
}

func primaryArtist(track SpotifyTrack) string {
	if len(track.Artists) == 0 {
		return ""
	}
	return track.Artists[0].Name
}

// releaseYear parses the year prefix of a release date ("2003-04-29",
// "2003-04", or "2003").
func releaseYear(releaseDate string) int {
	if len(releaseDate) < 4 {
		return 0
	}
	year, err := strconv.Atoi(releaseDate[:4])
	if err != nil {
		return 0
	}
	return year
}

// largestImage picks the biggest image by area; Spotify usually returns
// them largest-first, but that ordering is not documented.
func largestImage(images []SpotifyImage) string {
	best := ""
	bestArea := -1
	for _, img := range images {
		area := img.Height * img.Width
		if area > bestArea {
			best = img.URL
			bestArea = area
		}
	}
	return best
}
