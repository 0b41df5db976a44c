package models

// Candidate is one provider-side match for a local entry, as returned by a
// catalog search. Candidates are ranked by Score (higher is better).
type Candidate struct {
	ProviderID string  `json:"provider_id"`
	Title      string  `json:"title"`
	Artist     string  `json:"artist"`
	Album      string  `json:"album,omitempty"`
	Year       int     `json:"year,omitempty"`
	ArtworkURL string  `json:"artwork_url,omitempty"`
	Score      float64 `json:"score"`
}

// TrackData is the full provider payload for a single track, fetched when a
// candidate selection is applied.
type TrackData struct {
	ProviderID string `json:"provider_id"`
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	Album      string `json:"album,omitempty"`
	Year       int    `json:"year,omitempty"`
	Duration   int    `json:"duration,omitempty"` // seconds
	ISRC       string `json:"isrc,omitempty"`
	ArtworkURL string `json:"artwork_url,omitempty"`
}
