// Package providers defines the [Provider] interface for external metadata catalogs and implements it for the Spotify Web API.
//
// # Provider Interface
//
// A provider answers two questions for the sync engine: "what catalog tracks
// could this library entry be?" ([Provider.Search]) and "give me everything
// you know about this one track" ([Provider.GetTrack]).
//
// # Spotify Implementation
//
// [SpotifyProvider] authenticates with the client-credentials flow via
// [clientcredentials.Config]; the token is fetched lazily and refreshed
// automatically. No user authorization is involved, so there is no callback
// server and no stored token file.
//
// Outgoing requests are paced by a client-side [rate.Limiter]. This is a
// floor, not the batch throttle: adaptive per-item delays live in the tasks
// package and respond to actual rate-limit signals.
//
// # Error Classification
//
// Non-2xx responses become [*Error] values carrying a [Kind]. Callers branch
// with [IsRateLimited] and [IsNotFound] rather than inspecting error text;
// 429 responses also carry the parsed Retry-After duration.
//
// # API Mappings
//
// Search hits map to [models.Candidate] ranked by [matchScore]: exact
// normalized title+artist matches first, then title-only matches, then the
// provider's own relevance order. Track payloads map to [models.TrackData]
// with duration converted to seconds, release year parsed from the date
// prefix, and the largest album image as artwork.
//
// # Artwork
//
// [ArtworkFetcher] downloads cover art bytes for the apply pipeline. It is
// deliberately separate from [Provider]: art lives on a CDN, needs no auth,
// and is size-capped.
package providers
