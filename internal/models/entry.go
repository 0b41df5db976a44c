package models

import (
	"fmt"
	"time"
)

// Entry is the DTO for a local library entry: one audio file's metadata as
// the library currently knows it.
type Entry struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Artist          string `json:"artist"`
	Album           string `json:"album,omitempty"`
	Year            int    `json:"year,omitempty"`
	Duration        int    `json:"duration,omitempty"` // seconds
	Path            string `json:"path"`
	ProviderTrackID string `json:"provider_track_id,omitempty"`
}

// EntryUpdate carries the metadata written back to an entry when a
// candidate selection is applied.
type EntryUpdate struct {
	Title           string
	Artist          string
	Album           string
	Year            int
	Duration        int
	ProviderTrackID string
	Artwork         []byte
}

// NewEntryUpdate builds an EntryUpdate from provider track data and
// optional artwork bytes.
func NewEntryUpdate(td TrackData, artwork []byte) EntryUpdate {
	return EntryUpdate{
		Title:           td.Title,
		Artist:          td.Artist,
		Album:           td.Album,
		Year:            td.Year,
		Duration:        td.Duration,
		ProviderTrackID: td.ProviderID,
		Artwork:         artwork,
	}
}

// PersistedEntry is the database-backed form of [Entry] with lifecycle
// metadata. Implements [Model].
type PersistedEntry struct {
	id          string
	sequence    int
	entry       Entry
	artworkSize int
	createdAt   time.Time
	updatedAt   time.Time
	deletedAt   *time.Time
}

var _ Model = (*PersistedEntry)(nil)

// NewPersistedEntry wraps an [Entry] DTO for persistence with the given sequence number.
func NewPersistedEntry(sequence int, entry Entry) *PersistedEntry {
	now := time.Now()
	return &PersistedEntry{
		id:        entry.ID,
		sequence:  sequence,
		entry:     entry,
		createdAt: now,
		updatedAt: now,
	}
}

func (e *PersistedEntry) ID() string            { return e.id }
func (e *PersistedEntry) Sequence() int         { return e.sequence }
func (e *PersistedEntry) Title() string         { return e.entry.Title }
func (e *PersistedEntry) Artist() string        { return e.entry.Artist }
func (e *PersistedEntry) Album() string         { return e.entry.Album }
func (e *PersistedEntry) Year() int             { return e.entry.Year }
func (e *PersistedEntry) Duration() int         { return e.entry.Duration }
func (e *PersistedEntry) Path() string          { return e.entry.Path }
func (e *PersistedEntry) ProviderTrackID() string { return e.entry.ProviderTrackID }
func (e *PersistedEntry) ArtworkSize() int      { return e.artworkSize }
func (e *PersistedEntry) CreatedAt() time.Time  { return e.createdAt }
func (e *PersistedEntry) UpdatedAt() time.Time  { return e.updatedAt }
func (e *PersistedEntry) DeletedAt() *time.Time { return e.deletedAt }

// Entry returns the DTO snapshot of this persisted entry, with the
// persistence ID filled in.
func (e *PersistedEntry) Entry() Entry {
	dto := e.entry
	dto.ID = e.id
	return dto
}

func (e *PersistedEntry) SetID(id string) {
	e.id = id
	e.entry.ID = id
}

func (e *PersistedEntry) SetArtworkSize(n int)      { e.artworkSize = n }
func (e *PersistedEntry) SetCreatedAt(t time.Time)  { e.createdAt = t }
func (e *PersistedEntry) SetUpdatedAt(t time.Time)  { e.updatedAt = t }
func (e *PersistedEntry) SetDeletedAt(t *time.Time) { e.deletedAt = t }

// Validate checks the fields required for a usable library entry.
func (e *PersistedEntry) Validate() error {
	if e.id == "" {
		return fmt.Errorf("entry id is required")
	}
	if e.entry.Title == "" {
		return fmt.Errorf("entry title is required")
	}
	if e.entry.Path == "" {
		return fmt.Errorf("entry path is required")
	}
	return nil
}
