package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lunamoth/cadenza/internal/models"
	"github.com/lunamoth/cadenza/internal/shared"
)

// entryColumns is the SELECT list shared by all entry reads. Artwork bytes
// stay out of result sets; only their size is reported.
const entryColumns = `id, sequence, title, artist, album, year, duration, path, provider_track_id, COALESCE(LENGTH(artwork), 0), created_at, updated_at, deleted_at`

// EntryRepository implements models.Repository[*models.PersistedEntry] for library entries.
//
// Entries are the unit of metadata sync: searches read them in bulk and
// applied selections write provider metadata and artwork back to them.
type EntryRepository struct {
	db *sql.DB
}

var _ models.Repository[*models.PersistedEntry] = (*EntryRepository)(nil)

// NewEntryRepository creates a new EntryRepository with the given database connection
func NewEntryRepository(db *sql.DB) *EntryRepository {
	return &EntryRepository{db: db}
}

// Create inserts a new [models.PersistedEntry] with a generated sequence.
// An empty ID is replaced with a generated one; import files may carry
// their own stable IDs.
func (r *EntryRepository) Create(ctx context.Context, entry *models.PersistedEntry) error {
	sequence, err := NextSequence(ctx, r.db, "entries")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	if entry.ID() == "" {
		entry.SetID(shared.GenerateID())
	}

	if err := entry.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO entries (id, sequence, title, artist, album, year, duration, path, provider_track_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query,
		entry.ID(),
		sequence,
		entry.Title(),
		entry.Artist(),
		entry.Album(),
		entry.Year(),
		entry.Duration(),
		entry.Path(),
		entry.ProviderTrackID(),
		entry.CreatedAt(),
		entry.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}

	return nil
}

// Get retrieves an entry by ID, excluding soft-deleted entries
func (r *EntryRepository) Get(ctx context.Context, id string) (*models.PersistedEntry, error) {
	query := fmt.Sprintf(`SELECT %s FROM entries WHERE id = ? AND deleted_at IS NULL`, entryColumns)
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// GetByPath retrieves an entry by its file path
func (r *EntryRepository) GetByPath(ctx context.Context, path string) (*models.PersistedEntry, error) {
	query := fmt.Sprintf(`SELECT %s FROM entries WHERE path = ? AND deleted_at IS NULL`, entryColumns)
	return r.scanOne(r.db.QueryRowContext(ctx, query, path))
}

// GetBatch loads the entries for the given IDs in one query and returns
// them keyed by ID.
//
// IDs are deduplicated before querying. IDs with no matching row are
// absent from the result; callers decide whether that is an error. An
// empty input returns an empty map without touching the database.
func (r *EntryRepository) GetBatch(ctx context.Context, ids []string) (map[string]models.Entry, error) {
	snapshot := make(map[string]models.Entry, len(ids))
	if len(ids) == 0 {
		return snapshot, nil
	}

	unique := dedupeIDs(ids)
	args := make([]any, len(unique))
	for i, id := range unique {
		args[i] = id
	}

	placeholders := strings.Repeat("?, ", len(unique)-1) + "?"
	query := fmt.Sprintf(`
		SELECT id, title, artist, album, year, duration, path, provider_track_id
		FROM entries
		WHERE deleted_at IS NULL AND id IN (%s)
	`, placeholders)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e models.Entry
		if err := rows.Scan(&e.ID, &e.Title, &e.Artist, &e.Album, &e.Year, &e.Duration, &e.Path, &e.ProviderTrackID); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		snapshot[e.ID] = e
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return snapshot, nil
}

// Update modifies an existing entry's metadata columns
func (r *EntryRepository) Update(ctx context.Context, entry *models.PersistedEntry) error {
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	entry.SetUpdatedAt(now)

	query := `
		UPDATE entries
		SET title = ?, artist = ?, album = ?, year = ?, duration = ?, path = ?, provider_track_id = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query,
		entry.Title(),
		entry.Artist(),
		entry.Album(),
		entry.Year(),
		entry.Duration(),
		entry.Path(),
		entry.ProviderTrackID(),
		now,
		entry.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update entry: %w", err)
	}

	return requireRow(result, entry.ID())
}

// ApplyUpdate writes provider metadata and artwork back to an entry. This
// is the final write of the apply pipeline; running it again with the same
// update leaves the same stored metadata.
func (r *EntryRepository) ApplyUpdate(ctx context.Context, id string, upd models.EntryUpdate) error {
	query := `
		UPDATE entries
		SET title = ?, artist = ?, album = ?, year = ?, duration = ?, provider_track_id = ?, artwork = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query,
		upd.Title,
		upd.Artist,
		upd.Album,
		upd.Year,
		upd.Duration,
		upd.ProviderTrackID,
		upd.Artwork,
		time.Now(),
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to apply update: %w", err)
	}

	return requireRow(result, id)
}

// Delete soft-deletes an entry by ID
func (r *EntryRepository) Delete(ctx context.Context, id string) error {
	query := `
		UPDATE entries
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}

	return requireRow(result, id)
}

// List retrieves all entries matching the given criteria, excluding soft-deleted entries.
//
// Supported criteria: "artist" (string), "album" (string), and
// "unmatched" (bool) for entries with no applied provider track.
func (r *EntryRepository) List(ctx context.Context, criteria map[string]any) ([]*models.PersistedEntry, error) {
	query := fmt.Sprintf(`SELECT %s FROM entries WHERE deleted_at IS NULL`, entryColumns)
	args := []any{}

	if artist, ok := criteria["artist"].(string); ok && artist != "" {
		query += " AND artist = ?"
		args = append(args, artist)
	}

	if album, ok := criteria["album"].(string); ok && album != "" {
		query += " AND album = ?"
		args = append(args, album)
	}

	if unmatched, ok := criteria["unmatched"].(bool); ok && unmatched {
		query += " AND provider_track_id = ''"
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.PersistedEntry
	for rows.Next() {
		entry, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return entries, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanEntry scans one row using the [entryColumns] column order.
func (r *EntryRepository) scanEntry(row rowScanner) (*models.PersistedEntry, error) {
	var (
		id          string
		sequence    int
		dto         models.Entry
		artworkSize int
		createdAt   time.Time
		updatedAt   time.Time
		deletedAt   sql.NullTime
	)

	err := row.Scan(&id, &sequence, &dto.Title, &dto.Artist, &dto.Album, &dto.Year, &dto.Duration, &dto.Path, &dto.ProviderTrackID, &artworkSize, &createdAt, &updatedAt, &deletedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: no such entry", shared.ErrEntryNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan entry: %w", err)
	}

	dto.ID = id
	entry := models.NewPersistedEntry(sequence, dto)
	entry.SetID(id)
	entry.SetArtworkSize(artworkSize)
	entry.SetCreatedAt(createdAt)
	entry.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		entry.SetDeletedAt(&deletedAt.Time)
	}

	return entry, nil
}

// scanOne scans a single [sql.Row] into a [models.PersistedEntry]
func (r *EntryRepository) scanOne(row *sql.Row) (*models.PersistedEntry, error) {
	return r.scanEntry(row)
}

// scanRow scans a row from [sql.Rows] into a [models.PersistedEntry]
func (r *EntryRepository) scanRow(rows *sql.Rows) (*models.PersistedEntry, error) {
	return r.scanEntry(rows)
}

// requireRow converts a zero-row UPDATE into a not-found error.
func requireRow(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrEntryNotFound, id)
	}
	return nil
}

// dedupeIDs returns ids with duplicates removed, preserving first-seen order.
func dedupeIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	return unique
}
