package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/lunamoth/cadenza/internal/models"
	"github.com/lunamoth/cadenza/internal/shared"
	"github.com/urfave/cli/v3"
)

// LibraryImport loads entries from a JSON file into the library.
//
// Entries without an id get a generated one. Rows that fail to insert
// (duplicate path, missing title) are skipped and reported, not fatal.
func (r *Runner) LibraryImport(ctx context.Context, cmd *cli.Command) error {
	filePath := cmd.String("file")

	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read import file: %w", err)
	}

	var entries []models.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("%w: malformed import file: %v", shared.ErrInvalidInput, err)
	}
	if len(entries) == 0 {
		return fmt.Errorf("%w: import file has no entries", shared.ErrInvalidInput)
	}

	repo, err := r.entryRepo()
	if err != nil {
		return err
	}

	r.logger.Info("importing entries", "file", filePath, "count", len(entries))

	imported := 0
	skipped := 0
	for _, entry := range entries {
		if err := repo.Create(ctx, models.NewPersistedEntry(0, entry)); err != nil {
			r.logger.Warn("skipping entry", "path", entry.Path, "error", err)
			skipped++
			continue
		}
		imported++
	}

	r.writePlain("✓ Imported %d entries from %s\n", imported, filePath)
	if skipped > 0 {
		r.writePlain("⚠ Skipped %d entries (see log for details)\n", skipped)
	}

	return nil
}

// LibraryList lists library entries with an optional limit.
func (r *Runner) LibraryList(ctx context.Context, cmd *cli.Command) error {
	limit := cmd.Int("limit")
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	repo, err := r.entryRepo()
	if err != nil {
		return err
	}

	r.logger.Infof("listing library entries with limit %v", limit)

	persisted, err := repo.List(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to list entries: %w", err)
	}

	if limit > 0 && limit < len(persisted) {
		persisted = persisted[:limit]
	}

	if useJSON {
		entries := make([]models.Entry, len(persisted))
		for i, p := range persisted {
			entries[i] = p.Entry()
		}
		return r.writeJSON(entries, pretty)
	}

	r.writePlain("Found %d entries:\n\n", len(persisted))
	for i, p := range persisted {
		entry := p.Entry()
		r.writePlain("%d. %s - %s\n", i+1, entry.Artist, entry.Title)
		if entry.Album != "" {
			r.writePlain("   Album: %s\n", entry.Album)
		}
		r.writePlain("   ID: %s\n", entry.ID)
		r.writePlain("   Path: %s\n", entry.Path)
		if entry.ProviderTrackID != "" {
			r.writePlain("   Provider track: %s\n", entry.ProviderTrackID)
		}
		r.writePlain("\n")
	}

	return nil
}

// LibraryShow prints one entry with its persistence metadata.
func (r *Runner) LibraryShow(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	useJSON := cmd.Bool("json")

	if id == "" {
		return fmt.Errorf("%w: entry id argument is required", shared.ErrMissingArgument)
	}

	repo, err := r.entryRepo()
	if err != nil {
		return err
	}

	persisted, err := repo.Get(ctx, id)
	if err != nil {
		return err
	}

	entry := persisted.Entry()
	if useJSON {
		return r.writeJSON(entry, true)
	}

	r.writePlain("Title: %s\n", entry.Title)
	r.writePlain("Artist: %s\n", entry.Artist)
	if entry.Album != "" {
		r.writePlain("Album: %s\n", entry.Album)
	}
	if entry.Year != 0 {
		r.writePlain("Year: %d\n", entry.Year)
	}
	if entry.Duration != 0 {
		r.writePlain("Duration: %ds\n", entry.Duration)
	}
	r.writePlain("Path: %s\n", entry.Path)
	if entry.ProviderTrackID != "" {
		r.writePlain("Provider track: %s\n", entry.ProviderTrackID)
	}
	if persisted.ArtworkSize() > 0 {
		r.writePlain("Artwork: %d bytes\n", persisted.ArtworkSize())
	}
	r.writePlain("Created: %s\n", persisted.CreatedAt().Format(time.RFC3339))
	r.writePlain("Updated: %s\n", persisted.UpdatedAt().Format(time.RFC3339))

	return nil
}
