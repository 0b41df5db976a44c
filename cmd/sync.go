package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/lunamoth/cadenza/internal/formatter"
	"github.com/lunamoth/cadenza/internal/models"
	"github.com/lunamoth/cadenza/internal/shared"
	"github.com/lunamoth/cadenza/internal/tasks"
	"github.com/urfave/cli/v3"
)

// SyncSearch searches the provider for candidate matches per entry.
func (r *Runner) SyncSearch(ctx context.Context, cmd *cli.Command) error {
	idsCSV := cmd.String("ids")
	all := cmd.Bool("all")
	output := cmd.String("output")
	format := cmd.String("format")
	selectionsPath := cmd.String("selections")

	if idsCSV == "" && !all {
		return fmt.Errorf("%w: either --ids or --all must be provided", shared.ErrMissingArgument)
	}
	if idsCSV != "" && all {
		return fmt.Errorf("%w: cannot specify both --ids and --all", shared.ErrInvalidArgument)
	}

	var ids []string
	if all {
		repo, err := r.entryRepo()
		if err != nil {
			return err
		}
		persisted, err := repo.List(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to list entries: %w", err)
		}
		for _, p := range persisted {
			ids = append(ids, p.ID())
		}
	} else {
		for _, id := range strings.Split(idsCSV, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}

	if len(ids) == 0 {
		return fmt.Errorf("%w: no entries to search", shared.ErrInvalidInput)
	}

	engine, err := r.syncEngine(ctx)
	if err != nil {
		return err
	}

	logger := shared.WithLogger(r.logger, "op", "search")
	logger.Info("starting candidate search", "entries", len(ids))
	r.writePlain("Searching candidates for %d entries...\n\n", len(ids))

	report, err := runWithProgress(r, tasks.Searching, func(progressCh chan tasks.ProgressUpdate) (*tasks.Report[[]models.Candidate], error) {
		return engine.SearchCandidates(ctx, ids, progressCh)
	})
	if err != nil {
		return err
	}
	logger.Info("search finished", "matched", report.Succeeded, "failed", report.Failed, "skipped", report.Skipped)

	r.writePlain("\n")
	r.writePlainHeader("Search Complete")
	r.writePlain("Requested: %d\n", report.Requested)
	r.writePlain("Matched: %d\n", report.Succeeded)
	r.writePlain("Failed: %d\n", report.Failed)
	r.writePlain("Skipped: %d\n", report.Skipped)

	if report.Succeeded > 0 {
		r.writePlain("\nTop matches:\n")
		for _, out := range report.Outcomes {
			if out.Kind != tasks.OutcomeSuccess || len(out.Payload) == 0 {
				continue
			}
			top := out.Payload[0]
			r.writePlain("  %s → %s - %s (score %.2f)\n", out.EntryID, top.Artist, top.Title, top.Score)
		}
	}

	if report.Failed > 0 {
		r.writePlain("\nFailed entries:\n")
		for _, out := range report.Outcomes {
			if out.Kind == tasks.OutcomeFailure {
				r.writePlain("  - %s: %s\n", out.EntryID, out.Reason)
			}
		}
	}

	if output != "" || format != "" {
		path, err := formatter.WriteSearchReport(report, format, output)
		if err != nil {
			return err
		}
		r.writePlain("\n✓ Report written to %s\n", path)
	}

	if selectionsPath != "" {
		path, err := formatter.WriteSelectionsTemplate(report, selectionsPath)
		if err != nil {
			return err
		}
		r.writePlain("✓ Selections template written to %s\n", path)
		r.writePlain("  Edit it, then run: cadenza sync apply --selections %s\n", path)
	}

	return nil
}

// SyncApply applies reviewed selections to the library.
func (r *Runner) SyncApply(ctx context.Context, cmd *cli.Command) error {
	selectionsPath := cmd.String("selections")
	output := cmd.String("output")
	format := cmd.String("format")

	if selectionsPath == "" {
		return fmt.Errorf("%w: --selections must be provided", shared.ErrMissingArgument)
	}

	selections, err := formatter.LoadSelections(selectionsPath)
	if err != nil {
		return err
	}

	engine, err := r.syncEngine(ctx)
	if err != nil {
		return err
	}

	logger := shared.WithLogger(r.logger, "op", "apply")
	logger.Info("applying selections", "count", len(selections))
	r.writePlain("Applying %d selections...\n\n", len(selections))

	report, err := runWithProgress(r, tasks.Applying, func(progressCh chan tasks.ProgressUpdate) (*tasks.Report[models.TrackData], error) {
		return engine.ApplySelections(ctx, selections, progressCh)
	})
	if err != nil {
		return err
	}
	logger.Info("apply finished", "applied", report.Succeeded, "failed", report.Failed, "skipped", report.Skipped)

	r.writePlain("\n")
	r.writePlainHeader("Apply Complete")
	r.writePlain("Requested: %d\n", report.Requested)
	r.writePlain("Applied: %d\n", report.Succeeded)
	r.writePlain("Failed: %d\n", report.Failed)
	r.writePlain("Skipped: %d\n", report.Skipped)

	if report.Failed > 0 {
		r.writePlain("\nFailed entries:\n")
		for _, out := range report.Outcomes {
			if out.Kind == tasks.OutcomeFailure {
				r.writePlain("  - %s: %s\n", out.EntryID, out.Reason)
			}
		}
	}

	if output != "" || format != "" {
		path, err := formatter.WriteApplyReport(report, format, output)
		if err != nil {
			return err
		}
		r.writePlain("\n✓ Report written to %s\n", path)
	}

	return nil
}

// runWithProgress runs op with a progress channel and prints updates until
// the channel closes. The printer is drained before the summary is written.
func runWithProgress[R any](r *Runner, itemPhase tasks.Phase, op func(chan tasks.ProgressUpdate) (*tasks.Report[R], error)) (*tasks.Report[R], error) {
	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.LoadingEntries:
				r.writePlain("%s\n", update.Message)
			case itemPhase:
				r.writePlain("  %s\n", update.Message)
			case tasks.Complete:
				r.writePlain("\n%s\n", update.Message)
			}
		}
	}()

	report, err := op(progressCh)
	close(progressCh)
	<-done

	return report, err
}
