package tasks

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lunamoth/cadenza/internal/models"
	"github.com/lunamoth/cadenza/internal/providers"
)

// batchRun holds the per-batch state shared by every task goroutine: the
// entry snapshot, the slot controller bounding concurrency, and the monitor
// that stretches pacing after a rate-limit signal.
type batchRun[R any] struct {
	limits     Limits
	monitor    *RateLimitMonitor
	controller *Controller
	snapshot   map[string]models.Entry
	op         func(ctx context.Context, idx int, entry models.Entry) (R, error)
}

// runBatch executes op once per input id under the batch concurrency model.
//
// Every id gets a goroutine gated by the controller, so at most
// limits.MaxConcurrent operations run at once. Outcomes land at their input
// position regardless of completion order, and per-item failures never abort
// the batch. The returned report always covers all of ids, including
// duplicates and ids the library does not know. Only a failed snapshot load
// returns an error; cancellation mid-batch still yields the full report with
// unstarted items marked skipped.
func runBatch[R any](
	ctx context.Context,
	e *Engine,
	limits Limits,
	phase Phase,
	ids []string,
	progress chan<- ProgressUpdate,
	op func(ctx context.Context, idx int, entry models.Entry) (R, error),
) (*Report[R], error) {
	sendProgress(progress, loadingEntriesUpdate(len(ids)))

	snapshot, err := e.store.GetBatch(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load entries: %w", err)
	}

	report := &Report[R]{
		Outcomes:  make([]Outcome[R], len(ids)),
		Requested: len(ids),
	}
	if len(ids) == 0 {
		sendProgress(progress, batchCompleteUpdate(0, 0, 0, 0))
		return report, nil
	}

	run := &batchRun[R]{
		limits:     limits,
		monitor:    NewRateLimitMonitor(),
		controller: NewController(limits.MaxConcurrent),
		snapshot:   snapshot,
		op:         op,
	}

	var completed atomic.Int64
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()

			outcome := run.runTask(ctx, i, id)
			report.Outcomes[i] = outcome

			n := int(completed.Add(1))
			sendProgress(progress, itemCompletedUpdate(phase, n, len(ids), id, outcome.Kind, outcome.Reason))
		}()
	}
	wg.Wait()

	report.tally()
	sendProgress(progress, batchCompleteUpdate(len(ids), report.Succeeded, report.Failed, report.Skipped))
	return report, nil
}

// runTask processes one input element end to end: acquire a slot, resolve
// the entry from the snapshot, pace, then invoke op. The pacing delay is
// served while holding the slot, which keeps overall throughput bounded
// rather than just the instant of dispatch.
func (b *batchRun[R]) runTask(ctx context.Context, idx int, entryID string) Outcome[R] {
	slot, err := b.controller.Acquire(ctx)
	if err != nil {
		return skippedOutcome[R](entryID, SkipCancelled)
	}
	defer slot.Release()

	entry, ok := b.snapshot[entryID]
	if !ok {
		return skippedOutcome[R](entryID, SkipNotInLibrary)
	}

	if err := sleepFor(ctx, b.monitor.EffectiveDelay(b.limits)); err != nil {
		return skippedOutcome[R](entryID, SkipCancelled)
	}

	payload, err := b.op(ctx, idx, entry)
	if err != nil {
		if providers.IsRateLimited(err) {
			b.monitor.RecordSignal()
		}
		return failureOutcome[R](entryID, err)
	}
	return successOutcome(entryID, payload)
}

// sleepFor pauses for d unless the context ends first. A non-positive d
// returns immediately.
func sleepFor(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
