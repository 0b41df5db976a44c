package tasks

import "fmt"

// ProgressUpdate represents a progress event during a batch run.
//
// Used to send real-time updates to the CLI or UI layer for display. Updates
// arrive in completion order, which under concurrency differs from the input
// order preserved by the final report.
type ProgressUpdate struct {
	Phase     Phase       // Batch phase
	Completed int         // Items finished so far within the phase
	Total     int         // Total items in this batch
	EntryID   string      // Entry the event concerns, empty for phase-level events
	Kind      OutcomeKind // How the item ended, meaningful for per-item events
	Message   string      // Human-readable message for display
}

// Batch phase enumeration
type Phase int

const (
	LoadingEntries Phase = iota
	Searching
	Applying
	Complete
)

func (p Phase) String() string {
	switch p {
	case LoadingEntries:
		return "loading_entries"
	case Searching:
		return "searching"
	case Applying:
		return "applying"
	case Complete:
		return "complete"
	default:
		return ""
	}
}

func loadingEntriesUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LoadingEntries,
		Total:   total,
		Message: fmt.Sprintf("Loading %d entries from library...", total),
	}
}

func itemCompletedUpdate(phase Phase, completed, total int, entryID string, kind OutcomeKind, detail string) ProgressUpdate {
	var mark string
	switch kind {
	case OutcomeSuccess:
		mark = "✓"
	case OutcomeFailure:
		mark = "✗"
	default:
		mark = "•"
	}
	msg := fmt.Sprintf("[%d/%d] %s %s", completed, total, mark, entryID)
	if detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, detail)
	}
	return ProgressUpdate{
		Phase:     phase,
		Completed: completed,
		Total:     total,
		EntryID:   entryID,
		Kind:      kind,
		Message:   msg,
	}
}

func batchCompleteUpdate(total, succeeded, failed, skipped int) ProgressUpdate {
	return ProgressUpdate{
		Phase:     Complete,
		Completed: total,
		Total:     total,
		Message:   fmt.Sprintf("Done: %d succeeded, %d failed, %d skipped", succeeded, failed, skipped),
	}
}
