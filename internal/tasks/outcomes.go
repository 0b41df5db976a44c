package tasks

import "github.com/lunamoth/cadenza/internal/models"

// OutcomeKind classifies how a single work item ended.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeFailure
	OutcomeSkipped
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Skip reasons recorded on outcomes that never reached the provider.
const (
	SkipNotInLibrary = "not in library"
	SkipCancelled    = "cancelled"
)

// Outcome records how one work item ended. Exactly one outcome exists per
// input element, stored at the element's input position regardless of
// completion order.
//
// Payload is only meaningful for OutcomeSuccess. Reason carries the failure
// or skip explanation for display; Err keeps the original error for
// programmatic inspection and is nil unless Kind is OutcomeFailure.
type Outcome[R any] struct {
	EntryID string
	Kind    OutcomeKind
	Payload R
	Reason  string
	Err     error
}

func successOutcome[R any](entryID string, payload R) Outcome[R] {
	return Outcome[R]{EntryID: entryID, Kind: OutcomeSuccess, Payload: payload}
}

func failureOutcome[R any](entryID string, err error) Outcome[R] {
	return Outcome[R]{EntryID: entryID, Kind: OutcomeFailure, Reason: err.Error(), Err: err}
}

func skippedOutcome[R any](entryID, reason string) Outcome[R] {
	return Outcome[R]{EntryID: entryID, Kind: OutcomeSkipped, Reason: reason}
}

// Report aggregates the outcomes of one batch run. Outcomes are ordered by
// input position and always cover every input element, including duplicates
// and ids the library does not know.
type Report[R any] struct {
	Outcomes  []Outcome[R]
	Requested int
	Succeeded int
	Failed    int
	Skipped   int
}

// tally recomputes the summary counts from the outcome slice. Called once,
// after every task has completed.
func (r *Report[R]) tally() {
	r.Succeeded, r.Failed, r.Skipped = 0, 0, 0
	for _, o := range r.Outcomes {
		switch o.Kind {
		case OutcomeSuccess:
			r.Succeeded++
		case OutcomeFailure:
			r.Failed++
		case OutcomeSkipped:
			r.Skipped++
		}
	}
}

// Selection pairs a library entry with the candidate chosen for it. The
// apply pipeline consumes selections; the formatter package reads and
// writes them as JSON.
type Selection struct {
	EntryID   string           `json:"entry_id"`
	Candidate models.Candidate `json:"candidate"`
}
