// package formatter serializes sync reports and selection files (JSON, CSV)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/lunamoth/cadenza/internal/models"
	"github.com/lunamoth/cadenza/internal/shared"
	"github.com/lunamoth/cadenza/internal/tasks"
)

// Supported report output formats.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// searchReportDoc is the JSON document written for a candidate search run.
type searchReportDoc struct {
	Operation string           `json:"operation"`
	Requested int              `json:"requested"`
	Succeeded int              `json:"succeeded"`
	Failed    int              `json:"failed"`
	Skipped   int              `json:"skipped"`
	Entries   []searchEntryDoc `json:"entries"`
}

type searchEntryDoc struct {
	EntryID    string             `json:"entry_id"`
	Status     string             `json:"status"`
	Reason     string             `json:"reason,omitempty"`
	Candidates []models.Candidate `json:"candidates,omitempty"`
}

// applyReportDoc is the JSON document written for an apply run.
type applyReportDoc struct {
	Operation string          `json:"operation"`
	Requested int             `json:"requested"`
	Succeeded int             `json:"succeeded"`
	Failed    int             `json:"failed"`
	Skipped   int             `json:"skipped"`
	Entries   []applyEntryDoc `json:"entries"`
}

type applyEntryDoc struct {
	EntryID string            `json:"entry_id"`
	Status  string            `json:"status"`
	Reason  string            `json:"reason,omitempty"`
	Track   *models.TrackData `json:"track,omitempty"`
}

// SearchReportToJSON converts a search report to an indented JSON document.
func SearchReportToJSON(report *tasks.Report[[]models.Candidate]) ([]byte, error) {
	doc := searchReportDoc{
		Operation: "search",
		Requested: report.Requested,
		Succeeded: report.Succeeded,
		Failed:    report.Failed,
		Skipped:   report.Skipped,
		Entries:   make([]searchEntryDoc, 0, len(report.Outcomes)),
	}
	for _, out := range report.Outcomes {
		doc.Entries = append(doc.Entries, searchEntryDoc{
			EntryID:    out.EntryID,
			Status:     out.Kind.String(),
			Reason:     out.Reason,
			Candidates: out.Payload,
		})
	}
	return shared.MarshalJSON(doc, true)
}

// SearchReportToCSV converts a search report to CSV with one row per
// candidate, ranked best-first, and one row per entry without candidates.
func SearchReportToCSV(report *tasks.Report[[]models.Candidate]) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"EntryID", "Status", "Rank", "ProviderID", "Title", "Artist", "Album", "Year", "Score", "Reason"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, out := range report.Outcomes {
		if len(out.Payload) == 0 {
			record := []string{out.EntryID, out.Kind.String(), "", "", "", "", "", "", "", out.Reason}
			if err := writer.Write(record); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
			continue
		}
		for rank, c := range out.Payload {
			record := []string{
				out.EntryID,
				out.Kind.String(),
				strconv.Itoa(rank + 1),
				c.ProviderID,
				c.Title,
				c.Artist,
				c.Album,
				strconv.Itoa(c.Year),
				strconv.FormatFloat(c.Score, 'f', 2, 64),
				out.Reason,
			}
			if err := writer.Write(record); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ApplyReportToJSON converts an apply report to an indented JSON document.
func ApplyReportToJSON(report *tasks.Report[models.TrackData]) ([]byte, error) {
	doc := applyReportDoc{
		Operation: "apply",
		Requested: report.Requested,
		Succeeded: report.Succeeded,
		Failed:    report.Failed,
		Skipped:   report.Skipped,
		Entries:   make([]applyEntryDoc, 0, len(report.Outcomes)),
	}
	for _, out := range report.Outcomes {
		entry := applyEntryDoc{
			EntryID: out.EntryID,
			Status:  out.Kind.String(),
			Reason:  out.Reason,
		}
		if out.Kind == tasks.OutcomeSuccess {
			track := out.Payload
			entry.Track = &track
		}
		doc.Entries = append(doc.Entries, entry)
	}
	return shared.MarshalJSON(doc, true)
}

// ApplyReportToCSV converts an apply report to CSV with one row per entry.
func ApplyReportToCSV(report *tasks.Report[models.TrackData]) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"EntryID", "Status", "ProviderID", "Title", "Artist", "Album", "Year", "Duration", "Reason"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, out := range report.Outcomes {
		record := []string{out.EntryID, out.Kind.String(), "", "", "", "", "", "", out.Reason}
		if out.Kind == tasks.OutcomeSuccess {
			record = []string{
				out.EntryID,
				out.Kind.String(),
				out.Payload.ProviderID,
				out.Payload.Title,
				out.Payload.Artist,
				out.Payload.Album,
				strconv.Itoa(out.Payload.Year),
				strconv.Itoa(out.Payload.Duration),
				out.Reason,
			}
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// WriteSearchReport writes a search report to path in the given format.
//
// Defaults to search_report.{format} when path is empty. Returns the path written.
func WriteSearchReport(report *tasks.Report[[]models.Candidate], format, path string) (string, error) {
	var data []byte
	var err error
	switch format {
	case FormatCSV:
		data, err = SearchReportToCSV(report)
	case FormatJSON, "":
		format = FormatJSON
		data, err = SearchReportToJSON(report)
	default:
		return "", fmt.Errorf("%w: unknown report format %q", shared.ErrInvalidArgument, format)
	}
	if err != nil {
		return "", fmt.Errorf("failed to generate search report: %w", err)
	}

	if path == "" {
		path = "search_report." + format
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write search report: %w", err)
	}
	return path, nil
}

// WriteApplyReport writes an apply report to path in the given format.
//
// Defaults to apply_report.{format} when path is empty. Returns the path written.
func WriteApplyReport(report *tasks.Report[models.TrackData], format, path string) (string, error) {
	var data []byte
	var err error
	switch format {
	case FormatCSV:
		data, err = ApplyReportToCSV(report)
	case FormatJSON, "":
		format = FormatJSON
		data, err = ApplyReportToJSON(report)
	default:
		return "", fmt.Errorf("%w: unknown report format %q", shared.ErrInvalidArgument, format)
	}
	if err != nil {
		return "", fmt.Errorf("failed to generate apply report: %w", err)
	}

	if path == "" {
		path = "apply_report." + format
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write apply report: %w", err)
	}
	return path, nil
}

// SelectionsTemplate derives a selections slice from a search report: the
// top-ranked candidate of every successful entry that has at least one.
// Duplicate entry ids keep only their first occurrence.
func SelectionsTemplate(report *tasks.Report[[]models.Candidate]) []tasks.Selection {
	selections := make([]tasks.Selection, 0, len(report.Outcomes))
	seen := make(map[string]bool, len(report.Outcomes))
	for _, out := range report.Outcomes {
		if out.Kind != tasks.OutcomeSuccess || len(out.Payload) == 0 || seen[out.EntryID] {
			continue
		}
		seen[out.EntryID] = true
		selections = append(selections, tasks.Selection{
			EntryID:   out.EntryID,
			Candidate: out.Payload[0],
		})
	}
	return selections
}

// WriteSelectionsTemplate writes the selections derived from a search report
// as an editable JSON array.
//
// Defaults to selections.json when path is empty. Returns the path written.
func WriteSelectionsTemplate(report *tasks.Report[[]models.Candidate], path string) (string, error) {
	data, err := shared.MarshalJSON(SelectionsTemplate(report), true)
	if err != nil {
		return "", fmt.Errorf("failed to generate selections: %w", err)
	}

	if path == "" {
		path = "selections.json"
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write selections: %w", err)
	}
	return path, nil
}

// LoadSelections reads a JSON selections file and validates that every
// selection names an entry and a candidate.
func LoadSelections(path string) ([]tasks.Selection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read selections file: %w", err)
	}

	var selections []tasks.Selection
	if err := json.Unmarshal(data, &selections); err != nil {
		return nil, fmt.Errorf("%w: malformed selections file: %v", shared.ErrInvalidInput, err)
	}
	if len(selections) == 0 {
		return nil, fmt.Errorf("%w: selections file is empty", shared.ErrInvalidInput)
	}

	for i, sel := range selections {
		if sel.EntryID == "" {
			return nil, fmt.Errorf("%w: selection %d is missing entry_id", shared.ErrInvalidInput, i)
		}
		if sel.Candidate.ProviderID == "" {
			return nil, fmt.Errorf("%w: selection %d is missing candidate provider_id", shared.ErrInvalidInput, i)
		}
	}
	return selections, nil
}
