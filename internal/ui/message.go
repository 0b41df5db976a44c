package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/lunamoth/cadenza/internal/models"
	"github.com/lunamoth/cadenza/internal/tasks"
)

var (
	_ tea.Msg = entriesLoadedMsg{}
	_ tea.Msg = searchDoneMsg{}
	_ tea.Msg = progressUpdateMsg{}
	_ tea.Msg = applyDoneMsg{}
)

// entriesLoadedMsg carries the library listing fetched at startup.
type entriesLoadedMsg struct {
	entries []models.Entry
	err     error
}

// searchDoneMsg carries the finished candidate search report.
type searchDoneMsg struct {
	report *tasks.Report[[]models.Candidate]
	err    error
}

// progressUpdateMsg wraps one [tasks.ProgressUpdate] drained from the
// progress channel.
type progressUpdateMsg tasks.ProgressUpdate

// applyDoneMsg carries the finished apply report.
type applyDoneMsg struct {
	report *tasks.Report[models.TrackData]
	err    error
}
