package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/lunamoth/cadenza/internal/models"
	"github.com/lunamoth/cadenza/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	EntryListView ViewState = iota
	SearchView
	ReviewView
	ApplyView
	ResultView
)

// EntrySource lists library entries for the picker.
type EntrySource interface {
	List(ctx context.Context, criteria map[string]any) ([]*models.PersistedEntry, error)
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	source       EntrySource
	engine       tasks.SyncEngine
	width        int
	height       int
	entryList    list.Model
	entries      []models.Entry
	picks        map[string]bool
	matches      []tasks.Outcome[[]models.Candidate]
	reviewIdx    int
	selections   []tasks.Selection
	searchReport *tasks.Report[[]models.Candidate]
	applyReport  *tasks.Report[models.TrackData]
	progressChan chan tasks.ProgressUpdate
	progress     tasks.ProgressUpdate
	done         tea.Msg
	err          error
	spin         spinner.Model
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, source EntrySource, engine tasks.SyncEngine) *Model {
	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = NewBold("#7D56F4")

	return &Model{
		ctx:    ctx,
		view:   EntryListView,
		source: source,
		engine: engine,
		picks:  make(map[string]bool),
		spin:   spin,
		help:   help.New(),
		keys:   newKeyMap(),
	}
}

// Init initializes the TUI by listing library entries.
func (m *Model) Init() tea.Cmd {
	return m.loadEntries()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.entryList.Width() == 0 {
			m.entryList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case EntryListView:
			return m.handleEntryListKeys(msg)
		case SearchView, ApplyView:
			return m.handleProgressKeys(msg)
		case ReviewView:
			return m.handleReviewKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case spinner.TickMsg:
		if m.view != SearchView && m.view != ApplyView {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case entriesLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.entries = msg.entries
		items := make([]list.Item, len(msg.entries))
		for i, entry := range msg.entries {
			items[i] = entryItem{entry: entry, picks: m.picks}
		}
		m.entryList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.entryList.Title = "Library Entries"
		m.entryList.SetSize(m.width-4, m.height-8)
		return m, nil

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case searchDoneMsg:
		m.progressChan = nil
		m.searchReport = msg.report
		if msg.err != nil {
			m.err = msg.err
			m.view = ResultView
			return m, nil
		}
		m.matches = nil
		for _, out := range msg.report.Outcomes {
			if out.Kind == tasks.OutcomeSuccess && len(out.Payload) > 0 {
				m.matches = append(m.matches, out)
			}
		}
		if len(m.matches) == 0 {
			m.view = ResultView
			return m, nil
		}
		m.reviewIdx = 0
		m.selections = nil
		m.view = ReviewView
		return m, nil

	case applyDoneMsg:
		m.progressChan = nil
		m.applyReport = msg.report
		m.err = msg.err
		m.view = ResultView
		return m, nil
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case EntryListView:
		return m.renderEntryList()
	case SearchView:
		return m.renderProgress("Searching Candidates")
	case ReviewView:
		return m.renderReview()
	case ApplyView:
		return m.renderProgress("Applying Metadata")
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleEntryListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		if item, ok := m.entryList.SelectedItem().(entryItem); ok {
			m.picks[item.entry.ID] = !m.picks[item.entry.ID]
		}
		return m, nil
	case "a":
		all := len(m.picked()) == len(m.entries)
		for _, entry := range m.entries {
			m.picks[entry.ID] = !all
		}
		return m, nil
	case "enter":
		ids := m.picked()
		if len(ids) == 0 {
			if item, ok := m.entryList.SelectedItem().(entryItem); ok {
				ids = []string{item.entry.ID}
			}
		}
		if len(ids) == 0 {
			return m, nil
		}
		m.progress = tasks.ProgressUpdate{}
		m.view = SearchView
		return m, m.startSearch(ids)
	}

	var cmd tea.Cmd
	m.entryList, cmd = m.entryList.Update(msg)
	return m, cmd
}

func (m *Model) handleProgressKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) handleReviewKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = EntryListView
		m.matches = nil
		m.selections = nil
		return m, nil
	case "y":
		out := m.matches[m.reviewIdx]
		m.selections = append(m.selections, tasks.Selection{EntryID: out.EntryID, Candidate: out.Payload[0]})
		return m.advanceReview()
	case "n":
		return m.advanceReview()
	}
	return m, nil
}

func (m *Model) advanceReview() (tea.Model, tea.Cmd) {
	m.reviewIdx++
	if m.reviewIdx < len(m.matches) {
		return m, nil
	}
	if len(m.selections) == 0 {
		m.view = ResultView
		return m, nil
	}
	m.progress = tasks.ProgressUpdate{}
	m.view = ApplyView
	return m, m.startApply()
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.view = EntryListView
		m.searchReport = nil
		m.applyReport = nil
		m.matches = nil
		m.selections = nil
		m.reviewIdx = 0
		m.err = nil
		return m, nil
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.view == EntryListView {
		m.entryList, cmd = m.entryList.Update(msg)
	}
	return m, cmd
}

// picked returns the toggled entry ids in library order.
func (m *Model) picked() []string {
	ids := make([]string, 0, len(m.picks))
	for _, entry := range m.entries {
		if m.picks[entry.ID] {
			ids = append(ids, entry.ID)
		}
	}
	return ids
}

func (m *Model) entryByID(id string) (models.Entry, bool) {
	for _, entry := range m.entries {
		if entry.ID == id {
			return entry, true
		}
	}
	return models.Entry{}, false
}

func (m *Model) loadEntries() tea.Cmd {
	return func() tea.Msg {
		persisted, err := m.source.List(m.ctx, nil)
		if err != nil {
			return entriesLoadedMsg{err: err}
		}
		entries := make([]models.Entry, len(persisted))
		for i, p := range persisted {
			entries[i] = p.Entry()
		}
		return entriesLoadedMsg{entries: entries}
	}
}

func (m *Model) startSearch(ids []string) tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	progress := m.progressChan

	go func() {
		report, err := m.engine.SearchCandidates(m.ctx, ids, progress)
		m.done = searchDoneMsg{report: report, err: err}
		close(progress)
	}()

	return tea.Batch(m.spin.Tick, m.waitForProgress())
}

func (m *Model) startApply() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	progress := m.progressChan
	selections := m.selections

	go func() {
		report, err := m.engine.ApplySelections(m.ctx, selections, progress)
		m.done = applyDoneMsg{report: report, err: err}
		close(progress)
	}()

	return tea.Batch(m.spin.Tick, m.waitForProgress())
}

// waitForProgress drains one update per command. Reading m.done after the
// channel closes is safe: the worker writes it before close.
func (m *Model) waitForProgress() tea.Cmd {
	progress := m.progressChan
	return func() tea.Msg {
		if progress == nil {
			return m.done
		}

		update, ok := <-progress
		if !ok {
			return m.done
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderEntryList() string {
	helpKeys := []key.Binding{m.keys.toggle, m.keys.all, m.keys.enter, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.entryList.View(), helpView)
}

func (m *Model) renderProgress(heading string) string {
	title := styles.title.Render(heading)

	var phase string
	switch m.progress.Phase {
	case tasks.LoadingEntries:
		phase = "Loading entries from library..."
	case tasks.Searching:
		phase = fmt.Sprintf("Searching candidates (%d/%d)", m.progress.Completed, m.progress.Total)
	case tasks.Applying:
		phase = fmt.Sprintf("Writing metadata (%d/%d)", m.progress.Completed, m.progress.Total)
	case tasks.Complete:
		phase = "Finishing up..."
	default:
		phase = "Starting..."
	}

	return fmt.Sprintf("%s\n\n%s %s\n%s", title, m.spin.View(), phase, m.progress.Message)
}

func (m *Model) renderReview() string {
	out := m.matches[m.reviewIdx]
	cand := out.Payload[0]

	title := styles.title.Render(fmt.Sprintf("Review Match %d/%d", m.reviewIdx+1, len(m.matches)))

	current := out.EntryID
	if entry, ok := m.entryByID(out.EntryID); ok {
		current = describeTrack(entry.Title, entry.Artist, entry.Album, entry.Year)
	}
	proposed := describeTrack(cand.Title, cand.Artist, cand.Album, cand.Year)

	info := fmt.Sprintf(
		"\nLibrary:    %s\nCandidate:  %s\nScore:      %.2f\nAlternates: %d\n",
		current, proposed, cand.Score, len(out.Payload)-1,
	)

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderResult() string {
	helpKeys := []key.Binding{m.keys.restart, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Sync failed: %v\n\nPress r to restart, q to quit", m.err))
	}

	if m.applyReport == nil {
		title := styles.warn.Render("Nothing Applied")
		info := "\nNothing to report.\n"
		if m.searchReport != nil {
			info = fmt.Sprintf(
				"\nSearched %d entries: %d matched, %d failed, %d skipped.\nNo selections were applied.\n",
				m.searchReport.Requested, m.searchReport.Succeeded, m.searchReport.Failed, m.searchReport.Skipped,
			)
		}
		return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
	}

	title := styles.ok.Render("✓ Sync Complete!")
	info := fmt.Sprintf(
		"\nApplied %d selections: %d succeeded, %d failed, %d skipped.",
		m.applyReport.Requested, m.applyReport.Succeeded, m.applyReport.Failed, m.applyReport.Skipped,
	)

	var failed string
	if m.applyReport.Failed > 0 {
		failed = fmt.Sprintf("\n\n%s", styles.warn.Render(fmt.Sprintf("Failed to apply %d entries:", m.applyReport.Failed)))
		for _, out := range m.applyReport.Outcomes {
			if out.Kind == tasks.OutcomeFailure {
				failed += fmt.Sprintf("\n  • %s: %s", out.EntryID, out.Reason)
			}
		}
	}

	return fmt.Sprintf("%s\n%s%s\n\n%s", title, info, failed, helpView)
}
