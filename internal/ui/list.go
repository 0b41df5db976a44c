package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/lunamoth/cadenza/internal/models"
)

var (
	_ list.Item = entryItem{}
)

// entryItem wraps [models.Entry] to implement [list.Item]. The picks map is
// shared with the model, so toggling redraws the checkbox without rebuilding
// the item slice.
type entryItem struct {
	entry models.Entry
	picks map[string]bool
}

func (i entryItem) FilterValue() string { return i.entry.Title }

func (i entryItem) Title() string {
	mark := "[ ]"
	if i.picks[i.entry.ID] {
		mark = "[x]"
	}
	return fmt.Sprintf("%s %s", mark, i.entry.Title)
}

func (i entryItem) Description() string {
	desc := i.entry.Artist
	if i.entry.Album != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.entry.Album)
	}
	if i.entry.ProviderTrackID != "" {
		desc = fmt.Sprintf("%s • synced", desc)
	}
	return desc
}

// describeTrack renders one-line track metadata for the review screen.
func describeTrack(title, artist, album string, year int) string {
	desc := title
	if artist != "" {
		desc = fmt.Sprintf("%s • %s", desc, artist)
	}
	if album != "" {
		desc = fmt.Sprintf("%s • %s", desc, album)
	}
	if year != 0 {
		desc = fmt.Sprintf("%s (%d)", desc, year)
	}
	return desc
}
