// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for metadata sync:
//  1. [EntryListView] : Browse the library and toggle entries for sync
//  2. [SearchView] : Monitor candidate search progress
//  3. [ReviewView] : Accept or reject the top candidate per entry
//  4. [ApplyView] : Monitor metadata writes
//  5. [ResultView] : Display outcome counts and failed entries
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving typed messages from commands.
// Progress updates flow through a channel from the sync engine, consumed one update per command so batch runs never block on rendering.
//
// Keyboard navigation uses vim-style bindings (j/k, space, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
