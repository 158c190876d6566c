// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for browsing the remote drive:
//  1. [FileListView] : Browse files stored remotely
//  2. [ConfirmView] : Confirm a download
//  3. [DownloadView] : Wait for the transfer
//  4. [ResultView] : Display the saved path or the failure
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Downloads run in a background command so the interface stays responsive.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
