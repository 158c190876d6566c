package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/drivebox/internal/models"
	"github.com/desertthunder/drivebox/internal/services"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	FileListView ViewState = iota
	ConfirmView
	DownloadView
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx       context.Context
	view      ViewState
	storage   services.StorageService
	outputDir string
	width     int
	height    int
	fileList  list.Model
	files     []models.RemoteFile
	selected  *models.RemoteFile
	savedPath string
	err       error
	help      help.Model
	keys      keyMap
}

// keyMap defines the key bindings for the TUI.
type keyMap struct {
	up      key.Binding
	down    key.Binding
	enter   key.Binding
	back    key.Binding
	yes     key.Binding
	no      key.Binding
	restart key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "download")),
		back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		yes:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yes")),
		no:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "no")),
		restart: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter},
		{k.back, k.yes, k.no},
		{k.restart, k.quit},
	}
}

var _ list.Item = fileItem{}

// fileItem wraps [models.RemoteFile] to implement [list.Item].
type fileItem struct {
	file models.RemoteFile
}

func (i fileItem) FilterValue() string { return i.file.Name }
func (i fileItem) Title() string       { return i.file.Name }
func (i fileItem) Description() string { return i.file.ID }

type filesFetchedMsg struct {
	files []models.RemoteFile
	err   error
}

type downloadDoneMsg struct {
	path string
	err  error
}

// NewModel creates a new TUI model with the provided dependencies.
//
// Downloads are written to outputDir, defaulting to the working directory.
func NewModel(ctx context.Context, storage services.StorageService, outputDir string) *Model {
	if outputDir == "" {
		outputDir = "."
	}
	return &Model{
		ctx:       ctx,
		view:      FileListView,
		storage:   storage,
		outputDir: outputDir,
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

// Init initializes the TUI by fetching the remote file listing.
func (m *Model) Init() tea.Cmd {
	return m.fetchFiles()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.fileList.Width() == 0 {
			m.fileList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case FileListView:
			return m.handleFileListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case filesFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.files = msg.files
		items := make([]list.Item, len(msg.files))
		for i, f := range msg.files {
			items[i] = fileItem{file: f}
		}
		m.fileList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.fileList.Title = "Drive Files"
		m.fileList.SetSize(m.width-4, m.height-8)
		m.view = FileListView
		return m, nil

	case downloadDoneMsg:
		m.savedPath = msg.path
		m.err = msg.err
		m.view = ResultView
		return m, nil
	}

	return m.updateList(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case FileListView:
		return m.renderFileList()
	case ConfirmView:
		return m.renderConfirm()
	case DownloadView:
		return m.renderDownload()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleFileListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		return m, m.fetchFiles()
	case "enter":
		if selected := m.fileList.SelectedItem(); selected != nil {
			if fi, ok := selected.(fileItem); ok {
				m.selected = &fi.file
				m.view = ConfirmView
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.fileList, cmd = m.fileList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "n", "esc":
		m.view = FileListView
		return m, nil
	case "y", "enter":
		m.view = DownloadView
		return m, m.downloadSelected()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r", "esc":
		m.view = FileListView
		m.selected = nil
		m.savedPath = ""
		m.err = nil
		return m, nil
	}
	return m, nil
}

func (m *Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.view == FileListView {
		m.fileList, cmd = m.fileList.Update(msg)
	}
	return m, cmd
}

func (m *Model) fetchFiles() tea.Cmd {
	return func() tea.Msg {
		files, err := m.storage.List(m.ctx)
		return filesFetchedMsg{files: files, err: err}
	}
}

// downloadSelected streams the selected file to disk in a background command.
func (m *Model) downloadSelected() tea.Cmd {
	file := *m.selected
	return func() tea.Msg {
		stream, err := m.storage.Download(m.ctx, file.ID)
		if err != nil {
			return downloadDoneMsg{err: err}
		}
		defer stream.Body.Close()

		path := filepath.Join(m.outputDir, file.Name)
		out, err := os.Create(path)
		if err != nil {
			return downloadDoneMsg{err: fmt.Errorf("failed to create output file: %w", err)}
		}
		defer out.Close()

		if _, err := io.Copy(out, stream.Body); err != nil {
			os.Remove(path)
			return downloadDoneMsg{err: fmt.Errorf("download interrupted: %w", err)}
		}

		return downloadDoneMsg{path: path}
	}
}

func (m *Model) renderFileList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.restart, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.fileList.View(), helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Download '%s'?", m.selected.Name))
	info := fmt.Sprintf("\nFile: %s\nID: %s\nSave to: %s\n", m.selected.Name, m.selected.ID, m.outputDir)

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderDownload() string {
	title := styles.title.Render("Downloading")
	return fmt.Sprintf("%s\n\nFetching '%s'...", title, m.selected.Name)
}

func (m *Model) renderResult() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Download failed: %v\n\nPress r to go back, q to quit", m.err))
	}

	title := styles.ok.Render("✓ Download Complete")
	info := fmt.Sprintf("\nSaved to %s", m.savedPath)

	helpKeys := []key.Binding{m.keys.restart, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n\n%s", title, info, helpView)
}
