// Package tui is the interactive folder picker.
package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"dirhop/internal/cache"
	"dirhop/internal/scanner"
)

// ViewState represents which screen is active.
type ViewState int

const (
	ViewScanning ViewState = iota
	ViewPicking
)

// programRef is an indirect pointer to the tea.Program so background
// goroutines can send messages. It must be set after tea.NewProgram
// returns but before Run.
type programRef struct {
	p *tea.Program
}

// Config holds what the picker needs from the CLI layer.
type Config struct {
	Cache *cache.Cache
	Roots []string

	// program is set internally so the scan can report progress.
	program *programRef
}

// Model is the top-level Bubble Tea model.
type Model struct {
	state  ViewState
	config Config
	width  int
	height int

	scanning scanningModel
	picker   pickerModel

	selection *scanner.Folder
	err       error
}

// New creates a new picker model with the given config.
func New(cfg Config) Model {
	return Model{
		state:    ViewScanning,
		config:   cfg,
		scanning: newScanningModel(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.scanning.spinner.Tick, loadFolders(m.config))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			// Dismissal: leave with no selection.
			m.selection = nil
			return m, tea.Quit
		}

	case foldersMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.picker = newPickerModel(msg.folders)
		m.state = ViewPicking
		return m, m.picker.input.Focus()
	}

	var cmd tea.Cmd
	switch m.state {
	case ViewScanning:
		m.scanning, cmd = m.scanning.Update(msg)
		return m, cmd

	case ViewPicking:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEnter {
			if sel := m.picker.selected(); sel != nil {
				m.selection = sel
				return m, tea.Quit
			}
			return m, nil
		}
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) View() string {
	if m.err != nil {
		return errorStyle.Render("Error: "+m.err.Error()) + "\n"
	}
	switch m.state {
	case ViewScanning:
		return m.scanning.View(m.width, m.height)
	case ViewPicking:
		return m.picker.View(m.width, m.height)
	}
	return ""
}

// foldersMsg is sent when the cache has produced the folder list.
type foldersMsg struct {
	folders []scanner.Folder
	err     error
}

func loadFolders(cfg Config) tea.Cmd {
	return func() tea.Msg {
		cfg.Cache.SetProgress(func(count, depth int) {
			if cfg.program != nil && cfg.program.p != nil {
				cfg.program.p.Send(scanProgressMsg{count: count, depth: depth})
			}
		})
		folders, err := cfg.Cache.Folders(context.Background(), cfg.Roots)
		return foldersMsg{folders: folders, err: err}
	}
}

// Run starts the picker and returns the chosen folder, or nil if the
// user dismissed it.
func Run(cfg Config) (*scanner.Folder, error) {
	ref := &programRef{}
	cfg.program = ref
	model := New(cfg)
	p := tea.NewProgram(model, tea.WithAltScreen())
	ref.p = p

	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	m, ok := final.(Model)
	if !ok {
		return nil, nil
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.selection, nil
}
