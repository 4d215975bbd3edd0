package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"dirhop/internal/match"
	"dirhop/internal/scanner"
)

// maxVisible bounds how many matches the picker shows at once.
const maxVisible = 100

// scanProgressMsg is sent periodically while the scan runs.
type scanProgressMsg struct {
	count int
	depth int
}

type scanningModel struct {
	spinner spinner.Model
	count   int
}

func newScanningModel() scanningModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = selectedStyle
	return scanningModel{spinner: sp}
}

func (m scanningModel) Update(msg tea.Msg) (scanningModel, tea.Cmd) {
	switch msg := msg.(type) {
	case scanProgressMsg:
		m.count = msg.count
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m scanningModel) View(width, height int) string {
	s := "\n"
	s += titleStyle.Render("  ◆ dirhop") + "\n"
	s += subtitleStyle.Render("  Jump to a folder") + "\n\n"
	s += fmt.Sprintf("  %s Scanning...", m.spinner.View())
	if m.count > 0 {
		s += dimStyle.Render(fmt.Sprintf(" %d folders", m.count))
	}
	s += "\n"
	return s
}

type pickerModel struct {
	input   textinput.Model
	folders []scanner.Folder
	matches []match.Result
	cursor  int
	query   string
}

func newPickerModel(folders []scanner.Folder) pickerModel {
	ti := textinput.New()
	ti.Placeholder = "type a name or path fragment"
	ti.Prompt = "  ❯ "
	return pickerModel{
		input:   ti,
		folders: folders,
		matches: match.Filter(folders, ""),
	}
}

func (m pickerModel) Update(msg tea.Msg) (pickerModel, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "up", "ctrl+p":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case "down", "ctrl+n":
			if m.cursor < m.visibleCount()-1 {
				m.cursor++
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	// Re-filter only when the query actually changed; the folder list
	// never needs re-reading from disk while the picker is open.
	if q := m.input.Value(); q != m.query {
		m.query = q
		m.matches = match.Filter(m.folders, q)
		m.cursor = 0
	}
	return m, cmd
}

// selected returns the folder under the cursor, or nil when nothing
// matches.
func (m pickerModel) selected() *scanner.Folder {
	if m.visibleCount() == 0 || m.cursor >= m.visibleCount() {
		return nil
	}
	f := m.matches[m.cursor].Folder
	return &f
}

func (m pickerModel) visibleCount() int {
	if len(m.matches) > maxVisible {
		return maxVisible
	}
	return len(m.matches)
}

func (m pickerModel) View(width, height int) string {
	s := "\n"
	s += titleStyle.Render("  ◆ dirhop") + "\n\n"
	s += m.input.View() + "\n\n"

	visible := m.visibleCount()
	if visible == 0 {
		s += dimStyle.Render("  No matching folders") + "\n"
	}

	// Keep the cursor on screen for small terminals.
	rows := height - 8
	if rows < 1 || rows > visible {
		rows = visible
	}
	first := 0
	if m.cursor >= rows {
		first = m.cursor - rows + 1
	}

	for i := first; i < first+rows && i < visible; i++ {
		res := m.matches[i]
		cursor := "  "
		style := listItemStyle
		if i == m.cursor {
			cursor = "▸ "
			style = selectedStyle
		}
		s += fmt.Sprintf("  %s%s %s\n", cursor, style.Render(res.Label), detailStyle.Render(res.Detail))
	}

	s += "\n"
	s += helpStyle.Render(fmt.Sprintf("  %d/%d folders • ↑/↓ navigate • Enter jump • Esc cancel", len(m.matches), len(m.folders))) + "\n"
	return s
}
