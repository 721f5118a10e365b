// Package tui is a terminal host for a picker session.
package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/media-library/backend/internal/picker"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	tabStyle       = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("245"))
	activeTabStyle = lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(lipgloss.Color("#00FFFF")).Underline(true)

	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#4A90E2"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#50FA7B")).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5555")).Bold(true)
	infoStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).MarginTop(1)
)

type viewMsg picker.View

type doneMsg struct{}

// Model renders the views of one orchestrator and forwards key presses to
// it. Quitting the program closes the session.
type Model struct {
	orch   *picker.Orchestrator
	view   picker.View
	cursor int

	search    textinput.Model
	searching bool

	keys  KeyMap
	help  help.Model
	width int
	done  bool
}

// New creates a model driving o.
func New(o *picker.Orchestrator) *Model {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.CharLimit = 128
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))

	return &Model{
		orch:   o,
		view:   picker.View{Loading: true},
		search: ti,
		keys:   DefaultKeyMap(),
		help:   help.New(),
		width:  80,
	}
}

// Current returns the last view received from the session.
func (m *Model) Current() picker.View {
	return m.view
}

// Cursor returns the index of the highlighted tile.
func (m *Model) Cursor() int {
	return m.cursor
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return waitForView(m.orch)
}

func waitForView(o *picker.Orchestrator) tea.Cmd {
	return func() tea.Msg {
		select {
		case v := <-o.Views():
			return viewMsg(v)
		case <-o.Done():
			return doneMsg{}
		}
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case viewMsg:
		m.view = picker.View(msg)
		m.cursor = min(m.cursor, max(len(m.view.Tiles)-1, 0))
		if !m.searching {
			m.search.SetValue(m.view.SearchText)
		}
		return m, waitForView(m.orch)

	case doneMsg:
		m.done = true
		return m, tea.Quit

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.handleSearch(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, m.do(m.orch.Close())
	case "esc", "enter", "tab":
		m.searching = false
		m.search.Blur()
		return m, nil
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if after := m.search.Value(); after != before {
		if err := m.orch.SearchInput(after); err != nil {
			return m, m.do(err)
		}
	}
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		return m, m.do(m.orch.Close())

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.view.Tiles)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Toggle):
		if m.cursor < len(m.view.Tiles) {
			t := m.view.Tiles[m.cursor]
			return m, m.do(m.orch.Toggle(t.URL, t.Name))
		}

	case key.Matches(msg, m.keys.Confirm):
		if m.view.ConfirmEnabled {
			return m, m.do(m.orch.Confirm())
		}

	case key.Matches(msg, m.keys.PrevPage):
		if p := m.view.Pagination; p.Visible && !p.Prev.Disabled {
			m.cursor = 0
			return m, m.do(m.orch.SetPage(p.Prev.Page))
		}

	case key.Matches(msg, m.keys.NextPage):
		if p := m.view.Pagination; p.Visible && !p.Next.Disabled {
			m.cursor = 0
			return m, m.do(m.orch.SetPage(p.Next.Page))
		}

	case key.Matches(msg, m.keys.NextFolder):
		return m, m.moveFolder(1)

	case key.Matches(msg, m.keys.PrevFolder):
		return m, m.moveFolder(-1)

	case key.Matches(msg, m.keys.Search):
		m.searching = true
		return m, m.search.Focus()
	}
	return m, nil
}

func (m *Model) moveFolder(delta int) tea.Cmd {
	tabs := m.view.Folders
	if len(tabs) < 2 {
		return nil
	}
	active := 0
	for i, tab := range tabs {
		if tab.Active {
			active = i
			break
		}
	}
	next := (active + delta + len(tabs)) % len(tabs)
	m.cursor = 0
	return m.do(m.orch.SetFolder(tabs[next].Folder))
}

// do turns the result of an orchestrator call into a command. A closed
// session ends the program.
func (m *Model) do(err error) tea.Cmd {
	if errors.Is(err, picker.ErrSessionClosed) {
		m.done = true
		return tea.Quit
	}
	return nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.done {
		return ""
	}
	v := m.view
	var b strings.Builder

	b.WriteString(titleStyle.Render(v.Title))
	b.WriteString("\n\n")

	tabs := make([]string, 0, len(v.Folders))
	for _, tab := range v.Folders {
		if tab.Active {
			tabs = append(tabs, activeTabStyle.Render(tab.Label))
		} else {
			tabs = append(tabs, tabStyle.Render(tab.Label))
		}
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n")

	if m.searching || m.search.Value() != "" {
		b.WriteString(m.search.View())
	} else {
		b.WriteString(dimStyle.Render(v.SearchPlaceholder))
	}
	b.WriteString("\n\n")

	switch {
	case v.Loading && len(v.Tiles) == 0:
		b.WriteString(dimStyle.Render("Loading..."))
		b.WriteString("\n")
	case v.Error:
		b.WriteString(errorStyle.Render(v.EmptyText))
		b.WriteString("\n")
	case v.Empty:
		b.WriteString(dimStyle.Render(v.EmptyText))
		b.WriteString("\n")
	default:
		for i, tile := range v.Tiles {
			b.WriteString(m.renderTile(i, tile))
			b.WriteString("\n")
		}
	}

	if line := renderPagination(v.Pagination); line != "" {
		b.WriteString("\n")
		b.WriteString(line)
		b.WriteString("\n")
	}

	info := v.Info
	if v.Loading {
		info += "  (loading)"
	}
	b.WriteString(infoStyle.Render(info))
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) renderTile(i int, t picker.Tile) string {
	mark := "( )"
	if m.view.Multiple {
		mark = "[ ]"
	}
	if t.Selected {
		mark = mark[:1] + "x" + mark[2:]
	}

	kind := "img"
	if t.Thumbnail == "" {
		kind = string(t.Icon)
	}
	row := fmt.Sprintf("%s %-5s %-40s %10s", mark, kind, t.Name, t.SizeText)

	switch {
	case i == m.cursor:
		return cursorStyle.Render(row)
	case t.Selected:
		return selectedStyle.Render(row)
	default:
		return row
	}
}

func renderPagination(p picker.Pagination) string {
	if !p.Visible {
		return ""
	}
	parts := make([]string, 0, len(p.Pages)+2)
	parts = append(parts, pageArrow("‹", p.Prev.Disabled))
	for _, l := range p.Pages {
		if l.Active {
			parts = append(parts, activeTabStyle.Render(fmt.Sprint(l.Page)))
		} else {
			parts = append(parts, fmt.Sprint(l.Page))
		}
	}
	parts = append(parts, pageArrow("›", p.Next.Disabled))
	return strings.Join(parts, " ")
}

func pageArrow(s string, disabled bool) string {
	if disabled {
		return dimStyle.Render(s)
	}
	return s
}
