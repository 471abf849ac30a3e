// Package terminal is the interactive terminal surface. It draws the same
// view tree as the web surface and feeds key presses through the same
// dispatch path.
package terminal

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"csvview/internal/source"
	"csvview/internal/state"
	"csvview/internal/view"
)

// Clipboard writes text to a clipboard.
type Clipboard interface {
	WriteAll(text string) error
}

// SystemClipboard uses the operating system clipboard.
type SystemClipboard struct{}

func (SystemClipboard) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}

// Loader fetches and parses the source once.
type Loader func(ctx context.Context) (view.Page, error)

type loadedMsg struct {
	page view.Page
	err  error
}

type copyDoneMsg struct {
	err error
}

// Model is the bubbletea model for the terminal viewer.
type Model struct {
	app       *state.AppState
	load      Loader
	clipboard Clipboard
	keys      KeyMap
	help      help.Model
	input     textinput.Model
	searching bool
	selected  int
	offset    int
	width     int
	height    int
}

// New creates a Model. load runs once from Init.
func New(app *state.AppState, load Loader, cb Clipboard) Model {
	in := textinput.New()
	in.Prompt = "🔍 "
	in.Placeholder = view.SearchPlaceholder
	return Model{
		app:       app,
		load:      load,
		clipboard: cb,
		keys:      DefaultKeyMap,
		help:      help.New(),
		input:     in,
		width:     80,
		height:    24,
	}
}

func (m Model) Init() tea.Cmd {
	load := m.load
	return func() tea.Msg {
		page, err := load(context.Background())
		return loadedMsg{page: page, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width

	case loadedMsg:
		if msg.err != nil {
			m.app.SetLoadFailed(source.ErrorMessage(msg.err))
			return m, nil
		}
		m.app.SetPage(msg.page)

	case copyDoneMsg:
		if msg.err != nil {
			slog.Error("Failed to copy CSV data", "error", msg.err, "component", "Terminal")
		}
		m.app.Dispatch(view.CopyResult(msg.err))

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) && (!m.searching || msg.Type == tea.KeyCtrlC) {
			return m, tea.Quit
		}
		if m.app.Status() != state.StatusReady {
			return m, nil
		}
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.EndSearch) {
		m.searching = false
		m.input.Blur()
		if key.Matches(msg, m.keys.ClearSearch) && m.input.Value() != "" {
			m.input.SetValue("")
			m.app.Dispatch(view.Search(""))
		}
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if after := m.input.Value(); after != before {
		m.app.Dispatch(view.Search(after))
		m.offset = 0
	}
	return m, cmd
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	page := m.app.Page()
	columns := 0
	if page.Table != nil {
		columns = len(page.Table.Fields)
	}
	tableMode := page.State.Mode == view.ModeTable

	switch {
	case key.Matches(msg, m.keys.ToggleView):
		m.app.Dispatch(view.ToggleView())
		m.offset = 0

	case key.Matches(msg, m.keys.Search):
		m.searching = true
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.ClearSearch):
		if m.input.Value() != "" {
			m.input.SetValue("")
			m.app.Dispatch(view.Search(""))
		}

	case key.Matches(msg, m.keys.Copy):
		eff := m.app.Dispatch(view.Copy())
		if eff.Kind == view.EffectWriteClipboard {
			return m, m.writeClipboard(eff.Text)
		}

	case key.Matches(msg, m.keys.PrevColumn):
		if tableMode && m.selected > 0 {
			m.selected--
		}
	case key.Matches(msg, m.keys.NextColumn):
		if tableMode && m.selected < columns-1 {
			m.selected++
		}
	case key.Matches(msg, m.keys.Sort):
		m.app.Dispatch(view.SortColumn(m.selected))

	case key.Matches(msg, m.keys.Up):
		m.offset--
	case key.Matches(msg, m.keys.Down):
		m.offset++
	case key.Matches(msg, m.keys.PageUp):
		m.offset -= m.pageSize()
	case key.Matches(msg, m.keys.PageDown):
		m.offset += m.pageSize()
	case key.Matches(msg, m.keys.Top):
		m.offset = 0
	case key.Matches(msg, m.keys.Bottom):
		m.offset = m.contentLines()

	default:
		if n, err := strconv.Atoi(msg.String()); err == nil && n >= 1 && n <= 9 {
			m.app.Dispatch(view.SortColumn(n - 1))
			if tableMode && n <= columns {
				m.selected = n - 1
			}
		}
	}
	m.offset = m.clampOffset(m.offset)
	return m, nil
}

func (m Model) writeClipboard(text string) tea.Cmd {
	cb := m.clipboard
	return func() tea.Msg {
		return copyDoneMsg{err: cb.WriteAll(text)}
	}
}

func (m Model) pageSize() int {
	return contentHeight(m.app.Tree(), m.height)
}

func (m Model) contentLines() int {
	tree := m.app.Tree()
	switch {
	case tree.Table != nil:
		return tree.Table.Visible
	case tree.Plain != nil:
		return len(tree.Plain.Lines)
	}
	return 0
}

func (m Model) clampOffset(offset int) int {
	if last := m.contentLines() - m.pageSize(); offset > last {
		offset = last
	}
	if offset < 0 {
		offset = 0
	}
	return offset
}

func (m Model) View() string {
	tree := m.app.Tree()
	search := m.input.View()
	if !m.searching && m.input.Value() == "" {
		search = dimStyle.Render("/ " + view.SearchPlaceholder)
	}
	return renderTree(tree, frame{
		width:    m.width,
		height:   m.height,
		selected: m.selected,
		offset:   m.offset,
		search:   search,
		help:     m.help.ShortHelpView(m.keys.ShortHelp()),
	})
}
