package terminal

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvview/internal/csvdoc"
	"csvview/internal/source"
	"csvview/internal/state"
	"csvview/internal/view"
)

const peopleCSV = "name,age\nAlice,30\nBob,25\n"

type fakeClipboard struct {
	text string
	err  error
}

func (f *fakeClipboard) WriteAll(text string) error {
	if f.err != nil {
		return f.err
	}
	f.text = text
	return nil
}

func loadPeople(context.Context) (view.Page, error) {
	tbl, err := csvdoc.Parse(peopleCSV)
	if err != nil {
		return view.Page{}, err
	}
	return view.NewPage(tbl, peopleCSV), nil
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func started(t *testing.T, load Loader, cb Clipboard) (Model, *state.AppState) {
	t.Helper()
	app := state.New(10, "people.csv", "test")
	m := New(app, load, cb)
	m, _ = send(t, m, m.Init()())
	return m, app
}

func TestLoadShowsTable(t *testing.T) {
	m, app := started(t, loadPeople, &fakeClipboard{})
	assert.Equal(t, state.StatusReady, app.Status())

	out := m.View()
	assert.Contains(t, out, view.ToggleToPlainLabel)
	assert.Contains(t, out, view.CopyLabel)
	assert.Contains(t, out, "Showing 2 of 2 rows")
	assert.Contains(t, out, "Alice")
}

func TestLoadFailureShowsOnlyMessage(t *testing.T) {
	fail := func(context.Context) (view.Page, error) {
		return view.Page{}, &source.FetchError{Address: "x.csv", Status: 404}
	}
	m, app := started(t, fail, &fakeClipboard{})
	assert.Equal(t, state.StatusFailed, app.Status())

	out := m.View()
	assert.Contains(t, out, source.FetchErrorMessage)
	assert.NotContains(t, out, view.CopyLabel)

	m, _ = send(t, m, runes("t"))
	assert.Equal(t, state.StatusFailed, app.Status())
}

func TestDigitSortsColumn(t *testing.T) {
	m, app := started(t, loadPeople, &fakeClipboard{})

	m, _ = send(t, m, runes("2"))
	st := app.Page().State
	assert.Equal(t, 1, st.SortColumn)
	assert.True(t, st.SortAscending)
	assert.Equal(t, 1, m.selected)

	_, _ = send(t, m, runes("2"))
	assert.False(t, app.Page().State.SortAscending)
}

func TestSelectedColumnSort(t *testing.T) {
	m, app := started(t, loadPeople, &fakeClipboard{})

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyRight})
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 1, m.selected)

	_, _ = send(t, m, runes("s"))
	assert.Equal(t, 1, app.Page().State.SortColumn)
	assert.Equal(t, "Bob", app.Page().Table.Rows[0].Value("name"))
}

func TestToggleIgnoresSortInPlainMode(t *testing.T) {
	m, app := started(t, loadPeople, &fakeClipboard{})

	m, _ = send(t, m, runes("t"))
	assert.Equal(t, view.ModePlainText, app.Page().State.Mode)
	assert.Contains(t, m.View(), view.ToggleToTableLabel)

	_, _ = send(t, m, runes("1"))
	assert.Equal(t, view.NoSort, app.Page().State.SortColumn)
}

func TestSearchTyping(t *testing.T) {
	m, app := started(t, loadPeople, &fakeClipboard{})

	m, _ = send(t, m, runes("/"))
	require.True(t, m.searching)
	m, _ = send(t, m, runes("b"))
	m, _ = send(t, m, runes("q"))
	assert.Equal(t, "bq", app.Page().State.SearchText)

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Equal(t, "b", app.Page().State.SearchText)

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.searching)
	assert.Equal(t, "b", app.Page().State.SearchText)
	assert.Contains(t, m.View(), "Showing 1 of 2 rows")

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, "", app.Page().State.SearchText)
	assert.Equal(t, "", m.input.Value())
}

func TestCopyWritesRawText(t *testing.T) {
	cb := &fakeClipboard{}
	m, app := started(t, loadPeople, cb)

	_, _ = send(t, m, runes("1"))
	m, cmd := send(t, m, runes("c"))
	require.NotNil(t, cmd)
	m, _ = send(t, m, cmd())

	assert.Equal(t, peopleCSV, cb.text)
	notice := app.Page().State.Notice
	require.NotNil(t, notice)
	assert.Equal(t, view.NoticeSuccess, notice.Kind)
	assert.Contains(t, m.View(), view.CopySucceededText)
}

func TestCopyFailureShowsNotice(t *testing.T) {
	m, app := started(t, loadPeople, &fakeClipboard{err: errors.New("no clipboard")})

	m, cmd := send(t, m, runes("c"))
	require.NotNil(t, cmd)
	_, _ = send(t, m, cmd())

	notice := app.Page().State.Notice
	require.NotNil(t, notice)
	assert.Equal(t, view.NoticeError, notice.Kind)
	assert.Equal(t, view.CopyFailedText, notice.Text)
}

func TestQuit(t *testing.T) {
	m, _ := started(t, loadPeople, &fakeClipboard{})
	_, cmd := send(t, m, runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestScrollIsClamped(t *testing.T) {
	m, _ := started(t, loadPeople, &fakeClipboard{})
	m, _ = send(t, m, tea.WindowSizeMsg{Width: 80, Height: 40})

	m, _ = send(t, m, runes("G"))
	assert.Equal(t, 0, m.offset)
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, m.offset)
}
