package view

import (
	"strings"

	"csvview/internal/csvdoc"
)

const (
	arrowAscending  = "▲"
	arrowDescending = "▼"
)

// Tree is the surface-independent projection of a Page. Surfaces translate it
// into HTML or terminal output without consulting the Page again.
type Tree struct {
	// Error, when set, is the only thing a surface shows.
	Error string `json:"error,omitempty"`

	// Loading is set while the source is still being fetched.
	Loading bool `json:"loading,omitempty"`

	Mode    string         `json:"mode,omitempty"`
	Actions *ActionBar     `json:"actions,omitempty"`
	Search  *SearchBox     `json:"search,omitempty"`
	Table   *TableView     `json:"table,omitempty"`
	Plain   *PlainTextView `json:"plain,omitempty"`
	Notice  *Notice        `json:"notice,omitempty"`
}

// ActionBar holds the labels of the toggle and copy buttons.
type ActionBar struct {
	ToggleLabel string `json:"toggleLabel"`
	CopyLabel   string `json:"copyLabel"`
}

// SearchBox is the search input with its current value.
type SearchBox struct {
	Value       string `json:"value"`
	Placeholder string `json:"placeholder"`
}

// HeaderCell is one column header.
type HeaderCell struct {
	Index int    `json:"index"`
	Label string `json:"label"`
	// Arrow is ▲ or ▼ on the active sort column and empty elsewhere.
	Arrow string `json:"arrow"`
}

// RowView is one record as display strings in field order.
type RowView struct {
	Cells  []string `json:"cells"`
	Hidden bool     `json:"hidden"`
}

// TableView is the table-mode body. Visible counts rows not hidden by the search.
type TableView struct {
	Headers []HeaderCell `json:"headers"`
	Rows    []RowView    `json:"rows"`
	Visible int          `json:"visible"`
}

// Line is one line of the plain-text body.
type Line struct {
	Text        string `json:"text"`
	Highlighted bool   `json:"highlighted"`
}

// PlainTextView is the plain-text-mode body.
type PlainTextView struct {
	Lines []Line `json:"lines"`
}

// ErrorTree is the terminal view shown when loading fails.
func ErrorTree(message string) Tree {
	return Tree{Error: message}
}

// LoadingTree is shown before the first render.
func LoadingTree() Tree {
	return Tree{Loading: true}
}

// Render projects p into a Tree. The result depends only on p.
func Render(p Page) Tree {
	if p.Table == nil {
		return ErrorTree("No CSV data loaded.")
	}

	tree := Tree{
		Mode:   p.State.Mode.String(),
		Search: &SearchBox{Value: p.State.SearchText, Placeholder: SearchPlaceholder},
		Notice: p.State.Notice,
	}
	tree.Actions = &ActionBar{ToggleLabel: ToggleToPlainLabel, CopyLabel: CopyLabel}
	if p.State.Mode == ModePlainText {
		tree.Actions.ToggleLabel = ToggleToTableLabel
	}

	query := strings.ToLower(p.State.SearchText)
	if p.State.Mode == ModeTable {
		tree.Table = renderTable(p.Table, p.State, query)
		return tree
	}

	plain, err := renderPlain(p.Table, query)
	if err != nil {
		return ErrorTree("Failed to render CSV data as text.")
	}
	tree.Plain = plain
	return tree
}

func renderTable(t *csvdoc.Table, st State, query string) *TableView {
	tv := &TableView{
		Headers: make([]HeaderCell, len(t.Fields)),
		Rows:    make([]RowView, len(t.Rows)),
	}
	for i, f := range t.Fields {
		h := HeaderCell{Index: i, Label: f}
		if i == st.SortColumn {
			h.Arrow = arrowAscending
			if !st.SortAscending {
				h.Arrow = arrowDescending
			}
		}
		tv.Headers[i] = h
	}
	for i, row := range t.Rows {
		cells := make([]string, len(t.Fields))
		for j, f := range t.Fields {
			cells[j] = row.Value(f)
		}
		hidden := query != "" && !RowMatches(cells, query)
		tv.Rows[i] = RowView{Cells: cells, Hidden: hidden}
		if !hidden {
			tv.Visible++
		}
	}
	return tv
}

func renderPlain(t *csvdoc.Table, query string) (*PlainTextView, error) {
	text, err := csvdoc.Serialize(t)
	if err != nil {
		return nil, err
	}
	raw := strings.Split(text, "\n")
	pv := &PlainTextView{Lines: make([]Line, len(raw))}
	for i, l := range raw {
		pv.Lines[i] = Line{Text: l, Highlighted: query != "" && strings.Contains(strings.ToLower(l), query)}
	}
	return pv, nil
}

// RowMatches reports whether the concatenated cell text of a row contains
// the already lowercased query.
func RowMatches(cells []string, query string) bool {
	return strings.Contains(strings.ToLower(strings.Join(cells, "")), query)
}
