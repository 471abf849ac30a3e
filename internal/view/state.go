package view

import (
	"csvview/internal/csvdoc"
)

// Mode selects how the dataset is presented.
type Mode int

const (
	ModeTable Mode = iota
	ModePlainText
)

func (m Mode) String() string {
	if m == ModePlainText {
		return "plain"
	}
	return "table"
}

// NoSort is the SortColumn value when no column orders the rows.
const NoSort = -1

// User-facing texts.
const (
	ToggleToPlainLabel = "Switch to Plain Text View"
	ToggleToTableLabel = "Switch to Table View"
	CopyLabel          = "Copy to Clipboard"
	SearchPlaceholder  = "Search..."

	CopySucceededText = "CSV data copied to clipboard!"
	CopyFailedText    = "Failed to copy CSV data. Please check the logs for details."
)

// NoticeKind tells a surface how to present a notice.
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice is a transient message shown after a clipboard write completes.
type Notice struct {
	Kind NoticeKind `json:"kind"`
	Text string     `json:"text"`
}

// State is everything besides the data that decides what gets rendered.
type State struct {
	Mode          Mode
	SortColumn    int
	SortAscending bool
	SearchText    string
	Notice        *Notice
}

// DefaultState is the state of a freshly loaded page.
func DefaultState() State {
	return State{Mode: ModeTable, SortColumn: NoSort, SortAscending: true}
}

// Page bundles the loaded data with its view state. Values are treated as
// immutable; Update returns a new Page.
type Page struct {
	Table *csvdoc.Table
	// Raw is the fetched source text, kept verbatim for copying.
	Raw   string
	State State
}

// NewPage wraps a parsed table and its source text with the default state.
func NewPage(t *csvdoc.Table, raw string) Page {
	return Page{Table: t, Raw: raw, State: DefaultState()}
}

// EventKind enumerates user and completion events.
type EventKind string

const (
	EventToggleView EventKind = "toggle"
	EventSort       EventKind = "sort"
	EventSearch     EventKind = "search"
	EventCopy       EventKind = "copy"
	EventCopyResult EventKind = "copyResult"
)

// Event is a single input to Update.
type Event struct {
	Kind  EventKind
	Index int    // EventSort
	Text  string // EventSearch
	Err   error  // EventCopyResult
}

func ToggleView() Event          { return Event{Kind: EventToggleView} }
func SortColumn(index int) Event { return Event{Kind: EventSort, Index: index} }
func Search(text string) Event   { return Event{Kind: EventSearch, Text: text} }
func Copy() Event                { return Event{Kind: EventCopy} }
func CopyResult(err error) Event { return Event{Kind: EventCopyResult, Err: err} }

// EffectKind enumerates side effects requested by Update.
type EffectKind int

const (
	EffectNone EffectKind = iota
	EffectRender
	EffectWriteClipboard
)

// Effect is the work a surface must carry out after an Update.
type Effect struct {
	Kind EffectKind
	// Text is the clipboard payload for EffectWriteClipboard.
	Text string
}

// Update applies ev to p. The returned Effect says whether the surface has to
// re-render or write to the clipboard.
func (p Page) Update(ev Event) (Page, Effect) {
	next := p
	if ev.Kind != EventCopyResult {
		next.State.Notice = nil
	}

	switch ev.Kind {
	case EventToggleView:
		if next.State.Mode == ModeTable {
			next.State.Mode = ModePlainText
		} else {
			next.State.Mode = ModeTable
		}
		return next, Effect{Kind: EffectRender}

	case EventSort:
		if next.State.Mode != ModeTable || next.Table == nil {
			return p, Effect{Kind: EffectNone}
		}
		ascending := true
		if next.State.SortColumn == ev.Index {
			ascending = !next.State.SortAscending
		}
		sorted, err := next.Table.SortBy(ev.Index, ascending)
		if err != nil {
			return p, Effect{Kind: EffectNone}
		}
		next.Table = sorted
		next.State.SortColumn = ev.Index
		next.State.SortAscending = ascending
		return next, Effect{Kind: EffectRender}

	case EventSearch:
		next.State.SearchText = ev.Text
		return next, Effect{Kind: EffectRender}

	case EventCopy:
		return next, Effect{Kind: EffectWriteClipboard, Text: p.Raw}

	case EventCopyResult:
		if ev.Err != nil {
			next.State.Notice = &Notice{Kind: NoticeError, Text: CopyFailedText}
		} else {
			next.State.Notice = &Notice{Kind: NoticeSuccess, Text: CopySucceededText}
		}
		return next, Effect{Kind: EffectRender}
	}
	return p, Effect{Kind: EffectNone}
}
