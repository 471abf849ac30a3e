package terminal

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"csvview/internal/view"
)

// styles
var (
	buttonStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("4")).Padding(0, 1)
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("8"))
	selectedStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("4"))
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("11"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	successStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

const (
	maxColumnWidth = 40
	minColumnWidth = 3
)

// frame carries the surface-only details that are not part of the view tree.
type frame struct {
	width    int
	height   int
	selected int    // highlighted header column
	offset   int    // first visible content line
	search   string // rendered search line
	help     string
}

// renderTree draws a view tree for a terminal of the given size.
func renderTree(tree view.Tree, f frame) string {
	if tree.Error != "" {
		return errorStyle.Render(tree.Error)
	}
	if tree.Loading {
		return dimStyle.Render("Loading CSV file...")
	}

	var b strings.Builder
	b.WriteString(buttonStyle.Render("t " + tree.Actions.ToggleLabel))
	b.WriteString(" ")
	b.WriteString(buttonStyle.Render("c " + tree.Actions.CopyLabel))
	b.WriteString("\n")
	b.WriteString(f.search)
	b.WriteString("\n")

	var content []string
	var header string
	switch {
	case tree.Table != nil:
		header, content = tableLines(tree.Table, f.selected)
		b.WriteString(dimStyle.Render(visibleSummary(tree.Table)))
		b.WriteString("\n")
		b.WriteString(header)
		b.WriteString("\n")
	case tree.Plain != nil:
		content = plainLines(tree.Plain)
	}

	budget := contentHeight(tree, f.height)
	start, end := window(len(content), f.offset, budget)
	for _, l := range content[start:end] {
		b.WriteString(clip(l, f.width))
		b.WriteString("\n")
	}

	if tree.Notice != nil {
		style := successStyle
		if tree.Notice.Kind == view.NoticeError {
			style = errorStyle
		}
		b.WriteString(style.Render(tree.Notice.Text))
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render(f.help))
	return b.String()
}

// contentHeight is the number of scrollable lines that fit under the chrome.
func contentHeight(tree view.Tree, height int) int {
	chrome := 3 // action bar, search, help
	if tree.Table != nil {
		chrome += 2 // summary, header
	}
	if tree.Notice != nil {
		chrome++
	}
	if h := height - chrome; h > 1 {
		return h
	}
	return 1
}

func window(total, offset, size int) (int, int) {
	if offset > total-size {
		offset = total - size
	}
	if offset < 0 {
		offset = 0
	}
	end := offset + size
	if end > total {
		end = total
	}
	return offset, end
}

func visibleSummary(t *view.TableView) string {
	return fmt.Sprintf("Showing %d of %d rows", t.Visible, len(t.Rows))
}

// columnWidths sizes every column to its widest header or visible cell.
func columnWidths(t *view.TableView) []int {
	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = runewidth.StringWidth(headerLabel(h))
	}
	for _, r := range t.Rows {
		if r.Hidden {
			continue
		}
		for i, c := range r.Cells {
			if w := runewidth.StringWidth(singleLine(c)); w > widths[i] {
				widths[i] = w
			}
		}
	}
	for i := range widths {
		if widths[i] > maxColumnWidth {
			widths[i] = maxColumnWidth
		}
		if widths[i] < minColumnWidth {
			widths[i] = minColumnWidth
		}
	}
	return widths
}

func headerLabel(h view.HeaderCell) string {
	if h.Arrow == "" {
		return h.Label
	}
	return h.Label + " " + h.Arrow
}

func singleLine(s string) string {
	return strings.NewReplacer("\r\n", "⏎", "\n", "⏎", "\r", "⏎", "\t", " ").Replace(s)
}

func cell(s string, width int) string {
	return runewidth.FillRight(runewidth.Truncate(singleLine(s), width, "…"), width)
}

// tableLines returns the styled header line and one line per visible row.
func tableLines(t *view.TableView, selected int) (string, []string) {
	widths := columnWidths(t)

	var hdr strings.Builder
	for i, h := range t.Headers {
		if i > 0 {
			hdr.WriteString(dimStyle.Render("│"))
		}
		style := headerStyle
		if i == selected {
			style = selectedStyle
		}
		hdr.WriteString(style.Render(" " + cell(headerLabel(h), widths[i]) + " "))
	}

	lines := make([]string, 0, t.Visible)
	for _, r := range t.Rows {
		if r.Hidden {
			continue
		}
		var line strings.Builder
		for i, c := range r.Cells {
			if i > 0 {
				line.WriteString(dimStyle.Render("│"))
			}
			line.WriteString(" " + cell(c, widths[i]) + " ")
		}
		lines = append(lines, line.String())
	}
	return hdr.String(), lines
}

func plainLines(p *view.PlainTextView) []string {
	lines := make([]string, len(p.Lines))
	for i, l := range p.Lines {
		if l.Highlighted {
			lines[i] = highlightStyle.Render(l.Text)
		} else {
			lines[i] = l.Text
		}
	}
	return lines
}

// clip cuts a line to the terminal width, keeping ANSI styling intact.
func clip(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(s)
}
