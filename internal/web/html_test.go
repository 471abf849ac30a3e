package web

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvview/internal/csvdoc"
	"csvview/internal/source"
	"csvview/internal/view"
)

func renderDoc(t *testing.T, tree view.Tree) *goquery.Document {
	t.Helper()
	body, err := RenderHTML(tree)
	require.NoError(t, err)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	require.NoError(t, err)
	return doc
}

func pageOf(t *testing.T, text string, events ...view.Event) view.Page {
	t.Helper()
	tbl, err := csvdoc.Parse(text)
	require.NoError(t, err)
	p := view.NewPage(tbl, text)
	for _, ev := range events {
		p, _ = p.Update(ev)
	}
	return p
}

func TestRenderHTMLTable(t *testing.T) {
	p := pageOf(t, "name,age\nAlice,30\nBob,25\n", view.SortColumn(1))
	doc := renderDoc(t, view.Render(p))

	assert.Equal(t, "Switch to Plain Text View", doc.Find("#viewToggle").Text())
	assert.Equal(t, "Copy to Clipboard", doc.Find("#copyButton").Text())
	assert.Equal(t, 1, doc.Find(".csv-action-wrapper").Length())

	input := doc.Find("#searchInput")
	require.Equal(t, 1, input.Length())
	placeholder, _ := input.Attr("placeholder")
	assert.Equal(t, "Search...", placeholder)

	ths := doc.Find("#csvTable thead th")
	require.Equal(t, 2, ths.Length())
	idx, ok := ths.Eq(1).Attr("data-index")
	assert.True(t, ok)
	assert.Equal(t, "1", idx)
	assert.Equal(t, "", ths.Eq(0).Find(".sort-arrow").Text())
	assert.Equal(t, "▲", ths.Eq(1).Find(".sort-arrow").Text())

	rows := doc.Find("#csvTable tbody tr")
	require.Equal(t, 2, rows.Length())
	assert.Equal(t, "Bob25", rows.Eq(0).Text())
	assert.Equal(t, 0, doc.Find("#csvPlainText").Length())
}

func TestRenderHTMLHiddenRows(t *testing.T) {
	p := pageOf(t, "name,age\nAlice,30\nBob,25\n", view.Search("ali"))
	doc := renderDoc(t, view.Render(p))

	rows := doc.Find("#csvTable tbody tr")
	require.Equal(t, 2, rows.Length())
	_, hidden := rows.Eq(0).Attr("style")
	assert.False(t, hidden)
	style, _ := rows.Eq(1).Attr("style")
	assert.Equal(t, "display:none", style)

	value, _ := doc.Find("#searchInput").Attr("value")
	assert.Equal(t, "ali", value)
	assert.Contains(t, doc.Find(".csv-summary").Text(), "Showing 1 of 2 rows")
}

func TestRenderHTMLPlainText(t *testing.T) {
	p := pageOf(t, "name,age\nAlice,30\nBob,25\n", view.ToggleView(), view.Search("BOB"))
	doc := renderDoc(t, view.Render(p))

	assert.Equal(t, "Switch to Table View", doc.Find("#viewToggle").Text())
	assert.Equal(t, 0, doc.Find("#csvTable").Length())

	pre := doc.Find("#csvPlainText")
	require.Equal(t, 1, pre.Length())
	assert.Equal(t, "name,age\nAlice,30\nBob,25", pre.Text())

	hl := pre.Find("span.highlight")
	require.Equal(t, 1, hl.Length())
	assert.Equal(t, "Bob,25", hl.Text())
}

func TestRenderHTMLEscapesCells(t *testing.T) {
	p := pageOf(t, "html\n<b>bold</b>\n")
	body, err := RenderHTML(view.Render(p))
	require.NoError(t, err)

	assert.NotContains(t, body, "<b>bold</b>")
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, 0, doc.Find("#csvTable b").Length())
	assert.Equal(t, "<b>bold</b>", doc.Find("#csvTable td").Text())
}

func TestRenderHTMLNotice(t *testing.T) {
	p := pageOf(t, "a\n1\n", view.CopyResult(errors.New("denied")))
	doc := renderDoc(t, view.Render(p))

	n := doc.Find("#csvNotice")
	require.Equal(t, 1, n.Length())
	assert.True(t, n.HasClass("error"))
	assert.Equal(t, view.CopyFailedText, n.Text())
}

func TestRenderHTMLErrorOnly(t *testing.T) {
	doc := renderDoc(t, view.ErrorTree(source.FetchErrorMessage))

	body := doc.Find("body")
	require.Equal(t, 1, body.Children().Length())
	assert.Equal(t, source.FetchErrorMessage, body.Find("p").Text())
	assert.Equal(t, 0, doc.Find("#csvTable").Length())
	assert.Equal(t, 0, doc.Find("button").Length())
	assert.Equal(t, 0, doc.Find("input").Length())
}

func TestRenderHTMLLoading(t *testing.T) {
	doc := renderDoc(t, view.LoadingTree())
	assert.Equal(t, 1, doc.Find("p.csv-loading").Length())
	assert.Equal(t, 0, doc.Find("button").Length())
}
