package web

import (
	"bytes"
	"html/template"

	"github.com/pkg/errors"

	"csvview/internal/view"
)

// bodyTemplate is the DOM contract the page script binds against:
// #viewToggle, #copyButton, #searchInput, #csvTable th[data-index] and
// #csvPlainText.
const bodyTemplate = `{{define "body"}}` +
	`{{if .Error}}<p>{{.Error}}</p>` +
	`{{else if .Loading}}<p class="csv-loading">Loading CSV file...</p>` +
	`{{else}}` +
	`<div class="csv-action-wrapper">` +
	`<button id="viewToggle">{{.Actions.ToggleLabel}}</button>` +
	`<button id="copyButton">{{.Actions.CopyLabel}}</button>` +
	`</div>` +
	`<input type="text" id="searchInput" placeholder="{{.Search.Placeholder}}" value="{{.Search.Value}}">` +
	`{{with .Table}}` +
	`<div class="csv-summary">Showing {{.Visible}} of {{len .Rows}} rows</div>` +
	`<div class="table-container"><table id="csvTable">` +
	`<thead><tr>{{range .Headers}}<th data-index="{{.Index}}">{{.Label}} <span class="sort-arrow">{{.Arrow}}</span></th>{{end}}</tr></thead>` +
	`<tbody>{{range .Rows}}<tr{{if .Hidden}} style="display:none"{{end}}>{{range .Cells}}<td>{{.}}</td>{{end}}</tr>{{end}}</tbody>` +
	`</table></div>` +
	`{{end}}` +
	`{{with .Plain}}` +
	`<pre id="csvPlainText">{{range $i, $l := .Lines}}{{if $i}}{{"\n"}}{{end}}{{if $l.Highlighted}}<span class="highlight">{{$l.Text}}</span>{{else}}{{$l.Text}}{{end}}{{end}}</pre>` +
	`{{end}}` +
	`{{with .Notice}}<div id="csvNotice" class="csv-notice {{.Kind}}">{{.Text}}</div>{{end}}` +
	`{{end}}` +
	`{{end}}`

var bodyTmpl = template.Must(template.New("csvview").Parse(bodyTemplate))

// RenderHTML turns a view tree into the markup placed inside <body>.
func RenderHTML(tree view.Tree) (string, error) {
	var buf bytes.Buffer
	if err := bodyTmpl.ExecuteTemplate(&buf, "body", tree); err != nil {
		return "", errors.Wrap(err, "render body")
	}
	return buf.String(), nil
}
