package web

import (
	"html/template"
	"net/http"
	"path"

	"csvview/internal/view"
)

type pageData struct {
	Title   string
	Version string
	Tree    view.Tree
}

var pageTmpl = template.Must(template.Must(bodyTmpl.Clone()).New("page").Parse(uiHTML))

// handleUI serves the viewer page with the current render already in the body.
func (s *Server) handleUI(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	data := pageData{
		Title:   path.Base(s.appState.Address()),
		Version: s.version,
		Tree:    s.appState.Tree(),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTmpl.ExecuteTemplate(w, "page", data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

const uiHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<meta name="csvview-version" content="{{.Version}}">
<title>{{.Title}}</title>
<style>
  * { box-sizing: border-box; }
  body {
    font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
    background: #fafafa;
    color: #18181b;
    margin: 0;
    padding: 16px;
  }
  .csv-action-wrapper { display: flex; gap: 10px; margin-bottom: 10px; }
  .csv-action-wrapper button {
    background: #2563eb;
    color: #fff;
    border: none;
    padding: 8px 16px;
    border-radius: 6px;
    font-size: 14px;
    font-weight: 600;
    cursor: pointer;
  }
  .csv-action-wrapper button:hover { background: #1d4ed8; }
  #searchInput {
    width: 100%;
    max-width: 420px;
    padding: 8px 10px;
    margin-bottom: 10px;
    border: 1px solid #d4d4d8;
    border-radius: 6px;
    font-size: 14px;
  }
  .csv-summary { font-size: 12px; color: #71717a; margin-bottom: 6px; }
  .table-container { overflow: auto; max-height: calc(100vh - 140px); }
  #csvTable { border-collapse: collapse; font-size: 13px; }
  #csvTable th, #csvTable td { border: 1px solid #e4e4e7; padding: 4px 8px; text-align: left; white-space: nowrap; }
  #csvTable th { background: #f4f4f5; cursor: pointer; position: sticky; top: 0; user-select: none; }
  #csvTable th:hover { background: #e4e4e7; }
  #csvTable tbody tr:nth-child(even) { background: #f9f9fb; }
  .sort-arrow { font-size: 10px; color: #2563eb; }
  #csvPlainText { font-size: 13px; white-space: pre; overflow: auto; }
  .highlight { background: #fde68a; }
  .csv-notice {
    position: fixed;
    right: 16px;
    bottom: 16px;
    padding: 10px 14px;
    border-radius: 6px;
    font-size: 13px;
    transition: opacity 0.4s;
  }
  .csv-notice.success { background: #dcfce7; color: #166534; }
  .csv-notice.error { background: #fee2e2; color: #991b1b; }
  .csv-notice.fade { opacity: 0; }
</style>
<script>
(function() {
  var ws = null;
  var wsReconnectDelay = 1000;
  var wsReconnectTimer = null;

  function applyBody(html) {
    var input = document.getElementById('searchInput');
    var focused = input && document.activeElement === input;
    var value = input ? input.value : null;
    var start = input ? input.selectionStart : 0;
    var end = input ? input.selectionEnd : 0;

    document.body.innerHTML = html;

    var next = document.getElementById('searchInput');
    if (next && focused) {
      // keep what the user is typing if a render for older text arrives
      if (value !== null && next.value !== value) next.value = value;
      next.focus();
      try { next.setSelectionRange(start, end); } catch (e) {}
    }
    var notice = document.getElementById('csvNotice');
    if (notice) {
      setTimeout(function() { notice.classList.add('fade'); }, 3000);
    }
  }

  function refresh() {
    fetch('/api/render').then(function(r) { return r.text(); }).then(applyBody).catch(function(e) {
      console.error('Failed to refresh view:', e);
    });
  }

  function send(msg) {
    if (ws && ws.readyState === WebSocket.OPEN) {
      ws.send(JSON.stringify(msg));
      return;
    }
    fetch('/api/action', {
      method: 'POST',
      headers: { 'Content-Type': 'application/json' },
      body: JSON.stringify(msg)
    }).then(function(r) { return r.json(); }).then(function(res) {
      if (res && typeof res.clipboard === 'string') writeClipboard(res.clipboard);
      refresh();
    }).catch(function(e) {
      console.error('Failed to send action:', e);
    });
  }

  function writeClipboard(text) {
    if (!navigator.clipboard || !navigator.clipboard.writeText) {
      console.error('Failed to copy text: clipboard API unavailable');
      send({ type: 'copyResult', ok: false, error: 'clipboard API unavailable' });
      return;
    }
    navigator.clipboard.writeText(text).then(function() {
      send({ type: 'copyResult', ok: true });
    }).catch(function(err) {
      console.error('Failed to copy text: ', err);
      send({ type: 'copyResult', ok: false, error: String(err) });
    });
  }

  document.addEventListener('click', function(e) {
    var t = e.target;
    if (!t || !t.closest) return;
    if (t.closest('#viewToggle')) { send({ type: 'toggle' }); return; }
    if (t.closest('#copyButton')) { send({ type: 'copy' }); return; }
    var th = t.closest('#csvTable th');
    if (th) send({ type: 'sort', index: parseInt(th.getAttribute('data-index'), 10) });
  });

  document.addEventListener('input', function(e) {
    if (e.target && e.target.id === 'searchInput') {
      send({ type: 'search', text: e.target.value });
    }
  });

  // WebSocket connection
  function connectWebSocket() {
    var protocol = window.location.protocol === 'https:' ? 'wss:' : 'ws:';
    var wsUrl = protocol + '//' + window.location.host + '/ws';

    try {
      ws = new WebSocket(wsUrl);

      ws.onopen = function() {
        console.log('WebSocket connected');
        wsReconnectDelay = 1000;
      };

      ws.onmessage = function(event) {
        try {
          var msg = JSON.parse(event.data);
          if (msg.type === 'render') {
            applyBody(msg.html);
          } else if (msg.type === 'clipboard') {
            writeClipboard(msg.text);
          }
        } catch (e) {
          console.error('Failed to parse WebSocket message:', e);
        }
      };

      ws.onclose = function() {
        console.log('WebSocket disconnected, reconnecting...');
        ws = null;
        // Exponential backoff with max 10 seconds
        wsReconnectDelay = Math.min(wsReconnectDelay * 1.5, 10000);
        wsReconnectTimer = setTimeout(connectWebSocket, wsReconnectDelay);
      };

      ws.onerror = function(error) {
        console.error('WebSocket error:', error);
      };
    } catch (e) {
      console.error('Failed to create WebSocket:', e);
      wsReconnectTimer = setTimeout(connectWebSocket, wsReconnectDelay);
    }
  }

  connectWebSocket();

  // Fallback polling (only if WebSocket is disconnected)
  setInterval(function() {
    if (!ws || ws.readyState !== WebSocket.OPEN) {
      refresh();
    }
  }, 5000);
})();
</script>
</head>
<body>{{template "body" .Tree}}</body>
</html>`
