package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/pkg/errors"

	"csvview/internal/csvdoc"
	"csvview/internal/view"
)

// Messages shown in place of the viewer when loading fails.
const (
	FetchErrorMessage = "Error loading CSV file. Please make sure the URL ends with .csv and the file is accessible."
	ParseErrorMessage = "Error parsing CSV file. Please make sure the file is a valid CSV."
)

// ErrNotActivated is returned by Load for addresses that do not name a CSV file.
var ErrNotActivated = errors.New("address does not end with .csv")

// FetchError wraps a failure to retrieve the raw text.
type FetchError struct {
	Address string
	Status  int // HTTP status, 0 when the request itself failed
	Err     error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.Address, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.Address, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsCSVAddress reports whether addr ends with ".csv", ignoring case.
func IsCSVAddress(addr string) bool {
	return strings.HasSuffix(strings.ToLower(addr), ".csv")
}

// Fetcher retrieves the text behind an address.
type Fetcher interface {
	Fetch(ctx context.Context, addr string) (string, error)
}

// HTTPFetcher reads http(s) addresses over the network and everything else
// (file:// URLs, plain paths) from the local filesystem.
type HTTPFetcher struct {
	Client    *http.Client
	UserAgent string
}

// NewHTTPFetcher returns a fetcher using http.DefaultClient.
func NewHTTPFetcher(userAgent string) *HTTPFetcher {
	return &HTTPFetcher{Client: http.DefaultClient, UserAgent: userAgent}
}

// Fetch implements Fetcher. Every failure is returned as a *FetchError.
func (f *HTTPFetcher) Fetch(ctx context.Context, addr string) (string, error) {
	u, err := url.Parse(addr)
	if err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return f.fetchHTTP(ctx, addr)
	}

	path := addr
	if err == nil && u.Scheme == "file" {
		path = u.Path
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", &FetchError{Address: addr, Err: err}
	}
	return string(data), nil
}

func (f *HTTPFetcher) fetchHTTP(ctx context.Context, addr string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return "", &FetchError{Address: addr, Err: err}
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", &FetchError{Address: addr, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &FetchError{Address: addr, Status: resp.StatusCode}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &FetchError{Address: addr, Err: errors.Wrap(err, "read body")}
	}
	return string(body), nil
}

// Load fetches addr and parses it into a Page with the default view state.
// It makes exactly one attempt.
func Load(ctx context.Context, addr string, fetcher Fetcher) (view.Page, error) {
	if !IsCSVAddress(addr) {
		return view.Page{}, errors.Wrap(ErrNotActivated, addr)
	}

	text, err := fetcher.Fetch(ctx, addr)
	if err != nil {
		var ferr *FetchError
		if !errors.As(err, &ferr) {
			err = &FetchError{Address: addr, Err: err}
		}
		slog.Error("Error fetching CSV", "address", addr, "error", err, "component", "Source")
		return view.Page{}, err
	}
	slog.Debug("Fetched content", "address", addr, "bytes", len(text), "preview", preview(text, 200), "component", "Source")

	tbl, err := csvdoc.Parse(text)
	if err != nil {
		slog.Error("Error parsing CSV", "address", addr, "error", err, "component", "Source")
		return view.Page{}, err
	}
	if tbl.Warnings > 0 {
		slog.Warn("Rows with surplus cells were truncated", "address", addr, "rows", tbl.Warnings, "component", "Source")
	}
	slog.Info("CSV loaded", "address", addr, "fields", len(tbl.Fields), "rows", len(tbl.Rows), "component", "Source")
	return view.NewPage(tbl, text), nil
}

// ErrorMessage picks the user-facing message for a Load failure.
func ErrorMessage(err error) string {
	var perr *csvdoc.ParseError
	if errors.As(err, &perr) {
		return ParseErrorMessage
	}
	return FetchErrorMessage
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
