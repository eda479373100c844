package favicon

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultSources are the candidate icon locations, tried in order.
// {host} is replaced with the bookmark's hostname.
var DefaultSources = []string{
	"https://icons.duckduckgo.com/ip3/{host}.ico",
	"https://www.google.com/s2/favicons?domain={host}&sz=64",
	"https://{host}/favicon.ico",
}

// maxIconBytes bounds how much of a response is read.
const maxIconBytes = 256 * 1024

// HTTPFetcher fetches favicons over HTTP, falling through an ordered
// list of sources until one returns an image.
type HTTPFetcher struct {
	client  *http.Client
	sources []string
	logger  *slog.Logger
}

// HTTPFetcherParams holds parameters for creating a new HTTPFetcher.
type HTTPFetcherParams struct {
	Client  *http.Client  // optional, defaults to a client with Timeout
	Timeout time.Duration // per request, used when Client is nil
	Sources []string      // optional, defaults to DefaultSources
	Logger  *slog.Logger  // optional
}

// NewHTTPFetcher creates an HTTPFetcher with the given parameters.
func NewHTTPFetcher(params HTTPFetcherParams) *HTTPFetcher {
	client := params.Client
	if client == nil {
		timeout := params.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	sources := params.Sources
	if len(sources) == 0 {
		sources = DefaultSources
	}
	logger := params.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &HTTPFetcher{client: client, sources: sources, logger: logger}
}

// Candidates returns the icon URLs tried for pageURL, in order.
func (f *HTTPFetcher) Candidates(pageURL string) ([]string, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, err
	}
	host := u.Hostname()
	if host == "" {
		return nil, fmt.Errorf("no host in %q", pageURL)
	}

	out := make([]string, len(f.sources))
	for i, src := range f.sources {
		out[i] = strings.ReplaceAll(src, "{host}", url.PathEscape(host))
	}
	return out, nil
}

// Fetch implements Fetcher. It never returns an error: failures of one
// candidate fall through to the next, and total failure yields an empty
// Result.
func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL string) Result {
	candidates, err := f.Candidates(pageURL)
	if err != nil {
		f.logger.Debug("icon fetch skipped", "url", pageURL, "error", err)
		return Result{}
	}

	for _, iconURL := range candidates {
		data, err := f.fetchOne(ctx, iconURL)
		if err != nil {
			f.logger.Debug("icon candidate failed", "icon", iconURL, "error", err)
			continue
		}
		src := iconURL
		return Result{IconData: &data, IconURI: &src}
	}
	return Result{}
}

// fetchOne downloads iconURL and returns it as a data: URI.
func (f *HTTPFetcher) fetchOne(ctx context.Context, iconURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, iconURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxIconBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	if len(body) == 0 {
		return "", fmt.Errorf("empty body")
	}

	contentType := imageType(resp.Header.Get("Content-Type"), body)
	if contentType == "" {
		return "", fmt.Errorf("not an image")
	}

	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(body), nil
}

// imageType returns the image media type for a response, preferring the
// declared Content-Type and falling back to sniffing. Empty if the
// response is not an image.
func imageType(declared string, body []byte) string {
	if mt, _, err := mime.ParseMediaType(declared); err == nil && strings.HasPrefix(mt, "image/") {
		return mt
	}
	if sniffed := http.DetectContentType(body); strings.HasPrefix(sniffed, "image/") {
		return sniffed
	}
	return ""
}
