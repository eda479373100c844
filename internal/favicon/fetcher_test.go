package favicon

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"gotest.tools/v3/assert"
)

// icoBytes starts with the ICO signature so sniffing detects an image.
var icoBytes = []byte{0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x10, 0x10}

func TestHTTPFetcher_Candidates(t *testing.T) {
	f := NewHTTPFetcher(HTTPFetcherParams{})

	got, err := f.Candidates("https://www.example.com/some/page?q=1")
	assert.NilError(t, err)
	assert.DeepEqual(t, got, []string{
		"https://icons.duckduckgo.com/ip3/www.example.com.ico",
		"https://www.google.com/s2/favicons?domain=www.example.com&sz=64",
		"https://www.example.com/favicon.ico",
	})

	_, err = f.Candidates("not a url")
	assert.Check(t, err != nil)
}

func TestHTTPFetcher_FallsThroughCandidates(t *testing.T) {
	var mu sync.Mutex
	var hits []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits = append(hits, r.URL.Path)
		mu.Unlock()

		switch r.URL.Path {
		case "/missing":
			http.NotFound(w, r)
		case "/html":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html>nope</html>"))
		case "/icon":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write([]byte("PNGDATA"))
		}
	}))
	defer srv.Close()

	f := NewHTTPFetcher(HTTPFetcherParams{
		Client:  srv.Client(),
		Sources: []string{srv.URL + "/missing", srv.URL + "/html", srv.URL + "/icon", srv.URL + "/never"},
	})

	r := f.Fetch(context.Background(), "https://example.com")

	assert.Assert(t, r.IconData != nil)
	assert.Equal(t, *r.IconData, "data:image/png;base64,UE5HREFUQQ==")
	assert.Equal(t, *r.IconURI, srv.URL+"/icon")
	mu.Lock()
	defer mu.Unlock()
	assert.DeepEqual(t, hits, []string{"/missing", "/html", "/icon"})
}

func TestHTTPFetcher_SniffsUndeclaredType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write(icoBytes)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(HTTPFetcherParams{Client: srv.Client(), Sources: []string{srv.URL + "/{host}.ico"}})
	r := f.Fetch(context.Background(), "https://example.com")

	assert.Assert(t, r.IconData != nil)
	assert.Check(t, strings.HasPrefix(*r.IconData, "data:image/x-icon;base64,"))
	assert.Equal(t, *r.IconURI, srv.URL+"/example.com.ico")
}

func TestHTTPFetcher_TotalFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	srvURL := srv.URL
	srv.Close() // second candidate: connection refused

	live := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer live.Close()

	f := NewHTTPFetcher(HTTPFetcherParams{Sources: []string{live.URL + "/a", srvURL + "/b"}})
	r := f.Fetch(context.Background(), "https://example.com")

	assert.Check(t, r.IconData == nil)
	assert.Check(t, r.IconURI == nil)
}

func TestHTTPFetcher_InvalidPageURL(t *testing.T) {
	f := NewHTTPFetcher(HTTPFetcherParams{})
	r := f.Fetch(context.Background(), "::nope")

	assert.Check(t, r.IconData == nil)
	assert.Check(t, r.IconURI == nil)
}
