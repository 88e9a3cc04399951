package discover

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestArticleURLs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/page/1/":
			fmt.Fprint(w, `<html><body>
				<a href="/2025/04/robot-launch/">Robot launch</a>
				<a href="/2025/03/funding-round/">Funding</a>
				<a href="/page/2/">Next page</a>
				<a href="/about/">About</a>
			</body></html>`)
		case "/page/2/":
			fmt.Fprint(w, `<html><body>
				<a href="/2025/04/robot-launch/">Robot launch</a>
				<a href="/2025/02/older-story/">Older</a>
			</body></html>`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	urls, err := NewClient(nil).ArticleURLs(context.Background(), srv.URL, 5)
	if err != nil {
		t.Fatalf("ArticleURLs failed: %v", err)
	}

	want := map[string]bool{
		"/2025/04/robot-launch/": true,
		"/2025/03/funding-round/": true,
		"/2025/02/older-story/":  true,
	}
	if len(urls) != len(want) {
		t.Fatalf("expected %d deduplicated URLs, got %d: %v", len(want), len(urls), urls)
	}
	for _, u := range urls {
		if !want[u] {
			t.Errorf("unexpected URL %q", u)
		}
	}
}

func TestArticleURLs_StopsAtNon200(t *testing.T) {
	var hits []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits = append(hits, r.URL.Path)
		if r.URL.Path == "/page/1/" {
			fmt.Fprint(w, `<a href="/2025/01/story/">Story</a>`)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	urls, err := NewClient(nil).ArticleURLs(context.Background(), srv.URL, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(urls) != 1 {
		t.Errorf("expected 1 URL, got %v", urls)
	}
	// Walk stops at the first non-200, never reaching page 3
	if len(hits) != 2 {
		t.Errorf("expected walk to stop after page 2, got hits %v", hits)
	}
}

func TestArticleURLs_ExcludesPaginationLinks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/page/1/" {
			fmt.Fprint(w, `
				<a href="/2025/01/story/">Story</a>
				<a href="/page/2025/">Looks like a year but is pagination</a>
			`)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	urls, err := NewClient(nil).ArticleURLs(context.Background(), srv.URL, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(urls) != 1 || urls[0] != "/2025/01/story/" {
		t.Errorf("pagination links must be excluded, got %v", urls)
	}
}
