package news

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMentions(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		fmt.Fprint(w, `{"articles": [{"title": "a"}, {"title": "b"}, {"title": "c"}]}`)
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	count, err := c.Mentions(context.Background(), "Acme Robotics")
	if err != nil {
		t.Fatalf("Mentions failed: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 mentions, got %d", count)
	}
	if !strings.Contains(gotQuery, "Acme Robotics") {
		t.Errorf("company name should be quoted in query, got %q", gotQuery)
	}
}

func TestMentions_NoAPIKey(t *testing.T) {
	c := NewClient("")
	count, err := c.Mentions(context.Background(), "Acme")
	if err != nil || count != 0 {
		t.Errorf("expected 0 without API key, got %d (err %v)", count, err)
	}
}

func TestMentions_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient("key", WithBaseURL(srv.URL))
	count, err := c.Mentions(context.Background(), "Acme")
	if err != nil {
		t.Fatalf("lookup failures must not error: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 on server error, got %d", count)
	}
}

func TestMentions_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "not json")
	}))
	defer srv.Close()

	c := NewClient("key", WithBaseURL(srv.URL))
	count, err := c.Mentions(context.Background(), "Acme")
	if err != nil || count != 0 {
		t.Errorf("expected 0 on decode failure, got %d (err %v)", count, err)
	}
}

func TestMentions_Cap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sb strings.Builder
		sb.WriteString(`{"articles": [`)
		for i := 0; i < 150; i++ {
			if i > 0 {
				sb.WriteString(",")
			}
			sb.WriteString(`{}`)
		}
		sb.WriteString(`]}`)
		fmt.Fprint(w, sb.String())
	}))
	defer srv.Close()

	c := NewClient("key", WithBaseURL(srv.URL))
	count, err := c.Mentions(context.Background(), "Acme")
	if err != nil {
		t.Fatal(err)
	}
	if count != 100 {
		t.Errorf("expected count capped at 100, got %d", count)
	}
}
