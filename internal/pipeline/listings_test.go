package pipeline

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/roboscout/roboscout/internal/extract"
	"github.com/roboscout/roboscout/internal/listing"
	"github.com/roboscout/roboscout/internal/store"
)

func TestListingExtractor_SkipsEmptyRaw(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	provider := &routedProvider{listingsJSON: `{"listings": []}`}
	ex := NewListingExtractor(extract.NewClient(provider, extract.Config{}), st, nil)

	results, _, err := ex.Extract(ctx, []string{"doc_unknown"}, []string{"https://example.com/a"}, "")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
	if provider.callCount("listings") != 0 {
		t.Error("expected no model call for empty raw data")
	}
}

func TestListingExtractor_RequiredKeysPresent(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	id := NewTargetID("https://example.com/article")
	if err := st.UpsertRaw(ctx, id, "https://example.com/article", "article text"); err != nil {
		t.Fatal(err)
	}

	provider := &routedProvider{
		listingsJSON: `{"Listings": [{"Company": "Acme Robotics", "Focus": "floor scrubbers"}]}`,
	}
	ex := NewListingExtractor(extract.NewClient(provider, extract.Config{}), st, nil)

	results, _, err := ex.Extract(ctx, []string{id}, []string{"https://example.com/article"}, "")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(results) != 1 || len(results[0].Listings) != 1 {
		t.Fatalf("expected 1 result with 1 listing, got %+v", results)
	}

	l := results[0].Listings[0]
	for _, key := range listing.RequiredKeys {
		if _, ok := l[key]; !ok {
			t.Errorf("missing required key %q", key)
		}
	}
	if l.Company() != "Acme Robotics" {
		t.Errorf("expected normalized company key, got %v", l)
	}

	// The formatted payload must be persisted
	payload, err := st.ReadFormatted(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	var stored map[string]any
	if err := json.Unmarshal([]byte(payload), &stored); err != nil {
		t.Fatalf("stored payload is not JSON: %v", err)
	}
	if _, ok := stored["listings"]; !ok {
		t.Errorf("stored payload missing listings: %v", stored)
	}
}

func TestListingExtractor_ExtraFields(t *testing.T) {
	ex := NewListingExtractor(nil, store.NewMemory(), []string{"ceo_name", "company", "", "ceo_name"})

	names := ex.schema.FieldNames()
	joined := strings.Join(names, ",")
	if !strings.Contains(joined, "ceo_name") {
		t.Errorf("expected ceo_name in schema fields: %v", names)
	}

	seen := make(map[string]int)
	for _, n := range names {
		seen[n]++
	}
	if seen["company"] != 1 {
		t.Errorf("duplicate field not deduped: %v", names)
	}
	if seen["ceo_name"] != 1 {
		t.Errorf("extra field duplicated: %v", names)
	}
	if len(names) != len(listing.RequiredKeys)+1 {
		t.Errorf("expected %d fields, got %d", len(listing.RequiredKeys)+1, len(names))
	}
}

func TestListingExtractor_FallbackPersisted(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	id := "doc_feedbeef0123"
	if err := st.UpsertRaw(ctx, id, "https://example.com/a", "raw"); err != nil {
		t.Fatal(err)
	}

	provider := &routedProvider{listingsJSON: "no JSON here"}
	ex := NewListingExtractor(extract.NewClient(provider, extract.Config{}), st, nil)

	results, _, err := ex.Extract(ctx, []string{id}, []string{"https://example.com/a"}, "")
	if err != nil {
		t.Fatalf("fallback should not fail the batch: %v", err)
	}
	if len(results) != 1 || !results[0].Fallback {
		t.Fatalf("expected fallback result, got %+v", results)
	}

	payload, err := st.ReadFormatted(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(payload, "raw_text") {
		t.Errorf("fallback payload should carry raw_text, got %q", payload)
	}
}
