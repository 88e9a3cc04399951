package store

import (
	"context"
	"testing"
)

func TestMemoryStore_RawLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	// Unknown document reads as empty, not an error
	raw, err := s.ReadRaw(ctx, "doc_unknown")
	if err != nil {
		t.Fatalf("ReadRaw failed: %v", err)
	}
	if raw != "" {
		t.Errorf("expected empty string for unknown document, got %q", raw)
	}

	if err := s.UpsertRaw(ctx, "doc_1", "https://example.com/a", "first"); err != nil {
		t.Fatal(err)
	}
	raw, err = s.ReadRaw(ctx, "doc_1")
	if err != nil || raw != "first" {
		t.Errorf("expected 'first', got %q (err %v)", raw, err)
	}

	// Upsert replaces in place
	if err := s.UpsertRaw(ctx, "doc_1", "https://example.com/a", "second"); err != nil {
		t.Fatal(err)
	}
	raw, _ = s.ReadRaw(ctx, "doc_1")
	if raw != "second" {
		t.Errorf("expected upsert to replace, got %q", raw)
	}
}

func TestMemoryStore_PaginationAndFormatted(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	// Pagination and formatted updates create the row when needed
	if err := s.UpdatePagination(ctx, "doc_2", "https://example.com/b", `{"page_urls":[]}`); err != nil {
		t.Fatal(err)
	}
	if err := s.UpdateFormatted(ctx, "doc_2", "https://example.com/b", `{"listings":[]}`); err != nil {
		t.Fatal(err)
	}

	formatted, err := s.ReadFormatted(ctx, "doc_2")
	if err != nil || formatted != `{"listings":[]}` {
		t.Errorf("expected formatted payload, got %q (err %v)", formatted, err)
	}

	// Raw stays independent of the other columns
	raw, _ := s.ReadRaw(ctx, "doc_2")
	if raw != "" {
		t.Errorf("expected no raw data, got %q", raw)
	}

	formatted, err = s.ReadFormatted(ctx, "doc_other")
	if err != nil || formatted != "" {
		t.Errorf("expected empty formatted for unknown document, got %q", formatted)
	}
}
