package extract

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/roboscout/roboscout/internal/listing"
	"github.com/roboscout/roboscout/internal/llm"
	"github.com/roboscout/roboscout/pkg/schema"
)

// fakeProvider returns canned responses in order.
type fakeProvider struct {
	responses []string
	err       error
	requests  []llm.CompletionRequest
}

func (p *fakeProvider) Complete(_ context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
	p.requests = append(p.requests, req)
	if p.err != nil {
		return llm.CompletionResponse{}, p.err
	}
	content := ""
	if len(p.responses) > 0 {
		content = p.responses[0]
		if len(p.responses) > 1 {
			p.responses = p.responses[1:]
		}
	}
	return llm.CompletionResponse{
		Content: content,
		Usage:   llm.Usage{InputTokens: 10, OutputTokens: 5},
	}, nil
}

func (p *fakeProvider) Name() string { return "fake" }

func listingsSchema() *schema.Schema {
	fields := make([]schema.Field, 0, len(listing.RequiredKeys))
	for _, key := range listing.RequiredKeys {
		fields = append(fields, schema.String(key, ""))
	}
	s := schema.Listings(fields)
	return &s
}

func TestExtract_ValidJSON(t *testing.T) {
	provider := &fakeProvider{responses: []string{
		`{"Listings": [{"Company": "Acme Robotics", "Focus": "floor cleaning"}]}`,
	}}
	client := NewClient(provider, Config{})

	res, err := client.Extract(context.Background(), Request{
		System:  "extract",
		Content: "some article",
		Schema:  listingsSchema(),
	})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if res.Fallback {
		t.Fatal("expected validated result, got fallback")
	}

	listings := res.Listings()
	if len(listings) != 1 {
		t.Fatalf("expected 1 listing, got %d", len(listings))
	}

	l := listings[0]
	if l.Company() != "Acme Robotics" {
		t.Errorf("expected normalized 'company' key, got %v", l)
	}
	// Every required key must be present after backfill
	for _, key := range listing.RequiredKeys {
		if _, ok := l[key]; !ok {
			t.Errorf("missing required key %q", key)
		}
	}
}

func TestExtract_StripsCodeFences(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"plain", `{"listings": []}`},
		{"fenced", "```json\n{\"listings\": []}\n```"},
		{"fenced no lang", "```\n{\"listings\": []}\n```"},
		{"leading json word", "json\n{\"listings\": []}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &fakeProvider{responses: []string{tt.raw}}
			client := NewClient(provider, Config{})

			res, err := client.Extract(context.Background(), Request{
				System:  "extract",
				Content: "text",
				Schema:  listingsSchema(),
			})
			if err != nil {
				t.Fatalf("Extract failed: %v", err)
			}
			if res.Fallback {
				t.Error("expected parse to succeed")
			}
		})
	}
}

func TestExtract_SchemaFieldsInPrompt(t *testing.T) {
	provider := &fakeProvider{responses: []string{`{"listings": []}`}}
	client := NewClient(provider, Config{})

	_, err := client.Extract(context.Background(), Request{
		System:  "extract",
		Content: "text",
		Schema:  listingsSchema(),
	})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if len(provider.requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(provider.requests))
	}
	system := provider.requests[0].Messages[0].Content
	if !strings.Contains(system, "## Fields to Extract") {
		t.Errorf("system message should describe the schema fields, got %q", system)
	}
	if !strings.Contains(system, "relevancy_score") {
		t.Errorf("system message should name the listing fields, got %q", system)
	}
}

func TestExtract_NoSchemaNoFieldList(t *testing.T) {
	provider := &fakeProvider{responses: []string{`{"summary": "robots"}`}}
	client := NewClient(provider, Config{})

	if _, err := client.Extract(context.Background(), Request{System: "extract", Content: "text"}); err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	system := provider.requests[0].Messages[0].Content
	if strings.Contains(system, "## Fields to Extract") {
		t.Errorf("schemaless request should not carry a field list, got %q", system)
	}
}

func TestExtract_NonJSONFallback(t *testing.T) {
	provider := &fakeProvider{responses: []string{"Sorry, I cannot produce JSON for this."}}
	client := NewClient(provider, Config{})

	res, err := client.Extract(context.Background(), Request{
		System:  "extract",
		Content: "text",
		Schema:  listingsSchema(),
	})
	if !errors.Is(err, ErrUnstructured) {
		t.Fatalf("expected ErrUnstructured, got %v", err)
	}
	if !res.Fallback {
		t.Fatal("expected fallback result")
	}
	raw, ok := res.Data[RawTextKey].(string)
	if !ok || !strings.Contains(raw, "Sorry") {
		t.Errorf("expected raw text under %q, got %v", RawTextKey, res.Data)
	}
}

func TestExtract_ValidationFallback(t *testing.T) {
	// Valid JSON missing the required listings array
	provider := &fakeProvider{responses: []string{`{"companies": []}`}}
	client := NewClient(provider, Config{})

	res, err := client.Extract(context.Background(), Request{
		System:  "extract",
		Content: "text",
		Schema:  listingsSchema(),
	})
	if !errors.Is(err, ErrUnstructured) {
		t.Fatalf("expected ErrUnstructured, got %v", err)
	}
	if !res.Fallback {
		t.Fatal("expected fallback result")
	}
	if len(res.Errors) == 0 {
		t.Error("expected validation errors to be reported")
	}
}

func TestExtract_TransportError(t *testing.T) {
	provider := &fakeProvider{err: errors.New("connection refused")}
	client := NewClient(provider, Config{})

	_, err := client.Extract(context.Background(), Request{System: "x", Content: "y"})
	if err == nil || errors.Is(err, ErrUnstructured) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestExtract_ArticleSummaryInheritance(t *testing.T) {
	provider := &fakeProvider{responses: []string{
		`{"article_summary": "Robots doing chores.", "listings": [
			{"company": "Acme", "article_summary": "Own summary"},
			{"company": "Botico"}
		]}`,
	}}
	client := NewClient(provider, Config{})

	res, err := client.Extract(context.Background(), Request{
		System:  "extract",
		Content: "text",
		Schema:  listingsSchema(),
	})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	listings := res.Listings()
	if len(listings) != 2 {
		t.Fatalf("expected 2 listings, got %d", len(listings))
	}
	if got := listings[0].GetString("article_summary"); got != "Own summary" {
		t.Errorf("listing with own summary should keep it, got %q", got)
	}
	if got := listings[1].GetString("article_summary"); got != "Robots doing chores." {
		t.Errorf("listing should inherit container summary, got %q", got)
	}
}

func TestExtract_ContextTruncation(t *testing.T) {
	provider := &fakeProvider{responses: []string{`{"listings": []}`}}
	client := NewClient(provider, Config{})

	longContext := strings.Repeat("x", ContextCharBudget*2)
	_, err := client.Extract(context.Background(), Request{
		System:  "extract",
		Content: "text",
		Context: longContext,
		Schema:  listingsSchema(),
	})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if len(provider.requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(provider.requests))
	}
	for _, msg := range provider.requests[0].Messages {
		if strings.HasPrefix(msg.Content, "Business context:") {
			if len(msg.Content) > ContextCharBudget+len("Business context:\n") {
				t.Errorf("context not truncated: %d chars", len(msg.Content))
			}
			return
		}
	}
	t.Error("context message not found")
}

func TestComplete(t *testing.T) {
	provider := &fakeProvider{responses: []string{"  A. Overlaps strongly.  \n"}}
	client := NewClient(provider, Config{})

	text, usage, err := client.Complete(context.Background(), "system", "prompt")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if text != "A. Overlaps strongly." {
		t.Errorf("expected trimmed response, got %q", text)
	}
	if usage.InputTokens != 10 || usage.OutputTokens != 5 {
		t.Errorf("unexpected usage: %+v", usage)
	}
}
