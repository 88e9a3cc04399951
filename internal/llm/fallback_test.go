package llm

import (
	"context"
	"errors"
	"testing"
)

type scriptedProvider struct {
	name  string
	err   error
	calls int
}

func (p *scriptedProvider) Complete(_ context.Context, _ CompletionRequest) (CompletionResponse, error) {
	p.calls++
	if p.err != nil {
		return CompletionResponse{}, p.err
	}
	return CompletionResponse{Content: "ok", Model: p.name}, nil
}

func (p *scriptedProvider) Name() string { return p.name }

func TestFallbackProvider_PrimarySucceeds(t *testing.T) {
	primary := &scriptedProvider{name: "primary"}
	fallback := &scriptedProvider{name: "fallback"}
	p := NewFallbackProvider(primary, fallback)

	resp, err := p.Complete(context.Background(), CompletionRequest{})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if resp.Model != "primary" {
		t.Errorf("expected primary response, got %q", resp.Model)
	}
	if fallback.calls != 0 {
		t.Error("fallback must not be called when primary succeeds")
	}
}

func TestFallbackProvider_RateLimitRetriesOnce(t *testing.T) {
	primary := &scriptedProvider{name: "primary", err: errors.New("429 Too Many Requests")}
	fallback := &scriptedProvider{name: "fallback"}
	p := NewFallbackProvider(primary, fallback)

	resp, err := p.Complete(context.Background(), CompletionRequest{})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if resp.Model != "fallback" {
		t.Errorf("expected fallback response, got %q", resp.Model)
	}
	if primary.calls != 1 || fallback.calls != 1 {
		t.Errorf("expected exactly one call each, got primary=%d fallback=%d", primary.calls, fallback.calls)
	}
}

func TestFallbackProvider_NonRateLimitErrorPassesThrough(t *testing.T) {
	primary := &scriptedProvider{name: "primary", err: errors.New("invalid request")}
	fallback := &scriptedProvider{name: "fallback"}
	p := NewFallbackProvider(primary, fallback)

	_, err := p.Complete(context.Background(), CompletionRequest{})
	if err == nil {
		t.Fatal("expected error to pass through")
	}
	if fallback.calls != 0 {
		t.Error("fallback must not be tried for non-rate-limit errors")
	}
}

func TestFallbackProvider_FallbackAlsoFails(t *testing.T) {
	primary := &scriptedProvider{name: "primary", err: errors.New("rate limit exceeded")}
	fallback := &scriptedProvider{name: "fallback", err: errors.New("rate limit exceeded")}
	p := NewFallbackProvider(primary, fallback)

	_, err := p.Complete(context.Background(), CompletionRequest{})
	if err == nil {
		t.Fatal("expected error when both providers fail")
	}
	if primary.calls != 1 || fallback.calls != 1 {
		t.Errorf("expected one attempt each, got primary=%d fallback=%d", primary.calls, fallback.calls)
	}
}

func TestIsRateLimited(t *testing.T) {
	tests := []struct {
		msg  string
		want bool
	}{
		{"429 Too Many Requests", true},
		{"rate limit exceeded", true},
		{"rate_limit_error from API", true},
		{"connection refused", false},
		{"invalid API key", false},
	}
	for _, tt := range tests {
		if got := isRateLimited(errors.New(tt.msg)); got != tt.want {
			t.Errorf("isRateLimited(%q) = %v, want %v", tt.msg, got, tt.want)
		}
	}
}
