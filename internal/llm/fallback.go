package llm

import (
	"context"
	"strings"

	"github.com/roboscout/roboscout/internal/logger"
)

// FallbackProvider wraps a primary provider with a cheaper fallback model.
// When the primary reports a rate-limit condition the request is retried
// exactly once on the fallback; it never loops.
type FallbackProvider struct {
	primary  Provider
	fallback Provider
}

// NewFallbackProvider creates a fallback provider. A nil fallback disables
// the retry and the primary's errors pass through unchanged.
func NewFallbackProvider(primary, fallback Provider) *FallbackProvider {
	return &FallbackProvider{primary: primary, fallback: fallback}
}

// Complete tries the primary provider, then the fallback on rate limit.
func (p *FallbackProvider) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	resp, err := p.primary.Complete(ctx, req)
	if err == nil || p.fallback == nil || !isRateLimited(err) {
		return resp, err
	}

	logger.Warn("rate limit hit, retrying with fallback model",
		"primary", p.primary.Name(),
		"fallback", p.fallback.Name())
	return p.fallback.Complete(ctx, req)
}

// Name returns the provider identifier.
func (p *FallbackProvider) Name() string {
	if p.fallback == nil {
		return p.primary.Name()
	}
	return p.primary.Name() + "+fallback"
}

// isRateLimited reports whether an error looks like a rate-limit response.
func isRateLimited(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "rate_limit") ||
		strings.Contains(msg, "429")
}
