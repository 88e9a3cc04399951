package llm

import (
	"testing"
)

func TestNewProvider_Unknown(t *testing.T) {
	if _, err := NewProvider("gemini", ProviderConfig{}); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestNewProvider_KnownNames(t *testing.T) {
	for _, name := range []string{"anthropic", "openai", "openrouter"} {
		p, err := NewProvider(name, ProviderConfig{APIKey: "test-key"})
		if err != nil {
			t.Errorf("NewProvider(%q) failed: %v", name, err)
			continue
		}
		if p == nil {
			t.Errorf("NewProvider(%q) returned nil provider", name)
		}
	}
}

func TestRegisterProvider(t *testing.T) {
	RegisterProvider("custom", func(cfg ProviderConfig) (Provider, error) {
		return &scriptedProvider{name: "custom"}, nil
	})

	p, err := NewProvider("custom", ProviderConfig{})
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}
	if p.Name() != "custom" {
		t.Errorf("expected custom provider, got %q", p.Name())
	}
}

func TestGetDefaultModel(t *testing.T) {
	if m := GetDefaultModel("openai"); m == "" {
		t.Error("expected a default model for openai")
	}
	if m := GetDefaultModel("nonexistent"); m != "" {
		t.Errorf("expected empty model for unknown provider, got %q", m)
	}
}

func TestGetDefaultFallbackModel(t *testing.T) {
	for _, name := range []string{"anthropic", "openai", "openrouter"} {
		fb := GetDefaultFallbackModel(name)
		if fb == "" {
			t.Errorf("expected a fallback model for %q", name)
		}
		if fb == GetDefaultModel(name) {
			t.Errorf("fallback model for %q should differ from the default, got %q", name, fb)
		}
	}
	if fb := GetDefaultFallbackModel("nonexistent"); fb != "" {
		t.Errorf("expected empty fallback model for unknown provider, got %q", fb)
	}
}

func TestDefaultProviderConfig(t *testing.T) {
	cfg := DefaultProviderConfig()
	if cfg.Timeout <= 0 {
		t.Errorf("expected a positive default timeout, got %v", cfg.Timeout)
	}
}

func TestUsageAdd(t *testing.T) {
	var u Usage
	u.Add(Usage{InputTokens: 10, OutputTokens: 5})
	u.Add(Usage{InputTokens: 3, OutputTokens: 2})

	if u.InputTokens != 13 || u.OutputTokens != 7 {
		t.Errorf("unexpected totals: %+v", u)
	}
}

var _ Provider = (*scriptedProvider)(nil)
