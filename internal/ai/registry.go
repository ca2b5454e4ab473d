package ai

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

type ProviderFactory func(ctx context.Context, model string) (Provider, error)

// Registry maps provider names (AI_PROVIDER) to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]ProviderFactory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]ProviderFactory)}
}

// Settings carries what the built-in providers need.
type Settings struct {
	OllamaBaseURL     string
	OllamaModel       string
	OpenRouterBaseURL string
	OpenRouterAPIKey  string
	OpenRouterModel   string
	OpenRouterSiteURL string
	OpenRouterAppName string
}

// DefaultRegistry knows "ollama" and "openrouter". An empty model picks the
// configured one.
func DefaultRegistry(s Settings) *Registry {
	r := NewRegistry()
	r.Register("ollama", func(ctx context.Context, model string) (Provider, error) {
		if model == "" {
			model = s.OllamaModel
		}
		return NewOllamaProvider(s.OllamaBaseURL, model), nil
	})
	r.Register("openrouter", func(ctx context.Context, model string) (Provider, error) {
		if model == "" {
			model = s.OpenRouterModel
		}
		if strings.TrimSpace(s.OpenRouterAPIKey) == "" {
			return nil, fmt.Errorf("openrouter: api key is required")
		}
		return NewOpenRouterProvider(s.OpenRouterBaseURL, s.OpenRouterAPIKey, model, s.OpenRouterSiteURL, s.OpenRouterAppName), nil
	})
	return r
}

func (r *Registry) Register(name string, f ProviderFactory) {
	name = strings.ToLower(strings.TrimSpace(name))
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
}

func (r *Registry) Get(ctx context.Context, name string, model string) (Provider, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = "ollama"
	}
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown ai provider %q (known: %s)", name, strings.Join(r.Names(), ", "))
	}
	return f(ctx, model)
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.factories))
	for n := range r.factories {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
