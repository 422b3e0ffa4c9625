package capabilities

import (
	"embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed config/*.yaml
var configFiles embed.FS

// Registry holds model capabilities for every configured provider, loaded
// once from the embedded YAML files.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]*ProviderCapabilities
}

// NewRegistry loads the embedded capability files.
func NewRegistry() (*Registry, error) {
	r := &Registry{
		providers: make(map[string]*ProviderCapabilities),
	}

	entries, err := configFiles.ReadDir("config")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded capability config: %w", err)
	}

	for _, entry := range entries {
		data, err := configFiles.ReadFile("config/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", entry.Name(), err)
		}

		var caps ProviderCapabilities
		if err := yaml.Unmarshal(data, &caps); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", entry.Name(), err)
		}
		if caps.Provider == "" {
			return nil, fmt.Errorf("%s: missing provider field", entry.Name())
		}

		r.providers[caps.Provider] = &caps
	}

	return r, nil
}

// GetModelCapabilities returns capabilities for one model.
func (r *Registry) GetModelCapabilities(provider, model string) (*ModelCapabilities, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	caps, ok := r.providers[provider]
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}

	for i := range caps.Models {
		if caps.Models[i].ID == model {
			return &caps.Models[i], nil
		}
	}
	return nil, fmt.Errorf("unknown model %s for provider %s", model, provider)
}

// ListProviderModels returns all models for a provider in YAML order.
func (r *Registry) ListProviderModels(provider string) ([]ModelCapabilities, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	caps, ok := r.providers[provider]
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}
	return caps.Models, nil
}

// Providers returns the names of all loaded providers.
func (r *Registry) Providers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}
