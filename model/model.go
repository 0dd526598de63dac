package model

import (
	"fmt"
	"slices"
)

// Provider identifies the vendor backend a model is served by.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderGemini    Provider = "gemini"
	ProviderQwen      Provider = "qwen"

	// ProviderUnknown tags failures that cannot be attributed to any provider.
	ProviderUnknown Provider = "unknown"
)

// Providers lists every provider with an adapter slot, in a stable order.
var Providers = []Provider{ProviderOpenAI, ProviderAnthropic, ProviderGemini, ProviderQwen}

// Valid reports whether p is one of the known providers.
func (p Provider) Valid() bool {
	return slices.Contains(Providers, p)
}

// Descriptor is the immutable catalog entry for one model.
type Descriptor struct {
	ID          string   `json:"id"`
	Provider    Provider `json:"provider"`
	WireModel   string   `json:"model"`
	MaxTokens   int      `json:"maxTokens"`
	Temperature float64  `json:"temperature"`
	Strengths   []string `json:"strengths"`
	Weaknesses  []string `json:"weaknesses"`
}

func (d Descriptor) clone() Descriptor {
	d.Strengths = slices.Clone(d.Strengths)
	d.Weaknesses = slices.Clone(d.Weaknesses)
	return d
}

func (d Descriptor) validate() error {
	switch {
	case d.ID == "":
		return fmt.Errorf("%w: empty model id", ErrInvalidCatalog)
	case !d.Provider.Valid():
		return fmt.Errorf("%w: model '%s' has provider '%s'", ErrInvalidCatalog, d.ID, d.Provider)
	case d.WireModel == "":
		return fmt.Errorf("%w: model '%s' has no wire model name", ErrInvalidCatalog, d.ID)
	case d.MaxTokens <= 0:
		return fmt.Errorf("%w: model '%s' max tokens must be positive", ErrInvalidCatalog, d.ID)
	case d.Temperature < 0 || d.Temperature > 2:
		return fmt.Errorf("%w: model '%s' temperature %.2f out of [0,2]", ErrInvalidCatalog, d.ID, d.Temperature)
	}
	return nil
}

// Registry is a read-only catalog of model descriptors. It is safe for
// concurrent use because it never changes after construction.
type Registry struct {
	order  []string
	models map[string]Descriptor
}

// NewRegistry builds a registry from descs, keeping their declaration order.
func NewRegistry(descs ...Descriptor) (*Registry, error) {
	r := &Registry{
		order:  make([]string, 0, len(descs)),
		models: make(map[string]Descriptor, len(descs)),
	}
	for _, d := range descs {
		if err := d.validate(); err != nil {
			return nil, err
		}
		if _, exists := r.models[d.ID]; exists {
			return nil, fmt.Errorf("%w: duplicate model id '%s'", ErrInvalidCatalog, d.ID)
		}
		r.order = append(r.order, d.ID)
		r.models[d.ID] = d.clone()
	}
	return r, nil
}

// Lookup returns the descriptor registered under modelID.
func (r *Registry) Lookup(modelID string) (Descriptor, error) {
	d, ok := r.models[modelID]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %s", ErrUnknownModel, modelID)
	}
	return d.clone(), nil
}

// List returns all descriptors in declaration order.
func (r *Registry) List() []Descriptor {
	out := make([]Descriptor, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.models[id].clone())
	}
	return out
}

// Has reports whether modelID is registered.
func (r *Registry) Has(modelID string) bool {
	_, ok := r.models[modelID]
	return ok
}

// Resolve maps ids to descriptors, skipping ids that are not registered.
func (r *Registry) Resolve(ids []string) []Descriptor {
	out := make([]Descriptor, 0, len(ids))
	for _, id := range ids {
		if d, ok := r.models[id]; ok {
			out = append(out, d.clone())
		}
	}
	return out
}
