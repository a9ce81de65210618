package provider

import (
	"errors"
	"fmt"

	"multicurrency/internal/adapters"
	"multicurrency/internal/domain"
)

var ErrUnknownSource = errors.New("no provider for rate source")

// Registry selects the provider for the configured rate source.
type Registry struct {
	providers map[domain.RateSource]adapters.RateProvider
}

func (r *Registry) For(source domain.RateSource) (adapters.RateProvider, error) {
	p, ok := r.providers[source]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, source)
	}
	return p, nil
}

// NewRegistry keys providers by their Name.
func NewRegistry(providers ...adapters.RateProvider) *Registry {
	r := &Registry{providers: make(map[domain.RateSource]adapters.RateProvider, len(providers))}
	for _, p := range providers {
		r.providers[domain.RateSource(p.Name())] = p
	}
	return r
}
