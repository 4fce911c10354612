package provider

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Registry routes fetch requests to registered providers. The first
// provider registered for a model type becomes its default; callers can
// override per request with the "provider" param.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	byModel   map[ModelType][]string
	defaults  map[ModelType]string
}

func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Provider),
		byModel:   make(map[ModelType][]string),
		defaults:  make(map[ModelType]string),
	}
}

// Register adds an initialized provider. Registering the same name twice
// replaces the instance but keeps its routing position.
func (r *Registry) Register(p Provider) error {
	info := p.Info()
	if info.Name == "" {
		return fmt.Errorf("provider name must not be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, replacing := r.providers[info.Name]
	r.providers[info.Name] = p

	if replacing {
		return nil
	}
	for _, model := range p.SupportedModels() {
		r.byModel[model] = append(r.byModel[model], info.Name)
		if _, ok := r.defaults[model]; !ok {
			r.defaults[model] = info.Name
		}
	}
	return nil
}

// Get returns a provider by name.
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[name]
	if !ok {
		return nil, &NotFoundError{Name: name}
	}
	return p, nil
}

// List returns metadata for every registered provider, sorted by name.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]Info, 0, len(r.providers))
	for _, p := range r.providers {
		infos = append(infos, p.Info())
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// ProvidersFor lists providers supporting model, default first.
func (r *Registry) ProvidersFor(model ModelType) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.byModel[model]))
	copy(names, r.byModel[model])
	return names
}

// SetDefault pins the default provider for a model type.
func (r *Registry) SetDefault(model ModelType, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.providers[name]
	if !ok {
		return &NotFoundError{Name: name}
	}
	if p.Fetcher(model) == nil {
		return &UnsupportedModelError{Provider: name, Model: model}
	}
	r.defaults[model] = name
	return nil
}

// Fetch routes one request: the "provider" param picks the provider, the
// model's default is used otherwise.
func (r *Registry) Fetch(ctx context.Context, model ModelType, params QueryParams) (*Result, error) {
	name := params[ParamProvider]

	r.mu.RLock()
	if name == "" {
		name = r.defaults[model]
	}
	p, ok := r.providers[name]
	r.mu.RUnlock()

	if !ok {
		return nil, &NotFoundError{Name: name}
	}
	f := p.Fetcher(model)
	if f == nil {
		return nil, &UnsupportedModelError{Provider: name, Model: model}
	}
	if err := RequireParams(params, f.RequiredParams()); err != nil {
		return nil, err
	}

	result, err := f.Fetch(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", name, model, err)
	}
	result.Provider = name
	result.Model = model
	if result.FetchedAt.IsZero() {
		result.FetchedAt = time.Now()
	}
	return result, nil
}

// FetchWithFallback tries the routed provider first, then every other
// provider supporting the model in registration order. The last error is
// returned when all fail.
func (r *Registry) FetchWithFallback(ctx context.Context, model ModelType, params QueryParams) (*Result, error) {
	result, err := r.Fetch(ctx, model, params)
	if err == nil {
		return result, nil
	}

	tried := params[ParamProvider]
	if tried == "" {
		r.mu.RLock()
		tried = r.defaults[model]
		r.mu.RUnlock()
	}

	for _, name := range r.ProvidersFor(model) {
		if name == tried {
			continue
		}
		retry := make(QueryParams, len(params))
		for k, v := range params {
			retry[k] = v
		}
		retry[ParamProvider] = name

		if result, err = r.Fetch(ctx, model, retry); err == nil {
			return result, nil
		}
	}
	return nil, fmt.Errorf("no provider could serve %s: %w", model, err)
}
