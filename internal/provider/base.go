package provider

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/markmullin/investors-daily-brief-v2-sub011/internal/infra"
)

// BaseFetcher supplies the boilerplate every concrete fetcher needs:
// metadata accessors plus a per-fetcher cache and rate limiter. Embed it and
// implement Fetch.
type BaseFetcher struct {
	model    ModelType
	desc     string
	required []string
	cache    *infra.Cache
	limiter  *infra.RateLimiter
}

// FetcherOpts sizes the embedded cache and limiter. Zero values fall back
// to 5 minutes TTL and 10 requests per second.
type FetcherOpts struct {
	CacheTTL  time.Duration
	RateBurst int
	RateEvery time.Duration
}

func NewBaseFetcher(model ModelType, desc string, required []string, opts FetcherOpts) BaseFetcher {
	if opts.CacheTTL == 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	if opts.RateBurst == 0 {
		opts.RateBurst = 10
	}
	if opts.RateEvery == 0 {
		opts.RateEvery = time.Second
	}
	return BaseFetcher{
		model:    model,
		desc:     desc,
		required: required,
		cache:    infra.NewCache(opts.CacheTTL),
		limiter:  infra.NewRateLimiter(opts.RateBurst, opts.RateEvery),
	}
}

func (b *BaseFetcher) ModelType() ModelType     { return b.model }
func (b *BaseFetcher) Description() string      { return b.desc }
func (b *BaseFetcher) RequiredParams() []string { return b.required }

// Cached looks up a previous result for params and wraps it.
func (b *BaseFetcher) Cached(params QueryParams) (*Result, bool) {
	v, ok := b.cache.Get(CacheKey(b.model, params))
	if !ok {
		return nil, false
	}
	return &Result{Data: v, FetchedAt: time.Now(), Cached: true}, true
}

// Store caches data for params under the fetcher's TTL.
func (b *BaseFetcher) Store(params QueryParams, data any) {
	b.cache.Set(CacheKey(b.model, params), data)
}

// Throttle blocks until the fetcher's rate limiter grants a slot.
func (b *BaseFetcher) Throttle(ctx context.Context) error {
	return b.limiter.Wait(ctx)
}

// CacheKey builds a deterministic key from the model type and params.
// Provider routing and injected credentials are excluded so the same query
// hits the same entry regardless of how it was routed.
func CacheKey(model ModelType, params QueryParams) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k == ParamProvider || strings.HasPrefix(k, "_") {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(string(model))
	for _, k := range keys {
		sb.WriteByte(':')
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(params[k])
	}
	return sb.String()
}

// BaseProvider implements the credential and fetcher bookkeeping shared by
// concrete providers.
type BaseProvider struct {
	info     Info
	fetchers map[ModelType]Fetcher
	creds    map[string]string
}

func NewBaseProvider(name, desc, website string, creds []Credential) BaseProvider {
	return BaseProvider{
		info: Info{
			Name:        name,
			Description: desc,
			Website:     website,
			Credentials: creds,
		},
		fetchers: make(map[ModelType]Fetcher),
		creds:    make(map[string]string),
	}
}

func (bp *BaseProvider) Info() Info { return bp.info }

func (bp *BaseProvider) Init(credentials map[string]string) error {
	for _, c := range bp.info.Credentials {
		if c.Required && credentials[c.Name] == "" {
			return &CredentialError{Provider: bp.info.Name, Detail: "missing " + c.Name}
		}
	}
	bp.creds = credentials
	return nil
}

func (bp *BaseProvider) Fetcher(model ModelType) Fetcher {
	return bp.fetchers[model]
}

func (bp *BaseProvider) SupportedModels() []ModelType {
	models := make([]ModelType, 0, len(bp.fetchers))
	for m := range bp.fetchers {
		models = append(models, m)
	}
	sort.Slice(models, func(i, j int) bool { return models[i] < models[j] })
	return models
}

func (bp *BaseProvider) Ping(ctx context.Context) error { return nil }

// AddFetcher registers a fetcher and refreshes the advertised model list.
func (bp *BaseProvider) AddFetcher(f Fetcher) {
	bp.fetchers[f.ModelType()] = f
	bp.info.Models = bp.SupportedModels()
}

// Credential returns a stored credential value, empty when unset.
func (bp *BaseProvider) Credential(name string) string {
	return bp.creds[name]
}
