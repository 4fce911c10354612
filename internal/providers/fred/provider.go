// Package fred implements the FRED (Federal Reserve Economic Data)
// provider, serving macro time series for the daily brief's market context
// panel.
//
// Requires a free API key from https://fred.stlouisfed.org.
// Rate limit: 120 requests/minute.
package fred

import (
	"context"
	"fmt"

	"github.com/markmullin/investors-daily-brief-v2-sub011/internal/infra"
	"github.com/markmullin/investors-daily-brief-v2-sub011/internal/provider"
)

const (
	providerName = "fred"
	baseURL      = "https://api.stlouisfed.org/fred"
	credAPIKey   = "api_key"

	paramAPIKey = "_fred_api_key"
)

// Provider implements provider.Provider for FRED.
type Provider struct {
	provider.BaseProvider
	apiKey string
}

func New() *Provider {
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"Federal Reserve Economic Data - macro time series",
			"https://fred.stlouisfed.org",
			[]provider.Credential{{
				Name:        credAPIKey,
				Description: "FRED API key from fred.stlouisfed.org",
				Required:    true,
				EnvVar:      "FRED_API_KEY",
			}},
		),
	}
	p.AddFetcher(newSeriesFetcher())
	return p
}

func (p *Provider) Init(credentials map[string]string) error {
	if err := p.BaseProvider.Init(credentials); err != nil {
		return err
	}
	p.apiKey = credentials[credAPIKey]
	return nil
}

func (p *Provider) Fetcher(model provider.ModelType) provider.Fetcher {
	inner := p.BaseProvider.Fetcher(model)
	if inner == nil {
		return nil
	}
	return &keyInjector{inner: inner, key: &p.apiKey}
}

func (p *Provider) Ping(ctx context.Context) error {
	url := fmt.Sprintf("%s/series?series_id=GDP&api_key=%s&file_type=json", baseURL, p.apiKey)
	body, err := infra.GetBody(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("fred ping: %w", err)
	}
	return body.Close()
}

type keyInjector struct {
	inner provider.Fetcher
	key   *string
}

func (w *keyInjector) ModelType() provider.ModelType { return w.inner.ModelType() }
func (w *keyInjector) Description() string           { return w.inner.Description() }
func (w *keyInjector) RequiredParams() []string      { return w.inner.RequiredParams() }

func (w *keyInjector) Fetch(ctx context.Context, params provider.QueryParams) (*provider.Result, error) {
	withKey := make(provider.QueryParams, len(params)+1)
	for k, v := range params {
		withKey[k] = v
	}
	withKey[paramAPIKey] = *w.key
	return w.inner.Fetch(ctx, withKey)
}
