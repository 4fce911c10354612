// Package fmp implements the Financial Modeling Prep provider: full
// financial statements and company profiles. FMP serves pre-normalized
// statements, making it the fallback source when a company's EDGAR facts
// are unusable.
//
// Requires an API key from https://financialmodelingprep.com.
package fmp

import (
	"context"
	"fmt"

	"github.com/markmullin/investors-daily-brief-v2-sub011/internal/infra"
	"github.com/markmullin/investors-daily-brief-v2-sub011/internal/provider"
)

const (
	providerName = "fmp"
	baseURL      = "https://financialmodelingprep.com/api/v3"
	credAPIKey   = "api_key"

	// paramAPIKey is injected into every fetch by the provider wrapper;
	// callers never set it.
	paramAPIKey = "_fmp_api_key"
)

// Provider implements provider.Provider for Financial Modeling Prep.
type Provider struct {
	provider.BaseProvider
	apiKey string
}

func New() *Provider {
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"Financial Modeling Prep - financial statements and profiles",
			"https://financialmodelingprep.com",
			[]provider.Credential{{
				Name:        credAPIKey,
				Description: "FMP API key from financialmodelingprep.com",
				Required:    true,
				EnvVar:      "FMP_API_KEY",
			}},
		),
	}
	p.AddFetcher(newStatementFetcher(provider.ModelIncomeStatement, "income-statement"))
	p.AddFetcher(newStatementFetcher(provider.ModelBalanceSheet, "balance-sheet-statement"))
	p.AddFetcher(newStatementFetcher(provider.ModelCashFlowStatement, "cash-flow-statement"))
	p.AddFetcher(newProfileFetcher())
	return p
}

func (p *Provider) Init(credentials map[string]string) error {
	if err := p.BaseProvider.Init(credentials); err != nil {
		return err
	}
	p.apiKey = credentials[credAPIKey]
	return nil
}

// Fetcher wraps the underlying fetcher so the API key rides along in params
// without every call site threading it through.
func (p *Provider) Fetcher(model provider.ModelType) provider.Fetcher {
	inner := p.BaseProvider.Fetcher(model)
	if inner == nil {
		return nil
	}
	return &keyInjector{inner: inner, key: &p.apiKey}
}

func (p *Provider) Ping(ctx context.Context) error {
	url := fmt.Sprintf("%s/profile/AAPL?apikey=%s", baseURL, p.apiKey)
	body, err := infra.GetBody(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("fmp ping: %w", err)
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
