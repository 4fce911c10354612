// Package provider defines the data-provider abstraction: a Provider
// exposes one Fetcher per model type, and a Registry routes requests to the
// right provider with optional fallback. The shape follows OpenBB's
// provider/fetcher split.
package provider

import (
	"context"
	"fmt"
	"time"
)

// ModelType names one standard data model a fetcher can return.
type ModelType string

const (
	// SEC EDGAR models.
	ModelCompanyFacts       ModelType = "CompanyFacts"
	ModelCompanySubmissions ModelType = "CompanySubmissions"
	ModelCikMap             ModelType = "CikMap"
	ModelFilingsFeed        ModelType = "FilingsFeed"

	// Statement models (FMP).
	ModelIncomeStatement   ModelType = "IncomeStatement"
	ModelBalanceSheet      ModelType = "BalanceSheet"
	ModelCashFlowStatement ModelType = "CashFlowStatement"
	ModelCompanyProfile    ModelType = "CompanyProfile"

	// Macro models (FRED).
	ModelMacroSeries ModelType = "MacroSeries"
)

// QueryParams carries a fetch request's parameters. Keys prefixed with an
// underscore are injected by provider wrappers (API keys) and never come
// from callers.
type QueryParams map[string]string

const (
	ParamSymbol    = "symbol"
	ParamSeriesID  = "series_id"
	ParamPeriod    = "period" // "annual" or "quarterly"
	ParamLimit     = "limit"
	ParamStartDate = "start_date"
	ParamEndDate   = "end_date"
	ParamProvider  = "provider"
)

// Credential describes one credential a provider needs before use.
type Credential struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	EnvVar      string `json:"env_var"`
}

// Info is provider metadata for discovery endpoints.
type Info struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Website     string       `json:"website"`
	Credentials []Credential `json:"credentials"`
	Models      []ModelType  `json:"models"`
}

// Provider is one upstream data source.
type Provider interface {
	Info() Info

	// Init validates and stores credentials. Called once before the
	// provider is registered.
	Init(credentials map[string]string) error

	// Fetcher returns the fetcher for model, or nil when unsupported.
	Fetcher(model ModelType) Fetcher

	SupportedModels() []ModelType

	// Ping verifies connectivity and credentials against the live API.
	Ping(ctx context.Context) error
}

// Fetcher retrieves one model type from one provider.
type Fetcher interface {
	ModelType() ModelType
	Description() string
	RequiredParams() []string

	Fetch(ctx context.Context, params QueryParams) (*Result, error)
}

// Result wraps fetched data with routing metadata.
type Result struct {
	Provider  string    `json:"provider"`
	Model     ModelType `json:"model"`
	Data      any       `json:"data"`
	FetchedAt time.Time `json:"fetched_at"`
	Cached    bool      `json:"cached"`
}

// NotFoundError is returned when a provider name is not registered.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("provider %q not registered", e.Name)
}

// UnsupportedModelError is returned when a provider has no fetcher for a
// model type.
type UnsupportedModelError struct {
	Provider string
	Model    ModelType
}

func (e *UnsupportedModelError) Error() string {
	return fmt.Sprintf("provider %q does not support %q", e.Provider, e.Model)
}

// MissingParamError is returned when a required query parameter is absent.
type MissingParamError struct {
	Param string
}

func (e *MissingParamError) Error() string {
	return fmt.Sprintf("missing required parameter %q", e.Param)
}

// CredentialError is returned by Init when credentials are absent or
// rejected.
type CredentialError struct {
	Provider string
	Detail   string
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("provider %q credentials: %s", e.Provider, e.Detail)
}

// RequireParams checks that every listed key is present and non-empty.
func RequireParams(params QueryParams, required []string) error {
	for _, k := range required {
		if params[k] == "" {
			return &MissingParamError{Param: k}
		}
	}
	return nil
}
