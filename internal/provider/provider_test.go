package provider

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubFetcher struct {
	BaseFetcher
	fetch func(ctx context.Context, params QueryParams) (*Result, error)
}

func newStubFetcher(model ModelType) *stubFetcher {
	return &stubFetcher{
		BaseFetcher: NewBaseFetcher(model, "stub "+string(model), []string{ParamSymbol}, FetcherOpts{}),
	}
}

func (s *stubFetcher) Fetch(ctx context.Context, params QueryParams) (*Result, error) {
	if s.fetch != nil {
		return s.fetch(ctx, params)
	}
	return &Result{Data: "stub", FetchedAt: time.Now()}, nil
}

type stubProvider struct {
	BaseProvider
}

func newStubProvider(name string, models ...ModelType) *stubProvider {
	p := &stubProvider{
		BaseProvider: NewBaseProvider(name, "stub "+name, "https://example.com", nil),
	}
	for _, m := range models {
		p.AddFetcher(newStubFetcher(m))
	}
	return p
}

func TestRegistryRoutesToDefault(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(newStubProvider("alpha", ModelCompanyFacts)); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	result, err := reg.Fetch(context.Background(), ModelCompanyFacts, QueryParams{ParamSymbol: "AAPL"})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if result.Provider != "alpha" || result.Model != ModelCompanyFacts {
		t.Errorf("routing metadata wrong: %+v", result)
	}
}

func TestRegistryExplicitProviderOverride(t *testing.T) {
	reg := NewRegistry()
	reg.Register(newStubProvider("alpha", ModelCompanyFacts))
	reg.Register(newStubProvider("beta", ModelCompanyFacts))

	result, err := reg.Fetch(context.Background(), ModelCompanyFacts,
		QueryParams{ParamSymbol: "AAPL", ParamProvider: "beta"})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if result.Provider != "beta" {
		t.Errorf("expected beta, got %s", result.Provider)
	}
}

func TestRegistryUnknownProvider(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.Fetch(context.Background(), ModelCompanyFacts, QueryParams{ParamSymbol: "AAPL"})
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestRegistryUnsupportedModel(t *testing.T) {
	reg := NewRegistry()
	reg.Register(newStubProvider("alpha", ModelCompanyFacts))

	_, err := reg.Fetch(context.Background(), ModelMacroSeries,
		QueryParams{ParamSymbol: "GDP", ParamProvider: "alpha"})
	var unsupported *UnsupportedModelError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedModelError, got %v", err)
	}
}

func TestRegistryMissingParam(t *testing.T) {
	reg := NewRegistry()
	reg.Register(newStubProvider("alpha", ModelCompanyFacts))

	_, err := reg.Fetch(context.Background(), ModelCompanyFacts, QueryParams{})
	var missing *MissingParamError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingParamError, got %v", err)
	}
	if missing.Param != ParamSymbol {
		t.Errorf("expected symbol param, got %s", missing.Param)
	}
}

func TestRegistryFallback(t *testing.T) {
	reg := NewRegistry()

	failing := newStubProvider("alpha", ModelCompanyFacts)
	failing.fetchers[ModelCompanyFacts].(*stubFetcher).fetch =
		func(ctx context.Context, params QueryParams) (*Result, error) {
			return nil, errors.New("upstream down")
		}
	reg.Register(failing)
	reg.Register(newStubProvider("beta", ModelCompanyFacts))

	result, err := reg.FetchWithFallback(context.Background(), ModelCompanyFacts,
		QueryParams{ParamSymbol: "AAPL"})
	if err != nil {
		t.Fatalf("expected fallback to succeed: %v", err)
	}
	if result.Provider != "beta" {
		t.Errorf("expected fallback to beta, got %s", result.Provider)
	}
}

func TestProviderListSorted(t *testing.T) {
	reg := NewRegistry()
	reg.Register(newStubProvider("zeta", ModelCompanyFacts))
	reg.Register(newStubProvider("alpha", ModelMacroSeries))

	infos := reg.List()
	if len(infos) != 2 || infos[0].Name != "alpha" || infos[1].Name != "zeta" {
		t.Errorf("expected sorted listing, got %+v", infos)
	}
}

func TestCacheKeyIsDeterministic(t *testing.T) {
	a := CacheKey(ModelCompanyFacts, QueryParams{
		ParamSymbol: "AAPL", ParamPeriod: "quarterly", ParamProvider: "edgar", "_fmp_api_key": "secret",
	})
	b := CacheKey(ModelCompanyFacts, QueryParams{
		ParamPeriod: "quarterly", ParamSymbol: "AAPL",
	})
	if a != b {
		t.Errorf("provider routing and credentials must not affect the key: %q vs %q", a, b)
	}
	if a != "CompanyFacts:period=quarterly:symbol=AAPL" {
		t.Errorf("unexpected key %q", a)
	}
}

func TestCredentialValidation(t *testing.T) {
	p := &stubProvider{
		BaseProvider: NewBaseProvider("fmp", "needs key", "https://example.com", []Credential{
			{Name: "api_key", Required: true, EnvVar: "FMP_API_KEY"},
		}),
	}

	err := p.Init(nil)
	var credErr *CredentialError
	if !errors.As(err, &credErr) {
		t.Fatalf("expected CredentialError, got %v", err)
	}

	if err := p.Init(map[string]string{"api_key": "k"}); err != nil {
		t.Fatalf("Init with key should succeed: %v", err)
	}
	if p.Credential("api_key") != "k" {
		t.Error("credential not stored")
	}
}
