package api

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/markmullin/investors-daily-brief-v2-sub011/internal/briefing"
	"github.com/markmullin/investors-daily-brief-v2-sub011/internal/config"
	"github.com/markmullin/investors-daily-brief-v2-sub011/internal/infra"
	"github.com/markmullin/investors-daily-brief-v2-sub011/internal/provider"
	"github.com/markmullin/investors-daily-brief-v2-sub011/pkg/models"
)

type fakeFetcher struct {
	provider.BaseFetcher
	data func(params provider.QueryParams) (any, error)
}

func (f *fakeFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.Result, error) {
	data, err := f.data(params)
	if err != nil {
		return nil, err
	}
	return &provider.Result{Data: data, FetchedAt: time.Now()}, nil
}

type fakeProvider struct {
	provider.BaseProvider
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	p := &fakeProvider{
		BaseProvider: provider.NewBaseProvider("fake", "fake provider", "https://example.com", nil),
	}
	p.AddFetcher(&fakeFetcher{
		BaseFetcher: provider.NewBaseFetcher(provider.ModelCompanyFacts, "fake facts", nil, provider.FetcherOpts{}),
		data: func(params provider.QueryParams) (any, error) {
			symbol := params[provider.ParamSymbol]
			if symbol == "ZZZZ" {
				return nil, &infra.HTTPStatusError{URL: "u", StatusCode: 404}
			}
			end, _ := time.Parse("2006-01-02", "2024-06-30")
			return &models.CompanyFacts{
				Ticker: symbol,
				Source: "SEC XBRL",
				Tags: map[string]models.UnitFacts{
					"Revenues": {"USD": []models.RawFact{{
						ConceptTag: "Revenues", Value: 1000, PeriodEnd: end,
						Form: models.FilingQuarterly, Unit: "USD",
					}}},
				},
			}, nil
		},
	})
	p.AddFetcher(&fakeFetcher{
		BaseFetcher: provider.NewBaseFetcher(provider.ModelMacroSeries, "fake macro", nil, provider.FetcherOpts{}),
		data: func(params provider.QueryParams) (any, error) {
			return &models.MacroSeries{SeriesID: params[provider.ParamSeriesID], Title: "Fake"}, nil
		},
	})
	p.AddFetcher(&fakeFetcher{
		BaseFetcher: provider.NewBaseFetcher(provider.ModelCompanySubmissions, "fake filings", nil, provider.FetcherOpts{}),
		data: func(params provider.QueryParams) (any, error) {
			return []models.Filing{{Symbol: params[provider.ParamSymbol], Form: "10-K"}}, nil
		},
	})

	reg := provider.NewRegistry()
	if err := reg.Register(p); err != nil {
		t.Fatal(err)
	}

	cfg := &config.Config{}
	cfg.Pipeline.BatchConcurrency = 2
	cfg.Pipeline.BatchLimit = 10

	logger := log.New(io.Discard, "", 0)
	svc := briefing.NewService(reg, cfg, logger)
	return NewServer(cfg, svc, logger)
}

func get(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	rec := get(t, newTestServer(t), "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("unexpected health body: %v", body)
	}
}

func TestFinancialsEndpoint(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/v1/financials/aapl")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result models.FundamentalsResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatal(err)
	}
	if result.Ticker != "AAPL" {
		t.Errorf("expected AAPL, got %s", result.Ticker)
	}
	if result.Financials[models.MetricRevenue].Value != 1000 {
		t.Errorf("unexpected revenue: %+v", result.Financials)
	}
	if result.DataQuality.Status == "" {
		t.Error("expected a quality status")
	}
}

func TestFinancialsUnknownTicker(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/v1/financials/ZZZZ")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestFinancialsInvalidTicker(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/v1/financials/bad%20ticker")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestQualityEndpoint(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/v1/financials/AAPL/quality")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Ticker      string                  `json:"ticker"`
		DataQuality models.ValidationReport `json:"data_quality"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Ticker != "AAPL" || body.DataQuality.Status == "" {
		t.Errorf("unexpected quality body: %+v", body)
	}
}

func TestBatchEndpoint(t *testing.T) {
	srv := newTestServer(t)
	payload := strings.NewReader(`{"tickers": ["AAPL", "ZZZZ"]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/financials/batch", payload)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Results []briefing.BatchResult `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(body.Results))
	}
	if body.Results[0].Result == nil || body.Results[1].Error == "" {
		t.Errorf("expected one success and one failure: %+v", body.Results)
	}
}

func TestBatchEndpointRejectsEmpty(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/financials/batch", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestMacroEndpoint(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/v1/macro?series=gdp,unrate&limit=5")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Series []models.MacroSeries `json:"series"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Series) != 2 || body.Series[0].SeriesID != "GDP" {
		t.Errorf("unexpected macro body: %+v", body.Series)
	}
}

func TestMacroEndpointBadLimit(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/v1/macro?limit=zero")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestFilingsEndpoint(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/v1/filings/AAPL")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Filings []models.Filing `json:"filings"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Filings) != 1 || body.Filings[0].Form != "10-K" {
		t.Errorf("unexpected filings: %+v", body.Filings)
	}
}

func TestProvidersEndpoint(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/v1/providers")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Providers []provider.Info `json:"providers"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Providers) != 1 || body.Providers[0].Name != "fake" {
		t.Errorf("unexpected providers: %+v", body.Providers)
	}
}
