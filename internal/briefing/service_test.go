package briefing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"testing"
	"time"

	"github.com/markmullin/investors-daily-brief-v2-sub011/internal/config"
	"github.com/markmullin/investors-daily-brief-v2-sub011/internal/infra"
	"github.com/markmullin/investors-daily-brief-v2-sub011/internal/provider"
	"github.com/markmullin/investors-daily-brief-v2-sub011/pkg/models"
)

type cannedFetcher struct {
	provider.BaseFetcher
	data func(params provider.QueryParams) (any, error)
}

func (c *cannedFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.Result, error) {
	data, err := c.data(params)
	if err != nil {
		return nil, err
	}
	return &provider.Result{Data: data, FetchedAt: time.Now()}, nil
}

type cannedProvider struct {
	provider.BaseProvider
}

func newCannedProvider(name string, fetchers map[provider.ModelType]func(provider.QueryParams) (any, error)) *cannedProvider {
	p := &cannedProvider{
		BaseProvider: provider.NewBaseProvider(name, "canned", "https://example.com", nil),
	}
	for model, fn := range fetchers {
		p.AddFetcher(&cannedFetcher{
			BaseFetcher: provider.NewBaseFetcher(model, "canned", nil, provider.FetcherOpts{}),
			data:        fn,
		})
	}
	return p
}

func testFacts(symbol string) *models.CompanyFacts {
	end, _ := time.Parse("2006-01-02", "2024-06-30")
	fact := func(tag string, value float64) models.UnitFacts {
		return models.UnitFacts{"USD": []models.RawFact{{
			ConceptTag: tag, Value: value, PeriodEnd: end,
			Form: models.FilingQuarterly, Unit: "USD",
		}}}
	}
	return &models.CompanyFacts{
		Ticker: symbol,
		Source: "SEC XBRL",
		Tags: map[string]models.UnitFacts{
			"Revenues":           fact("Revenues", 1000),
			"NetIncomeLoss":      fact("NetIncomeLoss", 150),
			"Assets":             fact("Assets", 5000),
			"Liabilities":        fact("Liabilities", 2900),
			"StockholdersEquity": fact("StockholdersEquity", 2100),
			"NetCashProvidedByUsedInOperatingActivities": fact("NetCashProvidedByUsedInOperatingActivities", 220),
		},
	}
}

func newTestService(t *testing.T, fetchers map[provider.ModelType]func(provider.QueryParams) (any, error)) *Service {
	t.Helper()
	reg := provider.NewRegistry()
	if err := reg.Register(newCannedProvider("canned", fetchers)); err != nil {
		t.Fatal(err)
	}
	cfg := &config.Config{}
	cfg.Pipeline.BatchConcurrency = 2
	cfg.Pipeline.BatchLimit = 10
	return NewService(reg, cfg, log.New(io.Discard, "", 0))
}

func TestFinancialsHappyPath(t *testing.T) {
	svc := newTestService(t, map[provider.ModelType]func(provider.QueryParams) (any, error){
		provider.ModelCompanyFacts: func(params provider.QueryParams) (any, error) {
			return testFacts(params[provider.ParamSymbol]), nil
		},
	})

	result, err := svc.Financials(context.Background(), "aapl")
	if err != nil {
		t.Fatalf("Financials failed: %v", err)
	}
	if result.Ticker != "AAPL" {
		t.Errorf("ticker must normalize, got %s", result.Ticker)
	}
	if rev := result.Financials[models.MetricRevenue]; rev.Value != 1000 {
		t.Errorf("expected revenue 1000, got %v", rev.Value)
	}
	if result.DataQuality.Status == "" {
		t.Error("expected a quality report")
	}
}

func TestFinancialsInvalidTicker(t *testing.T) {
	svc := newTestService(t, nil)

	_, err := svc.Financials(context.Background(), "not a ticker!!")
	var invalid *InvalidTickerError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidTickerError, got %v", err)
	}
}

func TestFinancialsUnknownTicker(t *testing.T) {
	svc := newTestService(t, map[provider.ModelType]func(provider.QueryParams) (any, error){
		provider.ModelCompanyFacts: func(params provider.QueryParams) (any, error) {
			return nil, &infra.HTTPStatusError{URL: "u", StatusCode: 404}
		},
	})

	_, err := svc.Financials(context.Background(), "ZZZZ")
	var notFoundErr *TickerNotFoundError
	if !errors.As(err, &notFoundErr) {
		t.Fatalf("expected TickerNotFoundError, got %v", err)
	}
}

func TestBatchFinancialsPartialFailure(t *testing.T) {
	svc := newTestService(t, map[provider.ModelType]func(provider.QueryParams) (any, error){
		provider.ModelCompanyFacts: func(params provider.QueryParams) (any, error) {
			if params[provider.ParamSymbol] == "BAD" {
				return nil, &infra.HTTPStatusError{URL: "u", StatusCode: 404}
			}
			return testFacts(params[provider.ParamSymbol]), nil
		},
	})

	results, err := svc.BatchFinancials(context.Background(), []string{"AAPL", "BAD", "MSFT"})
	if err != nil {
		t.Fatalf("batch must not abort on per-ticker failure: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Ticker != "AAPL" || results[0].Result == nil {
		t.Errorf("first entry should succeed: %+v", results[0])
	}
	if results[1].Ticker != "BAD" || results[1].Error == "" || results[1].Result != nil {
		t.Errorf("second entry should carry the error: %+v", results[1])
	}
	if results[2].Result == nil {
		t.Errorf("third entry should succeed: %+v", results[2])
	}
}

func TestBatchFinancialsLimit(t *testing.T) {
	svc := newTestService(t, nil)
	tickers := make([]string, 11)
	for i := range tickers {
		tickers[i] = fmt.Sprintf("T%d", i)
	}

	if _, err := svc.BatchFinancials(context.Background(), tickers); err == nil {
		t.Fatal("expected batch limit error")
	}
}

func TestMacroSortsBySeriesID(t *testing.T) {
	svc := newTestService(t, map[provider.ModelType]func(provider.QueryParams) (any, error){
		provider.ModelMacroSeries: func(params provider.QueryParams) (any, error) {
			return &models.MacroSeries{SeriesID: params[provider.ParamSeriesID]}, nil
		},
	})

	series, err := svc.Macro(context.Background(), []string{"UNRATE", "GDP", "CPIAUCSL"}, 10)
	if err != nil {
		t.Fatalf("Macro failed: %v", err)
	}
	if len(series) != 3 {
		t.Fatalf("expected 3 series, got %d", len(series))
	}
	want := []string{"CPIAUCSL", "GDP", "UNRATE"}
	for i, s := range series {
		if s.SeriesID != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], s.SeriesID)
		}
	}
}

func TestFilingsFeedFallback(t *testing.T) {
	svc := newTestService(t, map[provider.ModelType]func(provider.QueryParams) (any, error){
		provider.ModelCompanySubmissions: func(params provider.QueryParams) (any, error) {
			return nil, errors.New("submissions endpoint down")
		},
		provider.ModelFilingsFeed: func(params provider.QueryParams) (any, error) {
			return []models.Filing{{Symbol: params[provider.ParamSymbol], Form: "10-Q"}}, nil
		},
	})

	filings, err := svc.Filings(context.Background(), "AAPL", 5)
	if err != nil {
		t.Fatalf("expected feed fallback to serve: %v", err)
	}
	if len(filings) != 1 || filings[0].Form != "10-Q" {
		t.Errorf("unexpected filings: %+v", filings)
	}
}
