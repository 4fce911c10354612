// Package briefing orchestrates the daily-brief data flow: it routes
// fetches through the provider registry, runs the fundamentals pipeline,
// and fans out batch work. The API layer and CLI both sit on top of it.
package briefing

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/markmullin/investors-daily-brief-v2-sub011/internal/config"
	"github.com/markmullin/investors-daily-brief-v2-sub011/internal/fundamentals"
	"github.com/markmullin/investors-daily-brief-v2-sub011/internal/infra"
	"github.com/markmullin/investors-daily-brief-v2-sub011/internal/provider"
	"github.com/markmullin/investors-daily-brief-v2-sub011/internal/providers/fmp"
	"github.com/markmullin/investors-daily-brief-v2-sub011/pkg/models"
	"github.com/markmullin/investors-daily-brief-v2-sub011/pkg/utils"
)

// TickerNotFoundError marks a symbol no registered provider knows.
type TickerNotFoundError struct {
	Ticker string
}

func (e *TickerNotFoundError) Error() string {
	return fmt.Sprintf("ticker %q not found", e.Ticker)
}

// InvalidTickerError marks a symbol that fails validation before any fetch.
type InvalidTickerError struct {
	Ticker string
}

func (e *InvalidTickerError) Error() string {
	return fmt.Sprintf("invalid ticker %q", e.Ticker)
}

// Service is the application core behind the API and CLI.
type Service struct {
	registry   *provider.Registry
	normalizer *fundamentals.Normalizer
	cfg        *config.Config
	logger     *log.Logger
}

func NewService(reg *provider.Registry, cfg *config.Config, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		registry:   reg,
		normalizer: fundamentals.NewNormalizer(fundamentals.DefaultConfig()),
		cfg:        cfg,
		logger:     logger,
	}
}

// Registry exposes the provider registry for discovery endpoints.
func (s *Service) Registry() *provider.Registry { return s.registry }

// Financials produces the normalized, scored fundamentals for one ticker.
// EDGAR facts are the primary source; when EDGAR cannot serve the symbol
// and FMP is registered, statements are fetched and adapted instead.
func (s *Service) Financials(ctx context.Context, ticker string) (*models.FundamentalsResult, error) {
	symbol := utils.NormalizeTicker(ticker)
	if !utils.ValidTicker(symbol) {
		return nil, &InvalidTickerError{Ticker: ticker}
	}

	facts, err := s.companyFacts(ctx, symbol)
	if err != nil {
		return nil, err
	}

	opts := fundamentals.ComputeOptions{Industry: s.industry(ctx, symbol)}
	result, err := s.normalizer.Compute(symbol, facts, opts)
	if err != nil {
		return nil, fmt.Errorf("normalize %s: %w", symbol, err)
	}
	s.logger.Printf("financials %s: %d metrics, quality %s",
		symbol, len(result.Financials), result.DataQuality.Status)
	return result, nil
}

func (s *Service) companyFacts(ctx context.Context, symbol string) (*models.CompanyFacts, error) {
	result, err := s.registry.Fetch(ctx, provider.ModelCompanyFacts,
		provider.QueryParams{provider.ParamSymbol: symbol})
	if err == nil {
		facts, ok := result.Data.(*models.CompanyFacts)
		if !ok {
			return nil, fmt.Errorf("companyfacts %s: unexpected payload %T", symbol, result.Data)
		}
		return facts, nil
	}

	if notFound(err) {
		if facts, fmpErr := s.factsFromStatements(ctx, symbol); fmpErr == nil {
			return facts, nil
		}
		return nil, &TickerNotFoundError{Ticker: symbol}
	}
	return nil, err
}

// factsFromStatements pulls the three FMP statements concurrently and
// adapts them into the facts shape.
func (s *Service) factsFromStatements(ctx context.Context, symbol string) (*models.CompanyFacts, error) {
	var income, balance, cashflow []fmp.StatementRow

	g, gctx := errgroup.WithContext(ctx)
	fetch := func(model provider.ModelType, dst *[]fmp.StatementRow) func() error {
		return func() error {
			result, err := s.registry.Fetch(gctx, model, provider.QueryParams{
				provider.ParamSymbol: symbol,
				provider.ParamPeriod: "quarterly",
			})
			if err != nil {
				return err
			}
			rows, ok := result.Data.([]fmp.StatementRow)
			if !ok {
				return fmt.Errorf("%s %s: unexpected payload %T", model, symbol, result.Data)
			}
			*dst = rows
			return nil
		}
	}
	g.Go(fetch(provider.ModelIncomeStatement, &income))
	g.Go(fetch(provider.ModelBalanceSheet, &balance))
	g.Go(fetch(provider.ModelCashFlowStatement, &cashflow))
	if err := g.Wait(); err != nil {
		return nil, err
	}

	facts := fmp.BuildCompanyFacts(symbol, income, balance, cashflow)
	if len(facts.Tags) == 0 {
		return nil, &TickerNotFoundError{Ticker: symbol}
	}
	s.logger.Printf("financials %s: EDGAR unavailable, using FMP statements", symbol)
	return facts, nil
}

// industry best-effort resolves the company's industry for the quality
// validator. No profile provider, or a failed lookup, simply disables the
// industry checks.
func (s *Service) industry(ctx context.Context, symbol string) string {
	result, err := s.registry.Fetch(ctx, provider.ModelCompanyProfile,
		provider.QueryParams{provider.ParamSymbol: symbol})
	if err != nil {
		return ""
	}
	profile, ok := result.Data.(*models.CompanyProfile)
	if !ok {
		return ""
	}
	return profile.Industry
}

// BatchResult pairs one batch entry with its outcome.
type BatchResult struct {
	Ticker string                     `json:"ticker"`
	Result *models.FundamentalsResult `json:"result,omitempty"`
	Error  string                     `json:"error,omitempty"`
}

// BatchFinancials runs Financials for each ticker with bounded
// concurrency. Per-ticker failures are reported in place, never aborting
// the rest of the batch. Results come back in input order.
func (s *Service) BatchFinancials(ctx context.Context, tickers []string) ([]BatchResult, error) {
	if len(tickers) > s.cfg.Pipeline.BatchLimit {
		return nil, fmt.Errorf("batch of %d exceeds limit %d", len(tickers), s.cfg.Pipeline.BatchLimit)
	}

	results := make([]BatchResult, len(tickers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Pipeline.BatchConcurrency)

	for i, ticker := range tickers {
		i, ticker := i, ticker
		g.Go(func() error {
			r, err := s.Financials(gctx, ticker)
			if err != nil {
				results[i] = BatchResult{Ticker: utils.NormalizeTicker(ticker), Error: err.Error()}
				return nil
			}
			results[i] = BatchResult{Ticker: r.Ticker, Result: r}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Macro fetches the given FRED series concurrently, sorted by series ID in
// the response.
func (s *Service) Macro(ctx context.Context, seriesIDs []string, limit int) ([]*models.MacroSeries, error) {
	out := make([]*models.MacroSeries, len(seriesIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Pipeline.BatchConcurrency)

	for i, id := range seriesIDs {
		i, id := i, id
		g.Go(func() error {
			params := provider.QueryParams{provider.ParamSeriesID: id}
			if limit > 0 {
				params[provider.ParamLimit] = strconv.Itoa(limit)
			}
			result, err := s.registry.Fetch(gctx, provider.ModelMacroSeries, params)
			if err != nil {
				return err
			}
			series, ok := result.Data.(*models.MacroSeries)
			if !ok {
				return fmt.Errorf("macro %s: unexpected payload %T", id, result.Data)
			}
			out[i] = series
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool { return out[i].SeriesID < out[j].SeriesID })
	return out, nil
}

// Filings lists recent filings for a ticker, preferring the submissions
// API and falling back to the Atom feed.
func (s *Service) Filings(ctx context.Context, ticker string, limit int) ([]models.Filing, error) {
	symbol := utils.NormalizeTicker(ticker)
	if !utils.ValidTicker(symbol) {
		return nil, &InvalidTickerError{Ticker: ticker}
	}

	params := provider.QueryParams{provider.ParamSymbol: symbol}
	if limit > 0 {
		params[provider.ParamLimit] = strconv.Itoa(limit)
	}

	result, err := s.registry.Fetch(ctx, provider.ModelCompanySubmissions, params)
	if err != nil {
		result, err = s.registry.Fetch(ctx, provider.ModelFilingsFeed, params)
	}
	if err != nil {
		if notFound(err) {
			return nil, &TickerNotFoundError{Ticker: symbol}
		}
		return nil, err
	}

	filings, ok := result.Data.([]models.Filing)
	if !ok {
		return nil, fmt.Errorf("filings %s: unexpected payload %T", symbol, result.Data)
	}
	return filings, nil
}

// notFound reports whether an upstream error means "this symbol does not
// exist" rather than a transient failure.
func notFound(err error) bool {
	var status *infra.HTTPStatusError
	if errors.As(err, &status) {
		return status.StatusCode == 404
	}
	// CIK resolution misses surface as plain errors naming the company map.
	return strings.Contains(err.Error(), "not in EDGAR company map")
}
