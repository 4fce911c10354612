package fmp

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/markmullin/investors-daily-brief-v2-sub011/internal/infra"
	"github.com/markmullin/investors-daily-brief-v2-sub011/internal/provider"
	"github.com/markmullin/investors-daily-brief-v2-sub011/pkg/utils"
)

// statementFetcher serves one statement endpoint. All three statement
// models share the fetch path; only the endpoint segment differs.
type statementFetcher struct {
	provider.BaseFetcher
	endpoint string
}

func newStatementFetcher(model provider.ModelType, endpoint string) *statementFetcher {
	return &statementFetcher{
		BaseFetcher: provider.NewBaseFetcher(
			model,
			"FMP "+endpoint,
			[]string{provider.ParamSymbol},
			provider.FetcherOpts{CacheTTL: time.Hour, RateBurst: 5, RateEvery: time.Second},
		),
		endpoint: endpoint,
	}
}

func (f *statementFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.Result, error) {
	symbol := utils.NormalizeTicker(params[provider.ParamSymbol])

	if cached, ok := f.Cached(params); ok {
		return cached, nil
	}
	if err := f.Throttle(ctx); err != nil {
		return nil, err
	}

	// FMP's period parameter is "annual" or "quarter".
	period := "quarter"
	if params[provider.ParamPeriod] == "annual" {
		period = "annual"
	}
	limit := params[provider.ParamLimit]
	if limit == "" {
		limit = "8"
	}

	u := fmt.Sprintf("%s/%s/%s?period=%s&limit=%s&apikey=%s",
		baseURL, f.endpoint, url.PathEscape(symbol), period,
		url.QueryEscape(limit), url.QueryEscape(params[paramAPIKey]))

	var rows []StatementRow
	if err := infra.GetJSON(ctx, u, nil, &rows); err != nil {
		return nil, fmt.Errorf("fmp %s %s: %w", f.endpoint, symbol, err)
	}

	f.Store(params, rows)
	return &provider.Result{Data: rows, FetchedAt: time.Now()}, nil
}
