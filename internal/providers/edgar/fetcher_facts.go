package edgar

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/markmullin/investors-daily-brief-v2-sub011/internal/fundamentals"
	"github.com/markmullin/investors-daily-brief-v2-sub011/internal/infra"
	"github.com/markmullin/investors-daily-brief-v2-sub011/internal/provider"
	"github.com/markmullin/investors-daily-brief-v2-sub011/pkg/utils"
)

// ---- CompanyFacts fetcher ----
// Full XBRL fact history for one company, already filtered to the 10-K and
// 10-Q facts the fundamentals pipeline consumes.

type companyFactsFetcher struct {
	provider.BaseFetcher
}

func newCompanyFactsFetcher() *companyFactsFetcher {
	return &companyFactsFetcher{
		BaseFetcher: provider.NewBaseFetcher(
			provider.ModelCompanyFacts,
			"XBRL company facts from the EDGAR companyfacts API",
			[]string{provider.ParamSymbol},
			// Facts update on filing cadence; an hour of staleness is free.
			provider.FetcherOpts{CacheTTL: time.Hour, RateBurst: 10, RateEvery: time.Second},
		),
	}
}

func (f *companyFactsFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.Result, error) {
	symbol := utils.NormalizeTicker(params[provider.ParamSymbol])

	if cached, ok := f.Cached(params); ok {
		return cached, nil
	}
	if err := f.Throttle(ctx); err != nil {
		return nil, err
	}

	cik, err := resolveCIK(ctx, symbol)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/CIK%s.json", factsURL, cik)
	body, err := infra.GetBody(ctx, url, edgarHeaders())
	if err != nil {
		return nil, fmt.Errorf("companyfacts %s: %w", symbol, err)
	}
	payload, err := io.ReadAll(body)
	body.Close()
	if err != nil {
		return nil, fmt.Errorf("companyfacts %s: %w", symbol, err)
	}

	facts, err := fundamentals.ParseCompanyFacts(symbol, payload)
	if err != nil {
		return nil, fmt.Errorf("companyfacts %s: %w", symbol, err)
	}

	f.Store(params, facts)
	return &provider.Result{Data: facts, FetchedAt: time.Now()}, nil
}
