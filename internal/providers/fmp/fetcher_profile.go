package fmp

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/markmullin/investors-daily-brief-v2-sub011/internal/infra"
	"github.com/markmullin/investors-daily-brief-v2-sub011/internal/provider"
	"github.com/markmullin/investors-daily-brief-v2-sub011/pkg/models"
	"github.com/markmullin/investors-daily-brief-v2-sub011/pkg/utils"
)

type profileFetcher struct {
	provider.BaseFetcher
}

func newProfileFetcher() *profileFetcher {
	return &profileFetcher{
		BaseFetcher: provider.NewBaseFetcher(
			provider.ModelCompanyProfile,
			"FMP company profile: name, sector, industry, exchange",
			[]string{provider.ParamSymbol},
			// Profiles barely change; cache for a day.
			provider.FetcherOpts{CacheTTL: 24 * time.Hour, RateBurst: 5, RateEvery: time.Second},
		),
	}
}

func (f *profileFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.Result, error) {
	symbol := utils.NormalizeTicker(params[provider.ParamSymbol])

	if cached, ok := f.Cached(params); ok {
		return cached, nil
	}
	if err := f.Throttle(ctx); err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/profile/%s?apikey=%s",
		baseURL, url.PathEscape(symbol), url.QueryEscape(params[paramAPIKey]))

	var rows []ProfileRow
	if err := infra.GetJSON(ctx, u, nil, &rows); err != nil {
		return nil, fmt.Errorf("fmp profile %s: %w", symbol, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("fmp profile %s: no data", symbol)
	}

	r := rows[0]
	profile := &models.CompanyProfile{
		Symbol:      utils.NormalizeTicker(r.Symbol),
		Name:        r.CompanyName,
		Exchange:    r.Exchange,
		Sector:      r.Sector,
		Industry:    r.Industry,
		Description: r.Description,
		Website:     r.Website,
	}

	f.Store(params, profile)
	return &provider.Result{Data: profile, FetchedAt: time.Now()}, nil
}
