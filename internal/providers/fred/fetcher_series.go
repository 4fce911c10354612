package fred

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/markmullin/investors-daily-brief-v2-sub011/internal/infra"
	"github.com/markmullin/investors-daily-brief-v2-sub011/internal/provider"
	"github.com/markmullin/investors-daily-brief-v2-sub011/pkg/models"
)

type seriesInfoResponse struct {
	Seriess []struct {
		ID    string `json:"id"`
		Title string `json:"title"`
		Units string `json:"units"`
	} `json:"seriess"`
}

type observationsResponse struct {
	Observations []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	} `json:"observations"`
}

// ---- MacroSeries fetcher ----

type seriesFetcher struct {
	provider.BaseFetcher
}

func newSeriesFetcher() *seriesFetcher {
	return &seriesFetcher{
		BaseFetcher: provider.NewBaseFetcher(
			provider.ModelMacroSeries,
			"FRED time series observations by series ID",
			[]string{provider.ParamSeriesID},
			provider.FetcherOpts{CacheTTL: 30 * time.Minute, RateBurst: 120, RateEvery: time.Minute},
		),
	}
}

func (f *seriesFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.Result, error) {
	seriesID := params[provider.ParamSeriesID]
	apiKey := params[paramAPIKey]

	if cached, ok := f.Cached(params); ok {
		return cached, nil
	}
	if err := f.Throttle(ctx); err != nil {
		return nil, err
	}

	series := &models.MacroSeries{SeriesID: seriesID}

	infoURL := fmt.Sprintf("%s/series?series_id=%s&api_key=%s&file_type=json",
		baseURL, url.QueryEscape(seriesID), url.QueryEscape(apiKey))
	var info seriesInfoResponse
	if err := infra.GetJSON(ctx, infoURL, nil, &info); err != nil {
		return nil, fmt.Errorf("fred series %s: %w", seriesID, err)
	}
	if len(info.Seriess) > 0 {
		series.Title = info.Seriess[0].Title
		series.Units = info.Seriess[0].Units
	}

	obsURL := fmt.Sprintf("%s/series/observations?series_id=%s&api_key=%s&file_type=json&sort_order=desc",
		baseURL, url.QueryEscape(seriesID), url.QueryEscape(apiKey))
	if sd := params[provider.ParamStartDate]; sd != "" {
		obsURL += "&observation_start=" + url.QueryEscape(sd)
	}
	if ed := params[provider.ParamEndDate]; ed != "" {
		obsURL += "&observation_end=" + url.QueryEscape(ed)
	}
	if lim := params[provider.ParamLimit]; lim != "" {
		obsURL += "&limit=" + url.QueryEscape(lim)
	}

	var obs observationsResponse
	if err := infra.GetJSON(ctx, obsURL, nil, &obs); err != nil {
		return nil, fmt.Errorf("fred observations %s: %w", seriesID, err)
	}

	for _, o := range obs.Observations {
		// FRED marks missing observations with a bare dot.
		if o.Value == "." {
			continue
		}
		v, err := strconv.ParseFloat(o.Value, 64)
		if err != nil {
			continue
		}
		date, err := time.Parse("2006-01-02", o.Date)
		if err != nil {
			continue
		}
		series.Observations = append(series.Observations, models.MacroObservation{
			Date:  date,
			Value: v,
		})
	}

	f.Store(params, series)
	return &provider.Result{Data: series, FetchedAt: time.Now()}, nil
}
