package edgar

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/markmullin/investors-daily-brief-v2-sub011/internal/provider"
	"github.com/markmullin/investors-daily-brief-v2-sub011/pkg/models"
	"github.com/markmullin/investors-daily-brief-v2-sub011/pkg/utils"
)

// ---- FilingsFeed fetcher ----
// Live filing stream for a company from the EDGAR browse Atom feed. Fresher
// than the submissions JSON, which lags by minutes after a filing lands.

type filingsFeedFetcher struct {
	provider.BaseFetcher
	parser *gofeed.Parser
}

func newFilingsFeedFetcher() *filingsFeedFetcher {
	parser := gofeed.NewParser()
	parser.UserAgent = userAgent
	return &filingsFeedFetcher{
		BaseFetcher: provider.NewBaseFetcher(
			provider.ModelFilingsFeed,
			"Latest filings for a company from the EDGAR Atom feed",
			[]string{provider.ParamSymbol},
			provider.FetcherOpts{CacheTTL: 5 * time.Minute, RateBurst: 10, RateEvery: time.Second},
		),
		parser: parser,
	}
}

func (f *filingsFeedFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.Result, error) {
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

	count := params[provider.ParamLimit]
	if count == "" {
		count = "40"
	}
	feedURL := fmt.Sprintf("%s?action=getcompany&CIK=%s&type=10&output=atom&count=%s",
		filingsFeedURL, url.QueryEscape(cik), url.QueryEscape(count))

	feed, err := f.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("filings feed %s: %w", symbol, err)
	}

	filings := make([]models.Filing, 0, len(feed.Items))
	for _, item := range feed.Items {
		filing := models.Filing{
			Symbol:      symbol,
			CIK:         cik,
			Form:        feedFormType(item.Title),
			Description: item.Title,
			Link:        item.Link,
		}
		if item.UpdatedParsed != nil {
			filing.FiledAt = *item.UpdatedParsed
		} else if item.PublishedParsed != nil {
			filing.FiledAt = *item.PublishedParsed
		}
		filings = append(filings, filing)
	}

	f.Store(params, filings)
	return &provider.Result{Data: filings, FetchedAt: time.Now()}, nil
}

// feedFormType pulls the form type out of an entry title, which EDGAR
// formats as "10-Q - Quarterly report ...".
func feedFormType(title string) string {
	if i := strings.Index(title, " - "); i > 0 {
		return strings.TrimSpace(title[:i])
	}
	return strings.TrimSpace(title)
}
