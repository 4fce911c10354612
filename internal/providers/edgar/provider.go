// Package edgar implements the SEC EDGAR data provider: XBRL company facts,
// company submissions, the ticker-to-CIK map, and the filings RSS feed.
//
// EDGAR needs no API key but requires a User-Agent identifying the caller
// and enforces 10 requests/second per agent.
// Docs: https://www.sec.gov/edgar/sec-api-documentation
package edgar

import (
	"context"
	"fmt"

	"github.com/markmullin/investors-daily-brief-v2-sub011/internal/infra"
	"github.com/markmullin/investors-daily-brief-v2-sub011/internal/provider"
)

const (
	providerName = "edgar"

	dataBaseURL    = "https://data.sec.gov"
	factsURL       = dataBaseURL + "/api/xbrl/companyfacts"
	submissionsURL = dataBaseURL + "/submissions"
	tickerMapURL   = "https://www.sec.gov/files/company_tickers.json"
	filingsFeedURL = "https://www.sec.gov/cgi-bin/browse-edgar"

	userAgent = "investors-daily-brief/2.0 (github.com/markmullin/investors-daily-brief-v2-sub011)"
)

func edgarHeaders() map[string]string {
	return map[string]string{"User-Agent": userAgent}
}

// Provider implements provider.Provider for SEC EDGAR.
type Provider struct {
	provider.BaseProvider
}

func New() *Provider {
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"SEC EDGAR - XBRL company facts, submissions, and filings",
			"https://www.sec.gov/edgar",
			nil,
		),
	}
	p.AddFetcher(newCompanyFactsFetcher())
	p.AddFetcher(newSubmissionsFetcher())
	p.AddFetcher(newCikMapFetcher())
	p.AddFetcher(newFilingsFeedFetcher())
	return p
}

// Ping fetches Apple's submissions header as a cheap connectivity probe.
func (p *Provider) Ping(ctx context.Context) error {
	url := fmt.Sprintf("%s/CIK0000320193.json", submissionsURL)
	body, err := infra.GetBody(ctx, url, edgarHeaders())
	if err != nil {
		return fmt.Errorf("edgar ping: %w", err)
	}
	return body.Close()
}
