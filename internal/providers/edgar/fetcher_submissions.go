package edgar

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/markmullin/investors-daily-brief-v2-sub011/internal/infra"
	"github.com/markmullin/investors-daily-brief-v2-sub011/internal/provider"
	"github.com/markmullin/investors-daily-brief-v2-sub011/pkg/models"
	"github.com/markmullin/investors-daily-brief-v2-sub011/pkg/utils"
)

// submissionsResponse mirrors the EDGAR submissions document. Recent
// filings arrive in parallel arrays indexed by position.
type submissionsResponse struct {
	CIK     string `json:"cik"`
	Name    string `json:"name"`
	Filings struct {
		Recent struct {
			AccessionNumber []string `json:"accessionNumber"`
			FilingDate      []string `json:"filingDate"`
			ReportDate      []string `json:"reportDate"`
			Form            []string `json:"form"`
			PrimaryDocument []string `json:"primaryDocument"`
		} `json:"recent"`
	} `json:"filings"`
}

// ---- CompanySubmissions fetcher ----

type submissionsFetcher struct {
	provider.BaseFetcher
}

func newSubmissionsFetcher() *submissionsFetcher {
	return &submissionsFetcher{
		BaseFetcher: provider.NewBaseFetcher(
			provider.ModelCompanySubmissions,
			"Recent filings for a company from the EDGAR submissions API",
			[]string{provider.ParamSymbol},
			provider.FetcherOpts{CacheTTL: 15 * time.Minute, RateBurst: 10, RateEvery: time.Second},
		),
	}
}

func (f *submissionsFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.Result, error) {
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

	url := fmt.Sprintf("%s/CIK%s.json", submissionsURL, cik)
	var resp submissionsResponse
	if err := infra.GetJSON(ctx, url, edgarHeaders(), &resp); err != nil {
		return nil, fmt.Errorf("submissions %s: %w", symbol, err)
	}

	limit := len(resp.Filings.Recent.Form)
	if l := params[provider.ParamLimit]; l != "" {
		if n, err := strconv.Atoi(l); err == nil && n < limit {
			limit = n
		}
	}

	recent := resp.Filings.Recent
	filings := make([]models.Filing, 0, limit)
	for i := 0; i < limit && i < len(recent.Form); i++ {
		filings = append(filings, models.Filing{
			Symbol:     symbol,
			CIK:        cik,
			Form:       recent.Form[i],
			FiledAt:    parseEdgarDate(at(recent.FilingDate, i)),
			ReportDate: parseEdgarDate(at(recent.ReportDate, i)),
			Accession:  at(recent.AccessionNumber, i),
			Link:       filingLink(cik, at(recent.AccessionNumber, i), at(recent.PrimaryDocument, i)),
		})
	}

	f.Store(params, filings)
	return &provider.Result{Data: filings, FetchedAt: time.Now()}, nil
}

// at guards the parallel arrays, which EDGAR occasionally truncates
// unevenly.
func at(s []string, i int) string {
	if i < len(s) {
		return s[i]
	}
	return ""
}

func parseEdgarDate(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

// filingLink builds the document URL under the EDGAR archive layout:
// accession numbers lose their dashes in the directory segment.
func filingLink(cik, accession, doc string) string {
	if accession == "" || doc == "" {
		return ""
	}
	dir := ""
	for _, r := range accession {
		if r != '-' {
			dir += string(r)
		}
	}
	return fmt.Sprintf("https://www.sec.gov/Archives/edgar/data/%s/%s/%s", cik, dir, doc)
}
