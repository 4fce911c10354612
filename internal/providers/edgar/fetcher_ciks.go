package edgar

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/markmullin/investors-daily-brief-v2-sub011/internal/infra"
	"github.com/markmullin/investors-daily-brief-v2-sub011/internal/provider"
	"github.com/markmullin/investors-daily-brief-v2-sub011/pkg/utils"
)

// tickerMapEntry mirrors one row of company_tickers.json, which is keyed by
// arbitrary index strings ("0", "1", ...).
type tickerMapEntry struct {
	CIK    int64  `json:"cik_str"`
	Ticker string `json:"ticker"`
	Title  string `json:"title"`
}

// cikTable caches the ticker-to-CIK map process-wide. The file is ~1MB and
// changes rarely; every EDGAR fetcher that needs symbol resolution shares
// this copy.
var cikTable = struct {
	mu      sync.Mutex
	byTick  map[string]string
	fetched time.Time
}{}

const cikTableTTL = 24 * time.Hour

// resolveCIK maps a ticker to its zero-padded CIK.
func resolveCIK(ctx context.Context, symbol string) (string, error) {
	table, err := loadCikTable(ctx)
	if err != nil {
		return "", err
	}
	cik, ok := table[utils.NormalizeTicker(symbol)]
	if !ok {
		return "", fmt.Errorf("ticker %q not in EDGAR company map", symbol)
	}
	return utils.PadCIK(cik), nil
}

func loadCikTable(ctx context.Context) (map[string]string, error) {
	cikTable.mu.Lock()
	defer cikTable.mu.Unlock()

	if cikTable.byTick != nil && time.Since(cikTable.fetched) < cikTableTTL {
		return cikTable.byTick, nil
	}

	var raw map[string]tickerMapEntry
	if err := infra.GetJSON(ctx, tickerMapURL, edgarHeaders(), &raw); err != nil {
		if cikTable.byTick != nil {
			// Stale beats broken while EDGAR is unreachable.
			return cikTable.byTick, nil
		}
		return nil, fmt.Errorf("load company map: %w", err)
	}

	table := make(map[string]string, len(raw))
	for _, e := range raw {
		table[utils.NormalizeTicker(e.Ticker)] = strconv.FormatInt(e.CIK, 10)
	}
	cikTable.byTick = table
	cikTable.fetched = time.Now()
	return table, nil
}

// ---- CikMap fetcher ----

type cikMapFetcher struct {
	provider.BaseFetcher
}

func newCikMapFetcher() *cikMapFetcher {
	return &cikMapFetcher{
		BaseFetcher: provider.NewBaseFetcher(
			provider.ModelCikMap,
			"Ticker to CIK mapping from the EDGAR company list",
			nil,
			provider.FetcherOpts{CacheTTL: cikTableTTL, RateBurst: 10, RateEvery: time.Second},
		),
	}
}

func (f *cikMapFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.Result, error) {
	if cached, ok := f.Cached(params); ok {
		return cached, nil
	}
	if err := f.Throttle(ctx); err != nil {
		return nil, err
	}

	table, err := loadCikTable(ctx)
	if err != nil {
		return nil, err
	}

	// With a symbol the result narrows to that one mapping.
	if symbol := params[provider.ParamSymbol]; symbol != "" {
		cik, ok := table[utils.NormalizeTicker(symbol)]
		if !ok {
			return nil, fmt.Errorf("ticker %q not in EDGAR company map", symbol)
		}
		data := map[string]string{utils.NormalizeTicker(symbol): utils.PadCIK(cik)}
		f.Store(params, data)
		return &provider.Result{Data: data, FetchedAt: time.Now()}, nil
	}

	f.Store(params, table)
	return &provider.Result{Data: table, FetchedAt: time.Now()}, nil
}
