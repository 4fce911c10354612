// Package fundamentals normalizes heterogeneous financial facts into a
// single FinancialsRecord per company and scores the result.
//
// The pipeline is pure: it performs no I/O, holds no mutable state between
// calls, and given the same payload always produces the same output. All
// fetching, caching, and rate limiting happen in the provider layer before
// the payload reaches this package.
package fundamentals

import (
	"sort"
	"strings"

	"github.com/markmullin/investors-daily-brief-v2-sub011/pkg/models"
)

// Config carries the static tables the pipeline runs on. The zero value is
// not usable; start from DefaultConfig and override as needed.
type Config struct {
	// Concepts maps each base metric to an ordered priority list of
	// provider concept tags. Earlier tags are more authoritative; the
	// resolver takes the first tag that has data.
	Concepts map[models.Metric][]string

	// Quality configures the validator.
	Quality QualityConfig
}

// DefaultConfig returns the production concept priorities and quality
// thresholds.
func DefaultConfig() Config {
	return Config{
		Concepts: defaultConceptPriority(),
		Quality:  defaultQualityConfig(),
	}
}

// defaultConceptPriority lists the us-gaap tags tried for each base metric,
// most standard first. Filers vary: post-ASC 606 companies report revenue
// under RevenueFromContractWithCustomer*, older filings use Revenues or
// SalesRevenueNet.
func defaultConceptPriority() map[models.Metric][]string {
	return map[models.Metric][]string{
		models.MetricRevenue: {
			"Revenues",
			"RevenueFromContractWithCustomerExcludingAssessedTax",
			"SalesRevenueNet",
			"RevenueFromContractWithCustomerIncludingAssessedTax",
			"RevenuesNetOfInterestExpense",
		},
		models.MetricCostOfRevenue: {
			"CostOfRevenue",
			"CostOfGoodsAndServicesSold",
			"CostOfGoodsSold",
			"CostOfServices",
		},
		models.MetricGrossProfit: {
			"GrossProfit",
		},
		models.MetricOperatingIncome: {
			"OperatingIncomeLoss",
		},
		models.MetricNetIncome: {
			"NetIncomeLoss",
			"ProfitLoss",
			"NetIncomeLossAvailableToCommonStockholdersBasic",
		},
		models.MetricOperatingCashFlow: {
			"NetCashProvidedByUsedInOperatingActivities",
			"NetCashProvidedByUsedInOperatingActivitiesContinuingOperations",
		},
		models.MetricCapitalExpenditures: {
			"PaymentsToAcquirePropertyPlantAndEquipment",
			"PaymentsToAcquireProductiveAssets",
			"PaymentsForCapitalImprovements",
		},
		models.MetricTotalAssets: {
			"Assets",
		},
		models.MetricTotalLiabilities: {
			"Liabilities",
		},
		models.MetricShareholdersEquity: {
			"StockholdersEquity",
			"StockholdersEquityIncludingPortionAttributableToNoncontrollingInterest",
		},
		models.MetricCash: {
			"CashAndCashEquivalentsAtCarryingValue",
			"CashCashEquivalentsRestrictedCashAndRestrictedCashEquivalents",
		},
	}
}

// resolveConcept walks the priority list for a metric and returns the facts
// from the first tag with usable data, along with the tag actually used.
// The boolean is false when no tag in the list has data; callers must treat
// the metric as absent, never as zero.
func resolveConcept(concepts map[models.Metric][]string, facts *models.CompanyFacts, metric models.Metric) ([]models.RawFact, string, bool) {
	for _, tag := range concepts[metric] {
		units, ok := facts.Tags[tag]
		if !ok {
			continue
		}
		unit, ok := pickUnit(units)
		if !ok {
			continue
		}
		if list := units[unit]; len(list) > 0 {
			return list, tag, true
		}
	}
	return nil, "", false
}

// pickUnit chooses which unit key to read facts from: an exact "USD" key
// wins, then the smallest key containing "USD" (covers variants such as
// "USD/shares" being last after plain currency keys), then the smallest
// key present. Lexicographic order stands in for the source system's
// object-iteration order so results stay deterministic.
func pickUnit(units models.UnitFacts) (string, bool) {
	if len(units) == 0 {
		return "", false
	}
	if facts, ok := units["USD"]; ok && len(facts) > 0 {
		return "USD", true
	}
	keys := make([]string, 0, len(units))
	for k := range units {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if strings.Contains(k, "USD") && len(units[k]) > 0 {
			return k, true
		}
	}
	for _, k := range keys {
		if len(units[k]) > 0 {
			return k, true
		}
	}
	return "", false
}
