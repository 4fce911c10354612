// Package models defines the shared data structures exchanged between the
// provider layer, the fundamentals pipeline, and the API surface.
package models

import "time"

// Metric identifies a logical financial metric. The set is closed: every
// metric the pipeline can emit has a constant here, so flow-vs-stock
// classification and required-field lists are exhaustive switches rather
// than free-form string lookups.
type Metric string

// Base metrics extracted directly from provider facts.
const (
	MetricRevenue             Metric = "revenue"
	MetricCostOfRevenue       Metric = "costOfRevenue"
	MetricGrossProfit         Metric = "grossProfit"
	MetricOperatingIncome     Metric = "operatingIncome"
	MetricNetIncome           Metric = "netIncome"
	MetricOperatingCashFlow   Metric = "operatingCashFlow"
	MetricCapitalExpenditures Metric = "capitalExpenditures"
	MetricTotalAssets         Metric = "totalAssets"
	MetricTotalLiabilities    Metric = "totalLiabilities"
	MetricShareholdersEquity  Metric = "shareholdersEquity"
	MetricCash                Metric = "cash"
)

// Derived metrics computed from the base set.
const (
	MetricGrossMargin     Metric = "grossMargin"
	MetricOperatingMargin Metric = "operatingMargin"
	MetricNetMargin       Metric = "netMargin"
	MetricFreeCashFlow    Metric = "freeCashFlow"
	MetricROE             Metric = "roe"
	MetricROA             Metric = "roa"
	MetricDebtToEquity    Metric = "debtToEquity"
)

// BaseMetrics returns the extraction order for directly-reported metrics.
func BaseMetrics() []Metric {
	return []Metric{
		MetricRevenue,
		MetricCostOfRevenue,
		MetricGrossProfit,
		MetricOperatingIncome,
		MetricNetIncome,
		MetricOperatingCashFlow,
		MetricCapitalExpenditures,
		MetricTotalAssets,
		MetricTotalLiabilities,
		MetricShareholdersEquity,
		MetricCash,
	}
}

// IsFlow reports whether the metric measures activity over a period.
// Stock metrics (balance-sheet items) are point-in-time snapshots and are
// never summed or annualized.
func (m Metric) IsFlow() bool {
	switch m {
	case MetricRevenue, MetricCostOfRevenue, MetricGrossProfit,
		MetricOperatingIncome, MetricNetIncome,
		MetricOperatingCashFlow, MetricCapitalExpenditures:
		return true
	}
	return false
}

// FilingForm distinguishes annual from quarterly report facts.
type FilingForm string

const (
	FilingAnnual    FilingForm = "annual"    // 10-K family
	FilingQuarterly FilingForm = "quarterly" // 10-Q family
)

// RawFact is one reported value from a source filing. Facts are immutable:
// the pipeline reads them but never rewrites them, and any corrected value
// is emitted as a new observation instead.
type RawFact struct {
	ConceptTag string     `json:"concept_tag"`
	Value      float64    `json:"value"`
	PeriodEnd  time.Time  `json:"period_end"`
	Form       FilingForm `json:"form"`
	Unit       string     `json:"unit"`
}

// ObservationSource records how an observation's value came to be.
type ObservationSource string

const (
	// SourceReported marks a value taken directly from a filing.
	SourceReported ObservationSource = "reported"
	// SourceCalculated marks a value derived arithmetically from reported
	// inputs (ratio corrections, margins, returns).
	SourceCalculated ObservationSource = "calculated"
	// SourceEstimated marks a value produced by a crude proxy such as the
	// annual/4 quarterly estimate.
	SourceEstimated ObservationSource = "estimated"
)

// Observation is the normalized single value chosen for one metric.
// Observations are never mutated after creation.
type Observation struct {
	Value       float64           `json:"value"`
	PeriodEnd   time.Time         `json:"period_end"`
	IsQuarterly bool              `json:"is_quarterly"`
	Source      ObservationSource `json:"source"`
	Confidence  float64           `json:"confidence"` // 0..1, set by extraction method
	Label       string            `json:"label"`      // display label: concept tag used, or "Calculated"
}

// FinancialsRecord maps each metric to its chosen observation. Absent
// metrics are simply missing keys; a metric is never represented by a
// zero-valued placeholder.
type FinancialsRecord map[Metric]Observation

// UnitFacts holds the reported facts for one concept tag, keyed by unit
// (typically "USD", sometimes exchange-specific variants).
type UnitFacts map[string][]RawFact

// CompanyFacts is the provider payload handed to the fundamentals pipeline:
// every reported fact for a company, keyed by concept tag. Providers build
// it (EDGAR from the XBRL companyfacts document, FMP from flat statement
// arrays); the pipeline only reads it.
type CompanyFacts struct {
	Ticker     string               `json:"ticker"`
	EntityName string               `json:"entity_name,omitempty"`
	Source     string               `json:"source"` // e.g. "SEC XBRL", "FMP"
	Tags       map[string]UnitFacts `json:"tags"`
}

// ValidationReport scores one FinancialsRecord. Computed fresh per request;
// never persisted by the pipeline.
type ValidationReport struct {
	Completeness     float64 `json:"completeness"`      // 0..1, present / required
	AccuracyScore    float64 `json:"accuracy_score"`    // 0..1, mean of contributing confidences
	ConsistencyScore float64 `json:"consistency_score"` // 0..1, passed identity checks / run
	CompositeScore   float64 `json:"composite_score"`   // 0..1, 0.4/0.4/0.2 blend of the above
	OverallScore     float64 `json:"overall_score"`     // 0..100, penalty-based
	Status           string  `json:"status"`            // excellent / good / fair / poor / critical

	Issues   []string `json:"issues"`   // critical findings, in detection order
	Warnings []string `json:"warnings"` // soft findings, in detection order
}

// FundamentalsResult is the unit of output for one ticker: the normalized
// record plus its quality report. Transport and caching belong to the
// caller.
type FundamentalsResult struct {
	Ticker      string           `json:"ticker"`
	Source      string           `json:"source"`
	Financials  FinancialsRecord `json:"financials"`
	DataQuality ValidationReport `json:"data_quality"`
}
