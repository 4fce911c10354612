package fundamentals

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/markmullin/investors-daily-brief-v2-sub011/pkg/models"
)

// MalformedPayloadError reports a provider payload the pipeline cannot work
// with. It is a data-shape error, never a data-quality one: quality problems
// go into the validation report, not here.
type MalformedPayloadError struct {
	Reason string
}

func (e *MalformedPayloadError) Error() string {
	return fmt.Sprintf("malformed facts payload: %s", e.Reason)
}

// Normalizer runs the full fundamentals pipeline: concept resolution, period
// classification, extraction, derivation, and validation. Safe for
// concurrent use; it holds only immutable configuration.
type Normalizer struct {
	cfg Config
}

func NewNormalizer(cfg Config) *Normalizer {
	return &Normalizer{cfg: cfg}
}

// ComputeOptions carries per-call context for the validator.
type ComputeOptions struct {
	// Historical is the previous period's record; enables the
	// period-over-period anomaly checks when set.
	Historical models.FinancialsRecord
	// Industry enables industry-profile checks, e.g. "technology".
	Industry string
}

// Compute normalizes a company's raw facts into a scored record. A payload
// with no usable facts is not an error: the result carries an empty record
// and the quality report says why it scores badly.
func (n *Normalizer) Compute(ticker string, facts *models.CompanyFacts, opts ComputeOptions) (*models.FundamentalsResult, error) {
	if facts == nil || facts.Tags == nil {
		return nil, &MalformedPayloadError{Reason: "no facts"}
	}

	base := make(models.FinancialsRecord)
	for _, metric := range models.BaseMetrics() {
		raw, tag, ok := resolveConcept(n.cfg.Concepts, facts, metric)
		if !ok {
			continue
		}
		buckets := classifyPeriods(raw, metric.IsFlow())
		if obs, ok := extractMetric(buckets, metric, tag); ok {
			base[metric] = obs
		}
	}

	rec := deriveMetrics(base)
	report := validate(n.cfg.Quality, rec, ValidateOptions{
		Historical: opts.Historical,
		Industry:   opts.Industry,
	})

	return &models.FundamentalsResult{
		Ticker:      ticker,
		Source:      facts.Source,
		Financials:  rec,
		DataQuality: report,
	}, nil
}

// edgarFact mirrors one entry of a companyfacts unit array.
type edgarFact struct {
	Val  *float64 `json:"val"`
	End  string   `json:"end"`
	Form string   `json:"form"`
}

type edgarConcept struct {
	Units map[string][]edgarFact `json:"units"`
}

// ParseCompanyFacts decodes an SEC companyfacts JSON document into the
// pipeline's input shape. Both the full document ({"facts": {"us-gaap":
// ...}}) and a bare taxonomy object ({"us-gaap": ...}) are accepted, since
// cached copies of the endpoint circulate in both forms.
//
// Facts from forms other than the 10-K and 10-Q families are dropped, as are
// entries with a missing value or unparseable period end.
func ParseCompanyFacts(ticker string, payload []byte) (*models.CompanyFacts, error) {
	var doc struct {
		EntityName string                             `json:"entityName"`
		Facts      map[string]map[string]edgarConcept `json:"facts"`
		GAAP       map[string]edgarConcept            `json:"us-gaap"`
	}
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, &MalformedPayloadError{Reason: err.Error()}
	}

	gaap := doc.GAAP
	if gaap == nil && doc.Facts != nil {
		gaap = doc.Facts["us-gaap"]
	}
	if gaap == nil {
		return nil, &MalformedPayloadError{Reason: "no us-gaap facts"}
	}

	out := &models.CompanyFacts{
		Ticker:     ticker,
		EntityName: doc.EntityName,
		Source:     "SEC XBRL",
		Tags:       make(map[string]models.UnitFacts, len(gaap)),
	}
	for tag, concept := range gaap {
		units := make(models.UnitFacts, len(concept.Units))
		for unit, entries := range concept.Units {
			var facts []models.RawFact
			for _, e := range entries {
				form, ok := classifyForm(e.Form)
				if !ok || e.Val == nil {
					continue
				}
				end, err := time.Parse("2006-01-02", e.End)
				if err != nil {
					continue
				}
				facts = append(facts, models.RawFact{
					ConceptTag: tag,
					Value:      *e.Val,
					PeriodEnd:  end,
					Form:       form,
					Unit:       unit,
				})
			}
			if len(facts) > 0 {
				units[unit] = facts
			}
		}
		if len(units) > 0 {
			out.Tags[tag] = units
		}
	}
	return out, nil
}

// classifyForm maps an SEC form string to a filing cadence. Prefix matching
// keeps amended filings (10-K/A, 10-Q/A) in their family.
func classifyForm(form string) (models.FilingForm, bool) {
	switch {
	case strings.HasPrefix(form, "10-K"):
		return models.FilingAnnual, true
	case strings.HasPrefix(form, "10-Q"):
		return models.FilingQuarterly, true
	}
	return "", false
}
