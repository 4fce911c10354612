package fundamentals

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/markmullin/investors-daily-brief-v2-sub011/pkg/models"
)

// QualityConfig holds the validator's thresholds. The penalty weights and
// tolerance values are part of the service's contract with its callers, not
// tunables: downstream consumers alert on exact score boundaries.
type QualityConfig struct {
	Required []models.Metric // completeness set

	BalanceTolerance  float64 // relative, assets vs liabilities+equity
	IdentityTolerance float64 // relative, gross profit and FCF identities

	PenaltyCritical float64
	PenaltyWarning  float64
	PenaltyRange    float64
	PenaltyMissing  float64
	PenaltyAnomaly  float64

	RevenueSwingPct   float64 // QoQ revenue anomaly threshold, percent
	NetIncomeSwingPct float64 // QoQ net income anomaly threshold, percent

	Ranges     map[models.Metric]Band
	Industries map[string]IndustryProfile
}

// Band is an inclusive plausibility range.
type Band struct {
	Lo, Hi float64
}

// IndustryProfile describes what healthy fundamentals look like for one
// industry: typical margin bands plus the metrics that must be present for
// the industry's statements to be meaningful.
type IndustryProfile struct {
	GrossMargin *Band
	NetMargin   *Band
	KeyMetrics  []models.Metric
}

func defaultQualityConfig() QualityConfig {
	return QualityConfig{
		Required: []models.Metric{
			models.MetricRevenue,
			models.MetricNetIncome,
			models.MetricOperatingCashFlow,
			models.MetricTotalAssets,
			models.MetricTotalLiabilities,
			models.MetricShareholdersEquity,
		},
		// 2% is the stricter of the two tolerances the source system used
		// for the balance identity; comparisons are inclusive, so a diff of
		// exactly 2% passes.
		BalanceTolerance:  0.02,
		IdentityTolerance: 0.01,

		PenaltyCritical: 10,
		PenaltyWarning:  5,
		PenaltyRange:    3,
		PenaltyMissing:  5,
		PenaltyAnomaly:  2,

		RevenueSwingPct:   50,
		NetIncomeSwingPct: 100,

		Ranges: map[models.Metric]Band{
			models.MetricGrossMargin:     {-100, 100},
			models.MetricOperatingMargin: {-100, 100},
			models.MetricNetMargin:       {-100, 100},
			models.MetricROE:             {-150, 150},
			models.MetricROA:             {-50, 50},
			models.MetricDebtToEquity:    {0, 50},
		},
		Industries: map[string]IndustryProfile{
			"technology": {
				GrossMargin: &Band{60, 90},
				KeyMetrics:  []models.Metric{models.MetricGrossMargin, models.MetricOperatingCashFlow},
			},
			"retail": {
				GrossMargin: &Band{20, 45},
				NetMargin:   &Band{0, 10},
				KeyMetrics:  []models.Metric{models.MetricGrossMargin},
			},
			"healthcare": {
				GrossMargin: &Band{45, 80},
				KeyMetrics:  []models.Metric{models.MetricGrossMargin},
			},
			"energy": {
				GrossMargin: &Band{15, 55},
				KeyMetrics:  []models.Metric{models.MetricOperatingCashFlow},
			},
			"financial services": {
				// Gross margin is not meaningful for banks; what matters is
				// the balance sheet being there at all.
				KeyMetrics: []models.Metric{models.MetricTotalAssets, models.MetricShareholdersEquity},
			},
		},
	}
}

// ValidateOptions carries the optional inputs that enable extra checks. A
// missing option skips its checks; it never fails them.
type ValidateOptions struct {
	Historical models.FinancialsRecord // prior period, enables anomaly checks
	Industry   string                  // e.g. "technology", enables industry checks
}

// validator accumulates findings for one record.
type validator struct {
	cfg QualityConfig

	penalty  float64
	issues   []string
	warnings []string

	checksRun    int
	checksPassed int
}

// validate scores a record. The report is a pure function of the record and
// options: same inputs, same report.
func validate(cfg QualityConfig, rec models.FinancialsRecord, opts ValidateOptions) models.ValidationReport {
	v := &validator{cfg: cfg}

	completeness := v.checkCompleteness(rec)
	v.checkRanges(rec)
	v.checkRelationships(rec)
	v.checkAnomalies(rec, opts.Historical)
	v.checkIndustry(rec, opts.Industry)

	accuracy := meanConfidence(rec)
	consistency := 1.0
	if v.checksRun > 0 {
		consistency = float64(v.checksPassed) / float64(v.checksRun)
	}

	overall := 100 - v.penalty
	if overall < 0 {
		overall = 0
	}

	return models.ValidationReport{
		Completeness:     completeness,
		AccuracyScore:    accuracy,
		ConsistencyScore: consistency,
		CompositeScore:   0.4*completeness + 0.4*accuracy + 0.2*consistency,
		OverallScore:     overall,
		Status:           statusLabel(overall),
		Issues:           v.issues,
		Warnings:         v.warnings,
	}
}

func statusLabel(score float64) string {
	switch {
	case score >= 90:
		return "excellent"
	case score >= 80:
		return "good"
	case score >= 70:
		return "fair"
	case score >= 60:
		return "poor"
	default:
		return "critical"
	}
}

func (v *validator) checkCompleteness(rec models.FinancialsRecord) float64 {
	if len(v.cfg.Required) == 0 {
		return 1
	}
	present := 0
	for _, m := range v.cfg.Required {
		if _, ok := rec[m]; ok {
			present++
		} else {
			v.penalty += v.cfg.PenaltyMissing
			v.issues = append(v.issues, fmt.Sprintf("missing required metric: %s", m))
		}
	}
	return float64(present) / float64(len(v.cfg.Required))
}

func (v *validator) checkRanges(rec models.FinancialsRecord) {
	// Deterministic order: report range findings sorted by metric name.
	metrics := make([]models.Metric, 0, len(v.cfg.Ranges))
	for m := range v.cfg.Ranges {
		metrics = append(metrics, m)
	}
	sort.Slice(metrics, func(i, j int) bool { return metrics[i] < metrics[j] })

	for _, m := range metrics {
		obs, ok := rec[m]
		if !ok {
			continue
		}
		band := v.cfg.Ranges[m]
		if obs.Value < band.Lo || obs.Value > band.Hi {
			v.penalty += v.cfg.PenaltyRange
			v.warnings = append(v.warnings, fmt.Sprintf(
				"%s %.2f outside expected range [%.0f, %.0f]", m, obs.Value, band.Lo, band.Hi))
		}
	}
}

// checkRelationships runs the accounting-identity checks. A check with a
// missing input is skipped entirely: it does not count toward the
// consistency denominator and leaves no finding.
func (v *validator) checkRelationships(rec models.FinancialsRecord) {
	revenue, hasRevenue := rec[models.MetricRevenue]
	cogs, hasCogs := rec[models.MetricCostOfRevenue]

	// Revenue must exceed cost of revenue.
	if hasRevenue && hasCogs {
		v.recordCheck(revenue.Value > cogs.Value, true,
			fmt.Sprintf("cost of revenue %.0f is not below revenue %.0f", cogs.Value, revenue.Value))
	}

	// Gross profit identity.
	if gp, ok := rec[models.MetricGrossProfit]; ok && hasRevenue && hasCogs {
		expected := revenue.Value - cogs.Value
		if expected != 0 {
			ok := relDiff(gp.Value, expected) <= v.cfg.IdentityTolerance
			v.recordCheck(ok, false,
				fmt.Sprintf("gross profit %.0f deviates from revenue minus cost of revenue %.0f", gp.Value, expected))
		}
	}

	// Balance sheet identity: assets = liabilities + equity.
	assets, hasAssets := rec[models.MetricTotalAssets]
	liab, hasLiab := rec[models.MetricTotalLiabilities]
	equity, hasEquity := rec[models.MetricShareholdersEquity]
	if hasAssets && hasLiab && hasEquity && assets.Value != 0 {
		diff := math.Abs(assets.Value-(liab.Value+equity.Value)) / math.Abs(assets.Value)
		v.recordCheck(diff <= v.cfg.BalanceTolerance, true,
			fmt.Sprintf("balance identity off by %.1f%%: assets %.0f vs liabilities+equity %.0f",
				diff*100, assets.Value, liab.Value+equity.Value))
	}

	// Free cash flow identity.
	fcf, hasFCF := rec[models.MetricFreeCashFlow]
	ocf, hasOCF := rec[models.MetricOperatingCashFlow]
	capex, hasCapex := rec[models.MetricCapitalExpenditures]
	if hasFCF && hasOCF && hasCapex {
		expected := ocf.Value - math.Abs(capex.Value)
		if expected != 0 {
			ok := relDiff(fcf.Value, expected) <= v.cfg.IdentityTolerance
			v.recordCheck(ok, false,
				fmt.Sprintf("free cash flow %.0f deviates from operating cash flow minus capex %.0f", fcf.Value, expected))
		}
	}
}

// recordCheck tallies one identity check; critical failures become issues,
// soft failures become warnings.
func (v *validator) recordCheck(passed, critical bool, finding string) {
	v.checksRun++
	if passed {
		v.checksPassed++
		return
	}
	if critical {
		v.penalty += v.cfg.PenaltyCritical
		v.issues = append(v.issues, finding)
	} else {
		v.penalty += v.cfg.PenaltyWarning
		v.warnings = append(v.warnings, finding)
	}
}

// checkAnomalies flags implausible period-over-period swings. These are
// plausibility flags, not errors: a genuine blowout quarter trips them too.
func (v *validator) checkAnomalies(rec, prior models.FinancialsRecord) {
	if prior == nil {
		return
	}
	v.checkSwing(rec, prior, models.MetricRevenue, v.cfg.RevenueSwingPct)
	v.checkSwing(rec, prior, models.MetricNetIncome, v.cfg.NetIncomeSwingPct)
}

func (v *validator) checkSwing(rec, prior models.FinancialsRecord, m models.Metric, thresholdPct float64) {
	cur, ok := rec[m]
	if !ok {
		return
	}
	prev, ok := prior[m]
	if !ok || prev.Value == 0 {
		return
	}
	change := (cur.Value - prev.Value) / math.Abs(prev.Value) * 100
	if math.Abs(change) > thresholdPct {
		v.penalty += v.cfg.PenaltyAnomaly
		v.warnings = append(v.warnings, fmt.Sprintf(
			"%s moved %.1f%% vs prior period (threshold %.0f%%)", m, change, thresholdPct))
	}
}

// checkIndustry compares margins against industry-typical bands and checks
// that the metrics the industry is judged by are present at all.
func (v *validator) checkIndustry(rec models.FinancialsRecord, industry string) {
	if industry == "" {
		return
	}
	profile, ok := v.cfg.Industries[strings.ToLower(industry)]
	if !ok {
		return
	}
	v.checkIndustryBand(rec, models.MetricGrossMargin, profile.GrossMargin, industry)
	v.checkIndustryBand(rec, models.MetricNetMargin, profile.NetMargin, industry)
	for _, m := range profile.KeyMetrics {
		if _, ok := rec[m]; !ok {
			v.penalty += v.cfg.PenaltyWarning
			v.warnings = append(v.warnings, fmt.Sprintf(
				"%s is a key metric for %s but is unavailable", m, industry))
		}
	}
}

func (v *validator) checkIndustryBand(rec models.FinancialsRecord, m models.Metric, band *Band, industry string) {
	if band == nil {
		return
	}
	obs, ok := rec[m]
	if !ok {
		return
	}
	if obs.Value < band.Lo || obs.Value > band.Hi {
		v.penalty += v.cfg.PenaltyWarning
		v.warnings = append(v.warnings, fmt.Sprintf(
			"%s %.1f is atypical for %s (typical %.0f-%.0f)", m, obs.Value, industry, band.Lo, band.Hi))
	}
}

// meanConfidence averages the confidence of every observation present.
// Summed in sorted metric order: float addition is not associative, and map
// iteration order would otherwise leak into the score's last bits.
func meanConfidence(rec models.FinancialsRecord) float64 {
	if len(rec) == 0 {
		return 0
	}
	metrics := make([]models.Metric, 0, len(rec))
	for m := range rec {
		metrics = append(metrics, m)
	}
	sort.Slice(metrics, func(i, j int) bool { return metrics[i] < metrics[j] })

	var sum float64
	for _, m := range metrics {
		sum += rec[m].Confidence
	}
	return sum / float64(len(rec))
}

// relDiff is the relative difference of got against want, |got-want|/|want|.
func relDiff(got, want float64) float64 {
	return math.Abs(got-want) / math.Abs(want)
}
