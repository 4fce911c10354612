package fundamentals

import (
	"math"

	"github.com/markmullin/investors-daily-brief-v2-sub011/pkg/models"
)

const calculatedLabel = "Calculated"

// deriveMetrics enriches a record with margins, returns, leverage, and free
// cash flow. Rules:
//
//   - a derived key never overwrites a reported one (prefer reported over
//     calculated);
//   - every formula runs only when all of its inputs are present, so a
//     missing input yields a missing output rather than a zero-based value;
//   - a present-but-zero denominator also short-circuits to "not computed"
//     instead of producing Inf or NaN.
//
// The input record is not modified; the result is a new map containing the
// original entries plus the derived ones.
func deriveMetrics(base models.FinancialsRecord) models.FinancialsRecord {
	rec := make(models.FinancialsRecord, len(base)+7)
	for k, v := range base {
		rec[k] = v
	}

	revenue, hasRevenue := rec[models.MetricRevenue]
	cogs, hasCogs := rec[models.MetricCostOfRevenue]

	// Gross profit, only when not already reported.
	if _, reported := rec[models.MetricGrossProfit]; !reported && hasRevenue && hasCogs {
		rec[models.MetricGrossProfit] = calculated(revenue.Value-cogs.Value, revenue, confReported)
	}

	// Margins, in percent. Period and quarterly-ness inherit from revenue.
	if gp, ok := rec[models.MetricGrossProfit]; ok && hasRevenue && revenue.Value != 0 {
		rec[models.MetricGrossMargin] = calculated(gp.Value/revenue.Value*100, revenue, confReported)
	}
	if oi, ok := rec[models.MetricOperatingIncome]; ok && hasRevenue && revenue.Value != 0 {
		rec[models.MetricOperatingMargin] = calculated(oi.Value/revenue.Value*100, revenue, confReported)
	}
	if ni, ok := rec[models.MetricNetIncome]; ok && hasRevenue && revenue.Value != 0 {
		rec[models.MetricNetMargin] = calculated(ni.Value/revenue.Value*100, revenue, confReported)
	}

	// Free cash flow. Capex is commonly filed negative; the absolute value
	// guards against either sign convention.
	ocf, hasOCF := rec[models.MetricOperatingCashFlow]
	capex, hasCapex := rec[models.MetricCapitalExpenditures]
	if _, reported := rec[models.MetricFreeCashFlow]; !reported && hasOCF && hasCapex {
		rec[models.MetricFreeCashFlow] = calculated(ocf.Value-math.Abs(capex.Value), ocf, confReported)
	}

	// Returns. Quarterly net income is annualized by x4, which introduces
	// enough error to warrant the reduced confidence.
	equity, hasEquity := rec[models.MetricShareholdersEquity]
	ni, hasNI := rec[models.MetricNetIncome]
	if hasNI && hasEquity && equity.Value != 0 {
		rec[models.MetricROE] = calculated(annualize(ni)/equity.Value*100, ni, confAnnualized)
	}
	if assets, ok := rec[models.MetricTotalAssets]; ok && hasNI && assets.Value != 0 {
		rec[models.MetricROA] = calculated(annualize(ni)/assets.Value*100, ni, confAnnualized)
	}

	// Leverage, as a plain ratio.
	if liab, ok := rec[models.MetricTotalLiabilities]; ok && hasEquity && equity.Value != 0 {
		rec[models.MetricDebtToEquity] = calculated(liab.Value/equity.Value, liab, confReported)
	}

	return rec
}

// calculated builds a derived observation, inheriting period and cadence
// from the formula's primary input.
func calculated(value float64, primary models.Observation, confidence float64) models.Observation {
	return models.Observation{
		Value:       value,
		PeriodEnd:   primary.PeriodEnd,
		IsQuarterly: primary.IsQuarterly,
		Source:      models.SourceCalculated,
		Confidence:  confidence,
		Label:       calculatedLabel,
	}
}

// annualize scales a quarterly flow to a yearly figure; annual (and
// annual/4-estimated) observations pass through unchanged.
func annualize(obs models.Observation) float64 {
	if obs.IsQuarterly {
		return obs.Value * 4
	}
	return obs.Value
}
