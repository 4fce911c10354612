package fundamentals

import (
	"math"
	"testing"

	"github.com/markmullin/investors-daily-brief-v2-sub011/pkg/models"
)

func reported(value float64, quarterly bool) models.Observation {
	return models.Observation{
		Value:       value,
		PeriodEnd:   mustDate("2024-06-30"),
		IsQuarterly: quarterly,
		Source:      models.SourceReported,
		Confidence:  0.95,
		Label:       "test",
	}
}

func TestMarginsInPercent(t *testing.T) {
	base := models.FinancialsRecord{
		models.MetricRevenue:       reported(1000, true),
		models.MetricCostOfRevenue: reported(400, true),
		models.MetricNetIncome:     reported(150, true),
	}
	rec := deriveMetrics(base)

	gp, ok := rec[models.MetricGrossProfit]
	if !ok || gp.Value != 600 {
		t.Fatalf("expected gross profit 600, got %+v", gp)
	}
	if gp.Source != models.SourceCalculated {
		t.Errorf("derived gross profit should be calculated, got %s", gp.Source)
	}

	gm := rec[models.MetricGrossMargin]
	if gm.Value != 60.0 {
		t.Errorf("expected gross margin 60.0, got %v", gm.Value)
	}
	nm := rec[models.MetricNetMargin]
	if nm.Value != 15.0 {
		t.Errorf("expected net margin 15.0, got %v", nm.Value)
	}
}

func TestReportedGrossProfitWins(t *testing.T) {
	base := models.FinancialsRecord{
		models.MetricRevenue:       reported(1000, true),
		models.MetricCostOfRevenue: reported(400, true),
		models.MetricGrossProfit:   reported(590, true),
	}
	rec := deriveMetrics(base)

	gp := rec[models.MetricGrossProfit]
	if gp.Value != 590 || gp.Source != models.SourceReported {
		t.Errorf("reported gross profit must not be overwritten: %+v", gp)
	}
	// The margin still uses the reported figure.
	if gm := rec[models.MetricGrossMargin]; gm.Value != 59.0 {
		t.Errorf("expected gross margin 59.0 from reported value, got %v", gm.Value)
	}
}

func TestROEAnnualizesQuarterlyIncome(t *testing.T) {
	base := models.FinancialsRecord{
		models.MetricNetIncome:          reported(50, true),
		models.MetricShareholdersEquity: reported(1000, true),
	}
	rec := deriveMetrics(base)

	roe, ok := rec[models.MetricROE]
	if !ok {
		t.Fatal("expected ROE")
	}
	if roe.Value != 20.0 {
		t.Errorf("expected ROE 50*4/1000*100 = 20.0, got %v", roe.Value)
	}
	if roe.Confidence != 0.90 {
		t.Errorf("annualized ROE should carry 0.90 confidence, got %v", roe.Confidence)
	}
}

func TestROESkipsAnnualizationForAnnualIncome(t *testing.T) {
	base := models.FinancialsRecord{
		models.MetricNetIncome:          reported(200, false),
		models.MetricShareholdersEquity: reported(1000, false),
	}
	rec := deriveMetrics(base)

	if roe := rec[models.MetricROE]; roe.Value != 20.0 {
		t.Errorf("annual income must not be multiplied by 4, got %v", roe.Value)
	}
}

func TestFreeCashFlowHandlesNegativeCapex(t *testing.T) {
	for _, capex := range []float64{200, -200} {
		base := models.FinancialsRecord{
			models.MetricOperatingCashFlow:   reported(500, true),
			models.MetricCapitalExpenditures: reported(capex, true),
		}
		rec := deriveMetrics(base)
		if fcf := rec[models.MetricFreeCashFlow]; fcf.Value != 300 {
			t.Errorf("capex %v: expected FCF 300, got %v", capex, fcf.Value)
		}
	}
}

func TestZeroDenominatorsShortCircuit(t *testing.T) {
	base := models.FinancialsRecord{
		models.MetricRevenue:            reported(0, true),
		models.MetricNetIncome:          reported(50, true),
		models.MetricShareholdersEquity: reported(0, true),
		models.MetricTotalLiabilities:   reported(600, true),
	}
	rec := deriveMetrics(base)

	for _, m := range []models.Metric{
		models.MetricNetMargin,
		models.MetricROE,
		models.MetricDebtToEquity,
	} {
		if obs, ok := rec[m]; ok {
			t.Errorf("%s must be absent with a zero denominator, got %v", m, obs.Value)
		}
	}
	for _, obs := range rec {
		if math.IsInf(obs.Value, 0) || math.IsNaN(obs.Value) {
			t.Errorf("record contains non-finite value: %+v", obs)
		}
	}
}

func TestMissingInputsPropagateAsAbsence(t *testing.T) {
	base := models.FinancialsRecord{
		models.MetricRevenue: reported(1000, true),
	}
	rec := deriveMetrics(base)

	for _, m := range []models.Metric{
		models.MetricGrossProfit,
		models.MetricGrossMargin,
		models.MetricFreeCashFlow,
		models.MetricROE,
		models.MetricROA,
		models.MetricDebtToEquity,
	} {
		if _, ok := rec[m]; ok {
			t.Errorf("%s must be absent when inputs are missing", m)
		}
	}
}

func TestDeriveDoesNotMutateInput(t *testing.T) {
	base := models.FinancialsRecord{
		models.MetricRevenue:       reported(1000, true),
		models.MetricCostOfRevenue: reported(400, true),
	}
	deriveMetrics(base)

	if len(base) != 2 {
		t.Errorf("input record was mutated, now has %d entries", len(base))
	}
}
