package fmp

import (
	"time"

	"github.com/markmullin/investors-daily-brief-v2-sub011/pkg/models"
	"github.com/markmullin/investors-daily-brief-v2-sub011/pkg/utils"
)

// BuildCompanyFacts converts FMP statement rows into the same facts shape
// the EDGAR provider produces, so the fundamentals pipeline runs unchanged
// on either source. Each value is emitted under the primary us-gaap tag for
// its metric.
//
// FMP quarterly rows are already true quarters, never year-to-date, so the
// pipeline's ratio correction naturally stays inert on this input.
func BuildCompanyFacts(symbol string, income, balance, cashflow []StatementRow) *models.CompanyFacts {
	facts := &models.CompanyFacts{
		Ticker: utils.NormalizeTicker(symbol),
		Source: "FMP",
		Tags:   make(map[string]models.UnitFacts),
	}

	for _, row := range income {
		end, form, ok := rowPeriod(row)
		if !ok {
			continue
		}
		addFact(facts, "Revenues", row.Revenue, end, form)
		addFact(facts, "CostOfRevenue", row.CostOfRevenue, end, form)
		addFact(facts, "GrossProfit", row.GrossProfit, end, form)
		addFact(facts, "OperatingIncomeLoss", row.OperatingIncome, end, form)
		addFact(facts, "NetIncomeLoss", row.NetIncome, end, form)
	}
	for _, row := range balance {
		end, form, ok := rowPeriod(row)
		if !ok {
			continue
		}
		addFact(facts, "Assets", row.TotalAssets, end, form)
		addFact(facts, "Liabilities", row.TotalLiabilities, end, form)
		addFact(facts, "StockholdersEquity", row.TotalEquity, end, form)
		addFact(facts, "CashAndCashEquivalentsAtCarryingValue", row.CashAndEquivalents, end, form)
	}
	for _, row := range cashflow {
		end, form, ok := rowPeriod(row)
		if !ok {
			continue
		}
		addFact(facts, "NetCashProvidedByUsedInOperatingActivities", row.OperatingCashFlow, end, form)
		addFact(facts, "PaymentsToAcquirePropertyPlantAndEquipment", row.CapitalExpenditure, end, form)
	}
	return facts
}

func rowPeriod(row StatementRow) (time.Time, models.FilingForm, bool) {
	end, err := time.Parse("2006-01-02", row.Date)
	if err != nil {
		return time.Time{}, "", false
	}
	if row.Period == "FY" {
		return end, models.FilingAnnual, true
	}
	return end, models.FilingQuarterly, true
}

// addFact appends one USD fact, skipping zero values: FMP reports zero for
// fields a company does not file, and a zero fact would masquerade as data.
func addFact(facts *models.CompanyFacts, tag string, value float64, end time.Time, form models.FilingForm) {
	if value == 0 {
		return
	}
	if facts.Tags[tag] == nil {
		facts.Tags[tag] = make(models.UnitFacts)
	}
	facts.Tags[tag]["USD"] = append(facts.Tags[tag]["USD"], models.RawFact{
		ConceptTag: tag,
		Value:      value,
		PeriodEnd:  end,
		Form:       form,
		Unit:       "USD",
	})
}
