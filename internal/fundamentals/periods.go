package fundamentals

import (
	"sort"

	"github.com/markmullin/investors-daily-brief-v2-sub011/pkg/models"
)

// quarterFact is a quarterly fact after year-to-date correction. derived is
// true when the value was computed by subtracting an earlier quarter from a
// cumulative filing rather than taken verbatim.
type quarterFact struct {
	models.RawFact
	derived bool
}

// periodBuckets separates a concept's facts into annual and true-quarterly
// series, both sorted most recent first.
type periodBuckets struct {
	annual    []models.RawFact
	quarterly []quarterFact
}

// classifyPeriods splits facts by filing form and, for flow metrics,
// corrects quarterly filings that report cumulative year-to-date values
// instead of single-quarter values. Stock metrics are point-in-time and
// need no correction.
func classifyPeriods(facts []models.RawFact, flow bool) periodBuckets {
	var b periodBuckets
	var quarterly []models.RawFact
	for _, f := range facts {
		switch f.Form {
		case models.FilingAnnual:
			b.annual = append(b.annual, f)
		case models.FilingQuarterly:
			quarterly = append(quarterly, f)
		}
	}
	sort.Slice(b.annual, func(i, j int) bool {
		return b.annual[i].PeriodEnd.After(b.annual[j].PeriodEnd)
	})

	if flow {
		b.quarterly = deriveTrueQuarters(quarterly)
	} else {
		b.quarterly = make([]quarterFact, 0, len(quarterly))
		for _, f := range quarterly {
			b.quarterly = append(b.quarterly, quarterFact{RawFact: f})
		}
	}
	sort.Slice(b.quarterly, func(i, j int) bool {
		return b.quarterly[i].PeriodEnd.After(b.quarterly[j].PeriodEnd)
	})
	return b
}

// Ratio bands used to judge whether a quarterly filing is cumulative.
// A Q2 filing near 2x Q1, or a Q3 filing near 3x Q1, is almost certainly
// year-to-date. The bands misclassify sharply growing or shrinking
// companies; that approximation is inherited from the source system and
// deliberately left unchanged.
const (
	q2RatioLow  = 1.5
	q2RatioHigh = 2.5
	q3RatioLow  = 2.5
	q3RatioHigh = 3.5
)

// deriveTrueQuarters detects year-to-date quarterly values and converts
// them to single-quarter values.
//
// Facts are grouped by the calendar year of their period end, which
// misgroups companies with non-calendar fiscal years; the source system has
// the same limitation and no correct intent can be inferred, so it is kept
// as a known gap. Q4 is likewise never reconstructed from annual minus
// nine-month figures.
func deriveTrueQuarters(facts []models.RawFact) []quarterFact {
	byYear := make(map[int][]models.RawFact)
	var years []int
	for _, f := range facts {
		y := f.PeriodEnd.Year()
		if _, seen := byYear[y]; !seen {
			years = append(years, y)
		}
		byYear[y] = append(byYear[y], f)
	}
	sort.Ints(years)

	var out []quarterFact
	for _, y := range years {
		out = append(out, correctYear(byYear[y])...)
	}
	return out
}

// correctYear applies the ratio heuristic within one fiscal year.
func correctYear(facts []models.RawFact) []quarterFact {
	// Slot facts into the four 3-month windows by period-end month.
	var slots [5]*models.RawFact // 1-indexed by quarter
	var extra []quarterFact
	for i := range facts {
		f := facts[i]
		q := (int(f.PeriodEnd.Month())-1)/3 + 1
		if slots[q] == nil {
			slots[q] = &facts[i]
		} else {
			// Duplicate filings for the same window pass through untouched.
			extra = append(extra, quarterFact{RawFact: f})
		}
	}

	var out []quarterFact

	// Q1 is always a true quarterly value.
	q1 := slots[1]
	if q1 != nil {
		out = append(out, quarterFact{RawFact: *q1})
	}

	// Q2: near 2x Q1 means cumulative; subtract Q1.
	var correctedQ2 *quarterFact
	if q2 := slots[2]; q2 != nil {
		qf := quarterFact{RawFact: *q2}
		if q1 != nil && q1.Value != 0 {
			ratio := q2.Value / q1.Value
			if ratio > q2RatioLow && ratio < q2RatioHigh {
				qf.Value = q2.Value - q1.Value
				qf.derived = true
			}
		}
		out = append(out, qf)
		correctedQ2 = &qf
	}

	// Q3: near 3x Q1 means cumulative; subtract the six-month baseline.
	// The baseline is Q1 + corrected Q2 when Q2 is available, else 2x Q1
	// as an estimate.
	if q3 := slots[3]; q3 != nil {
		qf := quarterFact{RawFact: *q3}
		if q1 != nil && q1.Value != 0 {
			ratio := q3.Value / q1.Value
			if ratio > q3RatioLow && ratio < q3RatioHigh {
				baseline := 2 * q1.Value
				if correctedQ2 != nil {
					baseline = q1.Value + correctedQ2.Value
				}
				qf.Value = q3.Value - baseline
				qf.derived = true
			}
		}
		out = append(out, qf)
	}

	// Q4 passes through as filed.
	if q4 := slots[4]; q4 != nil {
		out = append(out, quarterFact{RawFact: *q4})
	}

	return append(out, extra...)
}
