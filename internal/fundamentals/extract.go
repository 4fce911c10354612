package fundamentals

import "github.com/markmullin/investors-daily-brief-v2-sub011/pkg/models"

// Confidence levels by extraction method. Directly reported values match
// the source system's 0.95; ratio-corrected quarters carry slightly less,
// and the annual/4 proxy much less.
const (
	confReported   = 0.95
	confCorrected  = 0.90
	confEstimated  = 0.60
	confAnnualized = 0.90 // ROE/ROA after x4 annualization
)

// extractMetric picks the single observation for one metric from its
// classified period buckets. The boolean is false when no usable fact
// exists; the absence must propagate (a derived metric downstream sees
// "input unavailable", not zero).
func extractMetric(b periodBuckets, metric models.Metric, tag string) (models.Observation, bool) {
	if metric.IsFlow() {
		return extractFlow(b, tag)
	}
	return extractStock(b, tag)
}

// extractFlow prefers the most recent true-quarterly value. With no
// quarterly data at all it falls back to the most recent annual value
// divided by four -- a crude proxy, marked estimated and kept at low
// confidence so the quality report reflects it.
func extractFlow(b periodBuckets, tag string) (models.Observation, bool) {
	if len(b.quarterly) > 0 {
		q := b.quarterly[0]
		obs := models.Observation{
			Value:       q.Value,
			PeriodEnd:   q.PeriodEnd,
			IsQuarterly: true,
			Source:      models.SourceReported,
			Confidence:  confReported,
			Label:       tag,
		}
		if q.derived {
			obs.Source = models.SourceCalculated
			obs.Confidence = confCorrected
		}
		return obs, true
	}
	if len(b.annual) > 0 {
		a := b.annual[0]
		return models.Observation{
			Value:       a.Value / 4,
			PeriodEnd:   a.PeriodEnd,
			IsQuarterly: false,
			Source:      models.SourceEstimated,
			Confidence:  confEstimated,
			Label:       tag,
		}, true
	}
	return models.Observation{}, false
}

// extractStock takes the most recent point-in-time snapshot, quarterly
// before annual. Balance-sheet figures are never averaged or scaled.
func extractStock(b periodBuckets, tag string) (models.Observation, bool) {
	if len(b.quarterly) > 0 {
		q := b.quarterly[0]
		return models.Observation{
			Value:       q.Value,
			PeriodEnd:   q.PeriodEnd,
			IsQuarterly: true,
			Source:      models.SourceReported,
			Confidence:  confReported,
			Label:       tag,
		}, true
	}
	if len(b.annual) > 0 {
		a := b.annual[0]
		return models.Observation{
			Value:       a.Value,
			PeriodEnd:   a.PeriodEnd,
			IsQuarterly: false,
			Source:      models.SourceReported,
			Confidence:  confReported,
			Label:       tag,
		}, true
	}
	return models.Observation{}, false
}
