package models

import "time"

// MacroObservation is one dated value from an economic time series.
type MacroObservation struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// MacroSeries is an economic time series from a FRED-style feed.
type MacroSeries struct {
	SeriesID     string             `json:"series_id"` // e.g. "GDP", "CPIAUCSL", "UNRATE"
	Title        string             `json:"title,omitempty"`
	Units        string             `json:"units,omitempty"`
	Observations []MacroObservation `json:"observations"`
}
