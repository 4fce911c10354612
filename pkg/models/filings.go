package models

import "time"

// Filing is one entry from a company's EDGAR filing history.
type Filing struct {
	Symbol      string    `json:"symbol,omitempty"`
	CIK         string    `json:"cik,omitempty"`
	Form        string    `json:"form"` // e.g. "10-K", "10-Q", "8-K"
	FiledAt     time.Time `json:"filed_at"`
	ReportDate  time.Time `json:"report_date,omitempty"`
	Accession   string    `json:"accession,omitempty"`
	Description string    `json:"description,omitempty"`
	Link        string    `json:"link,omitempty"`
}

// CompanyProfile carries the descriptive fields the dashboard shows next to
// fundamentals. Industry feeds the validator's industry plausibility checks.
type CompanyProfile struct {
	Symbol      string `json:"symbol"`
	Name        string `json:"name"`
	Exchange    string `json:"exchange,omitempty"`
	Sector      string `json:"sector,omitempty"`
	Industry    string `json:"industry,omitempty"`
	Description string `json:"description,omitempty"`
	Website     string `json:"website,omitempty"`
}
