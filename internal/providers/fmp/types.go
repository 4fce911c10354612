package fmp

// Statement rows as FMP returns them, newest first. One struct covers all
// three statement endpoints; the decoder leaves fields absent from a given
// statement at zero and the adapter only reads the relevant ones.
type StatementRow struct {
	Date   string `json:"date"`
	Symbol string `json:"symbol"`
	Period string `json:"period"` // "FY", "Q1".."Q4"

	// Income statement.
	Revenue         float64 `json:"revenue"`
	CostOfRevenue   float64 `json:"costOfRevenue"`
	GrossProfit     float64 `json:"grossProfit"`
	OperatingIncome float64 `json:"operatingIncome"`
	NetIncome       float64 `json:"netIncome"`

	// Balance sheet.
	TotalAssets        float64 `json:"totalAssets"`
	TotalLiabilities   float64 `json:"totalLiabilities"`
	TotalEquity        float64 `json:"totalStockholdersEquity"`
	CashAndEquivalents float64 `json:"cashAndCashEquivalents"`

	// Cash flow.
	OperatingCashFlow  float64 `json:"operatingCashFlow"`
	CapitalExpenditure float64 `json:"capitalExpenditure"`
}

type ProfileRow struct {
	Symbol      string `json:"symbol"`
	CompanyName string `json:"companyName"`
	Exchange    string `json:"exchangeShortName"`
	Sector      string `json:"sector"`
	Industry    string `json:"industry"`
	Description string `json:"description"`
	Website     string `json:"website"`
}
