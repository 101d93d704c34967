package models

// PricePoint is a single dated price in a summary history.
type PricePoint struct {
	Date  string  `json:"date"`
	Price float64 `json:"price"`
}

// ClosePoint is a single dated close in a detail chart.
type ClosePoint struct {
	Date  string  `json:"date"`
	Close float64 `json:"close"`
}

// StockSummary is the compact quote shown in lists and watchlists.
// Recommendation is nil when no quote could be found.
type StockSummary struct {
	Symbol         string       `json:"symbol"`
	Price          float64      `json:"price"`
	Recommendation *string      `json:"recommendation"`
	Change         float64      `json:"change"`
	History        []PricePoint `json:"history"`
}

// EmptySummary is returned for unknown symbols.
func EmptySummary(symbol string) StockSummary {
	return StockSummary{Symbol: symbol, History: []PricePoint{}}
}

// MiniChart is the weekly close series drawn next to a popular stock.
type MiniChart struct {
	Timestamps []string  `json:"timestamps"`
	Prices     []float64 `json:"prices"`
}

// PopularStock is one entry of the most-active list.
type PopularStock struct {
	Symbol        string    `json:"symbol"`
	CompanyName   string    `json:"company_name"`
	CurrentPrice  float64   `json:"current_price"`
	Change        float64   `json:"change"`
	PercentChange float64   `json:"percent_change"`
	MiniChartData MiniChart `json:"mini_chart_data"`
}

// SearchQuote is one search match joined with its live quote.
type SearchQuote struct {
	Symbol                     string    `json:"symbol"`
	LongName                   string    `json:"longName"`
	ShortName                  string    `json:"shortName"`
	Exchange                   string    `json:"exchange"`
	ExchDisp                   string    `json:"exchDisp"`
	Industry                   string    `json:"industry"`
	RegularMarketPrice         float64   `json:"regularMarketPrice"`
	RegularMarketChangePercent float64   `json:"regularMarketChangePercent"`
	ChartData                  []float64 `json:"chartData"`
}

// SearchResult wraps search matches.
type SearchResult struct {
	Quotes []SearchQuote `json:"quotes"`
}

// CompanyInfo is the profile section of a stock detail.
type CompanyInfo struct {
	Name        string  `json:"name"`
	Sector      string  `json:"sector"`
	Industry    string  `json:"industry"`
	Website     string  `json:"website"`
	Description string  `json:"description"`
	Exchange    string  `json:"exchange"`
	MarketCap   float64 `json:"market_cap"`
	Employees   int64   `json:"employees"`
}

// PriceData is the quote section of a stock detail.
type PriceData struct {
	CurrentPrice     float64 `json:"current_price"`
	PreviousClose    float64 `json:"previous_close"`
	Open             float64 `json:"open"`
	DayHigh          float64 `json:"day_high"`
	DayLow           float64 `json:"day_low"`
	DayChange        float64 `json:"day_change"`
	DayChangePercent float64 `json:"day_change_percent"`
	YearHigh         float64 `json:"52wk_high"`
	YearLow          float64 `json:"52wk_low"`
	Volume           float64 `json:"volume"`
}

// FinancialMetrics is the valuation section of a stock detail.
type FinancialMetrics struct {
	PERatio        float64 `json:"pe_ratio"`
	EPS            float64 `json:"eps"`
	DividendYield  float64 `json:"dividend_yield"`
	DividendRate   float64 `json:"dividend_rate"`
	ProfitMargin   float64 `json:"profit_margin"`
	Beta           float64 `json:"beta"`
	Recommendation string  `json:"recommendation"`
	TargetPrice    float64 `json:"target_price"`
}

// Series is a chart at a given sampling interval.
type Series struct {
	Interval string       `json:"interval"`
	Data     []ClosePoint `json:"data"`
}

// HistoricalData holds the intraday, monthly, yearly and five-year charts.
type HistoricalData struct {
	OneDay    Series `json:"1d"`
	OneMonth  Series `json:"1mo"`
	OneYear   Series `json:"1y"`
	FiveYears Series `json:"5y"`
}

// StockDetail is the full page for a single ticker.
type StockDetail struct {
	Success          bool             `json:"success"`
	Symbol           string           `json:"symbol"`
	CompanyInfo      CompanyInfo      `json:"company_info"`
	PriceData        PriceData        `json:"price_data"`
	FinancialMetrics FinancialMetrics `json:"financial_metrics"`
	HistoricalData   HistoricalData   `json:"historical_data"`
}

// NewStockDetail returns a detail with every section at its default.
func NewStockDetail(symbol string) StockDetail {
	return StockDetail{
		Success:          true,
		Symbol:           symbol,
		CompanyInfo:      CompanyInfo{Name: symbol},
		FinancialMetrics: FinancialMetrics{Recommendation: "NONE"},
		HistoricalData: HistoricalData{
			OneDay:    Series{Interval: "15m", Data: []ClosePoint{}},
			OneMonth:  Series{Interval: "1d", Data: []ClosePoint{}},
			OneYear:   Series{Interval: "1wk", Data: []ClosePoint{}},
			FiveYears: Series{Interval: "1mo", Data: []ClosePoint{}},
		},
	}
}
