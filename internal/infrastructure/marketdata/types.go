package marketdata

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Quote is a real-time quote.
// Open, DayHigh, DayLow and PreviousClose are nil when the provider omits them.
type Quote struct {
	Symbol            string   `json:"symbol"`
	Name              string   `json:"name"`
	Price             float64  `json:"price"`
	Change            float64  `json:"change"`
	ChangesPercentage float64  `json:"changesPercentage"`
	PreviousClose     *float64 `json:"previousClose,omitempty"`
	Open              *float64 `json:"open,omitempty"`
	DayHigh           *float64 `json:"dayHigh,omitempty"`
	DayLow            *float64 `json:"dayLow,omitempty"`
	YearHigh          float64  `json:"yearHigh"`
	YearLow           float64  `json:"yearLow"`
	Volume            float64  `json:"volume"`
	Exchange          string   `json:"exchange,omitempty"`
	Industry          string   `json:"industry,omitempty"`
}

// Active is one entry of the most-active list.
type Active struct {
	Symbol            string  `json:"symbol"`
	Name              string  `json:"name"`
	Price             float64 `json:"price"`
	Change            float64 `json:"change"`
	ChangesPercentage float64 `json:"changesPercentage"`
}

// Bar is a dated close, used by both daily history and intraday charts.
type Bar struct {
	Date  string  `json:"date"`
	Open  float64 `json:"open,omitempty"`
	High  float64 `json:"high,omitempty"`
	Low   float64 `json:"low,omitempty"`
	Close float64 `json:"close"`
}

// HistoricalPrices is the envelope of the historical-price-full endpoint.
// Historical is ordered newest first.
type HistoricalPrices struct {
	Symbol     string `json:"symbol"`
	Historical []Bar  `json:"historical"`
}

// Rating is an analyst rating snapshot.
type Rating struct {
	Symbol               string `json:"symbol"`
	Date                 string `json:"date,omitempty"`
	Rating               string `json:"rating,omitempty"`
	RatingRecommendation string `json:"ratingRecommendation"`
}

// SearchMatch is a ticker search hit.
type SearchMatch struct {
	Symbol            string `json:"symbol"`
	Name              string `json:"name"`
	Currency          string `json:"currency,omitempty"`
	StockExchange     string `json:"stockExchange"`
	ExchangeShortName string `json:"exchangeShortName"`
}

// Profile is a company profile.
type Profile struct {
	Symbol            string   `json:"symbol"`
	CompanyName       string   `json:"companyName"`
	Sector            string   `json:"sector"`
	Industry          string   `json:"industry"`
	Website           string   `json:"website"`
	Description       string   `json:"description"`
	Exchange          string   `json:"exchange"`
	MktCap            float64  `json:"mktCap"`
	FullTimeEmployees FlexInt  `json:"fullTimeEmployees"`
	Price             float64  `json:"price"`
	Beta              float64  `json:"beta"`
	Volume            float64  `json:"volume"`
	YearHigh          float64  `json:"yearHigh"`
	YearLow           float64  `json:"yearLow"`
	LastDiv           float64  `json:"lastDiv"`
	PE                float64  `json:"pe"`
	EPS               float64  `json:"eps"`
	ProfitMargin      *float64 `json:"profitMargin,omitempty"`
}

// KeyMetrics is the latest key-metrics row.
type KeyMetrics struct {
	PERatio           float64 `json:"peRatio"`
	NetIncomePerShare float64 `json:"netIncomePerShare"`
	NetProfitMargin   float64 `json:"netProfitMargin"`
}

// Ratios is the latest financial-ratios row.
type Ratios struct {
	PriceEarningsRatio float64 `json:"priceEarningsRatio"`
	PriceToBookRatio   float64 `json:"priceToBookRatio"`
	DividendYield      float64 `json:"dividendYield"`
	NetProfitMargin    float64 `json:"netProfitMargin"`
}

// PriceTarget is a single analyst price target.
type PriceTarget struct {
	Symbol      string  `json:"symbol"`
	PublishedAt string  `json:"publishedDate,omitempty"`
	PriceTarget float64 `json:"priceTarget"`
}

// FlexInt decodes integers the provider sends either as numbers or as numeric strings.
type FlexInt int64

func (f *FlexInt) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	if len(b) == 0 || string(b) == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		// Non-numeric employee counts show up for some listings; treat as unknown.
		*f = 0
		return nil
	}
	*f = FlexInt(n)
	return nil
}

func (f FlexInt) MarshalJSON() ([]byte, error) {
	return json.Marshal(int64(f))
}
