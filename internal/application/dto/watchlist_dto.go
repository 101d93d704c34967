package dto

import (
	"time"

	"github.com/turtacn/stockwatch/internal/domain/models"
)

// SavedStockView is a saved stock together with its live summary.
// CurrentInfo is an empty object when no summary is available.
type SavedStockView struct {
	Symbol      string      `json:"symbol"`
	CompanyName string      `json:"company_name"`
	PriceAtSave float64     `json:"price_at_save"`
	DateSaved   time.Time   `json:"date_saved"`
	CurrentInfo interface{} `json:"current_info"`
}

// WatchlistResponse lists a user's saved stocks.
type WatchlistResponse struct {
	Success     bool             `json:"success"`
	SavedStocks []SavedStockView `json:"saved_stocks"`
}

// SaveStockResponse confirms a saved stock.
type SaveStockResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// NewSavedStockView joins a saved stock with its summary, if any.
func NewSavedStockView(s *models.SavedStock, summary *models.StockSummary) SavedStockView {
	view := SavedStockView{
		Symbol:      s.Symbol,
		CompanyName: s.CompanyName,
		PriceAtSave: s.PriceAtSave,
		DateSaved:   s.DateSaved,
		CurrentInfo: struct{}{},
	}
	if summary != nil {
		view.CurrentInfo = *summary
	}
	return view
}
