package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/turtacn/stockwatch/pkg/errors"
)

var symbolPattern = regexp.MustCompile(`^[A-Z.\-]+$`)

// SavedStock is one entry of a user's watchlist.
type SavedStock struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	GoogleID    string    `gorm:"size:50;not null;uniqueIndex:idx_saved_stocks_user_symbol" json:"-"`
	Symbol      string    `gorm:"size:16;not null;uniqueIndex:idx_saved_stocks_user_symbol" json:"symbol"`
	CompanyName string    `gorm:"size:200" json:"company_name"`
	PriceAtSave float64   `gorm:"not null" json:"price_at_save"`
	DateSaved   time.Time `gorm:"column:date_save;autoCreateTime" json:"date_saved"`
}

// TableName pins the table name used by earlier deployments.
func (SavedStock) TableName() string {
	return "saved_stocks"
}

// NormalizeSymbol upper-cases a ticker and rejects anything outside [A-Z.-]
// as well as the placeholder values EMPTY and NONE.
func NormalizeSymbol(raw string) (string, error) {
	symbol := strings.ToUpper(strings.TrimSpace(raw))
	switch {
	case symbol == "", symbol == "EMPTY", symbol == "NONE":
		return "", errors.ErrInvalidSymbol(raw)
	case !symbolPattern.MatchString(symbol):
		return "", errors.ErrInvalidSymbol(raw)
	}
	return symbol, nil
}
