package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Asset struct {
	ID             int64           `db:"id" json:"id"`
	CompanyID      *int64          `db:"company_id" json:"company_id"`
	Ticker         string          `db:"ticker" json:"ticker"`
	Name           string          `db:"name" json:"name"`
	Description    string          `db:"description" json:"description"`
	Price          decimal.Decimal `db:"price" json:"price"`
	AvailableCount decimal.Decimal `db:"available_count" json:"available_count"`
	// IssuedCount is available_count plus every holding of the asset. Trades
	// never change it.
	IssuedCount decimal.Decimal `db:"issued_count" json:"issued_count"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}
