package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Holding is the amount of one asset owned by one user. A row exists only
// while Amount is positive.
type Holding struct {
	ID        int64           `db:"id" json:"id"`
	UserID    int64           `db:"user_id" json:"user_id"`
	AssetID   int64           `db:"asset_id" json:"asset_id"`
	Amount    decimal.Decimal `db:"amount" json:"amount"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

type HoldingWithAsset struct {
	Holding
	Ticker string          `db:"ticker" json:"ticker"`
	Price  decimal.Decimal `db:"price" json:"price"`
}
