package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionKind string

const (
	TransactionBuy  TransactionKind = "BUY"
	TransactionSell TransactionKind = "SELL"
)

// Transaction records one executed trade. Rows are written once and never
// updated.
type Transaction struct {
	ID             int64           `db:"id" json:"id"`
	UserID         int64           `db:"user_id" json:"user_id"`
	AssetID        int64           `db:"asset_id" json:"asset_id"`
	Kind           TransactionKind `db:"kind" json:"kind"`
	Amount         decimal.Decimal `db:"amount" json:"amount"`
	Price          decimal.Decimal `db:"price" json:"price"`
	TotalValue     decimal.Decimal `db:"total_value" json:"total_value"`
	IdempotencyKey string          `db:"idempotency_key" json:"idempotency_key,omitempty"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}

// SameTrade reports whether t describes the given trade request.
func (t *Transaction) SameTrade(kind TransactionKind, assetID int64, amount decimal.Decimal) bool {
	return t.Kind == kind && t.AssetID == assetID && t.Amount.Equal(amount)
}
