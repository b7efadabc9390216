package schemas

import (
	"github.com/shopspring/decimal"
)

// TradeRequest is the body of POST /api/trades/buy and /api/trades/sell.
// Amount is checked for sign and scale by the trade service.
type TradeRequest struct {
	AssetID int64           `json:"asset_id" validate:"required,gt=0"`
	Amount  decimal.Decimal `json:"amount"`
}

type TopUpRequest struct {
	Amount decimal.Decimal `json:"amount"`
}
