package schemas

import (
	"github.com/shopspring/decimal"
)

type CreateAssetRequest struct {
	CompanyID      *int64          `json:"company_id" validate:"omitempty,gt=0"`
	Ticker         string          `json:"ticker" validate:"required,max=16"`
	Name           string          `json:"name" validate:"required,min=2,max=100"`
	Description    string          `json:"description" validate:"max=1000"`
	Price          decimal.Decimal `json:"price"`
	AvailableCount decimal.Decimal `json:"available_count"`
}

type UpdatePriceRequest struct {
	Price decimal.Decimal `json:"price"`
}
