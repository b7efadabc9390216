package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID        int64           `db:"id" json:"id"`
	Username  string          `db:"username" json:"username"`
	Email     string          `db:"email" json:"email"`
	RoleID    int             `db:"role_id" json:"role_id"`
	Balance   decimal.Decimal `db:"balance" json:"balance"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}
