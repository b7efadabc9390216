package schemas

import (
	"time"

	"brokerage/src/models"

	"github.com/shopspring/decimal"
)

// UserResponse is the public view of the authenticated user.
type UserResponse struct {
	ID        int64           `json:"id"`
	Username  string          `json:"username"`
	Email     string          `json:"email"`
	Role      models.Role     `json:"role"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
}

func NewUserResponse(user *models.User, role models.Role) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Role:      role,
		Balance:   user.Balance,
		CreatedAt: user.CreatedAt,
	}
}
