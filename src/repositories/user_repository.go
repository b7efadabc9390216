package repositories

import (
	"context"

	"brokerage/src/models"
	"brokerage/src/utils"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, username, email, role_id, balance::text, created_at`

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

type userRepo struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	var balance string
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.RoleID, &balance, &u.CreatedAt); err != nil {
		return nil, notFound(err)
	}
	var err error
	if u.Balance, err = utils.ParseStoredDecimal("balance", balance); err != nil {
		return nil, err
	}
	return &u, nil
}
