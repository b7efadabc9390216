package repositories

import (
	"context"

	"brokerage/src/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type RoleRepository interface {
	GetAll(ctx context.Context) ([]models.RoleRecord, error)
}

type roleRepo struct {
	db *pgxpool.Pool
}

func NewRoleRepository(db *pgxpool.Pool) RoleRepository {
	return &roleRepo{db: db}
}

func (r *roleRepo) GetAll(ctx context.Context) ([]models.RoleRecord, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM roles ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []models.RoleRecord
	for rows.Next() {
		var role models.RoleRecord
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}
