package repositories

import (
	"context"

	"brokerage/src/models"
	"brokerage/src/utils"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
)

// HoldingRepository lists holdings for reporting. Reads are not locked and
// may trail in-flight trades.
type HoldingRepository interface {
	GetByUserID(ctx context.Context, userID int64, page Page) ([]models.HoldingWithAsset, error)
}

type holdingRepo struct {
	db *pgxpool.Pool
}

func NewHoldingRepository(db *pgxpool.Pool) HoldingRepository {
	return &holdingRepo{db: db}
}

func (r *holdingRepo) GetByUserID(ctx context.Context, userID int64, page Page) ([]models.HoldingWithAsset, error) {
	query := psql.
		Select("h.id", "h.user_id", "h.asset_id", "h.amount::text", "h.updated_at", "a.ticker", "a.price::text").
		From("holdings h").
		Join("assets a ON a.id = h.asset_id").
		Where(sq.Eq{"h.user_id": userID}).
		OrderBy("h.id")
	sql, args, err := page.apply(query).ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	holdings := []models.HoldingWithAsset{}
	for rows.Next() {
		var h models.HoldingWithAsset
		var amount, price string
		if err := rows.Scan(&h.ID, &h.UserID, &h.AssetID, &amount, &h.UpdatedAt, &h.Ticker, &price); err != nil {
			return nil, err
		}
		if h.Amount, err = utils.ParseStoredDecimal("amount", amount); err != nil {
			return nil, err
		}
		if h.Price, err = utils.ParseStoredDecimal("price", price); err != nil {
			return nil, err
		}
		holdings = append(holdings, h)
	}
	return holdings, rows.Err()
}
