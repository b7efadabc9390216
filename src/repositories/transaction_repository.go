package repositories

import (
	"context"

	"brokerage/src/models"
	"brokerage/src/utils"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var transactionColumns = []string{
	"id", "user_id", "asset_id", "kind", "amount::text", "price::text",
	"total_value::text", "COALESCE(idempotency_key, '')", "created_at",
}

// TransactionFilter narrows a transaction listing. Zero values match all.
type TransactionFilter struct {
	UserID  int64
	AssetID int64
}

// TransactionRepository reads the transaction log. Rows are appended only by
// the Ledger.
type TransactionRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Transaction, error)
	List(ctx context.Context, filter TransactionFilter, page Page) ([]models.Transaction, error)
}

type transactionRepo struct {
	db *pgxpool.Pool
}

func NewTransactionRepository(db *pgxpool.Pool) TransactionRepository {
	return &transactionRepo{db: db}
}

func (r *transactionRepo) GetByID(ctx context.Context, id int64) (*models.Transaction, error) {
	sql, args, err := psql.Select(transactionColumns...).From("transactions").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	return scanTransaction(r.db.QueryRow(ctx, sql, args...))
}

func (r *transactionRepo) List(ctx context.Context, filter TransactionFilter, page Page) ([]models.Transaction, error) {
	query := psql.Select(transactionColumns...).From("transactions").OrderBy("id DESC")
	if filter.UserID != 0 {
		query = query.Where(sq.Eq{"user_id": filter.UserID})
	}
	if filter.AssetID != 0 {
		query = query.Where(sq.Eq{"asset_id": filter.AssetID})
	}
	sql, args, err := page.apply(query).ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := []models.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *t)
	}
	return transactions, rows.Err()
}

func scanTransaction(row pgx.Row) (*models.Transaction, error) {
	var t models.Transaction
	var amount, price, total string
	err := row.Scan(&t.ID, &t.UserID, &t.AssetID, &t.Kind, &amount, &price, &total, &t.IdempotencyKey, &t.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	if t.Amount, err = utils.ParseStoredDecimal("amount", amount); err != nil {
		return nil, err
	}
	if t.Price, err = utils.ParseStoredDecimal("price", price); err != nil {
		return nil, err
	}
	if t.TotalValue, err = utils.ParseStoredDecimal("total_value", total); err != nil {
		return nil, err
	}
	return &t, nil
}
