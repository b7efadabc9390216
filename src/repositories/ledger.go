package repositories

import (
	"context"
	"errors"
	"fmt"

	"brokerage/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ErrDuplicateIdempotencyKey is returned by AppendTransaction when the user
// already has a transaction with the same idempotency key.
var ErrDuplicateIdempotencyKey = errors.New("duplicate idempotency key")

// Ledger runs units of work over balances, inventory, holdings and the
// transaction log. It is the only write path for those values.
type Ledger interface {
	// RunInTx calls fn inside one database transaction. The transaction is
	// committed when fn returns nil and rolled back otherwise.
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx LedgerTx) error) error
}

// LedgerTx is the view of the ledger inside a unit of work. Lock* methods take
// row locks held until the unit ends; callers lock user, then asset, then
// holding.
type LedgerTx interface {
	LockUser(ctx context.Context, userID int64) (*models.User, error)
	LockAsset(ctx context.Context, assetID int64) (*models.Asset, error)
	// LockHolding returns nil and no error when the user holds none of the asset.
	LockHolding(ctx context.Context, userID, assetID int64) (*models.Holding, error)
	// FindTransactionByKey returns nil and no error when the key is unused.
	FindTransactionByKey(ctx context.Context, userID int64, key string) (*models.Transaction, error)

	SetBalance(ctx context.Context, userID int64, balance decimal.Decimal) error
	SetAvailableCount(ctx context.Context, assetID int64, count decimal.Decimal) error
	SaveHolding(ctx context.Context, holding *models.Holding) error
	DeleteHolding(ctx context.Context, userID, assetID int64) error
	AppendTransaction(ctx context.Context, t *models.Transaction) error
}

type pgLedger struct {
	db *pgxpool.Pool
}

func NewLedger(db *pgxpool.Pool) Ledger {
	return &pgLedger{db: db}
}

func (l *pgLedger) RunInTx(ctx context.Context, fn func(ctx context.Context, tx LedgerTx) error) error {
	tx, err := l.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin ledger transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			// The request context may already be done; rollback must still run.
			_ = tx.Rollback(context.WithoutCancel(ctx))
		}
	}()

	if err := fn(ctx, &pgLedgerTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit ledger transaction: %w", err)
	}
	committed = true
	return nil
}

type pgLedgerTx struct {
	tx pgx.Tx
}

func (t *pgLedgerTx) LockUser(ctx context.Context, userID int64) (*models.User, error) {
	return scanUser(t.tx.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, userID))
}

func (t *pgLedgerTx) LockAsset(ctx context.Context, assetID int64) (*models.Asset, error) {
	return scanAsset(t.tx.QueryRow(ctx,
		`SELECT `+joinColumns(assetColumns)+` FROM assets WHERE id = $1 FOR UPDATE`, assetID))
}

func (t *pgLedgerTx) LockHolding(ctx context.Context, userID, assetID int64) (*models.Holding, error) {
	var h models.Holding
	var amount string
	err := t.tx.QueryRow(ctx, `
		SELECT id, user_id, asset_id, amount::text, updated_at
		FROM holdings
		WHERE user_id = $1 AND asset_id = $2
		FOR UPDATE`, userID, assetID,
	).Scan(&h.ID, &h.UserID, &h.AssetID, &amount, &h.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if h.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("parse amount: %w", err)
	}
	return &h, nil
}

func (t *pgLedgerTx) FindTransactionByKey(ctx context.Context, userID int64, key string) (*models.Transaction, error) {
	found, err := scanTransaction(t.tx.QueryRow(ctx,
		`SELECT `+joinColumns(transactionColumns)+`
		FROM transactions
		WHERE user_id = $1 AND idempotency_key = $2`, userID, key))
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return found, err
}

func (t *pgLedgerTx) SetBalance(ctx context.Context, userID int64, balance decimal.Decimal) error {
	return expectOneRow(t.tx.Exec(ctx,
		`UPDATE users SET balance = $1::numeric WHERE id = $2`, balance.String(), userID))
}

func (t *pgLedgerTx) SetAvailableCount(ctx context.Context, assetID int64, count decimal.Decimal) error {
	return expectOneRow(t.tx.Exec(ctx,
		`UPDATE assets SET available_count = $1::numeric, updated_at = now() WHERE id = $2`, count.String(), assetID))
}

func (t *pgLedgerTx) SaveHolding(ctx context.Context, h *models.Holding) error {
	return t.tx.QueryRow(ctx, `
		INSERT INTO holdings (user_id, asset_id, amount)
		VALUES ($1, $2, $3::numeric)
		ON CONFLICT (user_id, asset_id) DO UPDATE SET
			amount = EXCLUDED.amount,
			updated_at = now()
		RETURNING id, updated_at`,
		h.UserID, h.AssetID, h.Amount.String(),
	).Scan(&h.ID, &h.UpdatedAt)
}

func (t *pgLedgerTx) DeleteHolding(ctx context.Context, userID, assetID int64) error {
	return expectOneRow(t.tx.Exec(ctx,
		`DELETE FROM holdings WHERE user_id = $1 AND asset_id = $2`, userID, assetID))
}

func (t *pgLedgerTx) AppendTransaction(ctx context.Context, tr *models.Transaction) error {
	var key *string
	if tr.IdempotencyKey != "" {
		key = &tr.IdempotencyKey
	}
	err := t.tx.QueryRow(ctx, `
		INSERT INTO transactions (user_id, asset_id, kind, amount, price, total_value, idempotency_key)
		VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6::numeric, $7)
		RETURNING id, created_at`,
		tr.UserID, tr.AssetID, string(tr.Kind), tr.Amount.String(), tr.Price.String(), tr.TotalValue.String(), key,
	).Scan(&tr.ID, &tr.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateIdempotencyKey
	}
	return err
}

func expectOneRow(tag pgconn.CommandTag, err error) error {
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("%w: %d rows affected", ErrNotFound, tag.RowsAffected())
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
