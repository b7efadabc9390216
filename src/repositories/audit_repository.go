package repositories

import (
	"context"
	"fmt"

	"brokerage/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Each check selects (subject id, detail) for every row breaking the invariant.
// total_value may sit half a unit of the last place away from amount*price.
var invariantChecks = []struct {
	name  string
	query string
}{
	{"negative_balance", `
		SELECT id, 'balance=' || balance::text FROM users WHERE balance < 0`},
	{"non_positive_holding", `
		SELECT id, 'amount=' || amount::text FROM holdings WHERE amount <= 0`},
	{"negative_inventory", `
		SELECT id, 'available_count=' || available_count::text FROM assets WHERE available_count < 0`},
	{"conservation_drift", `
		SELECT a.id,
			'available_count=' || a.available_count::text ||
			' held=' || COALESCE(SUM(h.amount), 0)::text ||
			' issued_count=' || a.issued_count::text
		FROM assets a
		LEFT JOIN holdings h ON h.asset_id = a.id
		GROUP BY a.id
		HAVING a.available_count + COALESCE(SUM(h.amount), 0) <> a.issued_count`},
	{"total_value_mismatch", `
		SELECT id, 'total_value=' || total_value::text || ' expected=' || (amount * price)::text
		FROM transactions
		WHERE abs(total_value - amount * price) > 0.00000000005`},
}

type AuditRepository interface {
	FindViolations(ctx context.Context) ([]models.InvariantViolation, error)
}

type auditRepo struct {
	db *pgxpool.Pool
}

func NewAuditRepository(db *pgxpool.Pool) AuditRepository {
	return &auditRepo{db: db}
}

// FindViolations runs every invariant check in one repeatable-read snapshot.
func (r *auditRepo) FindViolations(ctx context.Context) ([]models.InvariantViolation, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	violations := []models.InvariantViolation{}
	for _, check := range invariantChecks {
		rows, err := tx.Query(ctx, check.query)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", check.name, err)
		}
		for rows.Next() {
			v := models.InvariantViolation{Check: check.name}
			if err := rows.Scan(&v.SubjectID, &v.Detail); err != nil {
				rows.Close()
				return nil, err
			}
			violations = append(violations, v)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, err
		}
	}
	return violations, nil
}
