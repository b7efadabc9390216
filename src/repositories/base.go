package repositories

import (
	"errors"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists is returned when an insert breaks a unique constraint.
	ErrAlreadyExists = errors.New("record already exists")
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Page bounds a listing query.
type Page struct {
	Limit  uint64
	Offset uint64
}

func (p Page) apply(b sq.SelectBuilder) sq.SelectBuilder {
	if p.Limit > 0 {
		b = b.Limit(p.Limit)
	}
	return b.Offset(p.Offset)
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func joinColumns(columns []string) string {
	return strings.Join(columns, ", ")
}
