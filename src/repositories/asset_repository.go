package repositories

import (
	"context"
	"strings"

	"brokerage/src/models"
	"brokerage/src/utils"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var assetColumns = []string{
	"id", "company_id", "ticker", "name", "description", "price::text",
	"available_count::text", "issued_count::text", "created_at", "updated_at",
}

// likeEscaper makes a search term match literally inside an ILIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// AssetFilter narrows an asset listing. Zero fields match everything.
type AssetFilter struct {
	CompanyID int64
}

// AssetRepository is the catalog view of assets. It never changes
// available_count after creation; trades do that through the Ledger.
type AssetRepository interface {
	GetAll(ctx context.Context, filter AssetFilter, page Page) ([]models.Asset, error)
	GetByID(ctx context.Context, id int64) (*models.Asset, error)
	Search(ctx context.Context, terms []string, page Page) ([]models.Asset, error)
	Create(ctx context.Context, asset *models.Asset) error
	UpdatePrice(ctx context.Context, id int64, price decimal.Decimal) (*models.Asset, error)
}

type assetRepo struct {
	db *pgxpool.Pool
}

func NewAssetRepository(db *pgxpool.Pool) AssetRepository {
	return &assetRepo{db: db}
}

func (r *assetRepo) GetAll(ctx context.Context, filter AssetFilter, page Page) ([]models.Asset, error) {
	query := psql.Select(assetColumns...).From("assets").OrderBy("id")
	if filter.CompanyID != 0 {
		query = query.Where(sq.Eq{"company_id": filter.CompanyID})
	}
	return r.query(ctx, page.apply(query))
}

func (r *assetRepo) GetByID(ctx context.Context, id int64) (*models.Asset, error) {
	sql, args, err := psql.Select(assetColumns...).From("assets").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	return scanAsset(r.db.QueryRow(ctx, sql, args...))
}

// Search matches every term against ticker, name and the issuing company's
// name, case-insensitively. Assets matching more terms come first.
func (r *assetRepo) Search(ctx context.Context, terms []string, page Page) ([]models.Asset, error) {
	columns := make([]string, len(assetColumns))
	for i, column := range assetColumns {
		columns[i] = "a." + column
	}
	query := psql.Select(columns...).
		From("assets a").
		LeftJoin("companies c ON c.id = a.company_id")
	if len(terms) == 0 {
		return r.query(ctx, page.apply(query.OrderBy("a.ticker")))
	}

	match := sq.Or{}
	scores := make([]string, 0, 3*len(terms))
	scoreArgs := make([]interface{}, 0, 3*len(terms))
	for _, term := range terms {
		pattern := "%" + likeEscaper.Replace(term) + "%"
		match = append(match, sq.ILike{"a.ticker": pattern}, sq.ILike{"a.name": pattern}, sq.ILike{"c.name": pattern})
		scores = append(scores,
			"(CASE WHEN a.ticker ILIKE ? THEN 1 ELSE 0 END)",
			"(CASE WHEN a.name ILIKE ? THEN 1 ELSE 0 END)",
			"(CASE WHEN c.name ILIKE ? THEN 1 ELSE 0 END)")
		scoreArgs = append(scoreArgs, pattern, pattern, pattern)
	}
	query = query.Where(match).
		OrderByClause("("+strings.Join(scores, " + ")+") DESC", scoreArgs...).
		OrderBy("a.ticker")
	return r.query(ctx, page.apply(query))
}

func (r *assetRepo) Create(ctx context.Context, asset *models.Asset) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO assets (company_id, ticker, name, description, price, available_count, issued_count)
		VALUES ($1, $2, $3, $4, $5::numeric, $6::numeric, $6::numeric)
		RETURNING id, created_at, updated_at`,
		asset.CompanyID, asset.Ticker, asset.Name, asset.Description, asset.Price.String(), asset.AvailableCount.String(),
	).Scan(&asset.ID, &asset.CreatedAt, &asset.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrAlreadyExists
	}
	if err != nil {
		return err
	}
	asset.IssuedCount = asset.AvailableCount
	return nil
}

// UpdatePrice waits for any trade holding the asset row lock, so a trade
// never commits against a price that changed under it.
func (r *assetRepo) UpdatePrice(ctx context.Context, id int64, price decimal.Decimal) (*models.Asset, error) {
	sql, args, err := psql.Update("assets").
		Set("price", sq.Expr("?::numeric", price.String())).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + joinColumns(assetColumns)).
		ToSql()
	if err != nil {
		return nil, err
	}
	return scanAsset(r.db.QueryRow(ctx, sql, args...))
}

func (r *assetRepo) query(ctx context.Context, query sq.SelectBuilder) ([]models.Asset, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assets := []models.Asset{}
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, *asset)
	}
	return assets, rows.Err()
}

func scanAsset(row pgx.Row) (*models.Asset, error) {
	var a models.Asset
	var price, available, issued string
	err := row.Scan(&a.ID, &a.CompanyID, &a.Ticker, &a.Name, &a.Description, &price, &available, &issued, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	if a.Price, err = utils.ParseStoredDecimal("price", price); err != nil {
		return nil, err
	}
	if a.AvailableCount, err = utils.ParseStoredDecimal("available_count", available); err != nil {
		return nil, err
	}
	if a.IssuedCount, err = utils.ParseStoredDecimal("issued_count", issued); err != nil {
		return nil, err
	}
	return &a, nil
}
