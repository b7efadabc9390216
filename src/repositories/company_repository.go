package repositories

import (
	"context"

	"brokerage/src/models"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var companyColumns = []string{"id", "name", "profile", "foundation_date", "created_at"}

type CompanyRepository interface {
	GetAll(ctx context.Context, page Page) ([]models.Company, error)
	GetByID(ctx context.Context, id int64) (*models.Company, error)
	Create(ctx context.Context, company *models.Company) error
	Update(ctx context.Context, company *models.Company) error
}

type companyRepo struct {
	db *pgxpool.Pool
}

func NewCompanyRepository(db *pgxpool.Pool) CompanyRepository {
	return &companyRepo{db: db}
}

func (r *companyRepo) GetAll(ctx context.Context, page Page) ([]models.Company, error) {
	sql, args, err := page.apply(psql.Select(companyColumns...).From("companies").OrderBy("id")).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	companies := []models.Company{}
	for rows.Next() {
		company, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		companies = append(companies, *company)
	}
	return companies, rows.Err()
}

func (r *companyRepo) GetByID(ctx context.Context, id int64) (*models.Company, error) {
	sql, args, err := psql.Select(companyColumns...).From("companies").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	return scanCompany(r.db.QueryRow(ctx, sql, args...))
}

func (r *companyRepo) Create(ctx context.Context, company *models.Company) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO companies (name, profile, foundation_date)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		company.Name, company.Profile, company.FoundationDate,
	).Scan(&company.ID, &company.CreatedAt)
	if isUniqueViolation(err) {
		return ErrAlreadyExists
	}
	return err
}

// Update overwrites name, profile and foundation date of an existing company.
func (r *companyRepo) Update(ctx context.Context, company *models.Company) error {
	sql, args, err := psql.Update("companies").
		Set("name", company.Name).
		Set("profile", company.Profile).
		Set("foundation_date", company.FoundationDate).
		Where(sq.Eq{"id": company.ID}).
		Suffix("RETURNING created_at").
		ToSql()
	if err != nil {
		return err
	}
	err = r.db.QueryRow(ctx, sql, args...).Scan(&company.CreatedAt)
	if isUniqueViolation(err) {
		return ErrAlreadyExists
	}
	return notFound(err)
}

func scanCompany(row pgx.Row) (*models.Company, error) {
	var c models.Company
	if err := row.Scan(&c.ID, &c.Name, &c.Profile, &c.FoundationDate, &c.CreatedAt); err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}
