package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"brokerage/src/models"
	"brokerage/src/repositories"
	"brokerage/src/utils"
)

var (
	ErrCompanyNotFound = errors.New("company not found")
	ErrCompanyExists   = errors.New("a company with this name already exists")
	ErrInvalidCompany  = errors.New("invalid company")
)

// CompanyUpdate changes the fields that are set.
type CompanyUpdate struct {
	Name           *string
	Profile        *string
	FoundationDate *time.Time
}

type CompanyServiceI interface {
	ListCompanies(ctx context.Context, page repositories.Page) ([]models.Company, error)
	GetCompany(ctx context.Context, id int64) (*models.Company, error)
	CreateCompany(ctx context.Context, company models.Company) (*models.Company, error)
	UpdateCompany(ctx context.Context, id int64, update CompanyUpdate) (*models.Company, error)
}

type CompanyService struct {
	companyRepo repositories.CompanyRepository
	now         func() time.Time
}

func NewCompanyService(companyRepo repositories.CompanyRepository) *CompanyService {
	return &CompanyService{companyRepo: companyRepo, now: time.Now}
}

func (s *CompanyService) ListCompanies(ctx context.Context, page repositories.Page) ([]models.Company, error) {
	companies, err := s.companyRepo.GetAll(ctx, page)
	if err != nil {
		return nil, storageError(err)
	}
	return companies, nil
}

func (s *CompanyService) GetCompany(ctx context.Context, id int64) (*models.Company, error) {
	company, err := s.companyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, ErrCompanyNotFound)
	}
	return company, nil
}

func (s *CompanyService) CreateCompany(ctx context.Context, company models.Company) (*models.Company, error) {
	company.Name = strings.TrimSpace(company.Name)
	if err := s.validate(&company); err != nil {
		return nil, err
	}
	if err := s.companyRepo.Create(ctx, &company); err != nil {
		return nil, companyWriteError(err)
	}

	utils.LoggerFromContext(ctx).WithField("company_id", company.ID).Info("company created")
	return &company, nil
}

func (s *CompanyService) UpdateCompany(ctx context.Context, id int64, update CompanyUpdate) (*models.Company, error) {
	company, err := s.GetCompany(ctx, id)
	if err != nil {
		return nil, err
	}
	if update.Name != nil {
		company.Name = strings.TrimSpace(*update.Name)
	}
	if update.Profile != nil {
		company.Profile = *update.Profile
	}
	if update.FoundationDate != nil {
		company.FoundationDate = update.FoundationDate
	}
	if err := s.validate(company); err != nil {
		return nil, err
	}
	if err := s.companyRepo.Update(ctx, company); err != nil {
		return nil, companyWriteError(err)
	}

	utils.LoggerFromContext(ctx).WithField("company_id", id).Info("company updated")
	return company, nil
}

func (s *CompanyService) validate(company *models.Company) error {
	if n := len([]rune(company.Name)); n < 2 || n > 100 {
		return fmt.Errorf("%w: name must be between 2 and 100 characters", ErrInvalidCompany)
	}
	if company.FoundationDate != nil && company.FoundationDate.After(s.now()) {
		return fmt.Errorf("%w: foundation date cannot be in the future", ErrInvalidCompany)
	}
	return nil
}

func companyWriteError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrAlreadyExists):
		return ErrCompanyExists
	case errors.Is(err, repositories.ErrNotFound):
		return ErrCompanyNotFound
	default:
		return storageError(err)
	}
}
