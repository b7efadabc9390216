package services

import (
	"context"
	"errors"
	"strings"

	"brokerage/src/models"
	"brokerage/src/repositories"
	"brokerage/src/utils"

	"github.com/shopspring/decimal"
)

var ErrTickerTaken = errors.New("an asset with this ticker already exists")

// NewAsset describes an asset to add to the catalog. CompanyID is optional.
type NewAsset struct {
	CompanyID      *int64
	Ticker         string
	Name           string
	Description    string
	Price          decimal.Decimal
	AvailableCount decimal.Decimal
}

type CatalogServiceI interface {
	ListAssets(ctx context.Context, filter repositories.AssetFilter, page repositories.Page) ([]models.Asset, error)
	GetAsset(ctx context.Context, id int64) (*models.Asset, error)
	SearchAssets(ctx context.Context, query string, page repositories.Page) ([]models.Asset, error)
	CreateAsset(ctx context.Context, input NewAsset) (*models.Asset, error)
	UpdatePrice(ctx context.Context, id int64, price decimal.Decimal) (*models.Asset, error)
}

type CatalogService struct {
	assetRepo   repositories.AssetRepository
	companyRepo repositories.CompanyRepository
	cache       AssetCache
}

func NewCatalogService(assetRepo repositories.AssetRepository, companyRepo repositories.CompanyRepository, cache AssetCache) *CatalogService {
	return &CatalogService{assetRepo: assetRepo, companyRepo: companyRepo, cache: cache}
}

// ListAssets pages through the catalog. Filtering by an unknown company is
// ErrCompanyNotFound rather than an empty page.
func (s *CatalogService) ListAssets(ctx context.Context, filter repositories.AssetFilter, page repositories.Page) ([]models.Asset, error) {
	if filter.CompanyID != 0 {
		if err := s.requireCompany(ctx, filter.CompanyID); err != nil {
			return nil, err
		}
	}
	assets, err := s.assetRepo.GetAll(ctx, filter, page)
	if err != nil {
		return nil, storageError(err)
	}
	return assets, nil
}

// GetAsset reads through the cache.
func (s *CatalogService) GetAsset(ctx context.Context, id int64) (*models.Asset, error) {
	if asset, ok := s.cache.Get(ctx, id); ok {
		return asset, nil
	}

	asset, err := s.assetRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, ErrAssetNotFound)
	}
	s.cache.Set(ctx, asset)
	return asset, nil
}

// SearchAssets splits query on whitespace and matches each term against
// ticker, name and company name.
func (s *CatalogService) SearchAssets(ctx context.Context, query string, page repositories.Page) ([]models.Asset, error) {
	assets, err := s.assetRepo.Search(ctx, strings.Fields(query), page)
	if err != nil {
		return nil, storageError(err)
	}
	return assets, nil
}

func (s *CatalogService) CreateAsset(ctx context.Context, input NewAsset) (*models.Asset, error) {
	if err := utils.ValidateQuantity(input.Price); err != nil {
		return nil, invalidAmount(err)
	}
	if !input.AvailableCount.IsZero() {
		if err := utils.ValidateQuantity(input.AvailableCount); err != nil {
			return nil, invalidAmount(err)
		}
	}
	if input.CompanyID != nil {
		if err := s.requireCompany(ctx, *input.CompanyID); err != nil {
			return nil, err
		}
	}

	asset := &models.Asset{
		CompanyID:      input.CompanyID,
		Ticker:         strings.ToUpper(strings.TrimSpace(input.Ticker)),
		Name:           input.Name,
		Description:    input.Description,
		Price:          input.Price,
		AvailableCount: input.AvailableCount,
	}
	if err := s.assetRepo.Create(ctx, asset); err != nil {
		if errors.Is(err, repositories.ErrAlreadyExists) {
			return nil, ErrTickerTaken
		}
		return nil, storageError(err)
	}

	utils.LoggerFromContext(ctx).WithField("asset_id", asset.ID).WithField("ticker", asset.Ticker).Info("asset created")
	return asset, nil
}

// UpdatePrice changes the price and writes the new row through to the cache.
// Inventory is left untouched.
func (s *CatalogService) UpdatePrice(ctx context.Context, id int64, price decimal.Decimal) (*models.Asset, error) {
	if err := utils.ValidateQuantity(price); err != nil {
		return nil, invalidAmount(err)
	}

	asset, err := s.assetRepo.UpdatePrice(ctx, id, price)
	if err != nil {
		return nil, lookupError(err, ErrAssetNotFound)
	}
	// A GetAsset that read the old row before this update can still store it
	// after this Set. Such an entry lives at most one TTL.
	s.cache.Set(ctx, asset)

	utils.LoggerFromContext(ctx).WithField("asset_id", id).WithField("price", price.String()).Info("asset price updated")
	return asset, nil
}

func (s *CatalogService) requireCompany(ctx context.Context, id int64) error {
	if _, err := s.companyRepo.GetByID(ctx, id); err != nil {
		return lookupError(err, ErrCompanyNotFound)
	}
	return nil
}
