package services

import (
	"context"

	"brokerage/src/models"
	"brokerage/src/repositories"
)

type AccountServiceI interface {
	GetUser(ctx context.Context, userID int64) (*models.User, error)
	GetHoldings(ctx context.Context, userID int64, page repositories.Page) ([]models.HoldingWithAsset, error)
	GetTransactions(ctx context.Context, userID int64, page repositories.Page) ([]models.Transaction, error)
}

// AccountService serves a user's own balance, holdings and trade history.
type AccountService struct {
	userRepo        repositories.UserRepository
	holdingRepo     repositories.HoldingRepository
	transactionRepo repositories.TransactionRepository
}

func NewAccountService(
	userRepo repositories.UserRepository,
	holdingRepo repositories.HoldingRepository,
	transactionRepo repositories.TransactionRepository,
) *AccountService {
	return &AccountService{
		userRepo:        userRepo,
		holdingRepo:     holdingRepo,
		transactionRepo: transactionRepo,
	}
}

func (s *AccountService) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, lookupError(err, ErrUserNotFound)
	}
	return user, nil
}

func (s *AccountService) GetHoldings(ctx context.Context, userID int64, page repositories.Page) ([]models.HoldingWithAsset, error) {
	holdings, err := s.holdingRepo.GetByUserID(ctx, userID, page)
	if err != nil {
		return nil, storageError(err)
	}
	return holdings, nil
}

// GetTransactions returns the user's trades, newest first.
func (s *AccountService) GetTransactions(ctx context.Context, userID int64, page repositories.Page) ([]models.Transaction, error) {
	transactions, err := s.transactionRepo.List(ctx, repositories.TransactionFilter{UserID: userID}, page)
	if err != nil {
		return nil, storageError(err)
	}
	return transactions, nil
}
