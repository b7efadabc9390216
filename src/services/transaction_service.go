package services

import (
	"context"

	"brokerage/src/models"
	"brokerage/src/repositories"
)

// Viewer is the authenticated user reading the transaction log.
type Viewer struct {
	UserID int64
	Role   models.Role
}

func (v Viewer) IsAdmin() bool {
	return v.Role == models.RoleAdmin
}

type TransactionServiceI interface {
	ListTransactions(ctx context.Context, viewer Viewer, filter repositories.TransactionFilter, page repositories.Page) ([]models.Transaction, error)
	GetTransaction(ctx context.Context, viewer Viewer, id int64) (*models.Transaction, error)
}

// TransactionService is the read side of the transaction log. Admins see
// every record; other users only their own.
type TransactionService struct {
	transactionRepo repositories.TransactionRepository
}

func NewTransactionService(transactionRepo repositories.TransactionRepository) *TransactionService {
	return &TransactionService{transactionRepo: transactionRepo}
}

func (s *TransactionService) ListTransactions(ctx context.Context, viewer Viewer, filter repositories.TransactionFilter, page repositories.Page) ([]models.Transaction, error) {
	if !viewer.IsAdmin() && filter.UserID != viewer.UserID {
		return nil, ErrForbidden
	}
	transactions, err := s.transactionRepo.List(ctx, filter, page)
	if err != nil {
		return nil, storageError(err)
	}
	return transactions, nil
}

func (s *TransactionService) GetTransaction(ctx context.Context, viewer Viewer, id int64) (*models.Transaction, error) {
	if !viewer.IsAdmin() {
		return nil, ErrForbidden
	}
	t, err := s.transactionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, ErrTransactionNotFound)
	}
	return t, nil
}
