package services

import (
	"context"
	"errors"

	"brokerage/src/events"
	"brokerage/src/models"
	"brokerage/src/repositories"
	"brokerage/src/utils"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// TradeRequest asks to buy or sell Amount units of an asset for a user.
// IdempotencyKey is optional.
type TradeRequest struct {
	UserID         int64
	AssetID        int64
	Amount         decimal.Decimal
	IdempotencyKey string
}

type TradeServiceI interface {
	ExecuteBuy(ctx context.Context, req TradeRequest) (*models.Transaction, error)
	ExecuteSell(ctx context.Context, req TradeRequest) (*models.Transaction, error)
	TopUp(ctx context.Context, userID int64, amount decimal.Decimal) (*models.User, error)
}

// TradeService applies trades to the ledger. Each trade locks the user, then
// the asset, then the holding, and commits balance, inventory, holding and
// the transaction record together.
type TradeService struct {
	ledger    repositories.Ledger
	publisher events.Publisher
}

func NewTradeService(ledger repositories.Ledger, publisher events.Publisher) *TradeService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &TradeService{ledger: ledger, publisher: publisher}
}

func (s *TradeService) ExecuteBuy(ctx context.Context, req TradeRequest) (*models.Transaction, error) {
	return s.execute(ctx, models.TransactionBuy, req)
}

func (s *TradeService) ExecuteSell(ctx context.Context, req TradeRequest) (*models.Transaction, error) {
	return s.execute(ctx, models.TransactionSell, req)
}

func (s *TradeService) execute(ctx context.Context, kind models.TransactionKind, req TradeRequest) (*models.Transaction, error) {
	logger := utils.LoggerFromContext(ctx).WithFields(logrus.Fields{
		"user_id":  req.UserID,
		"asset_id": req.AssetID,
		"kind":     kind,
	})

	if err := utils.ValidateQuantity(req.Amount); err != nil {
		logger.WithError(err).Warn("trade rejected")
		return nil, invalidAmount(err)
	}
	logger = logger.WithField("amount", req.Amount.String())

	var (
		result   *models.Transaction
		replayed bool
	)
	err := s.ledger.RunInTx(ctx, func(ctx context.Context, tx repositories.LedgerTx) error {
		user, err := tx.LockUser(ctx, req.UserID)
		if err != nil {
			return lookupError(err, ErrUserNotFound)
		}

		// The user lock serializes requests carrying the same key.
		if req.IdempotencyKey != "" {
			prior, err := tx.FindTransactionByKey(ctx, req.UserID, req.IdempotencyKey)
			if err != nil {
				return storageError(err)
			}
			if prior != nil {
				if !prior.SameTrade(kind, req.AssetID, req.Amount) {
					return ErrIdempotencyConflict
				}
				result, replayed = prior, true
				return nil
			}
		}

		asset, err := tx.LockAsset(ctx, req.AssetID)
		if err != nil {
			return lookupError(err, ErrAssetNotFound)
		}
		holding, err := tx.LockHolding(ctx, req.UserID, req.AssetID)
		if err != nil {
			return storageError(err)
		}

		t := &models.Transaction{
			UserID:         req.UserID,
			AssetID:        req.AssetID,
			Kind:           kind,
			Amount:         req.Amount,
			Price:          asset.Price,
			TotalValue:     utils.TotalValue(req.Amount, asset.Price),
			IdempotencyKey: req.IdempotencyKey,
		}
		if kind == models.TransactionBuy {
			err = applyBuy(ctx, tx, user, asset, holding, t)
		} else {
			err = applySell(ctx, tx, user, asset, holding, t)
		}
		if err != nil {
			return err
		}

		if err := tx.AppendTransaction(ctx, t); err != nil {
			return storageError(err)
		}
		result = t
		return nil
	})
	if err != nil {
		err = classifyTxError(err)
		logger.WithError(err).Warn("trade rejected")
		return nil, err
	}

	logger = logger.WithField("transaction_id", result.ID)
	if replayed {
		logger.Info("idempotent trade replayed")
		return result, nil
	}
	logger.WithField("total_value", result.TotalValue.String()).Info("trade executed")

	if err := s.publisher.TradeExecuted(ctx, result); err != nil {
		logger.WithError(err).Error("failed to publish trade event")
	}
	return result, nil
}

func applyBuy(ctx context.Context, tx repositories.LedgerTx, user *models.User, asset *models.Asset, holding *models.Holding, t *models.Transaction) error {
	if asset.AvailableCount.LessThan(t.Amount) {
		return ErrAssetNotAvailable
	}
	if user.Balance.LessThan(t.TotalValue) {
		return ErrInsufficientFunds
	}

	if err := tx.SetBalance(ctx, user.ID, user.Balance.Sub(t.TotalValue)); err != nil {
		return storageError(err)
	}
	if err := tx.SetAvailableCount(ctx, asset.ID, asset.AvailableCount.Sub(t.Amount)); err != nil {
		return storageError(err)
	}

	if holding == nil {
		holding = &models.Holding{UserID: user.ID, AssetID: asset.ID, Amount: decimal.Zero}
	}
	holding.Amount = holding.Amount.Add(t.Amount)
	if err := tx.SaveHolding(ctx, holding); err != nil {
		return storageError(err)
	}
	return nil
}

func applySell(ctx context.Context, tx repositories.LedgerTx, user *models.User, asset *models.Asset, holding *models.Holding, t *models.Transaction) error {
	if holding == nil || holding.Amount.LessThan(t.Amount) {
		return ErrInsufficientHoldings
	}
	// Proceeds and the new balance must still fit a numeric(20,10) column.
	if err := utils.CheckRange(t.TotalValue); err != nil {
		return invalidAmount(err)
	}
	balance := user.Balance.Add(t.TotalValue)
	if err := utils.CheckRange(balance); err != nil {
		return invalidAmount(err)
	}

	if err := tx.SetBalance(ctx, user.ID, balance); err != nil {
		return storageError(err)
	}
	if err := tx.SetAvailableCount(ctx, asset.ID, asset.AvailableCount.Add(t.Amount)); err != nil {
		return storageError(err)
	}

	remaining := holding.Amount.Sub(t.Amount)
	if remaining.IsZero() {
		if err := tx.DeleteHolding(ctx, user.ID, asset.ID); err != nil {
			return storageError(err)
		}
		return nil
	}
	holding.Amount = remaining
	if err := tx.SaveHolding(ctx, holding); err != nil {
		return storageError(err)
	}
	return nil
}

// TopUp adds amount to the user's cash balance under the user row lock.
func (s *TradeService) TopUp(ctx context.Context, userID int64, amount decimal.Decimal) (*models.User, error) {
	logger := utils.LoggerFromContext(ctx).WithField("user_id", userID)

	if err := utils.ValidateQuantity(amount); err != nil {
		logger.WithError(err).Warn("top-up rejected")
		return nil, invalidAmount(err)
	}
	logger = logger.WithField("amount", amount.String())

	var updated *models.User
	err := s.ledger.RunInTx(ctx, func(ctx context.Context, tx repositories.LedgerTx) error {
		user, err := tx.LockUser(ctx, userID)
		if err != nil {
			return lookupError(err, ErrUserNotFound)
		}
		user.Balance = user.Balance.Add(amount)
		if err := utils.CheckRange(user.Balance); err != nil {
			return invalidAmount(err)
		}
		if err := tx.SetBalance(ctx, userID, user.Balance); err != nil {
			return storageError(err)
		}
		updated = user
		return nil
	})
	if err != nil {
		err = classifyTxError(err)
		logger.WithError(err).Warn("top-up rejected")
		return nil, err
	}

	logger.WithField("balance", updated.Balance.String()).Info("balance topped up")
	return updated, nil
}

// lookupError maps a missing row to notFound and anything else to ErrStorage.
func lookupError(err, notFound error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return notFound
	}
	return storageError(err)
}

// classifyTxError turns failures raised outside the unit's callback (begin,
// commit, duplicate keys) into service errors. Errors already classified are
// returned as is.
func classifyTxError(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, repositories.ErrDuplicateIdempotencyKey):
		return ErrIdempotencyConflict
	case isServiceError(err):
		return err
	default:
		return storageError(err)
	}
}

func isServiceError(err error) bool {
	for _, target := range []error{
		ErrUserNotFound, ErrAssetNotFound, ErrAssetNotAvailable, ErrInsufficientFunds,
		ErrInsufficientHoldings, ErrInvalidAmount, ErrIdempotencyConflict, ErrStorage,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
