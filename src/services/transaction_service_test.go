package services_test

import (
	"context"
	"testing"

	"brokerage/src/models"
	"brokerage/src/repositories"
	"brokerage/src/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionService(t *testing.T) {
	ctx := context.Background()
	repo := &fakeTransactionRepo{transactions: []models.Transaction{
		{ID: 1, UserID: 1, Kind: models.TransactionBuy},
		{ID: 2, UserID: 2, Kind: models.TransactionBuy},
		{ID: 3, UserID: 1, Kind: models.TransactionSell},
	}}
	svc := services.NewTransactionService(repo)
	admin := services.Viewer{UserID: 9, Role: models.RoleAdmin}
	user := services.Viewer{UserID: 1, Role: models.RoleUser}
	page := repositories.Page{Limit: 10}

	t.Run("admin lists everything", func(t *testing.T) {
		all, err := svc.ListTransactions(ctx, admin, repositories.TransactionFilter{}, page)
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})

	t.Run("user lists only their own", func(t *testing.T) {
		own, err := svc.ListTransactions(ctx, user, repositories.TransactionFilter{UserID: 1}, page)
		require.NoError(t, err)
		assert.Len(t, own, 2)

		_, err = svc.ListTransactions(ctx, user, repositories.TransactionFilter{}, page)
		assert.ErrorIs(t, err, services.ErrForbidden)
		_, err = svc.ListTransactions(ctx, user, repositories.TransactionFilter{UserID: 2}, page)
		assert.ErrorIs(t, err, services.ErrForbidden)
	})

	t.Run("get by id is admin only", func(t *testing.T) {
		tr, err := svc.GetTransaction(ctx, admin, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(2), tr.UserID)

		_, err = svc.GetTransaction(ctx, admin, 99)
		assert.ErrorIs(t, err, services.ErrTransactionNotFound)
		_, err = svc.GetTransaction(ctx, user, 1)
		assert.ErrorIs(t, err, services.ErrForbidden)
	})
}

func TestAuditService(t *testing.T) {
	ctx := context.Background()

	repo := &fakeAuditRepo{violations: []models.InvariantViolation{
		{Check: "negative_balance", SubjectID: 3, Detail: "balance=-1"},
	}}
	violations, err := services.NewAuditService(repo).Run(ctx)
	require.NoError(t, err)
	assert.Len(t, violations, 1)

	repo.err = errDatabaseDown
	_, err = services.NewAuditService(repo).Run(ctx)
	assert.ErrorIs(t, err, services.ErrStorage)
}
