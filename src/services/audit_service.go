package services

import (
	"context"

	"brokerage/src/models"
	"brokerage/src/repositories"
	"brokerage/src/utils"

	"github.com/sirupsen/logrus"
)

type AuditServiceI interface {
	Run(ctx context.Context) ([]models.InvariantViolation, error)
}

// AuditService checks the ledger invariants over the stored data.
type AuditService struct {
	auditRepo repositories.AuditRepository
}

func NewAuditService(auditRepo repositories.AuditRepository) *AuditService {
	return &AuditService{auditRepo: auditRepo}
}

// Run logs every violation found at error level and returns them.
func (s *AuditService) Run(ctx context.Context) ([]models.InvariantViolation, error) {
	logger := utils.LoggerFromContext(ctx)

	violations, err := s.auditRepo.FindViolations(ctx)
	if err != nil {
		logger.WithError(err).Error("invariant audit failed")
		return nil, storageError(err)
	}

	for _, v := range violations {
		logger.WithFields(logrus.Fields{
			"check":      v.Check,
			"subject_id": v.SubjectID,
			"detail":     v.Detail,
		}).Error("ledger invariant violated")
	}
	logger.WithField("violations", len(violations)).Info("invariant audit finished")
	return violations, nil
}
