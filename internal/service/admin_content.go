package service

import (
	"context"

	"ecg-academy/internal/domain"

	"go.uber.org/zap"
)

// AdminContentService removes users and catalog content.
type AdminContentService interface {
	// DeleteUser removes the profile, quiz stats and read status.
	// Points ledgers, events and attempts are kept for audit.
	DeleteUser(ctx context.Context, uid string) error
	// DeleteCase removes the case and its answer stats.
	DeleteCase(ctx context.Context, caseID string) error
	DeletePaper(ctx context.Context, paperID string) error
}

type adminContentServiceImpl struct {
	store  domain.BatchCommitter
	logger *zap.Logger
}

func NewAdminContentService(store domain.BatchCommitter, logger *zap.Logger) AdminContentService {
	return &adminContentServiceImpl{store: store, logger: logger}
}

func (s *adminContentServiceImpl) DeleteUser(ctx context.Context, uid string) error {
	if uid == "" {
		return domain.NewInvalidInputError("User ID is required")
	}
	batch := domain.NewBatch().
		Delete(domain.CollectionUsers, uid).
		Delete(domain.CollectionUserStats, uid).
		Delete(domain.CollectionContentStatus, uid)
	return s.commit(ctx, batch, "user", uid)
}

func (s *adminContentServiceImpl) DeleteCase(ctx context.Context, caseID string) error {
	if caseID == "" {
		return domain.NewInvalidInputError("Case ID is required")
	}
	batch := domain.NewBatch().
		Delete(domain.CollectionCases, caseID).
		Delete(domain.CollectionCaseStats, caseID)
	return s.commit(ctx, batch, "case", caseID)
}

func (s *adminContentServiceImpl) DeletePaper(ctx context.Context, paperID string) error {
	if paperID == "" {
		return domain.NewInvalidInputError("Paper ID is required")
	}
	return s.commit(ctx, domain.NewBatch().Delete(domain.CollectionPapers, paperID), "paper", paperID)
}

func (s *adminContentServiceImpl) commit(ctx context.Context, batch *domain.Batch, kind, id string) error {
	if err := s.store.Commit(ctx, batch); err != nil {
		return domain.NewInternalError("failed to delete "+kind, err)
	}
	s.logger.Info("deleted "+kind, zap.String("id", id))
	return nil
}
