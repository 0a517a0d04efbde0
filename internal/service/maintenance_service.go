package service

import (
	"context"

	"votist/internal/domain"
	"votist/internal/logger"

	"go.uber.org/zap"
)

// MaintenanceService runs operator tasks over denormalized data.
type MaintenanceService interface {
	ReconcileCounters(ctx context.Context) (domain.CounterDrift, error)
}

type maintenanceService struct {
	repo      domain.MaintenanceRepository
	txManager domain.TransactionManager
}

func NewMaintenanceService(repo domain.MaintenanceRepository, txManager domain.TransactionManager) MaintenanceService {
	return &maintenanceService{repo: repo, txManager: txManager}
}

func (s *maintenanceService) ReconcileCounters(ctx context.Context) (domain.CounterDrift, error) {
	var drift domain.CounterDrift
	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		drift, err = s.repo.ReconcileCounters(ctx)
		return err
	})
	if err != nil {
		return domain.CounterDrift{}, domain.NewInternalError("Failed to reconcile counters", err)
	}

	log := logger.Get().Info
	if drift.Total() > 0 {
		log = logger.Get().Warn
	}
	log("Counter reconciliation finished",
		zap.Int64("pollOptions", drift.PollOptions),
		zap.Int64("polls", drift.Polls),
		zap.Int64("postLikes", drift.PostLikes),
		zap.Int64("commentLikes", drift.CommentLikes),
	)
	return drift, nil
}
