package application

import (
	"context"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-court-booking/internal/domain/pricing"
	"github.com/sanosuguru/go-court-booking/internal/domain/transaction"
	"github.com/sanosuguru/go-court-booking/internal/pkg/logger"
)

type PricingService struct {
	txManager   transaction.Manager
	pricingRepo pricing.Repository
}

func NewPricingService(tm transaction.Manager, pr pricing.Repository) *PricingService {
	return &PricingService{txManager: tm, pricingRepo: pr}
}

func (s *PricingService) ListPricing(ctx context.Context) ([]*pricing.Config, error) {
	list, err := s.pricingRepo.List(ctx)
	if err != nil {
		return nil, storageError("list_pricing", err)
	}
	return list, nil
}

func (s *PricingService) UpdatePricing(ctx context.Context, c pricing.Change) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := s.pricingRepo.Update(ctx, nil, c); err != nil {
		return storageError("update_pricing", err)
	}
	return nil
}

// BulkUpdatePricing は複数スロットの料金を1トランザクションで更新する
func (s *PricingService) BulkUpdatePricing(ctx context.Context, changes []pricing.Change) error {
	for _, c := range changes {
		if err := c.Validate(); err != nil {
			return err
		}
	}
	err := transaction.WithTx(ctx, s.txManager, func(tx transaction.Tx) error {
		for _, c := range changes {
			if err := s.pricingRepo.Update(ctx, tx, c); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return storageError("bulk_update_pricing", err)
	}
	logger.FromContext(ctx).Info("料金設定を一括更新しました", zap.Int("count", len(changes)))
	return nil
}
