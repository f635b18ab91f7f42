package application

import (
	"context"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-court-booking/internal/domain/closure"
	"github.com/sanosuguru/go-court-booking/internal/domain/slot"
	"github.com/sanosuguru/go-court-booking/internal/pkg/logger"
)

type ClosureService struct {
	closureRepo  closure.Repository
	availability *AvailabilityService
}

func NewClosureService(cr closure.Repository, av *AvailabilityService) *ClosureService {
	return &ClosureService{closureRepo: cr, availability: av}
}

type CreateClosureInput struct {
	Date     string
	TimeSlot string
	CourtID  string
	Reason   string
}

// CreateClosure はクローズ設定を登録する（TimeSlot が空なら終日）
func (s *ClosureService) CreateClosure(ctx context.Context, input CreateClosureInput) (*closure.Closure, error) {
	date, err := slot.ParseDate(input.Date)
	if err != nil {
		return nil, err
	}
	c := closure.NewClosure(date, slot.ID(input.TimeSlot), input.CourtID, input.Reason)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := s.closureRepo.Create(ctx, c); err != nil {
		return nil, storageError("create_closure", err)
	}

	s.availability.Invalidate(ctx, c.Date)
	logger.FromContext(ctx).Info("クローズ設定を登録しました",
		zap.String("closure_id", c.ID), zap.String("date", c.Date.String()), zap.Bool("full_day", c.IsFullDay()))
	return c, nil
}

// ListClosures は from 以降のクローズ設定を返す
func (s *ClosureService) ListClosures(ctx context.Context, activeOnly bool, from string) ([]*closure.Closure, error) {
	var fromDate slot.Date
	if from != "" {
		d, err := slot.ParseDate(from)
		if err != nil {
			return nil, err
		}
		fromDate = d
	}
	list, err := s.closureRepo.List(ctx, activeOnly, fromDate)
	if err != nil {
		return nil, storageError("list_closures", err)
	}
	return list, nil
}

// DeactivateClosure はクローズ設定を論理削除する
func (s *ClosureService) DeactivateClosure(ctx context.Context, id string) error {
	c, err := s.closureRepo.GetByID(ctx, id)
	if err != nil {
		return storageError("get_closure", err)
	}
	if err := s.closureRepo.Deactivate(ctx, id); err != nil {
		return storageError("deactivate_closure", err)
	}
	s.availability.Invalidate(ctx, c.Date)
	return nil
}
