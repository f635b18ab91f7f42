package memory

import (
	"context"
	"sort"
	"time"

	"github.com/sanosuguru/go-court-booking/internal/domain/pricing"
	"github.com/sanosuguru/go-court-booking/internal/domain/slot"
	"github.com/sanosuguru/go-court-booking/internal/domain/transaction"
)

type PricingRepository struct{ store *Store }

func NewPricingRepository(s *Store) *PricingRepository {
	return &PricingRepository{store: s}
}

func (r *PricingRepository) List(ctx context.Context) ([]*pricing.Config, error) {
	out := make([]*pricing.Config, 0, slot.SlotsPerDay)
	err := r.store.read(func() error {
		for _, c := range r.store.pricing {
			cp := *c
			out = append(out, &cp)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TimeSlot < out[j].TimeSlot })
	return out, nil
}

func (r *PricingRepository) Update(ctx context.Context, tx transaction.Tx, c pricing.Change) error {
	return r.store.withTx(tx, func(t *Tx) error {
		s := r.store
		cur, ok := s.pricing[c.TimeSlot]
		if !ok {
			return pricing.ErrPricingNotFound
		}
		prev := *cur
		next := prev
		next.Price = c.Price
		next.IsPrimeTime = c.IsPrimeTime
		next.UpdatedAt = time.Now()
		s.pricing[c.TimeSlot] = &next
		t.record(func() { s.pricing[prev.TimeSlot] = &prev })
		return nil
	})
}

var _ pricing.Repository = (*PricingRepository)(nil)
