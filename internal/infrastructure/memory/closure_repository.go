package memory

import (
	"context"
	"sort"

	"github.com/sanosuguru/go-court-booking/internal/domain/closure"
	"github.com/sanosuguru/go-court-booking/internal/domain/slot"
)

type ClosureRepository struct{ store *Store }

func NewClosureRepository(s *Store) *ClosureRepository {
	return &ClosureRepository{store: s}
}

func (r *ClosureRepository) Create(ctx context.Context, c *closure.Closure) error {
	return r.store.read(func() error {
		c.ID = newID()
		stored := *c
		r.store.closures[c.ID] = &stored
		return nil
	})
}

func (r *ClosureRepository) GetByID(ctx context.Context, id string) (*closure.Closure, error) {
	var out *closure.Closure
	err := r.store.read(func() error {
		c, ok := r.store.closures[id]
		if !ok {
			return closure.ErrClosureNotFound
		}
		cp := *c
		out = &cp
		return nil
	})
	return out, err
}

func (r *ClosureRepository) ActiveByDate(ctx context.Context, date slot.Date) ([]*closure.Closure, error) {
	return r.collect(func(c *closure.Closure) bool {
		return c.IsActive && c.Date == date
	})
}

func (r *ClosureRepository) List(ctx context.Context, activeOnly bool, from slot.Date) ([]*closure.Closure, error) {
	return r.collect(func(c *closure.Closure) bool {
		if activeOnly && !c.IsActive {
			return false
		}
		return from == "" || c.Date >= from
	})
}

func (r *ClosureRepository) Deactivate(ctx context.Context, id string) error {
	return r.store.read(func() error {
		c, ok := r.store.closures[id]
		if !ok {
			return closure.ErrClosureNotFound
		}
		c.Deactivate()
		return nil
	})
}

func (r *ClosureRepository) collect(keep func(*closure.Closure) bool) ([]*closure.Closure, error) {
	out := []*closure.Closure{}
	err := r.store.read(func() error {
		for _, c := range r.store.closures {
			if keep(c) {
				cp := *c
				out = append(out, &cp)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].TimeSlot < out[j].TimeSlot
	})
	return out, nil
}

var _ closure.Repository = (*ClosureRepository)(nil)
