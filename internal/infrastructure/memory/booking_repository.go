package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/sanosuguru/go-court-booking/internal/domain/booking"
	"github.com/sanosuguru/go-court-booking/internal/domain/slot"
	"github.com/sanosuguru/go-court-booking/internal/domain/transaction"
)

func newID() string { return uuid.NewString() }

type BookingRepository struct{ store *Store }

func NewBookingRepository(s *Store) *BookingRepository {
	return &BookingRepository{store: s}
}

func (r *BookingRepository) CreateGroup(ctx context.Context, tx transaction.Tx, g *booking.Group, bookings []*booking.Booking) error {
	if tx == nil {
		return errForeignTx
	}
	return r.store.withTx(tx, func(t *Tx) error {
		s := r.store
		g.ID = newID()
		stored := *g
		s.groups[g.ID] = &stored
		t.record(func() { delete(s.groups, stored.ID) })

		for _, b := range bookings {
			b.GroupID = g.ID
			b.ID = newID()
			if err := s.insert(t, b); err != nil {
				return err
			}
		}
		return nil
	})
}

// insert は部分一意インデックス (date, time_slot) WHERE status = 'confirmed' を模倣する
func (s *Store) insert(t *Tx, b *booking.Booking) error {
	key := slotKey{b.Date, b.TimeSlot}
	if b.IsConfirmed() {
		if _, taken := s.confirmed[key]; taken {
			return booking.ErrConstraintViolation
		}
		s.confirmed[key] = b.ID
		t.record(func() { delete(s.confirmed, key) })
	}
	stored := *b
	s.bookings[b.ID] = &stored
	t.record(func() { delete(s.bookings, stored.ID) })
	return nil
}

func (r *BookingRepository) ConfirmedSlots(ctx context.Context, date slot.Date, slots []slot.ID) ([]slot.ID, error) {
	targets := slots
	if len(targets) == 0 {
		targets = slot.All()
	}
	var out []slot.ID
	err := r.store.read(func() error {
		for _, id := range targets {
			if _, ok := r.store.confirmed[slotKey{date, id}]; ok {
				out = append(out, id)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id string) (*booking.Booking, error) {
	var out *booking.Booking
	err := r.store.read(func() error {
		b, ok := r.store.bookings[id]
		if !ok {
			return booking.ErrBookingNotFound
		}
		c := *b
		out = &c
		return nil
	})
	return out, err
}

func (r *BookingRepository) GetGroup(ctx context.Context, id string) (*booking.Group, error) {
	var out *booking.Group
	err := r.store.read(func() error {
		g, ok := r.store.groups[id]
		if !ok {
			return booking.ErrGroupNotFound
		}
		c := *g
		out = &c
		return nil
	})
	return out, err
}

func (r *BookingRepository) List(ctx context.Context, f booking.Filter) ([]*booking.Booking, error) {
	out := []*booking.Booking{}
	err := r.store.read(func() error {
		for _, b := range r.store.bookings {
			if f.Match(b) {
				c := *b
				out = append(out, &c)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		if out[i].TimeSlot != out[j].TimeSlot {
			return out[i].TimeSlot < out[j].TimeSlot
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *BookingRepository) Update(ctx context.Context, tx transaction.Tx, b *booking.Booking) error {
	return r.store.withTx(tx, func(t *Tx) error {
		s := r.store
		cur, ok := s.bookings[b.ID]
		if !ok {
			return booking.ErrBookingNotFound
		}
		key := slotKey{cur.Date, cur.TimeSlot}
		if b.IsConfirmed() && !cur.IsConfirmed() {
			if _, taken := s.confirmed[key]; taken {
				return booking.ErrConstraintViolation
			}
			s.confirmed[key] = b.ID
			t.record(func() { delete(s.confirmed, key) })
		}
		if !b.IsConfirmed() && cur.IsConfirmed() {
			owner := s.confirmed[key]
			delete(s.confirmed, key)
			t.record(func() { s.confirmed[key] = owner })
		}

		prev := *cur
		next := *cur
		next.Status = b.Status
		next.PaymentStatus = b.PaymentStatus
		next.PaymentMethod = b.PaymentMethod
		next.Price = b.Price
		next.Notes = b.Notes
		next.CancelledReason = b.CancelledReason
		next.UpdatedAt = b.UpdatedAt
		s.bookings[b.ID] = &next
		t.record(func() { s.bookings[prev.ID] = &prev })
		return nil
	})
}

func (r *BookingRepository) Delete(ctx context.Context, id string) error {
	return r.store.withTx(nil, func(t *Tx) error {
		s := r.store
		b, ok := s.bookings[id]
		if !ok {
			return booking.ErrBookingNotFound
		}
		if b.IsConfirmed() {
			delete(s.confirmed, slotKey{b.Date, b.TimeSlot})
		}
		delete(s.bookings, id)
		return nil
	})
}

func (r *BookingRepository) Stats(ctx context.Context, from, to slot.Date) (*booking.Stats, error) {
	stats := &booking.Stats{}
	f := booking.Filter{From: from, To: to}
	err := r.store.read(func() error {
		for _, b := range r.store.bookings {
			if f.Match(b) {
				stats.Add(b)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

var _ booking.Repository = (*BookingRepository)(nil)
