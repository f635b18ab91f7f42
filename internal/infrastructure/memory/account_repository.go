package memory

import (
	"context"
	"sort"
	"time"

	"github.com/sanosuguru/go-court-booking/internal/domain/account"
	"github.com/sanosuguru/go-court-booking/internal/domain/transaction"
)

type AccountRepository struct{ store *Store }

func NewAccountRepository(s *Store) *AccountRepository {
	return &AccountRepository{store: s}
}

func (r *AccountRepository) Create(ctx context.Context, a *account.Account) error {
	return r.store.read(func() error {
		if _, ok := r.store.accounts[a.UserID]; ok {
			return account.ErrAccountExists
		}
		a.ID = newID()
		stored := *a
		r.store.accounts[a.UserID] = &stored
		return nil
	})
}

func (r *AccountRepository) GetByUserID(ctx context.Context, tx transaction.Tx, userID string) (*account.Account, error) {
	var out *account.Account
	err := r.store.withTx(tx, func(*Tx) error {
		a, ok := r.store.accounts[userID]
		if !ok {
			return account.ErrAccountNotFound
		}
		cp := *a
		out = &cp
		return nil
	})
	return out, err
}

func (r *AccountRepository) List(ctx context.Context, role account.Role) ([]*account.Account, error) {
	out := []*account.Account{}
	err := r.store.read(func() error {
		for _, a := range r.store.accounts {
			if role == "" || a.Role == role {
				cp := *a
				out = append(out, &cp)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}

func (r *AccountRepository) CountByRole(ctx context.Context, tx transaction.Tx, role account.Role) (int, error) {
	n := 0
	err := r.store.withTx(tx, func(*Tx) error {
		for _, a := range r.store.accounts {
			if a.Role == role {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *AccountRepository) UpdateRole(ctx context.Context, tx transaction.Tx, userID string, role account.Role) error {
	return r.store.withTx(tx, func(t *Tx) error {
		s := r.store
		cur, ok := s.accounts[userID]
		if !ok {
			return account.ErrAccountNotFound
		}
		prev := *cur
		next := prev
		next.Role = role
		next.UpdatedAt = time.Now()
		s.accounts[userID] = &next
		t.record(func() { s.accounts[prev.UserID] = &prev })
		return nil
	})
}

var _ account.Repository = (*AccountRepository)(nil)
