package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-court-booking/internal/domain/pricing"
	"github.com/sanosuguru/go-court-booking/internal/domain/slot"
	"github.com/sanosuguru/go-court-booking/internal/domain/transaction"
)

type pricingRow struct {
	ID          string    `db:"id"`
	TimeSlot    string    `db:"time_slot"`
	Price       int       `db:"price_lkr"`
	IsPrimeTime bool      `db:"is_prime_time"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type PricingRepository struct{ db *sqlx.DB }

func NewPricingRepository(db *sqlx.DB) *PricingRepository {
	return &PricingRepository{db: db}
}

func (r *PricingRepository) List(ctx context.Context) ([]*pricing.Config, error) {
	var rows []pricingRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT id, time_slot, price_lkr, is_prime_time, updated_at FROM pricing ORDER BY time_slot`); err != nil {
		return nil, fmt.Errorf("料金設定取得に失敗: %w", err)
	}
	out := make([]*pricing.Config, len(rows))
	for i, row := range rows {
		out[i] = &pricing.Config{
			ID: row.ID, TimeSlot: slot.ID(row.TimeSlot), Price: row.Price,
			IsPrimeTime: row.IsPrimeTime, UpdatedAt: row.UpdatedAt,
		}
	}
	return out, nil
}

func (r *PricingRepository) Update(ctx context.Context, tx transaction.Tx, c pricing.Change) error {
	ex, err := pick(r.db, tx)
	if err != nil {
		return err
	}
	query := `UPDATE pricing SET price_lkr = $1, is_prime_time = $2, updated_at = $3 WHERE time_slot = $4`
	result, err := ex.ExecContext(ctx, query, c.Price, c.IsPrimeTime, time.Now(), string(c.TimeSlot))
	if err != nil {
		return fmt.Errorf("料金設定更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return pricing.ErrPricingNotFound
	}
	return nil
}

var _ pricing.Repository = (*PricingRepository)(nil)
