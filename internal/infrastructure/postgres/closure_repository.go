package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-court-booking/internal/domain/closure"
	"github.com/sanosuguru/go-court-booking/internal/domain/slot"
)

type closureRow struct {
	ID        string         `db:"id"`
	Date      string         `db:"date"`
	TimeSlot  sql.NullString `db:"time_slot"`
	CourtID   string         `db:"court_id"`
	Reason    string         `db:"reason"`
	IsActive  bool           `db:"is_active"`
	CreatedAt time.Time      `db:"created_at"`
}

func (r *closureRow) toEntity() *closure.Closure {
	return &closure.Closure{
		ID: r.ID, Date: slot.Date(r.Date), TimeSlot: slot.ID(r.TimeSlot.String),
		CourtID: r.CourtID, Reason: r.Reason, IsActive: r.IsActive, CreatedAt: r.CreatedAt,
	}
}

const closureColumns = `id, to_char(date, 'YYYY-MM-DD') AS date, time_slot, court_id, reason, is_active, created_at`

type ClosureRepository struct{ db *sqlx.DB }

func NewClosureRepository(db *sqlx.DB) *ClosureRepository {
	return &ClosureRepository{db: db}
}

func (r *ClosureRepository) Create(ctx context.Context, c *closure.Closure) error {
	timeSlot := sql.NullString{String: string(c.TimeSlot), Valid: c.TimeSlot != ""}
	query := `INSERT INTO slot_closures (date, time_slot, court_id, reason, is_active, created_at) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	if err := r.db.QueryRowContext(ctx, query, string(c.Date), timeSlot, c.CourtID, c.Reason, c.IsActive, c.CreatedAt).Scan(&c.ID); err != nil {
		return fmt.Errorf("クローズ設定作成に失敗: %w", err)
	}
	return nil
}

func (r *ClosureRepository) GetByID(ctx context.Context, id string) (*closure.Closure, error) {
	var row closureRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+closureColumns+` FROM slot_closures WHERE id::text = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, closure.ErrClosureNotFound
		}
		return nil, fmt.Errorf("クローズ設定取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *ClosureRepository) ActiveByDate(ctx context.Context, date slot.Date) ([]*closure.Closure, error) {
	var rows []closureRow
	query := `SELECT ` + closureColumns + ` FROM slot_closures WHERE date = $1 AND is_active ORDER BY time_slot NULLS FIRST`
	if err := r.db.SelectContext(ctx, &rows, query, string(date)); err != nil {
		return nil, fmt.Errorf("クローズ設定取得に失敗: %w", err)
	}
	return toClosures(rows), nil
}

func (r *ClosureRepository) List(ctx context.Context, activeOnly bool, from slot.Date) ([]*closure.Closure, error) {
	query := `SELECT ` + closureColumns + ` FROM slot_closures
		WHERE (NOT $1 OR is_active) AND ($2 = '' OR date >= NULLIF($2, '')::date)
		ORDER BY date ASC, time_slot NULLS FIRST`
	var rows []closureRow
	if err := r.db.SelectContext(ctx, &rows, query, activeOnly, string(from)); err != nil {
		return nil, fmt.Errorf("クローズ設定一覧取得に失敗: %w", err)
	}
	return toClosures(rows), nil
}

func (r *ClosureRepository) Deactivate(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE slot_closures SET is_active = FALSE WHERE id::text = $1`, id)
	if err != nil {
		return fmt.Errorf("クローズ設定の無効化に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return closure.ErrClosureNotFound
	}
	return nil
}

func toClosures(rows []closureRow) []*closure.Closure {
	out := make([]*closure.Closure, len(rows))
	for i := range rows {
		out[i] = rows[i].toEntity()
	}
	return out
}

var _ closure.Repository = (*ClosureRepository)(nil)
