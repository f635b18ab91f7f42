package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sanosuguru/go-court-booking/internal/domain/booking"
	"github.com/sanosuguru/go-court-booking/internal/domain/slot"
	"github.com/sanosuguru/go-court-booking/internal/domain/transaction"
)

type bookingRow struct {
	ID              string    `db:"id"`
	GroupID         string    `db:"group_id"`
	Date            string    `db:"date"`
	TimeSlot        string    `db:"time_slot"`
	CourtID         string    `db:"court_id"`
	CustomerName    string    `db:"customer_name"`
	CustomerMobile  string    `db:"customer_mobile"`
	Status          string    `db:"status"`
	PaymentStatus   string    `db:"payment_status"`
	PaymentMethod   string    `db:"payment_method"`
	Price           int       `db:"price"`
	Notes           string    `db:"notes"`
	CancelledReason string    `db:"cancelled_reason"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

func (r *bookingRow) toEntity() *booking.Booking {
	return &booking.Booking{
		ID: r.ID, GroupID: r.GroupID,
		Date: slot.Date(r.Date), TimeSlot: slot.ID(r.TimeSlot), CourtID: r.CourtID,
		CustomerName: r.CustomerName, CustomerMobile: r.CustomerMobile,
		Status:          booking.Status(r.Status),
		PaymentStatus:   booking.PaymentStatus(r.PaymentStatus),
		PaymentMethod:   booking.PaymentMethod(r.PaymentMethod),
		Price:           r.Price,
		Notes:           r.Notes,
		CancelledReason: r.CancelledReason,
		CreatedAt:       r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

type groupRow struct {
	ID             string    `db:"id"`
	Date           string    `db:"date"`
	StartSlot      string    `db:"start_slot"`
	EndSlot        string    `db:"end_slot"`
	CustomerName   string    `db:"customer_name"`
	CustomerMobile string    `db:"customer_mobile"`
	CreatedAt      time.Time `db:"created_at"`
}

const bookingColumns = `id, COALESCE(group_id::text, '') AS group_id, to_char(date, 'YYYY-MM-DD') AS date,
	time_slot, court_id, customer_name, customer_mobile, status, payment_status, payment_method,
	price, notes, cancelled_reason, created_at, updated_at`

type BookingRepository struct{ db *sqlx.DB }

func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) CreateGroup(ctx context.Context, tx transaction.Tx, g *booking.Group, bookings []*booking.Booking) error {
	sqlTx := UnwrapTx(tx)
	if sqlTx == nil {
		return errNotPostgresTx
	}

	query := `INSERT INTO booking_groups (date, start_slot, end_slot, customer_name, customer_mobile, created_at) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	if err := sqlTx.QueryRowContext(ctx, query, string(g.Date), string(g.StartSlot), string(g.EndSlot), g.CustomerName, g.CustomerMobile, g.CreatedAt).Scan(&g.ID); err != nil {
		return fmt.Errorf("予約グループ作成に失敗: %w", err)
	}

	// 行ごとにINSERTし、確定済み一意インデックスの違反をそのまま検出する
	for _, b := range bookings {
		b.GroupID = g.ID
		query := `INSERT INTO bookings (group_id, date, time_slot, court_id, customer_name, customer_mobile, status, payment_status, payment_method, price, notes, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13) RETURNING id`
		err := sqlTx.QueryRowContext(ctx, query,
			b.GroupID, string(b.Date), string(b.TimeSlot), b.CourtID, b.CustomerName, b.CustomerMobile,
			string(b.Status), string(b.PaymentStatus), string(b.PaymentMethod), b.Price, b.Notes,
			b.CreatedAt, b.UpdatedAt,
		).Scan(&b.ID)
		if err != nil {
			if isUniqueViolation(err) {
				return booking.ErrConstraintViolation
			}
			return fmt.Errorf("予約作成に失敗: %w", err)
		}
	}
	return nil
}

func (r *BookingRepository) ConfirmedSlots(ctx context.Context, date slot.Date, slots []slot.ID) ([]slot.ID, error) {
	query := `SELECT time_slot FROM bookings WHERE date = $1 AND status = 'confirmed'`
	args := []interface{}{string(date)}
	if len(slots) > 0 {
		query += ` AND time_slot = ANY($2)`
		args = append(args, pq.Array(slot.Strings(slots)))
	}
	query += ` ORDER BY time_slot`

	var taken []string
	if err := r.db.SelectContext(ctx, &taken, query, args...); err != nil {
		return nil, fmt.Errorf("確定済みスロット取得に失敗: %w", err)
	}
	out := make([]slot.ID, len(taken))
	for i, s := range taken {
		out[i] = slot.ID(s)
	}
	return out, nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id string) (*booking.Booking, error) {
	var row bookingRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+bookingColumns+` FROM bookings WHERE id::text = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, fmt.Errorf("予約取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *BookingRepository) GetGroup(ctx context.Context, id string) (*booking.Group, error) {
	var row groupRow
	query := `SELECT id, to_char(date, 'YYYY-MM-DD') AS date, start_slot, end_slot, customer_name, customer_mobile, created_at FROM booking_groups WHERE id::text = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrGroupNotFound
		}
		return nil, fmt.Errorf("予約グループ取得に失敗: %w", err)
	}
	return &booking.Group{
		ID: row.ID, Date: slot.Date(row.Date),
		StartSlot: slot.ID(row.StartSlot), EndSlot: slot.ID(row.EndSlot),
		CustomerName: row.CustomerName, CustomerMobile: row.CustomerMobile,
		CreatedAt: row.CreatedAt,
	}, nil
}

func (r *BookingRepository) List(ctx context.Context, f booking.Filter) ([]*booking.Booking, error) {
	var (
		conds []string
		args  []interface{}
	)
	add := func(cond string, v interface{}) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.From != "" {
		add("date >= $%d", string(f.From))
	}
	if f.To != "" {
		add("date <= $%d", string(f.To))
	}
	if f.Status != "" {
		add("status = $%d", string(f.Status))
	}
	if f.PaymentStatus != "" {
		add("payment_status = $%d", string(f.PaymentStatus))
	}
	if f.GroupID != "" {
		add("group_id::text = $%d", f.GroupID)
	}

	query := `SELECT ` + bookingColumns + ` FROM bookings`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY date DESC, time_slot ASC`

	var rows []bookingRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("予約一覧取得に失敗: %w", err)
	}
	result := make([]*booking.Booking, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result, nil
}

func (r *BookingRepository) Update(ctx context.Context, tx transaction.Tx, b *booking.Booking) error {
	ex, err := pick(r.db, tx)
	if err != nil {
		return err
	}
	query := `UPDATE bookings SET status = $1, payment_status = $2, payment_method = $3, price = $4, notes = $5, cancelled_reason = $6, updated_at = $7 WHERE id::text = $8`
	result, err := ex.ExecContext(ctx, query,
		string(b.Status), string(b.PaymentStatus), string(b.PaymentMethod), b.Price, b.Notes, b.CancelledReason, b.UpdatedAt, b.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return booking.ErrConstraintViolation
		}
		return fmt.Errorf("予約更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return booking.ErrBookingNotFound
	}
	return nil
}

func (r *BookingRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM bookings WHERE id::text = $1`, id)
	if err != nil {
		return fmt.Errorf("予約削除に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return booking.ErrBookingNotFound
	}
	return nil
}

type statsRow struct {
	Total       int `db:"total"`
	Confirmed   int `db:"confirmed"`
	Cancelled   int `db:"cancelled"`
	Completed   int `db:"completed"`
	NoShow      int `db:"no_show"`
	Paid        int `db:"paid"`
	Unpaid      int `db:"unpaid"`
	TotalIncome int `db:"total_income"`
}

func (r *BookingRepository) Stats(ctx context.Context, from, to slot.Date) (*booking.Stats, error) {
	query := `SELECT
		COUNT(*) AS total,
		COUNT(*) FILTER (WHERE status = 'confirmed') AS confirmed,
		COUNT(*) FILTER (WHERE status = 'cancelled') AS cancelled,
		COUNT(*) FILTER (WHERE status = 'completed') AS completed,
		COUNT(*) FILTER (WHERE status = 'no_show') AS no_show,
		COUNT(*) FILTER (WHERE payment_status = 'paid') AS paid,
		COUNT(*) FILTER (WHERE payment_status = 'unpaid') AS unpaid,
		COALESCE(SUM(price) FILTER (WHERE payment_status = 'paid' AND status <> 'cancelled'), 0) AS total_income
		FROM bookings
		WHERE ($1 = '' OR date >= NULLIF($1, '')::date) AND ($2 = '' OR date <= NULLIF($2, '')::date)`

	var row statsRow
	if err := r.db.GetContext(ctx, &row, query, string(from), string(to)); err != nil {
		return nil, fmt.Errorf("予約集計に失敗: %w", err)
	}
	s := booking.Stats(row)
	return &s, nil
}

var _ booking.Repository = (*BookingRepository)(nil)
