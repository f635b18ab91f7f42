package booking

import (
	"context"

	"github.com/sanosuguru/go-court-booking/internal/domain/slot"
	"github.com/sanosuguru/go-court-booking/internal/domain/transaction"
)

// Filter は予約一覧の絞り込み条件（ゼロ値は条件なし）
type Filter struct {
	From          slot.Date
	To            slot.Date
	Status        Status
	PaymentStatus PaymentStatus
	GroupID       string
}

// Stats は期間内の予約集計
type Stats struct {
	Total       int
	Confirmed   int
	Cancelled   int
	Completed   int
	NoShow      int
	Paid        int
	Unpaid      int
	TotalIncome int
}

// Add は予約1件を集計に加える
// 売上は支払済みかつキャンセルされていない予約の料金合計
func (s *Stats) Add(b *Booking) {
	s.Total++
	switch b.Status {
	case StatusConfirmed:
		s.Confirmed++
	case StatusCancelled:
		s.Cancelled++
	case StatusCompleted:
		s.Completed++
	case StatusNoShow:
		s.NoShow++
	}
	switch b.PaymentStatus {
	case PaymentPaid:
		s.Paid++
		if b.Status != StatusCancelled {
			s.TotalIncome += b.Price
		}
	case PaymentUnpaid:
		s.Unpaid++
	}
}

// Match は予約が絞り込み条件に合うかを返す
func (f Filter) Match(b *Booking) bool {
	if f.From != "" && b.Date < f.From {
		return false
	}
	if f.To != "" && b.Date > f.To {
		return false
	}
	if f.Status != "" && b.Status != f.Status {
		return false
	}
	if f.PaymentStatus != "" && b.PaymentStatus != f.PaymentStatus {
		return false
	}
	if f.GroupID != "" && b.GroupID != f.GroupID {
		return false
	}
	return true
}

// Repository は予約リポジトリのインターフェース
type Repository interface {
	// CreateGroup は予約グループと各スロットの予約行を登録する（トランザクション必須）
	// (date, time_slot) の確定済み一意制約に違反した場合は ErrConstraintViolation を返す
	CreateGroup(ctx context.Context, tx transaction.Tx, g *Group, bookings []*Booking) error

	// ConfirmedSlots は指定日の確定済みスロットを昇順で返す（slots が空なら全スロット対象）
	ConfirmedSlots(ctx context.Context, date slot.Date, slots []slot.ID) ([]slot.ID, error)

	// GetByID はIDから予約を取得する
	GetByID(ctx context.Context, id string) (*Booking, error)

	// GetGroup はIDから予約グループを取得する
	GetGroup(ctx context.Context, id string) (*Group, error)

	// List は条件に合う予約を日付降順・スロット昇順で返す
	List(ctx context.Context, f Filter) ([]*Booking, error)

	// Update は予約を更新する（トランザクション必須）
	// 確定済みへの変更で一意制約に違反した場合は ErrConstraintViolation を返す
	Update(ctx context.Context, tx transaction.Tx, b *Booking) error

	// Delete は予約を物理削除する
	Delete(ctx context.Context, id string) error

	// Stats は期間内の予約を集計する
	Stats(ctx context.Context, from, to slot.Date) (*Stats, error)
}
