package closure

import (
	"context"

	"github.com/sanosuguru/go-court-booking/internal/domain/slot"
)

// Repository はクローズ設定リポジトリのインターフェース
type Repository interface {
	Create(ctx context.Context, c *Closure) error
	GetByID(ctx context.Context, id string) (*Closure, error)

	// ActiveByDate は指定日の有効なクローズ設定を返す
	ActiveByDate(ctx context.Context, date slot.Date) ([]*Closure, error)

	// List は日付昇順・スロット昇順で返す（from が空なら全期間）
	List(ctx context.Context, activeOnly bool, from slot.Date) ([]*Closure, error)

	// Deactivate は is_active を false にする
	Deactivate(ctx context.Context, id string) error
}
