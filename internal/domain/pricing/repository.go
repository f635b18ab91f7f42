package pricing

import (
	"context"

	"github.com/sanosuguru/go-court-booking/internal/domain/transaction"
)

// Repository は料金設定リポジトリのインターフェース
type Repository interface {
	// List はスロット昇順で全件返す
	List(ctx context.Context) ([]*Config, error)

	// Update は1スロットの料金を更新する（tx が nil の場合は単独で実行）
	Update(ctx context.Context, tx transaction.Tx, c Change) error
}
