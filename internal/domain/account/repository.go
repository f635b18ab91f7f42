package account

import (
	"context"

	"github.com/sanosuguru/go-court-booking/internal/domain/transaction"
)

// Repository はロール割り当てのリポジトリ
type Repository interface {
	// Create は user_id が既にあれば ErrAccountExists を返す
	Create(ctx context.Context, a *Account) error

	GetByUserID(ctx context.Context, tx transaction.Tx, userID string) (*Account, error)

	// List は作成日時の新しい順で返す（role が空なら全件）
	List(ctx context.Context, role Role) ([]*Account, error)

	// CountByRole は tx が渡されていれば対象行をロックして数える
	CountByRole(ctx context.Context, tx transaction.Tx, role Role) (int, error)

	UpdateRole(ctx context.Context, tx transaction.Tx, userID string, role Role) error
}
