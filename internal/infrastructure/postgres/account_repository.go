package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-court-booking/internal/domain/account"
	"github.com/sanosuguru/go-court-booking/internal/domain/transaction"
)

type accountRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Email     string    `db:"email"`
	Role      string    `db:"role"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r *accountRow) toEntity() *account.Account {
	return &account.Account{
		ID: r.ID, UserID: r.UserID, Email: r.Email, Role: account.Role(r.Role),
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

const accountColumns = `id, user_id, email, role, created_at, updated_at`

type AccountRepository struct{ db *sqlx.DB }

func NewAccountRepository(db *sqlx.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, a *account.Account) error {
	query := `INSERT INTO user_roles (user_id, email, role, created_at, updated_at) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	err := r.db.QueryRowContext(ctx, query, a.UserID, a.Email, string(a.Role), a.CreatedAt, a.UpdatedAt).Scan(&a.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return account.ErrAccountExists
		}
		return fmt.Errorf("ユーザー登録に失敗: %w", err)
	}
	return nil
}

func (r *AccountRepository) GetByUserID(ctx context.Context, tx transaction.Tx, userID string) (*account.Account, error) {
	ex, err := pick(r.db, tx)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + accountColumns + ` FROM user_roles WHERE user_id = $1`
	var row accountRow
	if err := ex.GetContext(ctx, &row, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, account.ErrAccountNotFound
		}
		return nil, fmt.Errorf("ユーザー取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *AccountRepository) List(ctx context.Context, role account.Role) ([]*account.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM user_roles WHERE ($1 = '' OR role = $1) ORDER BY created_at DESC`
	var rows []accountRow
	if err := r.db.SelectContext(ctx, &rows, query, string(role)); err != nil {
		return nil, fmt.Errorf("ユーザー一覧取得に失敗: %w", err)
	}
	out := make([]*account.Account, len(rows))
	for i := range rows {
		out[i] = rows[i].toEntity()
	}
	return out, nil
}

// CountByRole は tx 内では対象行を id 順に FOR UPDATE でロックしてから数える
// 同時に2人の super_admin を降格しても、後続は先行のコミット後の行で数え直す
func (r *AccountRepository) CountByRole(ctx context.Context, tx transaction.Tx, role account.Role) (int, error) {
	ex, err := pick(r.db, tx)
	if err != nil {
		return 0, err
	}
	query := `SELECT id FROM user_roles WHERE role = $1 ORDER BY id`
	if tx != nil {
		query += ` FOR UPDATE`
	}
	var ids []string
	if err := ex.SelectContext(ctx, &ids, query, string(role)); err != nil {
		return 0, fmt.Errorf("ロール別件数の取得に失敗: %w", err)
	}
	return len(ids), nil
}

func (r *AccountRepository) UpdateRole(ctx context.Context, tx transaction.Tx, userID string, role account.Role) error {
	ex, err := pick(r.db, tx)
	if err != nil {
		return err
	}
	result, err := ex.ExecContext(ctx, `UPDATE user_roles SET role = $1, updated_at = $2 WHERE user_id = $3`, string(role), time.Now(), userID)
	if err != nil {
		return fmt.Errorf("ロール更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return account.ErrAccountNotFound
	}
	return nil
}

var _ account.Repository = (*AccountRepository)(nil)
