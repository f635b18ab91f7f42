package application

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-court-booking/internal/domain/account"
	"github.com/sanosuguru/go-court-booking/internal/domain/transaction"
	"github.com/sanosuguru/go-court-booking/internal/pkg/logger"
)

// TokenIssuer は管理APIのアクセストークンを署名する
type TokenIssuer func(subject, role string, ttl time.Duration) (string, error)

var errTokenIssuerMissing = errors.New("トークン発行者が設定されていません")

// DefaultAdminTokenTTL は有効期間の指定がないときのトークン寿命
const DefaultAdminTokenTTL = 12 * time.Hour

type AccountService struct {
	txManager   transaction.Manager
	accountRepo account.Repository
	issue       TokenIssuer
}

func NewAccountService(tm transaction.Manager, ar account.Repository, issue TokenIssuer) *AccountService {
	return &AccountService{txManager: tm, accountRepo: ar, issue: issue}
}

type RegisterAccountInput struct {
	UserID string
	Email  string
	Role   string
}

// RegisterAccount は認証基盤のユーザーにロールを割り当てる
func (s *AccountService) RegisterAccount(ctx context.Context, input RegisterAccountInput) (*account.Account, error) {
	role := account.RoleUser
	if input.Role != "" {
		r, err := account.ParseRole(input.Role)
		if err != nil {
			return nil, err
		}
		role = r
	}
	a := account.NewAccount(input.UserID, input.Email, role)
	if err := a.Validate(); err != nil {
		return nil, err
	}
	if err := s.accountRepo.Create(ctx, a); err != nil {
		return nil, storageError("create_account", err)
	}
	logger.FromContext(ctx).Info("ユーザーを登録しました", zap.String("user_id", a.UserID), zap.String("role", a.Role.String()))
	return a, nil
}

// ListAccounts は role で絞り込んだ一覧を返す（空なら全件）
func (s *AccountService) ListAccounts(ctx context.Context, role string) ([]*account.Account, error) {
	var r account.Role
	if role != "" {
		parsed, err := account.ParseRole(role)
		if err != nil {
			return nil, err
		}
		r = parsed
	}
	list, err := s.accountRepo.List(ctx, r)
	if err != nil {
		return nil, storageError("list_accounts", err)
	}
	return list, nil
}

// UpdateRole はロールを変更する
// super_admin が1人しか残らない状態での降格は ErrLastSuperAdmin
func (s *AccountService) UpdateRole(ctx context.Context, userID, role string) (*account.Account, error) {
	next, err := account.ParseRole(role)
	if err != nil {
		return nil, err
	}

	var updated *account.Account
	err = transaction.WithTx(ctx, s.txManager, func(tx transaction.Tx) error {
		cur, err := s.accountRepo.GetByUserID(ctx, tx, userID)
		if err != nil {
			return err
		}
		if cur.Role == account.RoleSuperAdmin && next != account.RoleSuperAdmin {
			n, err := s.accountRepo.CountByRole(ctx, tx, account.RoleSuperAdmin)
			if err != nil {
				return err
			}
			if n <= 1 {
				return account.ErrLastSuperAdmin
			}
		}
		if err := s.accountRepo.UpdateRole(ctx, tx, userID, next); err != nil {
			return err
		}
		cur.Role = next
		updated = cur
		return nil
	})
	if err != nil {
		return nil, storageError("update_role", err)
	}

	logger.FromContext(ctx).Info("ロールを変更しました", zap.String("user_id", userID), zap.String("role", next.String()))
	return updated, nil
}

// IssueToken は管理者ロールを持つユーザーのアクセストークンを発行する
// ロールは発行時点のものがトークンに入る
func (s *AccountService) IssueToken(ctx context.Context, userID string, ttl time.Duration) (string, *account.Account, error) {
	if s.issue == nil {
		return "", nil, errTokenIssuerMissing
	}
	if ttl <= 0 {
		ttl = DefaultAdminTokenTTL
	}
	a, err := s.accountRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		return "", nil, storageError("get_account", err)
	}
	if !a.Role.IsAdmin() {
		return "", nil, account.ErrNotAdmin
	}
	token, err := s.issue(a.UserID, a.Role.String(), ttl)
	if err != nil {
		return "", nil, err
	}
	logger.FromContext(ctx).Info("管理者トークンを発行しました",
		zap.String("user_id", a.UserID), zap.String("role", a.Role.String()), zap.Duration("ttl", ttl))
	return token, a, nil
}
