package account

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrAccountNotFound = errors.New("ユーザーが見つかりません")
	ErrAccountExists   = errors.New("ユーザーは既に登録されています")
	ErrUserIDRequired  = errors.New("ユーザーIDは必須です")
	ErrInvalidRole     = errors.New("ロールが不正です")
	// ErrLastSuperAdmin は最後の super_admin を降格しようとしたことを示す
	ErrLastSuperAdmin = errors.New("最後のスーパー管理者は降格できません")
	ErrNotAdmin       = errors.New("管理者ロールを持たないユーザーです")
)

// Role はユーザーの権限
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleModerator  Role = "moderator"
	RoleUser       Role = "user"
)

func ParseRole(s string) (Role, error) {
	switch r := Role(strings.TrimSpace(s)); r {
	case RoleSuperAdmin, RoleModerator, RoleUser:
		return r, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
}

// IsAdmin は管理APIを使えるロールかを返す
func (r Role) IsAdmin() bool {
	return r == RoleSuperAdmin || r == RoleModerator
}

func (r Role) String() string { return string(r) }

// Account は認証基盤のユーザーIDに紐づくロール割り当て
type Account struct {
	ID        string
	UserID    string
	Email     string
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewAccount(userID, email string, role Role) *Account {
	now := time.Now()
	return &Account{
		UserID:    strings.TrimSpace(userID),
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (a *Account) Validate() error {
	if a.UserID == "" {
		return ErrUserIDRequired
	}
	if _, err := ParseRole(string(a.Role)); err != nil {
		return err
	}
	return nil
}
