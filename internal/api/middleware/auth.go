package middleware

import (
	"errors"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-court-booking/internal/domain/account"
	"github.com/sanosuguru/go-court-booking/internal/pkg/logger"
)

// 管理者ロール（user_roles.role の値）
const (
	RoleSuperAdmin = string(account.RoleSuperAdmin)
	RoleModerator  = string(account.RoleModerator)
)

// echo.Context に保存するキー
const (
	ContextKeyAdminID = "admin_id"
	ContextKeyRole    = "role"
)

var errEmptySecret = errors.New("JWTシークレットが設定されていません")

// AdminClaims は管理APIのアクセストークンのクレーム
type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// IssueAdminToken は HS256 で署名したアクセストークンを発行する
func IssueAdminToken(secret, subject, role string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errEmptySecret
	}
	now := time.Now()
	claims := AdminClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func parseAdminToken(secret, raw string) (*AdminClaims, error) {
	if secret == "" {
		return nil, errEmptySecret
	}
	tok, err := jwt.ParseWithClaims(raw, &AdminClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	claims, ok := tok.Claims.(*AdminClaims)
	if !ok || !tok.Valid {
		return nil, errors.New("トークンが無効です")
	}
	return claims, nil
}

// JWTAuth は Bearer トークンを検証し、管理者IDとロールをコンテキストに保存する
// シークレットが空の場合はすべて拒否する
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			raw, ok := strings.CutPrefix(auth, "Bearer ")
			if !ok || raw == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "認証トークンが必要です")
			}
			claims, err := parseAdminToken(secret, raw)
			if err != nil {
				logger.FromContext(c.Request().Context()).Warn("管理APIのトークン検証に失敗", zap.Error(err))
				return echo.NewHTTPError(http.StatusUnauthorized, "認証トークンが無効です")
			}
			if claims.Role != RoleSuperAdmin && claims.Role != RoleModerator {
				return echo.NewHTTPError(http.StatusForbidden, "管理者権限がありません")
			}

			c.Set(ContextKeyAdminID, claims.Subject)
			c.Set(ContextKeyRole, claims.Role)
			req := c.Request()
			ctx := logger.WithContext(req.Context(), logger.FromContext(req.Context()).With(
				zap.String("admin_id", claims.Subject),
				zap.String("role", claims.Role),
			))
			c.SetRequest(req.WithContext(ctx))
			return next(c)
		}
	}
}

// RequireRole は JWTAuth の後ろで使い、指定ロール以外を拒否する
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(ContextKeyRole).(string)
			if !slices.Contains(roles, role) {
				return echo.NewHTTPError(http.StatusForbidden, "この操作の権限がありません")
			}
			return next(c)
		}
	}
}
