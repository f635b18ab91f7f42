package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-court-booking/internal/api/middleware"
	"github.com/sanosuguru/go-court-booking/internal/application"
	"github.com/sanosuguru/go-court-booking/internal/domain/account"
)

type AccountHandler struct {
	service AccountServiceInterface
}

func NewAccountHandler(s AccountServiceInterface) *AccountHandler {
	return &AccountHandler{service: s}
}

type RegisterAccountRequest struct {
	UserID string `json:"user_id" validate:"required,max=128" example:"auth0|6512"`
	Email  string `json:"email,omitempty" validate:"omitempty,email,max=255" example:"staff@example.com"`
	Role   string `json:"role,omitempty" validate:"omitempty,oneof=super_admin moderator user" example:"moderator"`
}

type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=super_admin moderator user" example:"moderator"`
}

type IssueTokenRequest struct {
	TTL string `json:"ttl,omitempty" example:"12h"`
}

type AccountResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type TokenResponse struct {
	Token     string `json:"token"`
	UserID    string `json:"user_id"`
	Role      string `json:"role"`
	ExpiresIn int64  `json:"expires_in"`
}

func toAccountResponse(a *account.Account) AccountResponse {
	return AccountResponse{
		ID: a.ID, UserID: a.UserID, Email: a.Email, Role: a.Role.String(),
		CreatedAt: a.CreatedAt, UpdatedAt: a.UpdatedAt,
	}
}

// List godoc
// @Summary ユーザーとロールの一覧
// @Tags admin
// @Produce json
// @Param role query string false "ロールで絞り込み"
// @Success 200 {array} AccountResponse
// @Router /admin/users [get]
func (h *AccountHandler) List(c echo.Context) error {
	list, err := h.service.ListAccounts(c.Request().Context(), c.QueryParam("role"))
	if err != nil {
		return err
	}
	resp := make([]AccountResponse, len(list))
	for i, a := range list {
		resp[i] = toAccountResponse(a)
	}
	return c.JSON(http.StatusOK, resp)
}

// Register godoc
// @Summary ユーザーにロールを割り当てて登録
// @Tags admin
// @Accept json
// @Produce json
// @Param request body RegisterAccountRequest true "ユーザー"
// @Success 201 {object} AccountResponse
// @Router /admin/users [post]
func (h *AccountHandler) Register(c echo.Context) error {
	var req RegisterAccountRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	a, err := h.service.RegisterAccount(c.Request().Context(), application.RegisterAccountInput{
		UserID: req.UserID, Email: req.Email, Role: req.Role,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toAccountResponse(a))
}

// UpdateRole godoc
// @Summary ロールを変更
// @Description 自分自身のロールは変更できない
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "ユーザーID"
// @Param request body UpdateRoleRequest true "新しいロール"
// @Success 200 {object} AccountResponse
// @Router /admin/users/{id}/role [put]
func (h *AccountHandler) UpdateRole(c echo.Context) error {
	var req UpdateRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	userID := c.Param("id")
	if self, _ := c.Get(middleware.ContextKeyAdminID).(string); self != "" && self == userID {
		return echo.NewHTTPError(http.StatusConflict, "自分自身のロールは変更できません")
	}
	a, err := h.service.UpdateRole(c.Request().Context(), userID, req.Role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAccountResponse(a))
}

// IssueToken godoc
// @Summary 管理者ユーザーのアクセストークンを発行
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "ユーザーID"
// @Param request body IssueTokenRequest false "有効期間"
// @Success 201 {object} TokenResponse
// @Router /admin/users/{id}/token [post]
func (h *AccountHandler) IssueToken(c echo.Context) error {
	var req IssueTokenRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	var ttl time.Duration
	if req.TTL != "" {
		d, err := time.ParseDuration(req.TTL)
		if err != nil || d <= 0 || d > maxTokenTTL {
			return echo.NewHTTPError(http.StatusBadRequest, "ttl が不正です")
		}
		ttl = d
	}
	token, a, err := h.service.IssueToken(c.Request().Context(), c.Param("id"), ttl)
	if err != nil {
		return err
	}
	if ttl == 0 {
		ttl = application.DefaultAdminTokenTTL
	}
	return c.JSON(http.StatusCreated, TokenResponse{
		Token: token, UserID: a.UserID, Role: a.Role.String(), ExpiresIn: int64(ttl.Seconds()),
	})
}

const maxTokenTTL = 30 * 24 * time.Hour
