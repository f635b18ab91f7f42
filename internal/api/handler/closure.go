package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-court-booking/internal/application"
	"github.com/sanosuguru/go-court-booking/internal/domain/closure"
)

type ClosureHandler struct {
	service ClosureServiceInterface
}

func NewClosureHandler(s ClosureServiceInterface) *ClosureHandler {
	return &ClosureHandler{service: s}
}

// CreateClosureRequest は time_slot を省略すると終日クローズになる
type CreateClosureRequest struct {
	Date     string `json:"date" validate:"required,date" example:"2025-03-14"`
	TimeSlot string `json:"time_slot,omitempty" validate:"omitempty,slot_id" example:"18:00"`
	CourtID  string `json:"court_id,omitempty" example:"court_1"`
	Reason   string `json:"reason" validate:"required,max=500" example:"大会のため"`
}

type ClosureResponse struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"`
	TimeSlot  string    `json:"time_slot,omitempty"`
	FullDay   bool      `json:"full_day"`
	CourtID   string    `json:"court_id"`
	Reason    string    `json:"reason"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func toClosureResponse(c *closure.Closure) ClosureResponse {
	return ClosureResponse{
		ID: c.ID, Date: c.Date.String(), TimeSlot: c.TimeSlot.String(), FullDay: c.IsFullDay(),
		CourtID: c.CourtID, Reason: c.Reason, IsActive: c.IsActive, CreatedAt: c.CreatedAt,
	}
}

// List godoc
// @Summary クローズ設定一覧を取得
// @Tags admin
// @Produce json
// @Param active_only query bool false "有効なもののみ" default(true)
// @Param from query string false "この日付以降"
// @Success 200 {array} ClosureResponse
// @Router /admin/closures [get]
func (h *ClosureHandler) List(c echo.Context) error {
	activeOnly := true
	if v := c.QueryParam("active_only"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "active_only が不正です")
		}
		activeOnly = b
	}
	list, err := h.service.ListClosures(c.Request().Context(), activeOnly, c.QueryParam("from"))
	if err != nil {
		return err
	}
	resp := make([]ClosureResponse, len(list))
	for i, cl := range list {
		resp[i] = toClosureResponse(cl)
	}
	return c.JSON(http.StatusOK, resp)
}

// Create godoc
// @Summary クローズ設定を登録
// @Tags admin
// @Accept json
// @Produce json
// @Param request body CreateClosureRequest true "クローズ設定"
// @Success 201 {object} ClosureResponse
// @Router /admin/closures [post]
func (h *ClosureHandler) Create(c echo.Context) error {
	var req CreateClosureRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	cl, err := h.service.CreateClosure(c.Request().Context(), application.CreateClosureInput{
		Date: req.Date, TimeSlot: req.TimeSlot, CourtID: req.CourtID, Reason: req.Reason,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toClosureResponse(cl))
}

// Deactivate godoc
// @Summary クローズ設定を解除
// @Description 論理削除のみ（履歴は残る）
// @Tags admin
// @Param id path string true "クローズ設定ID"
// @Success 204
// @Router /admin/closures/{id} [delete]
func (h *ClosureHandler) Deactivate(c echo.Context) error {
	if err := h.service.DeactivateClosure(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
