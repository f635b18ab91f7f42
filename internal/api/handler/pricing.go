package handler

import (
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-court-booking/internal/domain/pricing"
	"github.com/sanosuguru/go-court-booking/internal/domain/slot"
)

type PricingHandler struct {
	service PricingServiceInterface
}

func NewPricingHandler(s PricingServiceInterface) *PricingHandler {
	return &PricingHandler{service: s}
}

type PricingResponse struct {
	TimeSlot    string    `json:"time_slot" example:"18:00"`
	TimeLabel   string    `json:"time_label" example:"6:00 PM"`
	Price       int       `json:"price" example:"5000"`
	IsPrimeTime bool      `json:"is_prime_time"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type UpdatePricingRequest struct {
	Price       *int `json:"price" validate:"required,min=0" example:"5000"`
	IsPrimeTime bool `json:"is_prime_time"`
}

type PricingItem struct {
	TimeSlot    string `json:"time_slot" validate:"required,slot_id" example:"18:00"`
	Price       *int   `json:"price" validate:"required,min=0" example:"5000"`
	IsPrimeTime bool   `json:"is_prime_time"`
}

type BulkUpdatePricingRequest struct {
	Items []PricingItem `json:"items" validate:"required,min=1,max=24,dive"`
}

func toPricingResponse(c *pricing.Config) PricingResponse {
	return PricingResponse{
		TimeSlot: c.TimeSlot.String(), TimeLabel: c.TimeSlot.Label(),
		Price: c.Price, IsPrimeTime: c.IsPrimeTime, UpdatedAt: c.UpdatedAt,
	}
}

// List godoc
// @Summary 料金設定一覧を取得
// @Tags admin
// @Produce json
// @Success 200 {array} PricingResponse
// @Router /admin/pricing [get]
func (h *PricingHandler) List(c echo.Context) error {
	list, err := h.service.ListPricing(c.Request().Context())
	if err != nil {
		return err
	}
	resp := make([]PricingResponse, len(list))
	for i, p := range list {
		resp[i] = toPricingResponse(p)
	}
	return c.JSON(http.StatusOK, resp)
}

// Update godoc
// @Summary 1スロットの料金を更新
// @Tags admin
// @Accept json
// @Param slot path string true "スロット (HH:00)"
// @Param request body UpdatePricingRequest true "料金"
// @Success 204
// @Router /admin/pricing/{slot} [put]
func (h *PricingHandler) Update(c echo.Context) error {
	raw, err := url.PathUnescape(c.Param("slot"))
	if err != nil {
		return slot.ErrInvalidSlot
	}
	id, err := slot.Parse(raw)
	if err != nil {
		return err
	}
	var req UpdatePricingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	err = h.service.UpdatePricing(c.Request().Context(), pricing.Change{
		TimeSlot: id, Price: *req.Price, IsPrimeTime: req.IsPrimeTime,
	})
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// BulkUpdate godoc
// @Summary 複数スロットの料金をまとめて更新
// @Tags admin
// @Accept json
// @Param request body BulkUpdatePricingRequest true "料金一覧"
// @Success 204
// @Router /admin/pricing [put]
func (h *PricingHandler) BulkUpdate(c echo.Context) error {
	var req BulkUpdatePricingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	changes := make([]pricing.Change, len(req.Items))
	for i, it := range req.Items {
		changes[i] = pricing.Change{TimeSlot: slot.ID(it.TimeSlot), Price: *it.Price, IsPrimeTime: it.IsPrimeTime}
	}
	if err := h.service.BulkUpdatePricing(c.Request().Context(), changes); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
