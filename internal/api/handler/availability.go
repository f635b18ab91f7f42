package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-court-booking/internal/application"
	"github.com/sanosuguru/go-court-booking/internal/domain/slot"
)

type AvailabilityHandler struct {
	service AvailabilityServiceInterface
}

func NewAvailabilityHandler(s AvailabilityServiceInterface) *AvailabilityHandler {
	return &AvailabilityHandler{service: s}
}

type AvailabilityResponse struct {
	Date     string   `json:"date" example:"2025-03-14"`
	Slots    []string `json:"slots" example:"09:00,10:00"`
	Degraded bool     `json:"degraded"`
}

type SlotInfoResponse struct {
	Slot        string `json:"slot" example:"18:00"`
	Label       string `json:"label" example:"6:00 PM"`
	Available   bool   `json:"available"`
	Price       int    `json:"price" example:"5000"`
	IsPrimeTime bool   `json:"is_prime_time"`
}

type SlotBoardResponse struct {
	Date     string             `json:"date" example:"2025-03-14"`
	Degraded bool               `json:"degraded"`
	Slots    []SlotInfoResponse `json:"slots"`
}

func toAvailabilityResponse(a *application.Availability) AvailabilityResponse {
	slots := slot.Strings(a.Slots)
	if slots == nil {
		slots = []string{}
	}
	return AvailabilityResponse{Date: a.Date.String(), Slots: slots, Degraded: a.Degraded}
}

// Public godoc
// @Summary 空きスロットを取得
// @Description 指定日の予約可能なスロットを返します。ストレージ障害時は楽観的に全スロットを返し degraded=true になります
// @Tags availability
// @Produce json
// @Param date query string true "日付 (YYYY-MM-DD)"
// @Success 200 {object} AvailabilityResponse
// @Failure 400 {object} api.ErrorResponse
// @Router /availability [get]
func (h *AvailabilityHandler) Public(c echo.Context) error {
	return h.get(c, application.CallSitePublic)
}

// Admin godoc
// @Summary 管理画面向けの空きスロットを取得
// @Description ストレージ障害時は悲観的に空き無しとして返します
// @Tags admin
// @Produce json
// @Param date query string true "日付 (YYYY-MM-DD)"
// @Success 200 {object} AvailabilityResponse
// @Router /admin/availability [get]
func (h *AvailabilityHandler) Admin(c echo.Context) error {
	return h.get(c, application.CallSiteAdmin)
}

func (h *AvailabilityHandler) get(c echo.Context, site application.CallSite) error {
	date, err := slot.ParseDate(c.QueryParam("date"))
	if err != nil {
		return err
	}
	a, err := h.service.GetAvailableSlots(c.Request().Context(), site, date)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAvailabilityResponse(a))
}

// Board godoc
// @Summary スロット表を取得
// @Description 24スロットの空き状況と料金を返します
// @Tags availability
// @Produce json
// @Param date query string true "日付 (YYYY-MM-DD)"
// @Success 200 {object} SlotBoardResponse
// @Router /slots [get]
func (h *AvailabilityHandler) Board(c echo.Context) error {
	date, err := slot.ParseDate(c.QueryParam("date"))
	if err != nil {
		return err
	}
	board, a, err := h.service.SlotBoard(c.Request().Context(), date)
	if err != nil {
		return err
	}
	resp := SlotBoardResponse{Date: date.String(), Degraded: a.Degraded, Slots: make([]SlotInfoResponse, len(board))}
	for i, s := range board {
		resp.Slots[i] = SlotInfoResponse{
			Slot: s.Slot.String(), Label: s.Label, Available: s.Available,
			Price: s.Price, IsPrimeTime: s.IsPrimeTime,
		}
	}
	return c.JSON(http.StatusOK, resp)
}
