package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-court-booking/internal/application"
	"github.com/sanosuguru/go-court-booking/internal/domain/booking"
	"github.com/sanosuguru/go-court-booking/internal/domain/slot"
)

type BookingHandler struct {
	service BookingServiceInterface
}

func NewBookingHandler(s BookingServiceInterface) *BookingHandler {
	return &BookingHandler{service: s}
}

type CreateBookingRequest struct {
	Date           string `json:"date" validate:"required" example:"2025-03-14"`
	StartSlot      string `json:"start_slot" validate:"required" example:"18:00"`
	EndSlot        string `json:"end_slot" validate:"required" example:"20:00"`
	CustomerName   string `json:"customer_name" validate:"required,max=100" example:"Kasun Perera"`
	CustomerMobile string `json:"customer_mobile" validate:"required,max=20" example:"0771234567"`
}

// UpdateBookingRequest は指定したフィールドだけを更新する
type UpdateBookingRequest struct {
	Status        *string `json:"status,omitempty" example:"completed"`
	PaymentStatus *string `json:"payment_status,omitempty" example:"paid"`
	PaymentMethod *string `json:"payment_method,omitempty" example:"cash"`
	Price         *int    `json:"price,omitempty" example:"5000"`
	Notes         *string `json:"notes,omitempty"`
}

type CancelRequest struct {
	Reason string `json:"reason" validate:"required" example:"雨天のため"`
}

type BookingSummaryResponse struct {
	ID             string   `json:"id"`
	GroupID        string   `json:"group_id"`
	Date           string   `json:"date" example:"2025-03-14"`
	StartSlot      string   `json:"start_slot" example:"18:00"`
	EndSlot        string   `json:"end_slot" example:"20:00"`
	Slots          []string `json:"slots" example:"18:00,19:00"`
	CustomerName   string   `json:"customer_name"`
	CustomerMobile string   `json:"customer_mobile"`
	Status         string   `json:"status" example:"confirmed"`
	PaymentStatus  string   `json:"payment_status" example:"unpaid"`
	TotalPrice     int      `json:"total_price"`
}

type BookingResponse struct {
	ID              string    `json:"id"`
	GroupID         string    `json:"group_id,omitempty"`
	Date            string    `json:"date" example:"2025-03-14"`
	TimeSlot        string    `json:"time_slot" example:"18:00"`
	TimeLabel       string    `json:"time_label" example:"6:00 PM"`
	CourtID         string    `json:"court_id" example:"court_1"`
	CustomerName    string    `json:"customer_name"`
	CustomerMobile  string    `json:"customer_mobile"`
	Status          string    `json:"status"`
	PaymentStatus   string    `json:"payment_status"`
	PaymentMethod   string    `json:"payment_method,omitempty"`
	Price           int       `json:"price"`
	Notes           string    `json:"notes,omitempty"`
	CancelledReason string    `json:"cancelled_reason,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func toSummaryResponse(s *booking.Summary) BookingSummaryResponse {
	return BookingSummaryResponse{
		ID: s.ID, GroupID: s.GroupID, Date: s.Date.String(),
		StartSlot: s.StartSlot.String(), EndSlot: s.EndSlot.String(), Slots: slot.Strings(s.Slots),
		CustomerName: s.CustomerName, CustomerMobile: s.CustomerMobile,
		Status: string(s.Status), PaymentStatus: string(s.PaymentStatus), TotalPrice: s.TotalPrice,
	}
}

func toBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID: b.ID, GroupID: b.GroupID, Date: b.Date.String(),
		TimeSlot: b.TimeSlot.String(), TimeLabel: b.TimeSlot.Label(), CourtID: b.CourtID,
		CustomerName: b.CustomerName, CustomerMobile: b.CustomerMobile,
		Status: string(b.Status), PaymentStatus: string(b.PaymentStatus), PaymentMethod: string(b.PaymentMethod),
		Price: b.Price, Notes: b.Notes, CancelledReason: b.CancelledReason,
		CreatedAt: b.CreatedAt, UpdatedAt: b.UpdatedAt,
	}
}

func toBookingResponses(list []*booking.Booking) []BookingResponse {
	resp := make([]BookingResponse, len(list))
	for i, b := range list {
		resp[i] = toBookingResponse(b)
	}
	return resp
}

func (r UpdateBookingRequest) toUpdate() booking.Update {
	var u booking.Update
	if r.Status != nil {
		s := booking.Status(*r.Status)
		u.Status = &s
	}
	if r.PaymentStatus != nil {
		ps := booking.PaymentStatus(*r.PaymentStatus)
		u.PaymentStatus = &ps
	}
	if r.PaymentMethod != nil {
		pm := booking.PaymentMethod(*r.PaymentMethod)
		u.PaymentMethod = &pm
	}
	u.Price = r.Price
	u.Notes = r.Notes
	return u
}

// Create godoc
// @Summary 時間帯を予約
// @Description [start_slot, end_slot) の各スロットをまとめて予約します。1つでも埋まっていれば何も登録しません
// @Tags bookings
// @Accept json
// @Produce json
// @Param request body CreateBookingRequest true "予約情報"
// @Success 201 {object} BookingSummaryResponse
// @Failure 400 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse "予約できないスロットを slots に含む"
// @Failure 503 {object} api.ErrorResponse
// @Router /bookings [post]
func (h *BookingHandler) Create(c echo.Context) error {
	var req CreateBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	s, err := h.service.BookRange(c.Request().Context(), application.BookRangeInput{
		Date: req.Date, StartSlot: req.StartSlot, EndSlot: req.EndSlot,
		CustomerName: req.CustomerName, CustomerMobile: req.CustomerMobile,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toSummaryResponse(s))
}

type RangeCheckResponse struct {
	Date     string   `json:"date" example:"2025-03-14"`
	Slots    []string `json:"slots" example:"18:00,19:00"`
	Degraded bool     `json:"degraded"`
}

// Check godoc
// @Summary 予約前に範囲が空いているか確認
// @Description 直近の空き状況で判定します。確定時にはあらためて検証されます
// @Tags bookings
// @Produce json
// @Param date query string true "日付"
// @Param start_slot query string true "開始スロット"
// @Param end_slot query string true "終了スロット（排他的）"
// @Success 200 {object} RangeCheckResponse
// @Failure 400 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse "予約できないスロットを slots に含む"
// @Router /bookings/check [get]
func (h *BookingHandler) Check(c echo.Context) error {
	rc, err := h.service.CheckRange(c.Request().Context(),
		c.QueryParam("date"), c.QueryParam("start_slot"), c.QueryParam("end_slot"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, RangeCheckResponse{Date: rc.Date.String(), Slots: slot.Strings(rc.Slots), Degraded: rc.Degraded})
}

// List godoc
// @Summary 予約一覧を取得
// @Tags admin
// @Produce json
// @Param start_date query string false "開始日"
// @Param end_date query string false "終了日"
// @Param status query string false "ステータス"
// @Param payment_status query string false "支払いステータス"
// @Success 200 {array} BookingResponse
// @Router /admin/bookings [get]
func (h *BookingHandler) List(c echo.Context) error {
	f, err := application.BuildFilter(
		c.QueryParam("start_date"), c.QueryParam("end_date"),
		c.QueryParam("status"), c.QueryParam("payment_status"),
	)
	if err != nil {
		return err
	}
	list, err := h.service.ListBookings(c.Request().Context(), f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBookingResponses(list))
}

// GetByID godoc
// @Summary 予約を取得
// @Tags admin
// @Produce json
// @Param id path string true "予約ID"
// @Success 200 {object} BookingResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /admin/bookings/{id} [get]
func (h *BookingHandler) GetByID(c echo.Context) error {
	b, err := h.service.GetBooking(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBookingResponse(b))
}

// Update godoc
// @Summary 予約を部分更新
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "予約ID"
// @Param request body UpdateBookingRequest true "更新内容"
// @Success 200 {object} BookingResponse
// @Failure 409 {object} api.ErrorResponse "確定済みに戻せない"
// @Router /admin/bookings/{id} [patch]
func (h *BookingHandler) Update(c echo.Context) error {
	var req UpdateBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	b, err := h.service.UpdateBooking(c.Request().Context(), c.Param("id"), req.toUpdate())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBookingResponse(b))
}

// Cancel godoc
// @Summary 予約をキャンセル
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "予約ID"
// @Param request body CancelRequest true "キャンセル理由"
// @Success 200 {object} BookingResponse
// @Router /admin/bookings/{id}/cancel [post]
func (h *BookingHandler) Cancel(c echo.Context) error {
	var req CancelRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	b, err := h.service.CancelBooking(c.Request().Context(), c.Param("id"), req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBookingResponse(b))
}

// CancelGroup godoc
// @Summary 予約グループをまとめてキャンセル
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "予約グループID"
// @Param request body CancelRequest true "キャンセル理由"
// @Success 200 {array} BookingResponse
// @Router /admin/booking-groups/{id}/cancel [post]
func (h *BookingHandler) CancelGroup(c echo.Context) error {
	var req CancelRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	list, err := h.service.CancelGroup(c.Request().Context(), c.Param("id"), req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBookingResponses(list))
}

// Delete godoc
// @Summary 予約を削除
// @Description 予約を物理削除します（super_admin のみ）
// @Tags admin
// @Param id path string true "予約ID"
// @Success 204
// @Router /admin/bookings/{id} [delete]
func (h *BookingHandler) Delete(c echo.Context) error {
	if err := h.service.DeleteBooking(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
