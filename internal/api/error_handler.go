package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-court-booking/internal/domain/account"
	"github.com/sanosuguru/go-court-booking/internal/domain/booking"
	"github.com/sanosuguru/go-court-booking/internal/domain/closure"
	"github.com/sanosuguru/go-court-booking/internal/domain/pricing"
	"github.com/sanosuguru/go-court-booking/internal/domain/slot"
	"github.com/sanosuguru/go-court-booking/internal/pkg/logger"
)

// ErrorResponse はエラーレスポンスの統一フォーマット
type ErrorResponse struct {
	Error   string   `json:"error"`
	Code    int      `json:"code,omitempty"`
	Details string   `json:"details,omitempty"`
	Slots   []string `json:"slots,omitempty"`
}

var badRequestErrors = []error{
	slot.ErrInvalidSlot,
	slot.ErrInvalidDate,
	booking.ErrInvalidRange,
	booking.ErrCustomerNameRequired,
	booking.ErrCustomerMobileRequired,
	booking.ErrCancelReasonRequired,
	booking.ErrCancelReasonTooLong,
	booking.ErrNotesTooLong,
	booking.ErrInvalidStatus,
	booking.ErrInvalidPaymentStatus,
	booking.ErrInvalidPaymentMethod,
	booking.ErrInvalidPrice,
	closure.ErrReasonRequired,
	closure.ErrInvalidSlot,
	pricing.ErrInvalidPrice,
	pricing.ErrInvalidSlot,
	account.ErrUserIDRequired,
	account.ErrInvalidRole,
}

var notFoundErrors = []error{
	booking.ErrBookingNotFound,
	booking.ErrGroupNotFound,
	closure.ErrClosureNotFound,
	pricing.ErrPricingNotFound,
	account.ErrAccountNotFound,
}

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// ToErrorResponse はエラーをステータスコードとレスポンスに変換する
func ToErrorResponse(err error) (int, ErrorResponse) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		message := http.StatusText(he.Code)
		if m, ok := he.Message.(string); ok {
			message = m
		}
		return he.Code, ErrorResponse{Error: message, Code: he.Code}
	}

	var unavailable *booking.SlotUnavailableError
	switch {
	case errors.As(err, &unavailable):
		return http.StatusConflict, ErrorResponse{
			Error: booking.ErrSlotUnavailable.Error(),
			Code:  http.StatusConflict,
			Slots: slot.Strings(unavailable.Slots),
		}
	case errors.Is(err, booking.ErrAlreadyCancelled), errors.Is(err, account.ErrAccountExists), errors.Is(err, account.ErrLastSuperAdmin):
		return http.StatusConflict, ErrorResponse{Error: err.Error(), Code: http.StatusConflict}
	case errors.Is(err, account.ErrNotAdmin):
		return http.StatusForbidden, ErrorResponse{Error: err.Error(), Code: http.StatusForbidden}
	case errors.Is(err, booking.ErrStorageUnavailable):
		// 生の診断メッセージはログにだけ残す
		return http.StatusServiceUnavailable, ErrorResponse{
			Error: booking.ErrStorageUnavailable.Error(),
			Code:  http.StatusServiceUnavailable,
		}
	case isAny(err, notFoundErrors):
		return http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: http.StatusNotFound}
	case isAny(err, badRequestErrors):
		return http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: http.StatusBadRequest}
	}
	return http.StatusInternalServerError, ErrorResponse{Error: "内部サーバーエラー", Code: http.StatusInternalServerError}
}

// CustomHTTPErrorHandler はカスタムエラーハンドラー
func CustomHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code, resp := ToErrorResponse(err)

	// エラーログを出力（5xx エラーの場合）
	if code >= 500 {
		logger.FromContext(c.Request().Context()).Error("サーバーエラー",
			zap.Int("status", code),
			zap.String("path", c.Request().URL.Path),
			zap.Error(err),
		)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, resp)
	}
	if err != nil {
		logger.Error("エラーレスポンス送信失敗", zap.Error(err))
	}
}
