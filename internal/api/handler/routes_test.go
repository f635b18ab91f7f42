package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-court-booking/internal/api"
	"github.com/sanosuguru/go-court-booking/internal/api/middleware"
	"github.com/sanosuguru/go-court-booking/internal/application"
	"github.com/sanosuguru/go-court-booking/internal/domain/account"
	"github.com/sanosuguru/go-court-booking/internal/domain/booking"
	"github.com/sanosuguru/go-court-booking/internal/domain/slot"
)

const testSecret = "test-secret"

type routeMocks struct {
	availability *MockAvailabilityService
	booking      *MockBookingService
	account      *MockAccountService
}

func newRoutedEcho(t *testing.T) (*echo.Echo, *routeMocks) {
	t.Helper()
	e := NewTestEcho()
	m := &routeMocks{availability: new(MockAvailabilityService), booking: new(MockBookingService), account: new(MockAccountService)}
	RegisterRoutes(e, &Handlers{
		Health:       NewHealthHandler(),
		Availability: NewAvailabilityHandler(m.availability),
		Booking:      NewBookingHandler(m.booking),
		Pricing:      NewPricingHandler(new(MockPricingService)),
		Closure:      NewClosureHandler(new(MockClosureService)),
		Report:       NewReportHandler(new(MockReportService)),
		Account:      NewAccountHandler(m.account),
	}, testSecret)
	return e, m
}

func bearer(t *testing.T, role string) string {
	t.Helper()
	tok, err := middleware.IssueAdminToken(testSecret, "admin-1", role, time.Minute)
	require.NoError(t, err)
	return "Bearer " + tok
}

func TestRoutes_SlotUnavailableReturns409WithSlots(t *testing.T) {
	e, m := newRoutedEcho(t)
	m.booking.On("BookRange", mock.Anything, mock.Anything).
		Return(nil, &booking.SlotUnavailableError{Date: "2025-03-14", Slots: []slot.ID{"10:00"}})

	req := newJSONRequest(http.MethodPost, "/api/v1/bookings",
		`{"date":"2025-03-14","start_slot":"10:00","end_slot":"12:00","customer_name":"A","customer_mobile":"1"}`)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	var resp api.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"10:00"}, resp.Slots)
}

func TestRoutes_InvalidRangeReturns400(t *testing.T) {
	e, m := newRoutedEcho(t)
	m.booking.On("BookRange", mock.Anything, mock.Anything).Return(nil, booking.ErrInvalidRange)

	req := newJSONRequest(http.MethodPost, "/api/v1/bookings",
		`{"date":"2025-03-14","start_slot":"10:00","end_slot":"10:00","customer_name":"A","customer_mobile":"1"}`)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRoutes_AdminAuth(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		target     string
		auth       string
		wantStatus int
	}{
		{"トークンなし", http.MethodGet, "/api/v1/admin/availability?date=2025-03-14", "", http.StatusUnauthorized},
		{"不正なトークン", http.MethodGet, "/api/v1/admin/availability?date=2025-03-14", "Bearer abc", http.StatusUnauthorized},
		{"モデレーターは閲覧できる", http.MethodGet, "/api/v1/admin/availability?date=2025-03-14", "moderator", http.StatusOK},
		{"一般ロールは拒否", http.MethodGet, "/api/v1/admin/availability?date=2025-03-14", "customer", http.StatusForbidden},
		{"モデレーターは削除できない", http.MethodDelete, "/api/v1/admin/bookings/b-1", "moderator", http.StatusForbidden},
		{"スーパー管理者は削除できる", http.MethodDelete, "/api/v1/admin/bookings/b-1", "super_admin", http.StatusNoContent},
		{"モデレーターはユーザー一覧を見られない", http.MethodGet, "/api/v1/admin/users", "moderator", http.StatusForbidden},
		{"スーパー管理者はユーザー一覧を見られる", http.MethodGet, "/api/v1/admin/users", "super_admin", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, m := newRoutedEcho(t)
			m.availability.On("GetAvailableSlots", mock.Anything, mock.Anything, mock.Anything).
				Return(&application.Availability{Date: "2025-03-14"}, nil).Maybe()
			m.booking.On("DeleteBooking", mock.Anything, "b-1").Return(nil).Maybe()
			m.account.On("ListAccounts", mock.Anything, "").Return([]*account.Account{}, nil).Maybe()

			req := httptest.NewRequest(tt.method, tt.target, nil)
			switch tt.auth {
			case "", "Bearer abc":
				if tt.auth != "" {
					req.Header.Set(echo.HeaderAuthorization, tt.auth)
				}
			default:
				req.Header.Set(echo.HeaderAuthorization, bearer(t, tt.auth))
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
