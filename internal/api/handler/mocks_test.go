package handler

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/sanosuguru/go-court-booking/internal/application"
	"github.com/sanosuguru/go-court-booking/internal/domain/account"
	"github.com/sanosuguru/go-court-booking/internal/domain/booking"
	"github.com/sanosuguru/go-court-booking/internal/domain/closure"
	"github.com/sanosuguru/go-court-booking/internal/domain/pricing"
	"github.com/sanosuguru/go-court-booking/internal/domain/slot"
)

// MockAvailabilityService はAvailabilityServiceInterfaceのモック
type MockAvailabilityService struct {
	mock.Mock
}

func (m *MockAvailabilityService) GetAvailableSlots(ctx context.Context, site application.CallSite, date slot.Date) (*application.Availability, error) {
	args := m.Called(ctx, site, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.Availability), args.Error(1)
}

func (m *MockAvailabilityService) SlotBoard(ctx context.Context, date slot.Date) ([]application.SlotInfo, *application.Availability, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]application.SlotInfo), args.Get(1).(*application.Availability), args.Error(2)
}

// MockBookingService はBookingServiceInterfaceのモック
type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) BookRange(ctx context.Context, input application.BookRangeInput) (*booking.Summary, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Summary), args.Error(1)
}

func (m *MockBookingService) CheckRange(ctx context.Context, date, start, end string) (*application.RangeCheck, error) {
	args := m.Called(ctx, date, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.RangeCheck), args.Error(1)
}

func (m *MockBookingService) GetBooking(ctx context.Context, id string) (*booking.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingService) ListBookings(ctx context.Context, f booking.Filter) ([]*booking.Booking, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*booking.Booking), args.Error(1)
}

func (m *MockBookingService) UpdateBooking(ctx context.Context, id string, u booking.Update) (*booking.Booking, error) {
	args := m.Called(ctx, id, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingService) CancelBooking(ctx context.Context, id, reason string) (*booking.Booking, error) {
	args := m.Called(ctx, id, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingService) CancelGroup(ctx context.Context, groupID, reason string) ([]*booking.Booking, error) {
	args := m.Called(ctx, groupID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*booking.Booking), args.Error(1)
}

func (m *MockBookingService) DeleteBooking(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockClosureService はClosureServiceInterfaceのモック
type MockClosureService struct {
	mock.Mock
}

func (m *MockClosureService) CreateClosure(ctx context.Context, input application.CreateClosureInput) (*closure.Closure, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*closure.Closure), args.Error(1)
}

func (m *MockClosureService) ListClosures(ctx context.Context, activeOnly bool, from string) ([]*closure.Closure, error) {
	args := m.Called(ctx, activeOnly, from)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*closure.Closure), args.Error(1)
}

func (m *MockClosureService) DeactivateClosure(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockPricingService はPricingServiceInterfaceのモック
type MockPricingService struct {
	mock.Mock
}

func (m *MockPricingService) ListPricing(ctx context.Context) ([]*pricing.Config, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*pricing.Config), args.Error(1)
}

func (m *MockPricingService) UpdatePricing(ctx context.Context, c pricing.Change) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockPricingService) BulkUpdatePricing(ctx context.Context, changes []pricing.Change) error {
	args := m.Called(ctx, changes)
	return args.Error(0)
}

// MockReportService はReportServiceInterfaceのモック
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) Stats(ctx context.Context, from, to string) (*booking.Stats, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Stats), args.Error(1)
}

func (m *MockReportService) ExportCSV(ctx context.Context, w io.Writer, f booking.Filter) error {
	args := m.Called(ctx, w, f)
	if fn, ok := args.Get(0).(func(io.Writer) error); ok {
		return fn(w)
	}
	return args.Error(0)
}

// MockPinger はPingerのモック
type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockAccountService はAccountServiceInterfaceのモック
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) RegisterAccount(ctx context.Context, input application.RegisterAccountInput) (*account.Account, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountService) ListAccounts(ctx context.Context, role string) ([]*account.Account, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*account.Account), args.Error(1)
}

func (m *MockAccountService) UpdateRole(ctx context.Context, userID, role string) (*account.Account, error) {
	args := m.Called(ctx, userID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountService) IssueToken(ctx context.Context, userID string, ttl time.Duration) (string, *account.Account, error) {
	args := m.Called(ctx, userID, ttl)
	if args.Get(1) == nil {
		return "", nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*account.Account), args.Error(2)
}
