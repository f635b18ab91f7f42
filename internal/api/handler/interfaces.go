package handler

import (
	"context"
	"io"
	"time"

	"github.com/sanosuguru/go-court-booking/internal/application"
	"github.com/sanosuguru/go-court-booking/internal/domain/account"
	"github.com/sanosuguru/go-court-booking/internal/domain/booking"
	"github.com/sanosuguru/go-court-booking/internal/domain/closure"
	"github.com/sanosuguru/go-court-booking/internal/domain/pricing"
	"github.com/sanosuguru/go-court-booking/internal/domain/slot"
)

// AvailabilityServiceInterface は空き状況サービスのインターフェース
type AvailabilityServiceInterface interface {
	GetAvailableSlots(ctx context.Context, site application.CallSite, date slot.Date) (*application.Availability, error)
	SlotBoard(ctx context.Context, date slot.Date) ([]application.SlotInfo, *application.Availability, error)
}

// BookingServiceInterface は予約サービスのインターフェース
type BookingServiceInterface interface {
	BookRange(ctx context.Context, input application.BookRangeInput) (*booking.Summary, error)
	CheckRange(ctx context.Context, date, start, end string) (*application.RangeCheck, error)
	GetBooking(ctx context.Context, id string) (*booking.Booking, error)
	ListBookings(ctx context.Context, f booking.Filter) ([]*booking.Booking, error)
	UpdateBooking(ctx context.Context, id string, u booking.Update) (*booking.Booking, error)
	CancelBooking(ctx context.Context, id, reason string) (*booking.Booking, error)
	CancelGroup(ctx context.Context, groupID, reason string) ([]*booking.Booking, error)
	DeleteBooking(ctx context.Context, id string) error
}

// ClosureServiceInterface はクローズ設定サービスのインターフェース
type ClosureServiceInterface interface {
	CreateClosure(ctx context.Context, input application.CreateClosureInput) (*closure.Closure, error)
	ListClosures(ctx context.Context, activeOnly bool, from string) ([]*closure.Closure, error)
	DeactivateClosure(ctx context.Context, id string) error
}

// PricingServiceInterface は料金設定サービスのインターフェース
type PricingServiceInterface interface {
	ListPricing(ctx context.Context) ([]*pricing.Config, error)
	UpdatePricing(ctx context.Context, c pricing.Change) error
	BulkUpdatePricing(ctx context.Context, changes []pricing.Change) error
}

// ReportServiceInterface はレポートサービスのインターフェース
type ReportServiceInterface interface {
	Stats(ctx context.Context, from, to string) (*booking.Stats, error)
	ExportCSV(ctx context.Context, w io.Writer, f booking.Filter) error
}

// AccountServiceInterface はユーザーロール管理サービスのインターフェース
type AccountServiceInterface interface {
	RegisterAccount(ctx context.Context, input application.RegisterAccountInput) (*account.Account, error)
	ListAccounts(ctx context.Context, role string) ([]*account.Account, error)
	UpdateRole(ctx context.Context, userID, role string) (*account.Account, error)
	IssueToken(ctx context.Context, userID string, ttl time.Duration) (string, *account.Account, error)
}

// Pinger は疎通確認できる依存先
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc は関数を Pinger として扱うためのアダプタ
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }
