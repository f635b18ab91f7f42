package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-court-booking/internal/domain/booking"
	"github.com/sanosuguru/go-court-booking/internal/domain/slot"
	"github.com/sanosuguru/go-court-booking/internal/pkg/logger"
)

// 予約イベントのルーティングキー
const (
	EventBookingCreated   = "booking.created"
	EventBookingCancelled = "booking.cancelled"
	EventBookingUpdated   = "booking.updated"
	EventBookingDeleted   = "booking.deleted"
)

// EventPublisher は予約イベントの配信先
type EventPublisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

// BookingEvent は配信されるイベント本体
type BookingEvent struct {
	Type       string    `json:"type"`
	BookingIDs []string  `json:"booking_ids"`
	GroupID    string    `json:"group_id,omitempty"`
	Date       slot.Date `json:"date"`
	Slots      []slot.ID `json:"slots"`
	Status     string    `json:"status,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func newBookingEvent(typ string, date slot.Date, rows ...*booking.Booking) BookingEvent {
	ev := BookingEvent{Type: typ, Date: date, OccurredAt: time.Now()}
	for _, b := range rows {
		ev.BookingIDs = append(ev.BookingIDs, b.ID)
		ev.Slots = append(ev.Slots, b.TimeSlot)
		if ev.GroupID == "" {
			ev.GroupID = b.GroupID
		}
		ev.Status = string(b.Status)
		if b.CancelledReason != "" {
			ev.Reason = b.CancelledReason
		}
	}
	return ev
}

// publish はイベントを配信する。失敗してもリクエストは失敗させない
func publish(ctx context.Context, p EventPublisher, ev BookingEvent) {
	if p == nil {
		return
	}
	if err := p.PublishJSON(ctx, ev.Type, ev); err != nil {
		logger.FromContext(ctx).Warn("予約イベントの配信に失敗",
			zap.String("type", ev.Type),
			zap.String("date", ev.Date.String()),
			zap.Error(err),
		)
	}
}
