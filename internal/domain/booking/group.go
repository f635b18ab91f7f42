package booking

import (
	"strings"
	"time"

	"github.com/sanosuguru/go-court-booking/internal/domain/slot"
)

// Group は同時に作成された連続スロットの予約をまとめる
type Group struct {
	ID             string
	Date           slot.Date
	StartSlot      slot.ID
	EndSlot        slot.ID
	CustomerName   string
	CustomerMobile string
	CreatedAt      time.Time
}

// NewGroup は予約グループを作成する
func NewGroup(date slot.Date, start, end slot.ID, customerName, customerMobile string) *Group {
	return &Group{
		Date:           date,
		StartSlot:      start,
		EndSlot:        end,
		CustomerName:   strings.TrimSpace(customerName),
		CustomerMobile: strings.TrimSpace(customerMobile),
		CreatedAt:      time.Now(),
	}
}

// Bookings はグループの各スロットに対応する予約行を作成する
func (g *Group) Bookings() []*Booking {
	slots := slot.Range(g.StartSlot, g.EndSlot)
	out := make([]*Booking, len(slots))
	for i, s := range slots {
		out[i] = NewBooking(g.ID, g.Date, s, g.CustomerName, g.CustomerMobile)
		out[i].CreatedAt = g.CreatedAt
		out[i].UpdatedAt = g.CreatedAt
	}
	return out
}

// Validate は予約グループの検証を行う
func (g *Group) Validate() error {
	if g.CustomerName == "" {
		return ErrCustomerNameRequired
	}
	if g.CustomerMobile == "" {
		return ErrCustomerMobileRequired
	}
	if len(slot.Range(g.StartSlot, g.EndSlot)) == 0 {
		return ErrInvalidRange
	}
	return nil
}

// Summary は確定した予約範囲を表す
// ID は最初に登録された予約行のID
type Summary struct {
	ID             string
	GroupID        string
	Date           slot.Date
	StartSlot      slot.ID
	EndSlot        slot.ID
	Slots          []slot.ID
	CustomerName   string
	CustomerMobile string
	Status         Status
	PaymentStatus  PaymentStatus
	TotalPrice     int
}

// Summarize は登録済みの予約行から Summary を組み立てる
func (g *Group) Summarize(rows []*Booking) *Summary {
	s := &Summary{
		GroupID:        g.ID,
		Date:           g.Date,
		StartSlot:      g.StartSlot,
		EndSlot:        g.EndSlot,
		CustomerName:   g.CustomerName,
		CustomerMobile: g.CustomerMobile,
		Status:         StatusConfirmed,
		PaymentStatus:  PaymentUnpaid,
	}
	for i, b := range rows {
		if i == 0 {
			s.ID = b.ID
			s.Status = b.Status
			s.PaymentStatus = b.PaymentStatus
		}
		s.Slots = append(s.Slots, b.TimeSlot)
		s.TotalPrice += b.Price
	}
	return s
}
