package booking

import (
	"strings"
	"time"

	"github.com/sanosuguru/go-court-booking/internal/domain/slot"
)

// Status は予約の状態を表す
type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
	StatusNoShow    Status = "no_show"
)

func (s Status) Valid() bool {
	switch s {
	case StatusConfirmed, StatusCancelled, StatusCompleted, StatusNoShow:
		return true
	}
	return false
}

// PaymentStatus は支払い状態を表す
type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "paid"
	PaymentUnpaid  PaymentStatus = "unpaid"
	PaymentPending PaymentStatus = "pending"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPaid, PaymentUnpaid, PaymentPending:
		return true
	}
	return false
}

// PaymentMethod は支払い方法を表す（空文字は未設定）
type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "cash"
	PaymentCard         PaymentMethod = "card"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentOnline       PaymentMethod = "online"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case "", PaymentCash, PaymentCard, PaymentBankTransfer, PaymentOnline:
		return true
	}
	return false
}

const (
	DefaultCourtID = "court_1"

	MaxCancelReasonLength = 500
	MaxNotesLength        = 500
)

// Booking は1スロット分の予約行を表す
type Booking struct {
	ID              string
	GroupID         string
	Date            slot.Date
	TimeSlot        slot.ID
	CourtID         string
	CustomerName    string
	CustomerMobile  string
	Status          Status
	PaymentStatus   PaymentStatus
	PaymentMethod   PaymentMethod
	Price           int
	Notes           string
	CancelledReason string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewBooking は確定・未払いの予約行を作成する
// 価格は後から管理者が設定する
func NewBooking(groupID string, date slot.Date, timeSlot slot.ID, customerName, customerMobile string) *Booking {
	now := time.Now()
	return &Booking{
		GroupID:        groupID,
		Date:           date,
		TimeSlot:       timeSlot,
		CourtID:        DefaultCourtID,
		CustomerName:   customerName,
		CustomerMobile: customerMobile,
		Status:         StatusConfirmed,
		PaymentStatus:  PaymentUnpaid,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// IsConfirmed はスロットを占有しているかを返す
func (b *Booking) IsConfirmed() bool {
	return b.Status == StatusConfirmed
}

// Cancel は予約をキャンセルする
func (b *Booking) Cancel(reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ErrCancelReasonRequired
	}
	if len([]rune(reason)) > MaxCancelReasonLength {
		return ErrCancelReasonTooLong
	}
	if b.Status == StatusCancelled {
		return ErrAlreadyCancelled
	}
	b.Status = StatusCancelled
	b.CancelledReason = reason
	b.UpdatedAt = time.Now()
	return nil
}

// Update は管理者による部分更新を表す（nil のフィールドは変更しない）
type Update struct {
	Status        *Status
	PaymentStatus *PaymentStatus
	PaymentMethod *PaymentMethod
	Price         *int
	Notes         *string
}

// Apply は部分更新を適用する
func (b *Booking) Apply(u Update) error {
	if u.Status != nil && !u.Status.Valid() {
		return ErrInvalidStatus
	}
	if u.PaymentStatus != nil && !u.PaymentStatus.Valid() {
		return ErrInvalidPaymentStatus
	}
	if u.PaymentMethod != nil && !u.PaymentMethod.Valid() {
		return ErrInvalidPaymentMethod
	}
	if u.Price != nil && *u.Price < 0 {
		return ErrInvalidPrice
	}
	if u.Notes != nil && len([]rune(*u.Notes)) > MaxNotesLength {
		return ErrNotesTooLong
	}

	if u.Status != nil {
		if *u.Status != StatusCancelled {
			b.CancelledReason = ""
		}
		b.Status = *u.Status
	}
	if u.PaymentStatus != nil {
		b.PaymentStatus = *u.PaymentStatus
	}
	if u.PaymentMethod != nil {
		b.PaymentMethod = *u.PaymentMethod
	}
	if u.Price != nil {
		b.Price = *u.Price
	}
	if u.Notes != nil {
		b.Notes = *u.Notes
	}
	b.UpdatedAt = time.Now()
	return nil
}

// Validate は予約行の検証を行う
func (b *Booking) Validate() error {
	if strings.TrimSpace(b.CustomerName) == "" {
		return ErrCustomerNameRequired
	}
	if strings.TrimSpace(b.CustomerMobile) == "" {
		return ErrCustomerMobileRequired
	}
	if _, err := slot.Parse(string(b.TimeSlot)); err != nil {
		return ErrInvalidRange
	}
	if !b.Status.Valid() {
		return ErrInvalidStatus
	}
	if !b.PaymentStatus.Valid() {
		return ErrInvalidPaymentStatus
	}
	if b.Price < 0 {
		return ErrInvalidPrice
	}
	return nil
}
