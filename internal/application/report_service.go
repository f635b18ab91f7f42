package application

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"

	"github.com/sanosuguru/go-court-booking/internal/domain/booking"
	"github.com/sanosuguru/go-court-booking/internal/domain/slot"
)

var bookingCSVHeader = []string{
	"Booking ID", "Date", "Time", "Customer Name", "Mobile",
	"Price (LKR)", "Status", "Payment Status", "Payment Method", "Notes",
}

type ReportService struct {
	bookingRepo booking.Repository
}

func NewReportService(br booking.Repository) *ReportService {
	return &ReportService{bookingRepo: br}
}

// Stats は期間内の予約件数と売上を集計する（空文字は期間指定なし）
func (s *ReportService) Stats(ctx context.Context, from, to string) (*booking.Stats, error) {
	f, err := parseDateRange(from, to)
	if err != nil {
		return nil, err
	}
	stats, err := s.bookingRepo.Stats(ctx, f.From, f.To)
	if err != nil {
		return nil, storageError("booking_stats", err)
	}
	return stats, nil
}

// ExportCSV は条件に合う予約をCSVで書き出す
func (s *ReportService) ExportCSV(ctx context.Context, w io.Writer, f booking.Filter) error {
	list, err := s.bookingRepo.List(ctx, f)
	if err != nil {
		return storageError("list_bookings", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(bookingCSVHeader); err != nil {
		return err
	}
	for _, b := range list {
		record := []string{
			b.ID,
			b.Date.String(),
			b.TimeSlot.Label(),
			b.CustomerName,
			b.CustomerMobile,
			strconv.Itoa(b.Price),
			string(b.Status),
			string(b.PaymentStatus),
			string(b.PaymentMethod),
			b.Notes,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// parseDateRange は "YYYY-MM-DD" の期間指定を Filter に変換する
func parseDateRange(from, to string) (booking.Filter, error) {
	var f booking.Filter
	if from != "" {
		d, err := slot.ParseDate(from)
		if err != nil {
			return f, err
		}
		f.From = d
	}
	if to != "" {
		d, err := slot.ParseDate(to)
		if err != nil {
			return f, err
		}
		f.To = d
	}
	return f, nil
}

// BuildFilter は管理画面の絞り込み条件を検証して Filter を作る
func BuildFilter(from, to, status, paymentStatus string) (booking.Filter, error) {
	f, err := parseDateRange(from, to)
	if err != nil {
		return f, err
	}
	if status != "" {
		st := booking.Status(status)
		if !st.Valid() {
			return f, booking.ErrInvalidStatus
		}
		f.Status = st
	}
	if paymentStatus != "" {
		ps := booking.PaymentStatus(paymentStatus)
		if !ps.Valid() {
			return f, booking.ErrInvalidPaymentStatus
		}
		f.PaymentStatus = ps
	}
	return f, nil
}
