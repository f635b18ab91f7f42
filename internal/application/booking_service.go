package application

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-court-booking/internal/domain/booking"
	"github.com/sanosuguru/go-court-booking/internal/domain/closure"
	"github.com/sanosuguru/go-court-booking/internal/domain/slot"
	"github.com/sanosuguru/go-court-booking/internal/domain/transaction"
	redisinfra "github.com/sanosuguru/go-court-booking/internal/infrastructure/redis"
	"github.com/sanosuguru/go-court-booking/internal/pkg/logger"
	"github.com/sanosuguru/go-court-booking/internal/pkg/metrics"
)

const (
	defaultBookingLockTTL = 10 * time.Second
	bookingLockRetries    = 3
	bookingLockRetryDelay = 100 * time.Millisecond
)

type BookingOptions struct {
	LockTTL time.Duration
	Metrics *metrics.Metrics
}

type BookingService struct {
	txManager    transaction.Manager
	bookingRepo  booking.Repository
	closureRepo  closure.Repository
	availability *AvailabilityService
	lockManager  redisinfra.LockManagerInterface
	publisher    EventPublisher
	lockTTL      time.Duration
	metrics      *metrics.Metrics
}

func NewBookingService(tm transaction.Manager, br booking.Repository, cr closure.Repository, av *AvailabilityService, lm redisinfra.LockManagerInterface, pub EventPublisher, opts BookingOptions) *BookingService {
	if opts.LockTTL <= 0 {
		opts.LockTTL = defaultBookingLockTTL
	}
	return &BookingService{
		txManager:    tm,
		bookingRepo:  br,
		closureRepo:  cr,
		availability: av,
		lockManager:  lm,
		publisher:    pub,
		lockTTL:      opts.LockTTL,
		metrics:      opts.Metrics,
	}
}

type BookRangeInput struct {
	Date           string
	StartSlot      string
	EndSlot        string
	CustomerName   string
	CustomerMobile string
}

// BookRange は [開始, 終了) の各スロットを1件ずつ確定予約として登録する
// 全スロットが登録されるか、1件も登録されないかのどちらかになる
func (s *BookingService) BookRange(ctx context.Context, input BookRangeInput) (*booking.Summary, error) {
	// I/O の前に入力を検証する
	date, err := slot.ParseDate(input.Date)
	if err != nil {
		s.countBooking("invalid")
		return nil, err
	}
	start, end, slots, err := booking.ParseRange(input.StartSlot, input.EndSlot)
	if err != nil {
		s.countBooking("invalid")
		return nil, err
	}
	g := booking.NewGroup(date, start, end, input.CustomerName, input.CustomerMobile)
	if err := g.Validate(); err != nil {
		s.countBooking("invalid")
		return nil, err
	}

	log := logger.FromContext(ctx).With(
		zap.String("date", date.String()),
		zap.Strings("slots", slot.Strings(slots)),
	)

	release := s.lockDate(ctx, date)
	defer release()

	// 事前チェック（高速な拒否のため。正しさは一意制約が保証する）
	taken, err := s.unavailableSlots(ctx, date, slots)
	if err != nil {
		s.countBooking("error")
		log.Error("予約前の空き確認に失敗", zap.Error(err))
		return nil, err
	}
	if len(taken) > 0 {
		s.countBooking("unavailable")
		log.Info("予約済みまたはクローズ中のスロットを含むため拒否", zap.Strings("taken", slot.Strings(taken)))
		return nil, &booking.SlotUnavailableError{Date: date, Slots: taken}
	}

	rows := g.Bookings()
	err = transaction.WithTx(ctx, s.txManager, func(tx transaction.Tx) error {
		return s.bookingRepo.CreateGroup(ctx, tx, g, rows)
	})
	if err != nil {
		if errors.Is(err, booking.ErrConstraintViolation) {
			// 事前チェック後に他の予約が確定した
			s.countBooking("unavailable")
			conflict := s.conflictAfterRace(ctx, date, slots)
			log.Info("一意制約違反により予約を拒否", zap.Strings("taken", slot.Strings(conflict.Slots)))
			return nil, conflict
		}
		s.countBooking("error")
		log.Error("予約の登録に失敗", zap.Error(err))
		return nil, storageError("create_booking_group", err)
	}

	s.countBooking("success")
	if s.metrics != nil {
		s.metrics.BookedSlotsTotal.Add(float64(len(rows)))
	}
	s.availability.Invalidate(ctx, date)
	publish(ctx, s.publisher, newBookingEvent(EventBookingCreated, date, rows...))
	log.Info("予約を確定しました", zap.String("group_id", g.ID))

	return g.Summarize(rows), nil
}

// RangeCheck は予約前の範囲確認の結果
type RangeCheck struct {
	Date     slot.Date
	Slots    []slot.ID
	Degraded bool
}

// CheckRange は公開向けの空き状況（キャッシュを含む）で範囲を検証する
// 画面での早期判定用であり、BookRange は確定時に必ずストレージで再検証する
func (s *BookingService) CheckRange(ctx context.Context, date, start, end string) (*RangeCheck, error) {
	d, err := slot.ParseDate(date)
	if err != nil {
		return nil, err
	}
	from, to, _, err := booking.ParseRange(start, end)
	if err != nil {
		return nil, err
	}
	av, err := s.availability.GetAvailableSlots(ctx, CallSitePublic, d)
	if err != nil {
		return nil, err
	}
	slots, err := booking.ValidateRange(d, from, to, av.Slots)
	if err != nil {
		return nil, err
	}
	return &RangeCheck{Date: d, Slots: slots, Degraded: av.Degraded}, nil
}

// unavailableSlots は確定済み予約または有効なクローズで塞がっているスロットを返す
func (s *BookingService) unavailableSlots(ctx context.Context, date slot.Date, slots []slot.ID) ([]slot.ID, error) {
	closures, err := s.closureRepo.ActiveByDate(ctx, date)
	if err != nil {
		return nil, storageError("list_closures", err)
	}
	booked, err := s.bookingRepo.ConfirmedSlots(ctx, date, slots)
	if err != nil {
		return nil, storageError("confirmed_slots", err)
	}
	blocked := make(map[slot.ID]bool, len(booked))
	for _, b := range booked {
		blocked[b] = true
	}

	var taken []slot.ID
	for _, id := range slots {
		if blocked[id] {
			taken = append(taken, id)
			continue
		}
		for _, c := range closures {
			if c.Blocks(id) {
				taken = append(taken, id)
				break
			}
		}
	}
	return taken, nil
}

// conflictAfterRace は一意制約違反の後に衝突したスロットを問い合わせ直す
func (s *BookingService) conflictAfterRace(ctx context.Context, date slot.Date, slots []slot.ID) *booking.SlotUnavailableError {
	taken, err := s.bookingRepo.ConfirmedSlots(ctx, date, slots)
	if err != nil || len(taken) == 0 {
		// 特定できない場合は要求範囲全体を返す
		taken = slots
	}
	return &booking.SlotUnavailableError{Date: date, Slots: taken}
}

// lockDate は日付単位のロックを試みる
// 取得できなくても処理は続行する（排他は一意制約が担う）
func (s *BookingService) lockDate(ctx context.Context, date slot.Date) func() {
	if s.lockManager == nil {
		return func() {}
	}
	startedAt := time.Now()
	lock, err := s.lockManager.AcquireLockWithRetry(ctx, redisinfra.BookingLockKey(date), s.lockTTL, bookingLockRetries, bookingLockRetryDelay)
	if err != nil {
		s.observeLock("acquire", "failed", startedAt)
		logger.FromContext(ctx).Warn("日付ロックを取得できないまま続行します",
			zap.String("date", date.String()), zap.Error(err))
		return func() {}
	}
	s.observeLock("acquire", "success", startedAt)

	return func() {
		releasedAt := time.Now()
		// リクエストがキャンセルされていても解放は試みる
		ctx := context.WithoutCancel(ctx)
		if err := lock.Release(ctx); err != nil {
			s.observeLock("release", "failed", releasedAt)
			logger.FromContext(ctx).Warn("日付ロックの解放に失敗", zap.String("date", date.String()), zap.Error(err))
			return
		}
		s.observeLock("release", "success", releasedAt)
	}
}

func (s *BookingService) GetBooking(ctx context.Context, id string) (*booking.Booking, error) {
	b, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storageError("get_booking", err)
	}
	return b, nil
}

func (s *BookingService) ListBookings(ctx context.Context, f booking.Filter) ([]*booking.Booking, error) {
	list, err := s.bookingRepo.List(ctx, f)
	if err != nil {
		return nil, storageError("list_bookings", err)
	}
	return list, nil
}

// CancelBooking は1件の予約をキャンセルし、スロットを解放する
func (s *BookingService) CancelBooking(ctx context.Context, id, reason string) (*booking.Booking, error) {
	b, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storageError("get_booking", err)
	}
	if err := b.Cancel(reason); err != nil {
		return nil, err
	}
	err = transaction.WithTx(ctx, s.txManager, func(tx transaction.Tx) error {
		return s.bookingRepo.Update(ctx, tx, b)
	})
	if err != nil {
		return nil, storageError("cancel_booking", err)
	}

	s.availability.Invalidate(ctx, b.Date)
	publish(ctx, s.publisher, newBookingEvent(EventBookingCancelled, b.Date, b))
	logger.FromContext(ctx).Info("予約をキャンセルしました",
		zap.String("booking_id", b.ID), zap.String("date", b.Date.String()), zap.String("slot", b.TimeSlot.String()))
	return b, nil
}

// CancelGroup は予約グループ内の確定済み予約をまとめてキャンセルする
func (s *BookingService) CancelGroup(ctx context.Context, groupID, reason string) ([]*booking.Booking, error) {
	g, err := s.bookingRepo.GetGroup(ctx, groupID)
	if err != nil {
		return nil, storageError("get_booking_group", err)
	}
	rows, err := s.bookingRepo.List(ctx, booking.Filter{GroupID: g.ID, Status: booking.StatusConfirmed})
	if err != nil {
		return nil, storageError("list_bookings", err)
	}
	if len(rows) == 0 {
		return nil, booking.ErrAlreadyCancelled
	}
	for _, b := range rows {
		if err := b.Cancel(reason); err != nil {
			return nil, err
		}
	}

	err = transaction.WithTx(ctx, s.txManager, func(tx transaction.Tx) error {
		for _, b := range rows {
			if err := s.bookingRepo.Update(ctx, tx, b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, storageError("cancel_booking_group", err)
	}

	s.availability.Invalidate(ctx, g.Date)
	publish(ctx, s.publisher, newBookingEvent(EventBookingCancelled, g.Date, rows...))
	logger.FromContext(ctx).Info("予約グループをキャンセルしました",
		zap.String("group_id", g.ID), zap.Int("count", len(rows)))
	return rows, nil
}

// UpdateBooking はステータスや支払い情報を部分更新する
// 確定済みに戻す更新は他の確定予約と衝突した場合 SlotUnavailable になる
func (s *BookingService) UpdateBooking(ctx context.Context, id string, u booking.Update) (*booking.Booking, error) {
	b, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storageError("get_booking", err)
	}
	if err := b.Apply(u); err != nil {
		return nil, err
	}
	err = transaction.WithTx(ctx, s.txManager, func(tx transaction.Tx) error {
		return s.bookingRepo.Update(ctx, tx, b)
	})
	if err != nil {
		if errors.Is(err, booking.ErrConstraintViolation) {
			return nil, &booking.SlotUnavailableError{Date: b.Date, Slots: []slot.ID{b.TimeSlot}}
		}
		return nil, storageError("update_booking", err)
	}

	s.availability.Invalidate(ctx, b.Date)
	publish(ctx, s.publisher, newBookingEvent(EventBookingUpdated, b.Date, b))
	return b, nil
}

// DeleteBooking は予約を物理削除する（取り消し不可）
func (s *BookingService) DeleteBooking(ctx context.Context, id string) error {
	b, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return storageError("get_booking", err)
	}
	if err := s.bookingRepo.Delete(ctx, id); err != nil {
		return storageError("delete_booking", err)
	}

	s.availability.Invalidate(ctx, b.Date)
	publish(ctx, s.publisher, newBookingEvent(EventBookingDeleted, b.Date, b))
	logger.FromContext(ctx).Warn("予約を削除しました", zap.String("booking_id", id))
	return nil
}

func (s *BookingService) countBooking(result string) {
	if s.metrics != nil {
		s.metrics.BookingsTotal.WithLabelValues(result).Inc()
	}
}

func (s *BookingService) observeLock(op, status string, startedAt time.Time) {
	if s.metrics != nil {
		s.metrics.BookingLockDuration.WithLabelValues(op, status).Observe(time.Since(startedAt).Seconds())
	}
}
