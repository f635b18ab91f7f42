package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-court-booking/internal/domain/booking"
	"github.com/sanosuguru/go-court-booking/internal/domain/closure"
	"github.com/sanosuguru/go-court-booking/internal/domain/pricing"
	"github.com/sanosuguru/go-court-booking/internal/domain/slot"
	redisinfra "github.com/sanosuguru/go-court-booking/internal/infrastructure/redis"
	"github.com/sanosuguru/go-court-booking/internal/pkg/logger"
	"github.com/sanosuguru/go-court-booking/internal/pkg/metrics"
)

// FallbackPolicy はストレージ障害時の空き状況の扱い
type FallbackPolicy string

const (
	// FallbackOptimistic は全スロットを空きとして返す
	FallbackOptimistic FallbackPolicy = "optimistic"
	// FallbackPessimistic は空きなしとして返す
	FallbackPessimistic FallbackPolicy = "pessimistic"
	// FallbackFail はエラーをそのまま返す
	FallbackFail FallbackPolicy = "fail"
)

var ErrInvalidFallbackPolicy = errors.New("フォールバックポリシーが不正です")

func ParseFallbackPolicy(s string) (FallbackPolicy, error) {
	switch p := FallbackPolicy(s); p {
	case FallbackOptimistic, FallbackPessimistic, FallbackFail:
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidFallbackPolicy, s)
}

// CallSite は空き状況の呼び出し元
type CallSite string

const (
	CallSitePublic CallSite = "public"
	CallSiteAdmin  CallSite = "admin"
)

const defaultAvailabilityCacheTTL = 30 * time.Second

// Availability は指定日の空きスロット
// Degraded が true の場合はストレージ障害時のフォールバック値
type Availability struct {
	Date     slot.Date
	Slots    []slot.ID
	Degraded bool
}

// SlotInfo はスロット表の1行
type SlotInfo struct {
	Slot        slot.ID
	Label       string
	Available   bool
	Price       int
	IsPrimeTime bool
}

type AvailabilityOptions struct {
	PublicFallback FallbackPolicy
	AdminFallback  FallbackPolicy
	CacheTTL       time.Duration
	Metrics        *metrics.Metrics
}

type AvailabilityService struct {
	bookingRepo booking.Repository
	closureRepo closure.Repository
	pricingRepo pricing.Repository
	cache       redisinfra.AvailabilityCacheInterface
	cacheTTL    time.Duration
	policies    map[CallSite]FallbackPolicy
	metrics     *metrics.Metrics
}

func NewAvailabilityService(br booking.Repository, cr closure.Repository, pr pricing.Repository, cache redisinfra.AvailabilityCacheInterface, opts AvailabilityOptions) *AvailabilityService {
	if opts.PublicFallback == "" {
		opts.PublicFallback = FallbackOptimistic
	}
	if opts.AdminFallback == "" {
		opts.AdminFallback = FallbackPessimistic
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = defaultAvailabilityCacheTTL
	}
	return &AvailabilityService{
		bookingRepo: br,
		closureRepo: cr,
		pricingRepo: pr,
		cache:       cache,
		cacheTTL:    opts.CacheTTL,
		policies: map[CallSite]FallbackPolicy{
			CallSitePublic: opts.PublicFallback,
			CallSiteAdmin:  opts.AdminFallback,
		},
		metrics: opts.Metrics,
	}
}

// Resolve はストレージから空きスロットを計算する（キャッシュもフォールバックも使わない）
// 有効な終日クローズがあれば予約状況に関係なく空を返す
func (s *AvailabilityService) Resolve(ctx context.Context, date slot.Date) ([]slot.ID, error) {
	closures, err := s.closureRepo.ActiveByDate(ctx, date)
	if err != nil {
		return nil, storageError("list_closures", err)
	}
	blocked := make(map[slot.ID]bool)
	for _, c := range closures {
		if c.IsFullDay() {
			return []slot.ID{}, nil
		}
		blocked[c.TimeSlot] = true
	}

	booked, err := s.bookingRepo.ConfirmedSlots(ctx, date, nil)
	if err != nil {
		return nil, storageError("confirmed_slots", err)
	}
	for _, b := range booked {
		blocked[b] = true
	}

	available := make([]slot.ID, 0, slot.SlotsPerDay)
	for _, id := range slot.All() {
		if !blocked[id] {
			available = append(available, id)
		}
	}
	return available, nil
}

// GetAvailableSlots は呼び出し元ごとのフォールバックポリシーに従って空きスロットを返す
func (s *AvailabilityService) GetAvailableSlots(ctx context.Context, site CallSite, date slot.Date) (*Availability, error) {
	if cached, ok := s.fromCache(ctx, date); ok {
		return &Availability{Date: date, Slots: cached}, nil
	}

	gen, genOK := s.generation(ctx, date)
	slots, err := s.Resolve(ctx, date)
	if err != nil {
		return s.degrade(ctx, site, date, err)
	}
	if genOK {
		s.store(ctx, date, gen, slots)
	}
	return &Availability{Date: date, Slots: slots}, nil
}

func (s *AvailabilityService) degrade(ctx context.Context, site CallSite, date slot.Date, cause error) (*Availability, error) {
	policy, ok := s.policies[site]
	if !ok {
		policy = FallbackFail
	}
	log := logger.FromContext(ctx).With(
		zap.String("call_site", string(site)),
		zap.String("date", date.String()),
		zap.String("policy", string(policy)),
		zap.Error(cause),
	)
	if policy == FallbackFail || !errors.Is(cause, booking.ErrStorageUnavailable) {
		log.Error("空き状況の取得に失敗")
		return nil, cause
	}

	log.Warn("ストレージ障害のためフォールバック値を返します")
	if s.metrics != nil {
		s.metrics.AvailabilityDegradedTotal.WithLabelValues(string(site), string(policy)).Inc()
	}
	out := &Availability{Date: date, Slots: []slot.ID{}, Degraded: true}
	if policy == FallbackOptimistic {
		out.Slots = slot.All()
	}
	return out, nil
}

// SlotBoard は全24スロットの空き状況と料金を返す
func (s *AvailabilityService) SlotBoard(ctx context.Context, date slot.Date) ([]SlotInfo, *Availability, error) {
	av, err := s.GetAvailableSlots(ctx, CallSitePublic, date)
	if err != nil {
		return nil, nil, err
	}
	configs, err := s.pricingRepo.List(ctx)
	if err != nil {
		return nil, nil, storageError("list_pricing", err)
	}
	prices := pricing.Index(configs)
	free := make(map[slot.ID]bool, len(av.Slots))
	for _, id := range av.Slots {
		free[id] = true
	}

	board := make([]SlotInfo, 0, slot.SlotsPerDay)
	for _, id := range slot.All() {
		info := SlotInfo{Slot: id, Label: id.Label(), Available: free[id]}
		if p, ok := prices[id]; ok {
			info.Price = p.Price
			info.IsPrimeTime = p.IsPrimeTime
		}
		board = append(board, info)
	}
	return board, av, nil
}

// Refresh はストレージから再計算してキャッシュを更新する
func (s *AvailabilityService) Refresh(ctx context.Context, date slot.Date) error {
	if s.cache == nil {
		return nil
	}
	gen, genOK := s.generation(ctx, date)
	slots, err := s.Resolve(ctx, date)
	if err != nil {
		return err
	}
	if genOK {
		s.store(ctx, date, gen, slots)
	}
	return nil
}

// Invalidate は指定日のキャッシュを破棄する
func (s *AvailabilityService) Invalidate(ctx context.Context, date slot.Date) {
	if s == nil || s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, date); err != nil {
		logger.FromContext(ctx).Warn("キャッシュ無効化エラー", zap.String("date", date.String()), zap.Error(err))
	}
}

func (s *AvailabilityService) fromCache(ctx context.Context, date slot.Date) ([]slot.ID, bool) {
	if s.cache == nil {
		return nil, false
	}
	slots, err := s.cache.Get(ctx, date)
	if err == nil {
		s.countCache("hit")
		return slots, true
	}
	if errors.Is(err, redisinfra.ErrCacheMiss) {
		s.countCache("miss")
	} else {
		s.countCache("error")
		logger.FromContext(ctx).Warn("キャッシュ取得エラー", zap.String("date", date.String()), zap.Error(err))
	}
	return nil, false
}

// generation は計算前のキャッシュ世代を読む
// 読めなければ保存しない（無効化との前後関係を判定できないため）
func (s *AvailabilityService) generation(ctx context.Context, date slot.Date) (int64, bool) {
	if s.cache == nil {
		return 0, false
	}
	gen, err := s.cache.Generation(ctx, date)
	if err != nil {
		logger.FromContext(ctx).Warn("キャッシュ世代の取得エラー", zap.String("date", date.String()), zap.Error(err))
		return 0, false
	}
	return gen, true
}

// store は gen を読んだ後に無効化が入っていなければ結果を保存する
func (s *AvailabilityService) store(ctx context.Context, date slot.Date, gen int64, slots []slot.ID) {
	err := s.cache.Set(ctx, date, gen, slots, s.cacheTTL)
	switch {
	case err == nil:
	case errors.Is(err, redisinfra.ErrStaleGeneration):
		s.countCache("stale")
		logger.FromContext(ctx).Debug("計算中に無効化されたため保存しません", zap.String("date", date.String()), zap.Int64("generation", gen))
	default:
		logger.FromContext(ctx).Warn("キャッシュ保存エラー", zap.String("date", date.String()), zap.Error(err))
	}
}

func (s *AvailabilityService) countCache(result string) {
	if s.metrics != nil {
		s.metrics.AvailabilityCacheTotal.WithLabelValues(result).Inc()
	}
}
