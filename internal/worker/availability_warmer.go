package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-court-booking/internal/domain/slot"
	"github.com/sanosuguru/go-court-booking/internal/pkg/logger"
)

// AvailabilityRefresher は指定日の空き状況キャッシュを作り直すインターフェース
type AvailabilityRefresher interface {
	Refresh(ctx context.Context, date slot.Date) error
}

// AvailabilityWarmer は今日から数日分の空き状況キャッシュを定期的に温めるワーカー
type AvailabilityWarmer struct {
	availability AvailabilityRefresher
	interval     time.Duration
	days         int
	now          func() time.Time
	stopCh       chan struct{}
	doneCh       chan struct{}
	stopOnce     sync.Once
}

// NewAvailabilityWarmer は新しいウォーマーを作成
func NewAvailabilityWarmer(ar AvailabilityRefresher, interval time.Duration, days int) *AvailabilityWarmer {
	if days < 1 {
		days = 1
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &AvailabilityWarmer{
		availability: ar,
		interval:     interval,
		days:         days,
		now:          time.Now,
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}
}

// Start はウォーマーを開始（起動直後に1回実行する）
func (w *AvailabilityWarmer) Start(ctx context.Context) {
	logger.Info("空き状況キャッシュウォーマー開始",
		zap.Duration("interval", w.interval),
		zap.Int("days", w.days),
	)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	defer close(w.doneCh)

	w.warm(ctx)
	for {
		select {
		case <-ctx.Done():
			logger.Info("空き状況キャッシュウォーマー停止（コンテキストキャンセル）")
			return
		case <-w.stopCh:
			logger.Info("空き状況キャッシュウォーマー停止（シグナル受信）")
			return
		case <-ticker.C:
			w.warm(ctx)
		}
	}
}

// Stop はウォーマーを停止して終了を待つ
func (w *AvailabilityWarmer) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
	<-w.doneCh
}

// warm は今日から days 日分を更新する。1日分の失敗で残りを止めない
func (w *AvailabilityWarmer) warm(ctx context.Context) {
	log := logger.Get()
	today := slot.DateOf(w.now())

	failed := 0
	for i := 0; i < w.days; i++ {
		if ctx.Err() != nil {
			return
		}
		date := today.AddDays(i)
		if err := w.availability.Refresh(ctx, date); err != nil {
			failed++
			log.Warn("空き状況キャッシュの更新に失敗", zap.String("date", date.String()), zap.Error(err))
		}
	}
	log.Debug("空き状況キャッシュを更新", zap.Int("days", w.days), zap.Int("failed", failed))
}
