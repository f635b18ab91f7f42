package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics はアプリケーションのメトリクスを管理する
type Metrics struct {
	// HTTPリクエストの総数（method, path, status_code）
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPリクエストのレイテンシ（method, path）
	HTTPRequestDuration *prometheus.HistogramVec

	// 予約確定の試行数（result: success, unavailable, invalid, error）
	BookingsTotal *prometheus.CounterVec

	// 確定した予約スロット数
	BookedSlotsTotal prometheus.Counter

	// 日付ロックの操作時間（operation: acquire/release, status: success/failed/skipped）
	BookingLockDuration *prometheus.HistogramVec

	// 空き状況キャッシュの参照結果（result: hit, miss, error, stale）
	AvailabilityCacheTotal *prometheus.CounterVec

	// ストレージ障害時のフォールバック回数（call_site: public/admin, policy）
	AvailabilityDegradedTotal *prometheus.CounterVec
}

// New は新しいMetricsインスタンスを作成し、デフォルトレジストリに登録する
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry は指定したレジストリにメトリクスを登録する
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		BookingsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "court_bookings_total",
				Help: "Total number of slot range booking attempts",
			},
			[]string{"result"},
		),
		BookedSlotsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "court_booked_slots_total",
				Help: "Total number of hourly slots confirmed",
			},
		),
		BookingLockDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "court_booking_lock_duration_seconds",
				Help:    "Time spent on per-date booking lock operations",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"operation", "status"},
		),
		AvailabilityCacheTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "court_availability_cache_total",
				Help: "Availability cache lookups by result",
			},
			[]string{"result"},
		),
		AvailabilityDegradedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "court_availability_degraded_total",
				Help: "Availability reads answered by a fallback policy because storage failed",
			},
			[]string{"call_site", "policy"},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.BookingsTotal,
		m.BookedSlotsTotal,
		m.BookingLockDuration,
		m.AvailabilityCacheTotal,
		m.AvailabilityDegradedTotal,
	)

	return m
}

// デフォルトのメトリクスインスタンス
var defaultMetrics *Metrics

// Init はデフォルトのメトリクスインスタンスを初期化する
func Init() *Metrics {
	defaultMetrics = New()
	return defaultMetrics
}

// Get はデフォルトのメトリクスインスタンスを返す
func Get() *Metrics {
	return defaultMetrics
}
