package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-court-booking/internal/api"
	"github.com/sanosuguru/go-court-booking/internal/api/handler"
	"github.com/sanosuguru/go-court-booking/internal/api/middleware"
	"github.com/sanosuguru/go-court-booking/internal/application"
	"github.com/sanosuguru/go-court-booking/internal/config"
	"github.com/sanosuguru/go-court-booking/internal/domain/account"
	"github.com/sanosuguru/go-court-booking/internal/domain/booking"
	"github.com/sanosuguru/go-court-booking/internal/domain/closure"
	"github.com/sanosuguru/go-court-booking/internal/domain/pricing"
	"github.com/sanosuguru/go-court-booking/internal/domain/transaction"
	"github.com/sanosuguru/go-court-booking/internal/infrastructure/memory"
	"github.com/sanosuguru/go-court-booking/internal/infrastructure/postgres"
	"github.com/sanosuguru/go-court-booking/internal/infrastructure/rabbitmq"
	redisinfra "github.com/sanosuguru/go-court-booking/internal/infrastructure/redis"
	"github.com/sanosuguru/go-court-booking/internal/pkg/logger"
	"github.com/sanosuguru/go-court-booking/internal/pkg/metrics"
	"github.com/sanosuguru/go-court-booking/internal/worker"
)

var ErrUnknownBackend = errors.New("不明なストレージバックエンドです")

// Options は組み立て時に外から差し込むもの
type Options struct {
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	// MemoryStore を渡すと STORAGE_BACKEND=memory のときにそのストアを使う
	MemoryStore *memory.Store
}

// Server は組み立て済みのHTTPサーバーと付随するワーカー
type Server struct {
	Echo   *echo.Echo
	Warmer *worker.AvailabilityWarmer

	closers       []io.Closer
	warmerStarted atomic.Bool
}

// Close は外部接続を閉じる
func (s *Server) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type repositories struct {
	tx       transaction.Manager
	bookings booking.Repository
	closures closure.Repository
	pricing  pricing.Repository
	accounts account.Repository
	store    handler.Pinger
}

// New は設定に従って依存を組み立て、ルートを登録したサーバーを返す
func New(cfg *config.Config, opts Options) (*Server, error) {
	s := &Server{}
	m := opts.Metrics
	if m == nil {
		m = metrics.Get()
	}

	repos, err := s.openStorage(cfg, opts)
	if err != nil {
		_ = s.Close()
		return nil, err
	}

	var (
		lockManager redisinfra.LockManagerInterface
		cache       redisinfra.AvailabilityCacheInterface
		redisClient *redis.Client
	)
	if cfg.Redis.Enabled {
		redisClient, err = redisinfra.NewClient(redisinfra.ConfigFrom(&cfg.Redis))
		if err != nil {
			// Redis なしでも予約の正しさは保たれるため起動は続ける
			logger.Warn("Redisに接続できないためロックとキャッシュを無効化します", zap.Error(err))
		} else {
			s.closers = append(s.closers, redisClient)
			lockManager = redisinfra.NewLockManager(redisClient)
			cache = redisinfra.NewAvailabilityCache(redisClient)
		}
	}

	var publisher application.EventPublisher = rabbitmq.NopPublisher{}
	if cfg.RabbitMQ.URL != "" {
		p, err := rabbitmq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			logger.Warn("RabbitMQに接続できないためイベント配信を無効化します", zap.Error(err))
		} else {
			s.closers = append(s.closers, p)
			publisher = p
		}
	}

	publicPolicy, err := application.ParseFallbackPolicy(cfg.Availability.PublicFallback)
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("AVAILABILITY_PUBLIC_FALLBACK: %w", err)
	}
	adminPolicy, err := application.ParseFallbackPolicy(cfg.Availability.AdminFallback)
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("AVAILABILITY_ADMIN_FALLBACK: %w", err)
	}

	availability := application.NewAvailabilityService(repos.bookings, repos.closures, repos.pricing, cache, application.AvailabilityOptions{
		PublicFallback: publicPolicy,
		AdminFallback:  adminPolicy,
		CacheTTL:       cfg.Availability.CacheTTL,
		Metrics:        m,
	})
	bookings := application.NewBookingService(repos.tx, repos.bookings, repos.closures, availability, lockManager, publisher, application.BookingOptions{
		LockTTL: cfg.Booking.LockTTL,
		Metrics: m,
	})

	health := handler.NewHealthHandler().AddCheck("store", repos.store)
	if redisClient != nil {
		health.AddCheck("redis", handler.PingFunc(func(ctx context.Context) error {
			return redisinfra.Ping(ctx, redisClient)
		}))
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	middleware.SetupMiddleware(e)
	e.Use(middleware.PrometheusMiddleware(m))

	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})),
		middleware.MetricsBasicAuth(middleware.LoadMetricsConfig()))

	handler.RegisterRoutes(e, &handler.Handlers{
		Health:       health,
		Availability: handler.NewAvailabilityHandler(availability),
		Booking:      handler.NewBookingHandler(bookings),
		Pricing:      handler.NewPricingHandler(application.NewPricingService(repos.tx, repos.pricing)),
		Closure:      handler.NewClosureHandler(application.NewClosureService(repos.closures, availability)),
		Report:       handler.NewReportHandler(application.NewReportService(repos.bookings)),
		Account:      handler.NewAccountHandler(application.NewAccountService(repos.tx, repos.accounts, TokenIssuer(cfg.Auth.JWTSecret))),
	}, cfg.Auth.JWTSecret)

	if cfg.Auth.JWTSecret == "" {
		logger.Warn("JWT_SECRET が未設定のため管理APIはすべて拒否されます")
	}

	s.Echo = e
	if cache != nil {
		s.Warmer = worker.NewAvailabilityWarmer(availability, cfg.Worker.CacheWarmInterval, cfg.Worker.CacheWarmDays)
	}
	return s, nil
}

// TokenIssuer は secret で署名する管理者トークンの発行関数を返す
func TokenIssuer(secret string) application.TokenIssuer {
	return func(subject, role string, ttl time.Duration) (string, error) {
		return middleware.IssueAdminToken(secret, subject, role, ttl)
	}
}

func (s *Server) openStorage(cfg *config.Config, opts Options) (*repositories, error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		store := opts.MemoryStore
		if store == nil {
			store = memory.NewStore()
		}
		logger.Warn("インメモリストアで起動します（再起動でデータは失われます）")
		return &repositories{
			tx:       memory.NewTxManager(store),
			bookings: memory.NewBookingRepository(store),
			closures: memory.NewClosureRepository(store),
			pricing:  memory.NewPricingRepository(store),
			accounts: memory.NewAccountRepository(store),
			store:    store,
		}, nil

	case config.BackendPostgres:
		db, err := postgres.NewConnection(&cfg.Database)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, db)
		if err := postgres.RunMigrations(db.DB, cfg.Storage.MigrationsPath); err != nil {
			return nil, err
		}
		return &repositories{
			tx:       postgres.NewTxManager(db),
			bookings: postgres.NewBookingRepository(db),
			closures: postgres.NewClosureRepository(db),
			pricing:  postgres.NewPricingRepository(db),
			accounts: postgres.NewAccountRepository(db),
			store:    postgres.NewPinger(db),
		}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Storage.Backend)
}

// Start はワーカーを起動してからHTTPサーバーを開始する（ブロックする）
func (s *Server) Start(ctx context.Context, addr string) error {
	if s.Warmer != nil && s.warmerStarted.CompareAndSwap(false, true) {
		go s.Warmer.Start(ctx)
	}
	if err := s.Echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown はHTTPサーバーとワーカーを止め、接続を閉じる
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.Echo.Shutdown(ctx)
	if s.Warmer != nil && s.warmerStarted.Load() {
		s.Warmer.Stop()
	}
	return errors.Join(err, s.Close())
}
