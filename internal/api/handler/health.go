package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-court-booking/internal/pkg/logger"
)

const readinessTimeout = 2 * time.Second

type readinessCheck struct {
	name   string
	pinger Pinger
}

// HealthHandler はヘルスチェックハンドラー
type HealthHandler struct {
	checks []readinessCheck
}

// NewHealthHandler はHealthHandlerを作成する
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// AddCheck はレディネスチェックの対象を追加する
func (h *HealthHandler) AddCheck(name string, p Pinger) *HealthHandler {
	h.checks = append(h.checks, readinessCheck{name: name, pinger: p})
	return h
}

// HealthResponse はヘルスチェックのレスポンス
type HealthResponse struct {
	Status     string            `json:"status"`
	Timestamp  string            `json:"timestamp"`
	Components map[string]string `json:"components,omitempty"`
}

// Check はヘルスチェックを行う
// @Summary ヘルスチェック
// @Description アプリケーションの健全性を確認する
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Check(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// Ready はストレージとキャッシュへの疎通を確認する
// @Summary レディネスチェック
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health/ready [get]
func (h *HealthHandler) Ready(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), readinessTimeout)
	defer cancel()

	resp := HealthResponse{
		Status:     "ok",
		Timestamp:  time.Now().Format(time.RFC3339),
		Components: make(map[string]string, len(h.checks)),
	}
	code := http.StatusOK
	for _, chk := range h.checks {
		if err := chk.pinger.Ping(ctx); err != nil {
			logger.FromContext(ctx).Warn("レディネスチェック失敗", zap.String("component", chk.name), zap.Error(err))
			resp.Components[chk.name] = "unavailable"
			resp.Status = "unavailable"
			code = http.StatusServiceUnavailable
			continue
		}
		resp.Components[chk.name] = "ok"
	}
	return c.JSON(code, resp)
}
