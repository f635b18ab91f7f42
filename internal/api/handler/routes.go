package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-court-booking/internal/api/middleware"
)

// Handlers はルーティング対象のハンドラー一式
type Handlers struct {
	Health       *HealthHandler
	Availability *AvailabilityHandler
	Booking      *BookingHandler
	Pricing      *PricingHandler
	Closure      *ClosureHandler
	Report       *ReportHandler
	Account      *AccountHandler
}

// RegisterRoutes は公開APIと管理APIのルートを登録する
// 管理APIは jwtSecret で署名された super_admin / moderator のトークンが必要
// ユーザーロールの管理は super_admin のみ
func RegisterRoutes(e *echo.Echo, h *Handlers, jwtSecret string) {
	e.GET("/health", h.Health.Check)
	e.GET("/health/ready", h.Health.Ready)

	v1 := e.Group("/api/v1")
	v1.GET("/availability", h.Availability.Public)
	v1.GET("/slots", h.Availability.Board)
	v1.POST("/bookings", h.Booking.Create)
	v1.GET("/bookings/check", h.Booking.Check)

	admin := v1.Group("/admin", middleware.JWTAuth(jwtSecret))
	admin.GET("/availability", h.Availability.Admin)

	admin.GET("/bookings", h.Booking.List)
	admin.GET("/bookings/:id", h.Booking.GetByID)
	admin.PATCH("/bookings/:id", h.Booking.Update)
	admin.POST("/bookings/:id/cancel", h.Booking.Cancel)
	admin.DELETE("/bookings/:id", h.Booking.Delete, middleware.RequireRole(middleware.RoleSuperAdmin))
	admin.POST("/booking-groups/:id/cancel", h.Booking.CancelGroup)

	admin.GET("/pricing", h.Pricing.List)
	admin.PUT("/pricing", h.Pricing.BulkUpdate)
	admin.PUT("/pricing/:slot", h.Pricing.Update)

	admin.GET("/closures", h.Closure.List)
	admin.POST("/closures", h.Closure.Create)
	admin.DELETE("/closures/:id", h.Closure.Deactivate)

	admin.GET("/reports/stats", h.Report.Stats)
	admin.GET("/reports/bookings.csv", h.Report.ExportCSV)

	users := admin.Group("/users", middleware.RequireRole(middleware.RoleSuperAdmin))
	users.GET("", h.Account.List)
	users.POST("", h.Account.Register)
	users.PUT("/:id/role", h.Account.UpdateRole)
	users.POST("/:id/token", h.Account.IssueToken)
}
