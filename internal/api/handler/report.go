package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-court-booking/internal/application"
)

type ReportHandler struct {
	service ReportServiceInterface
}

func NewReportHandler(s ReportServiceInterface) *ReportHandler {
	return &ReportHandler{service: s}
}

type StatsResponse struct {
	Total       int `json:"total"`
	Confirmed   int `json:"confirmed"`
	Cancelled   int `json:"cancelled"`
	Completed   int `json:"completed"`
	NoShow      int `json:"no_show"`
	Paid        int `json:"paid"`
	Unpaid      int `json:"unpaid"`
	TotalIncome int `json:"total_income"`
}

// Stats godoc
// @Summary 予約の集計
// @Tags admin
// @Produce json
// @Param start_date query string false "開始日"
// @Param end_date query string false "終了日"
// @Success 200 {object} StatsResponse
// @Router /admin/reports/stats [get]
func (h *ReportHandler) Stats(c echo.Context) error {
	s, err := h.service.Stats(c.Request().Context(), c.QueryParam("start_date"), c.QueryParam("end_date"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, StatsResponse{
		Total: s.Total, Confirmed: s.Confirmed, Cancelled: s.Cancelled, Completed: s.Completed,
		NoShow: s.NoShow, Paid: s.Paid, Unpaid: s.Unpaid, TotalIncome: s.TotalIncome,
	})
}

// ExportCSV godoc
// @Summary 予約一覧をCSVで出力
// @Tags admin
// @Produce text/csv
// @Param start_date query string false "開始日"
// @Param end_date query string false "終了日"
// @Param status query string false "ステータス"
// @Param payment_status query string false "支払いステータス"
// @Success 200 {file} file
// @Router /admin/reports/bookings.csv [get]
func (h *ReportHandler) ExportCSV(c echo.Context) error {
	f, err := application.BuildFilter(
		c.QueryParam("start_date"), c.QueryParam("end_date"),
		c.QueryParam("status"), c.QueryParam("payment_status"),
	)
	if err != nil {
		return err
	}
	// 途中で失敗したときにエラーレスポンスを返せるよう一度バッファに書く
	var buf bytes.Buffer
	if err := h.service.ExportCSV(c.Request().Context(), &buf, f); err != nil {
		return err
	}
	filename := fmt.Sprintf("bookings_%s.csv", time.Now().Format("20060102"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
