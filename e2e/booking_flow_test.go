package e2e

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-court-booking/internal/api"
	"github.com/sanosuguru/go-court-booking/internal/api/handler"
	"github.com/sanosuguru/go-court-booking/internal/api/middleware"
)

const testDate = "2030-06-01"

func bookingBody(start, end, name string) map[string]interface{} {
	return map[string]interface{}{
		"date":            testDate,
		"start_slot":      start,
		"end_slot":        end,
		"customer_name":   name,
		"customer_mobile": "0771234567",
	}
}

func publicAvailability(t *testing.T, s *TestServer) handler.AvailabilityResponse {
	t.Helper()
	rec := s.Request(http.MethodGet, "/api/v1/availability?date="+testDate, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	return decode[handler.AvailabilityResponse](t, rec)
}

// TestE2E_HealthCheck はヘルスチェックをテスト
func TestE2E_HealthCheck(t *testing.T) {
	s := NewTestServer(t)

	rec := s.Request(http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decode[map[string]string](t, rec)
	assert.Equal(t, "ok", resp["status"])

	rec = s.Request(http.MethodGet, "/health/ready", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

// TestE2E_CompleteBookingJourney は予約から管理操作までの一連の流れをテスト
func TestE2E_CompleteBookingJourney(t *testing.T) {
	s := NewTestServer(t)
	admin := adminHeaders(t, middleware.RoleModerator)

	var summary handler.BookingSummaryResponse

	t.Run("初期状態は全スロット空き", func(t *testing.T) {
		resp := publicAvailability(t, s)
		assert.Len(t, resp.Slots, 24)
		assert.False(t, resp.Degraded)
	})

	t.Run("18時から20時を予約", func(t *testing.T) {
		rec := s.Request(http.MethodPost, "/api/v1/bookings", bookingBody("18:00", "20:00", "Kasun Perera"), nil)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		summary = decode[handler.BookingSummaryResponse](t, rec)
		assert.NotEmpty(t, summary.ID)
		assert.NotEmpty(t, summary.GroupID)
		assert.Equal(t, []string{"18:00", "19:00"}, summary.Slots)
		assert.Equal(t, "confirmed", summary.Status)
	})

	t.Run("予約したスロットが空きから消える", func(t *testing.T) {
		resp := publicAvailability(t, s)
		assert.Len(t, resp.Slots, 22)
		assert.NotContains(t, resp.Slots, "18:00")
		assert.NotContains(t, resp.Slots, "19:00")
		assert.Contains(t, resp.Slots, "20:00")
	})

	t.Run("スロットボードでも予約済みになる", func(t *testing.T) {
		rec := s.Request(http.MethodGet, "/api/v1/slots?date="+testDate, nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		board := decode[handler.SlotBoardResponse](t, rec)
		require.Len(t, board.Slots, 24)
		assert.False(t, board.Slots[18].Available)
		assert.Equal(t, "6:00 PM", board.Slots[18].Label)
		assert.True(t, board.Slots[20].Available)
	})

	t.Run("管理者が予約一覧を取得", func(t *testing.T) {
		rec := s.Request(http.MethodGet, "/api/v1/admin/bookings?start_date="+testDate, nil, admin)
		require.Equal(t, http.StatusOK, rec.Code)
		list := decode[[]handler.BookingResponse](t, rec)
		assert.Len(t, list, 2)
	})

	t.Run("管理者が支払い済みに更新", func(t *testing.T) {
		body := map[string]interface{}{"payment_status": "paid", "payment_method": "cash", "price": 5000}
		rec := s.Request(http.MethodPatch, "/api/v1/admin/bookings/"+summary.ID, body, admin)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		b := decode[handler.BookingResponse](t, rec)
		assert.Equal(t, "paid", b.PaymentStatus)
		assert.Equal(t, 5000, b.Price)
	})

	t.Run("集計に売上が反映される", func(t *testing.T) {
		rec := s.Request(http.MethodGet, "/api/v1/admin/reports/stats", nil, admin)
		require.Equal(t, http.StatusOK, rec.Code)
		stats := decode[handler.StatsResponse](t, rec)
		assert.Equal(t, 2, stats.Total)
		assert.Equal(t, 1, stats.Paid)
		assert.Equal(t, 5000, stats.TotalIncome)
	})

	t.Run("1スロットをキャンセルすると空きに戻る", func(t *testing.T) {
		body := map[string]string{"reason": "顧客都合"}
		rec := s.Request(http.MethodPost, "/api/v1/admin/bookings/"+summary.ID+"/cancel", body, admin)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		b := decode[handler.BookingResponse](t, rec)
		assert.Equal(t, "cancelled", b.Status)
		assert.Equal(t, "顧客都合", b.CancelledReason)

		resp := publicAvailability(t, s)
		assert.Contains(t, resp.Slots, "18:00")
		assert.NotContains(t, resp.Slots, "19:00")
	})

	t.Run("同じ予約を再度キャンセルすると409", func(t *testing.T) {
		body := map[string]string{"reason": "重複"}
		rec := s.Request(http.MethodPost, "/api/v1/admin/bookings/"+summary.ID+"/cancel", body, admin)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("グループごとキャンセル", func(t *testing.T) {
		body := map[string]string{"reason": "雨天のため"}
		rec := s.Request(http.MethodPost, "/api/v1/admin/booking-groups/"+summary.GroupID+"/cancel", body, admin)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		resp := publicAvailability(t, s)
		assert.Len(t, resp.Slots, 24)
	})
}

// TestE2E_BookingConflict は重複予約が409とスロット一覧を返すことをテスト
func TestE2E_BookingConflict(t *testing.T) {
	s := NewTestServer(t)

	rec := s.Request(http.MethodPost, "/api/v1/bookings", bookingBody("09:00", "11:00", "User A"), nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	tests := []struct {
		name      string
		start     string
		end       string
		wantSlots []string
	}{
		{"完全に重なる", "09:00", "11:00", []string{"09:00", "10:00"}},
		{"後半が重なる", "10:00", "12:00", []string{"10:00"}},
		{"前半が重なる", "08:00", "10:00", []string{"09:00"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.Request(http.MethodPost, "/api/v1/bookings", bookingBody(tt.start, tt.end, "User B"), nil)
			require.Equal(t, http.StatusConflict, rec.Code)
			resp := decode[api.ErrorResponse](t, rec)
			assert.Equal(t, tt.wantSlots, resp.Slots)
		})
	}

	t.Run("隣接する範囲は予約できる", func(t *testing.T) {
		rec := s.Request(http.MethodPost, "/api/v1/bookings", bookingBody("11:00", "12:00", "User C"), nil)
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("競合後も部分的な予約は残らない", func(t *testing.T) {
		resp := publicAvailability(t, s)
		assert.Contains(t, resp.Slots, "08:00")
		assert.Len(t, resp.Slots, 21)
	})
}

// TestE2E_ConcurrentBooking は同時予約で1件だけ成功することをテスト
func TestE2E_ConcurrentBooking(t *testing.T) {
	s := NewTestServer(t)

	const clients = 20
	codes := make([]int, clients)
	var wg sync.WaitGroup
	for i := 0; i < clients; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec := s.Request(http.MethodPost, "/api/v1/bookings",
				bookingBody("18:00", "21:00", fmt.Sprintf("user-%d", i)), nil)
			codes[i] = rec.Code
		}(i)
	}
	wg.Wait()

	created, conflicts := 0, 0
	for _, c := range codes {
		switch c {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
			conflicts++
		}
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, clients-1, conflicts)
}

// TestE2E_InvalidBookingRequests は入力エラーが400になることをテスト
func TestE2E_InvalidBookingRequests(t *testing.T) {
	s := NewTestServer(t)

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"終了が開始と同じ", bookingBody("10:00", "10:00", "A")},
		{"終了が開始より前", bookingBody("12:00", "10:00", "A")},
		{"存在しないスロット", bookingBody("10:30", "11:00", "A")},
		{"24:00は開始にできない", bookingBody("24:00", "24:00", "A")},
		{"符号付きの開始", bookingBody("+1:00", "02:00", "A")},
		{"氏名が空", bookingBody("10:00", "11:00", "")},
		{"日付の形式が不正", map[string]interface{}{
			"date": "2030/06/01", "start_slot": "10:00", "end_slot": "11:00",
			"customer_name": "A", "customer_mobile": "0771234567",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.Request(http.MethodPost, "/api/v1/bookings", tt.body, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}

	t.Run("終日まで予約できる", func(t *testing.T) {
		rec := s.Request(http.MethodPost, "/api/v1/bookings", bookingBody("22:00", "24:00", "Night Owl"), nil)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		summary := decode[handler.BookingSummaryResponse](t, rec)
		assert.Equal(t, []string{"22:00", "23:00"}, summary.Slots)
	})

	t.Run("日付なしの空き状況は400", func(t *testing.T) {
		rec := s.Request(http.MethodGet, "/api/v1/availability", nil, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

// TestE2E_Closures はクローズ設定が空き状況と予約に反映されることをテスト
func TestE2E_Closures(t *testing.T) {
	s := NewTestServer(t)
	admin := adminHeaders(t, middleware.RoleModerator)

	var partial, fullDay handler.ClosureResponse

	t.Run("部分クローズを登録", func(t *testing.T) {
		body := map[string]string{"date": testDate, "time_slot": "07:00", "reason": "整備"}
		rec := s.Request(http.MethodPost, "/api/v1/admin/closures", body, admin)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		partial = decode[handler.ClosureResponse](t, rec)
		assert.False(t, partial.FullDay)

		resp := publicAvailability(t, s)
		assert.Len(t, resp.Slots, 23)
		assert.NotContains(t, resp.Slots, "07:00")
	})

	t.Run("クローズ中のスロットは予約できない", func(t *testing.T) {
		rec := s.Request(http.MethodPost, "/api/v1/bookings", bookingBody("06:00", "08:00", "A"), nil)
		require.Equal(t, http.StatusConflict, rec.Code)
		resp := decode[api.ErrorResponse](t, rec)
		assert.Equal(t, []string{"07:00"}, resp.Slots)
	})

	t.Run("終日クローズで空きがなくなる", func(t *testing.T) {
		body := map[string]string{"date": testDate, "reason": "大会のため"}
		rec := s.Request(http.MethodPost, "/api/v1/admin/closures", body, admin)
		require.Equal(t, http.StatusCreated, rec.Code)
		fullDay = decode[handler.ClosureResponse](t, rec)
		assert.True(t, fullDay.FullDay)

		resp := publicAvailability(t, s)
		assert.Empty(t, resp.Slots)
		assert.NotNil(t, resp.Slots)
	})

	t.Run("一覧に有効なクローズが並ぶ", func(t *testing.T) {
		rec := s.Request(http.MethodGet, "/api/v1/admin/closures", nil, admin)
		require.Equal(t, http.StatusOK, rec.Code)
		list := decode[[]handler.ClosureResponse](t, rec)
		assert.Len(t, list, 2)
	})

	t.Run("解除すると空きが戻る", func(t *testing.T) {
		rec := s.Request(http.MethodDelete, "/api/v1/admin/closures/"+fullDay.ID, nil, admin)
		require.Equal(t, http.StatusNoContent, rec.Code)
		rec = s.Request(http.MethodDelete, "/api/v1/admin/closures/"+partial.ID, nil, admin)
		require.Equal(t, http.StatusNoContent, rec.Code)

		resp := publicAvailability(t, s)
		assert.Len(t, resp.Slots, 24)
	})

	t.Run("解除済みは一覧から消え履歴には残る", func(t *testing.T) {
		rec := s.Request(http.MethodGet, "/api/v1/admin/closures", nil, admin)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, decode[[]handler.ClosureResponse](t, rec))

		rec = s.Request(http.MethodGet, "/api/v1/admin/closures?active_only=false", nil, admin)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode[[]handler.ClosureResponse](t, rec), 2)
	})
}

// TestE2E_Pricing は料金設定の更新がスロットボードに反映されることをテスト
func TestE2E_Pricing(t *testing.T) {
	s := NewTestServer(t)
	admin := adminHeaders(t, middleware.RoleModerator)

	t.Run("初期料金表は24スロット", func(t *testing.T) {
		rec := s.Request(http.MethodGet, "/api/v1/admin/pricing", nil, admin)
		require.Equal(t, http.StatusOK, rec.Code)
		list := decode[[]handler.PricingResponse](t, rec)
		require.Len(t, list, 24)
		// 17:00〜22:00 はプライムタイム
		assert.Equal(t, 3500, list[16].Price)
		assert.False(t, list[16].IsPrimeTime)
		assert.Equal(t, 5000, list[17].Price)
		assert.True(t, list[22].IsPrimeTime)
		assert.False(t, list[23].IsPrimeTime)
	})

	t.Run("1スロットの料金を更新", func(t *testing.T) {
		body := map[string]interface{}{"price": 6000, "is_prime_time": true}
		rec := s.Request(http.MethodPut, "/api/v1/admin/pricing/18%3A00", body, admin)
		require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	})

	t.Run("まとめて更新", func(t *testing.T) {
		body := map[string]interface{}{"items": []map[string]interface{}{
			{"time_slot": "06:00", "price": 3000},
			{"time_slot": "07:00", "price": 3000},
		}}
		rec := s.Request(http.MethodPut, "/api/v1/admin/pricing", body, admin)
		require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	})

	t.Run("不正なスロットを含むと全体が400", func(t *testing.T) {
		body := map[string]interface{}{"items": []map[string]interface{}{
			{"time_slot": "08:00", "price": 9999},
			{"time_slot": "25:00", "price": 3000},
		}}
		rec := s.Request(http.MethodPut, "/api/v1/admin/pricing", body, admin)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("スロットボードに料金が表示される", func(t *testing.T) {
		rec := s.Request(http.MethodGet, "/api/v1/slots?date="+testDate, nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		board := decode[handler.SlotBoardResponse](t, rec)
		require.Len(t, board.Slots, 24)
		assert.Equal(t, 6000, board.Slots[18].Price)
		assert.True(t, board.Slots[18].IsPrimeTime)
		assert.Equal(t, 3000, board.Slots[6].Price)
		// 不正な一括更新は何も変えていない
		assert.Equal(t, 3500, board.Slots[8].Price)
	})
}

// TestE2E_CSVExport は予約一覧のCSV出力をテスト
func TestE2E_CSVExport(t *testing.T) {
	s := NewTestServer(t)
	admin := adminHeaders(t, middleware.RoleModerator)

	rec := s.Request(http.MethodPost, "/api/v1/bookings", bookingBody("10:00", "11:00", "Bob, Jr."), nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.Request(http.MethodGet, "/api/v1/admin/reports/bookings.csv", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/csv"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "Booking ID,Date,Time"))
	assert.Contains(t, lines[1], `"Bob, Jr."`)
}

// TestE2E_AdminAuthorization は管理APIの認可をテスト
func TestE2E_AdminAuthorization(t *testing.T) {
	s := NewTestServer(t)

	rec := s.Request(http.MethodPost, "/api/v1/bookings", bookingBody("15:00", "16:00", "A"), nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode[handler.BookingSummaryResponse](t, rec).ID

	t.Run("トークンなしは401", func(t *testing.T) {
		rec := s.Request(http.MethodGet, "/api/v1/admin/bookings", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("moderatorは削除できない", func(t *testing.T) {
		rec := s.Request(http.MethodDelete, "/api/v1/admin/bookings/"+id, nil, adminHeaders(t, middleware.RoleModerator))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("super_adminは削除できる", func(t *testing.T) {
		headers := adminHeaders(t, middleware.RoleSuperAdmin)
		rec := s.Request(http.MethodDelete, "/api/v1/admin/bookings/"+id, nil, headers)
		require.Equal(t, http.StatusNoContent, rec.Code)

		rec = s.Request(http.MethodGet, "/api/v1/admin/bookings/"+id, nil, headers)
		assert.Equal(t, http.StatusNotFound, rec.Code)

		resp := publicAvailability(t, s)
		assert.Contains(t, resp.Slots, "15:00")
	})
}

// TestE2E_StorageOutage はストア障害時の縮退動作をテスト
func TestE2E_StorageOutage(t *testing.T) {
	s := NewTestServer(t)
	admin := adminHeaders(t, middleware.RoleModerator)
	s.Store.FailWith(errors.New("connection refused"))

	t.Run("公開APIは全スロット空きとして返す", func(t *testing.T) {
		resp := publicAvailability(t, s)
		assert.True(t, resp.Degraded)
		assert.Len(t, resp.Slots, 24)
	})

	t.Run("管理APIは空きなしとして返す", func(t *testing.T) {
		rec := s.Request(http.MethodGet, "/api/v1/admin/availability?date="+testDate, nil, admin)
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decode[handler.AvailabilityResponse](t, rec)
		assert.True(t, resp.Degraded)
		assert.Empty(t, resp.Slots)
	})

	t.Run("予約は503", func(t *testing.T) {
		rec := s.Request(http.MethodPost, "/api/v1/bookings", bookingBody("10:00", "11:00", "A"), nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("レディネスは503", func(t *testing.T) {
		rec := s.Request(http.MethodGet, "/health/ready", nil, nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

// TestE2E_CheckBeforeBooking は予約前の範囲確認をテスト
func TestE2E_CheckBeforeBooking(t *testing.T) {
	s := NewTestServer(t)
	check := func(start, end string) *httptest.ResponseRecorder {
		return s.Request(http.MethodGet, fmt.Sprintf("/api/v1/bookings/check?date=%s&start_slot=%s&end_slot=%s", testDate, start, end), nil, nil)
	}

	rec := check("18:00", "20:00")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []string{"18:00", "19:00"}, decode[handler.RangeCheckResponse](t, rec).Slots)

	rec = s.Request(http.MethodPost, "/api/v1/bookings", bookingBody("19:00", "21:00", "A"), nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = check("18:00", "20:00")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, []string{"19:00"}, decode[api.ErrorResponse](t, rec).Slots)

	rec = check("%2B1:00", "02:00")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
