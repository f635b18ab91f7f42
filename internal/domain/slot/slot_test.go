package slot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAll(t *testing.T) {
	slots := All()
	require.Len(t, slots, SlotsPerDay)
	assert.Equal(t, ID("00:00"), slots[0])
	assert.Equal(t, ID("09:00"), slots[9])
	assert.Equal(t, ID("23:00"), slots[23])

	for i := 1; i < len(slots); i++ {
		assert.Less(t, string(slots[i-1]), string(slots[i]), "辞書順が時刻順と一致する")
	}

	// 返り値を書き換えても元の定義に影響しない
	slots[0] = "99:00"
	assert.Equal(t, ID("00:00"), All()[0])
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"正常なスロット", "09:00", false},
		{"0時", "00:00", false},
		{"23時", "23:00", false},
		{"24時はスロットではない", "24:00", true},
		{"ゼロ埋めなし", "9:00", true},
		{"分が0以外", "09:30", true},
		{"空文字", "", true},
		{"数字以外", "ab:00", true},
		{"符号付き+1", "+1:00", true},
		{"符号付き+9", "+9:00", true},
		{"符号付き-1", "-1:00", true},
		{"空白入り", " 9:00", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := Parse(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSlot)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, ID(tt.input), id)
		})
	}
}

func TestParseBoundary(t *testing.T) {
	id, err := ParseBoundary("24:00")
	require.NoError(t, err)
	assert.Equal(t, EndOfDay, id)

	_, err = ParseBoundary("25:00")
	assert.ErrorIs(t, err, ErrInvalidSlot)
}

func TestRange(t *testing.T) {
	tests := []struct {
		name  string
		start ID
		end   ID
		want  []ID
	}{
		{"3時間", "10:00", "13:00", []ID{"10:00", "11:00", "12:00"}},
		{"1時間", "09:00", "10:00", []ID{"09:00"}},
		{"同じ開始と終了は空", "09:00", "09:00", nil},
		{"逆順は空", "11:00", "09:00", nil},
		{"日付境界まで", "22:00", EndOfDay, []ID{"22:00", "23:00"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Range(tt.start, tt.end))
		})
	}
}

func TestID_Next(t *testing.T) {
	assert.Equal(t, ID("10:00"), ID("09:00").Next())
	assert.Equal(t, EndOfDay, ID("23:00").Next())
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-14")
	require.NoError(t, err)
	assert.Equal(t, Date("2025-03-14"), d)

	// 時刻とタイムゾーンは捨てられる
	d, err = ParseDate("2025-03-14T23:30:00+09:00")
	require.NoError(t, err)
	assert.Equal(t, Date("2025-03-14"), d)

	_, err = ParseDate("14/03/2025")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestDate_AddDays(t *testing.T) {
	assert.Equal(t, Date("2025-03-01"), Date("2025-02-28").AddDays(1))
	assert.Equal(t, Date("2024-12-31"), Date("2025-01-01").AddDays(-1))
}

func TestDateOf(t *testing.T) {
	loc := time.FixedZone("LKT", 5*3600+1800)
	tm := time.Date(2025, 6, 1, 0, 15, 0, 0, loc)
	assert.Equal(t, Date("2025-06-01"), DateOf(tm))
}

func TestID_Label(t *testing.T) {
	tests := map[ID]string{
		"00:00": "12:00 AM",
		"09:00": "9:00 AM",
		"12:00": "12:00 PM",
		"23:00": "11:00 PM",
	}
	for id, want := range tests {
		assert.Equal(t, want, id.Label(), string(id))
	}
}
