package slot

import (
	"errors"
	"fmt"
)

// ID は1時間スロットの識別子（"00:00"〜"23:00"）
// ゼロ埋めされているため辞書順と時刻順が一致する
type ID string

const (
	// SlotsPerDay は1日のスロット数
	SlotsPerDay = 24

	// EndOfDay は範囲の終端としてのみ使える日付境界
	EndOfDay ID = "24:00"

	TimeFormat = "15:04"
)

var (
	ErrInvalidSlot = errors.New("スロットの形式が不正です（HH:00）")
	ErrInvalidDate = errors.New("日付の形式が不正です（YYYY-MM-DD）")
)

var allSlots = buildSlots()

func buildSlots() []ID {
	slots := make([]ID, SlotsPerDay)
	for h := 0; h < SlotsPerDay; h++ {
		slots[h] = ID(fmt.Sprintf("%02d:00", h))
	}
	return slots
}

// All は1日分のスロットを昇順で返す
func All() []ID {
	out := make([]ID, len(allSlots))
	copy(out, allSlots)
	return out
}

// Parse はスロットIDを検証する
func Parse(s string) (ID, error) {
	h, ok := parseHour(s)
	if !ok || h >= SlotsPerDay {
		return "", fmt.Errorf("%w: %q", ErrInvalidSlot, s)
	}
	return ID(s), nil
}

// ParseBoundary は範囲の終端を検証する（"24:00" を許可）
func ParseBoundary(s string) (ID, error) {
	if ID(s) == EndOfDay {
		return EndOfDay, nil
	}
	return Parse(s)
}

// parseHour は "HH:00" の時を返す。HH は2桁の数字のみ（"+1" や "-1" は不可）
func parseHour(s string) (int, bool) {
	if len(s) != 5 || s[2] != ':' || s[3:] != "00" {
		return 0, false
	}
	if !isDigit(s[0]) || !isDigit(s[1]) {
		return 0, false
	}
	return int(s[0]-'0')*10 + int(s[1]-'0'), true
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// Hour は開始時刻の時を返す
func (id ID) Hour() int {
	h, _ := parseHour(string(id))
	return h
}

// Next は1時間後の境界を返す（"23:00" の次は "24:00"）
func (id ID) Next() ID {
	return ID(fmt.Sprintf("%02d:00", id.Hour()+1))
}

func (id ID) String() string {
	return string(id)
}

// Range は [start, end) に含まれるスロットを昇順で返す
// 比較は文字列の辞書順で行う
func Range(start, end ID) []ID {
	var out []ID
	for _, s := range allSlots {
		if s >= start && s < end {
			out = append(out, s)
		}
	}
	return out
}

// Strings はスロットIDを文字列スライスに変換する
func Strings(ids []ID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

// Label は12時間表記（"9:00 AM"）を返す
func (id ID) Label() string {
	h := id.Hour()
	period := "AM"
	if h >= 12 && h < 24 {
		period = "PM"
	}
	h12 := h % 12
	if h12 == 0 {
		h12 = 12
	}
	return fmt.Sprintf("%d:00 %s", h12, period)
}
