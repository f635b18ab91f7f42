package slot

import (
	"fmt"
	"time"
)

const DateFormat = "2006-01-02"

// Date は時刻とタイムゾーンを持たない暦日（YYYY-MM-DD）
type Date string

// DateOf は時刻の年月日部分のみを取り出す
func DateOf(t time.Time) Date {
	return Date(t.Format(DateFormat))
}

// ParseDate は "YYYY-MM-DD" または RFC3339 の文字列から暦日を得る
// 時刻部分は捨てられる
func ParseDate(s string) (Date, error) {
	if t, err := time.Parse(DateFormat, s); err == nil {
		return DateOf(t), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return DateOf(t), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// Time は暦日の UTC 0時を返す
func (d Date) Time() time.Time {
	t, _ := time.Parse(DateFormat, string(d))
	return t
}

// AddDays はn日後の暦日を返す
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

func (d Date) String() string {
	return string(d)
}
