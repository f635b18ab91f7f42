package pricing

import (
	"errors"
	"time"

	"github.com/sanosuguru/go-court-booking/internal/domain/slot"
)

var (
	ErrPricingNotFound = errors.New("料金設定が見つかりません")
	ErrInvalidPrice    = errors.New("料金は0以上である必要があります")
	ErrInvalidSlot     = errors.New("料金設定のスロットが不正です")
)

// Config はスロットごとの料金とプライムタイム区分
type Config struct {
	ID          string
	TimeSlot    slot.ID
	Price       int
	IsPrimeTime bool
	UpdatedAt   time.Time
}

// Change は1スロット分の料金変更
type Change struct {
	TimeSlot    slot.ID
	Price       int
	IsPrimeTime bool
}

func (c Change) Validate() error {
	if _, err := slot.Parse(string(c.TimeSlot)); err != nil {
		return ErrInvalidSlot
	}
	if c.Price < 0 {
		return ErrInvalidPrice
	}
	return nil
}

// Index はスロットをキーにした料金表を作る
func Index(configs []*Config) map[slot.ID]*Config {
	m := make(map[slot.ID]*Config, len(configs))
	for _, c := range configs {
		m[c.TimeSlot] = c
	}
	return m
}
