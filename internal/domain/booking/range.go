package booking

import (
	"fmt"

	"github.com/sanosuguru/go-court-booking/internal/domain/slot"
)

// ParseRange は開始・終了スロットを検証して範囲に展開する
// 終了は排他的で "24:00" を指定できる
func ParseRange(start, end string) (slot.ID, slot.ID, []slot.ID, error) {
	s, err := slot.Parse(start)
	if err != nil {
		return "", "", nil, fmt.Errorf("%w: %v", ErrInvalidRange, err)
	}
	e, err := slot.ParseBoundary(end)
	if err != nil {
		return "", "", nil, fmt.Errorf("%w: %v", ErrInvalidRange, err)
	}
	slots := slot.Range(s, e)
	if len(slots) == 0 {
		return "", "", nil, fmt.Errorf("%w: %s-%s", ErrInvalidRange, s, e)
	}
	return s, e, slots, nil
}

// ValidateRange は手元の空き状況スナップショットで範囲を検証する
// UI 向けの早期判定であり、確定時には必ずストレージ側で再検証する
func ValidateRange(date slot.Date, start, end slot.ID, available []slot.ID) ([]slot.ID, error) {
	slots := slot.Range(start, end)
	if len(slots) == 0 {
		return nil, ErrInvalidRange
	}
	free := make(map[slot.ID]bool, len(available))
	for _, a := range available {
		free[a] = true
	}
	var taken []slot.ID
	for _, s := range slots {
		if !free[s] {
			taken = append(taken, s)
		}
	}
	if len(taken) > 0 {
		return nil, &SlotUnavailableError{Date: date, Slots: taken}
	}
	return slots, nil
}
