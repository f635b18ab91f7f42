package closure

import (
	"errors"
	"strings"
	"time"

	"github.com/sanosuguru/go-court-booking/internal/domain/slot"
)

var (
	ErrClosureNotFound = errors.New("クローズ設定が見つかりません")
	ErrReasonRequired  = errors.New("クローズ理由は必須です")
	ErrInvalidSlot     = errors.New("クローズ対象のスロットが不正です")
)

const DefaultCourtID = "court_1"

// Closure は管理者による予約停止設定
// TimeSlot が空の場合はその日全体を停止する
type Closure struct {
	ID        string
	Date      slot.Date
	TimeSlot  slot.ID
	CourtID   string
	Reason    string
	IsActive  bool
	CreatedAt time.Time
}

// NewClosure は有効なクローズ設定を作成する
func NewClosure(date slot.Date, timeSlot slot.ID, courtID, reason string) *Closure {
	if courtID == "" {
		courtID = DefaultCourtID
	}
	return &Closure{
		Date:      date,
		TimeSlot:  timeSlot,
		CourtID:   courtID,
		Reason:    strings.TrimSpace(reason),
		IsActive:  true,
		CreatedAt: time.Now(),
	}
}

// IsFullDay は終日クローズかを返す
func (c *Closure) IsFullDay() bool {
	return c.TimeSlot == ""
}

// Blocks は指定スロットを塞ぐかを返す
func (c *Closure) Blocks(s slot.ID) bool {
	return c.IsActive && (c.IsFullDay() || c.TimeSlot == s)
}

// Deactivate は論理削除する
func (c *Closure) Deactivate() {
	c.IsActive = false
}

func (c *Closure) Validate() error {
	if c.Reason == "" {
		return ErrReasonRequired
	}
	if !c.IsFullDay() {
		if _, err := slot.Parse(string(c.TimeSlot)); err != nil {
			return ErrInvalidSlot
		}
	}
	return nil
}
