package booking

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sanosuguru/go-court-booking/internal/domain/slot"
)

// Booking ドメインのエラー定義
var (
	ErrBookingNotFound        = errors.New("予約が見つかりません")
	ErrGroupNotFound          = errors.New("予約グループが見つかりません")
	ErrInvalidRange           = errors.New("予約時間帯が不正です")
	ErrSlotUnavailable        = errors.New("指定した時間帯は予約できません")
	ErrStorageUnavailable     = errors.New("ストレージに接続できません")
	ErrConstraintViolation    = errors.New("同じ時間帯の確定済み予約が既に存在します")
	ErrCustomerNameRequired   = errors.New("顧客名は必須です")
	ErrCustomerMobileRequired = errors.New("電話番号は必須です")
	ErrCancelReasonRequired   = errors.New("キャンセル理由は必須です")
	ErrCancelReasonTooLong    = errors.New("キャンセル理由が長すぎます")
	ErrNotesTooLong           = errors.New("メモが長すぎます")
	ErrAlreadyCancelled       = errors.New("予約は既にキャンセルされています")
	ErrInvalidStatus          = errors.New("予約ステータスが不正です")
	ErrInvalidPaymentStatus   = errors.New("支払いステータスが不正です")
	ErrInvalidPaymentMethod   = errors.New("支払い方法が不正です")
	ErrInvalidPrice           = errors.New("価格は0以上である必要があります")
)

// SlotUnavailableError は予約できなかったスロットの一覧を持つ
type SlotUnavailableError struct {
	Date  slot.Date
	Slots []slot.ID
}

func (e *SlotUnavailableError) Error() string {
	labels := make([]string, len(e.Slots))
	for i, s := range e.Slots {
		labels[i] = s.Label()
	}
	return fmt.Sprintf("%s（%s）: %s", ErrSlotUnavailable.Error(), e.Date, strings.Join(labels, ", "))
}

func (e *SlotUnavailableError) Is(target error) bool {
	return target == ErrSlotUnavailable
}

// StorageError はバックエンドに到達できなかったことを表す
// Err には生の診断メッセージが残る
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s (%s): %v", ErrStorageUnavailable.Error(), e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Is(target error) bool {
	return target == ErrStorageUnavailable
}

// NewStorageError は既知のドメインエラー以外を StorageError で包む
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}
