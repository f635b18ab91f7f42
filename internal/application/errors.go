package application

import (
	"context"
	"errors"

	"github.com/sanosuguru/go-court-booking/internal/domain/account"
	"github.com/sanosuguru/go-court-booking/internal/domain/booking"
	"github.com/sanosuguru/go-court-booking/internal/domain/closure"
	"github.com/sanosuguru/go-court-booking/internal/domain/pricing"
)

// domainErrors はストレージ障害として包まずにそのまま返すエラー
var domainErrors = []error{
	booking.ErrBookingNotFound,
	booking.ErrGroupNotFound,
	booking.ErrConstraintViolation,
	closure.ErrClosureNotFound,
	pricing.ErrPricingNotFound,
	account.ErrAccountNotFound,
	account.ErrAccountExists,
	account.ErrLastSuperAdmin,
	context.Canceled,
	context.DeadlineExceeded,
}

// storageError はリポジトリのエラーを StorageError に変換する
func storageError(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, target := range domainErrors {
		if errors.Is(err, target) {
			return err
		}
	}
	return booking.NewStorageError(op, err)
}
