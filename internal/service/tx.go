package service

import (
	"context"
	"errors"

	"github.com/oajacap/kissu/internal/apierror"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

func decimalFromInt(n int) decimal.Decimal { return decimal.NewFromInt(int64(n)) }

// notFoundOr maps gorm's record-not-found to a client-facing 404 and wraps
// everything else as internal.
func notFoundOr(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apierror.New(apierror.KindNotFound, msg)
	}
	return apierror.Wrap(apierror.KindInternal, "Error interno del servidor", err)
}
