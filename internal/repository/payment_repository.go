package repository

import (
	"context"

	"app/internal/domain/model"
)

type PaymentRepository interface {
	Create(ctx context.Context, p model.PaymentDetail) (model.PaymentDetail, error)

	//検証の二重処理ガードに使う（同じrefは一度だけ）
	FindByPaymentRef(ctx context.Context, paymentRef string) (model.PaymentDetail, bool, error)
	ListByOrderID(ctx context.Context, orderID int64) ([]model.PaymentDetail, error)
}
