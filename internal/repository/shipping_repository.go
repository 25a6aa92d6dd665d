package repository

import (
	"context"

	"app/internal/domain/model"
)

type ShippingRepository interface {
	Create(ctx context.Context, s model.ShippingDetail) error
	ExistsByOrderID(ctx context.Context, orderID int64) (bool, error)
}
