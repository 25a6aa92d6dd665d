package repository

import (
	"context"

	"app/internal/domain/model"
)

type CartRepository interface {
	ListByCustomerID(ctx context.Context, customerID int64) ([]model.CartItem, error)
	FindByCustomerAndProduct(ctx context.Context, customerID int64, productID int64) (model.CartItem, error)
	Create(ctx context.Context, item model.CartItem) (model.CartItem, error)
	UpdateQuantity(ctx context.Context, customerID int64, productID int64, qty int64) error
	DeleteByCustomerAndProduct(ctx context.Context, customerID int64, productID int64) error
	//顧客のカート明細を全削除
	Clear(ctx context.Context, customerID int64) error
}
