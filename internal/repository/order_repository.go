package repository

import (
	"context"

	"app/internal/domain/model"
)

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	ListByCustomerID(ctx context.Context, customerID int64, page int, limit int) ([]model.Order, int64, error)
	Create(ctx context.Context, order model.Order) (int64, error)
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error

	//決済失敗・不明状態のときは注文ごと消す
	Delete(ctx context.Context, orderID int64) error

	//受け取りコードの衝突チェック（uniqueインデックスが最後の砦）
	ExistsByPickupCode(ctx context.Context, code string) (bool, error)

	//在庫減算ジョブの適用済みフラグを立てる
	SetStockApplied(ctx context.Context, orderID int64) error
}
