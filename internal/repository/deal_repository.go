package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// 一覧検索
type DealListQuery struct {
	Page  int
	Limit int
	Q     string
}

// 出品の永続化（保存・取得）だけを約束。
type DealRepository interface {
	ListPublic(ctx context.Context, q DealListQuery) ([]model.Deal, int64, error)
	ListByVendorID(ctx context.Context, vendorID int64) ([]model.Deal, error)
	FindByID(ctx context.Context, id int64) (model.Deal, error)

	Create(ctx context.Context, d model.Deal) (model.Deal, error)

	//在庫列は対象外（在庫の書き込みはInventoryRepositoryに寄せる）
	Update(ctx context.Context, d model.Deal) error
	SoftDelete(ctx context.Context, id int64) error
}
