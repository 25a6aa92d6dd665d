package repository

import (
	"context"

	"app/internal/domain/model"

	"gorm.io/gorm"
)

type ShippingGormRepository struct {
	db *gorm.DB
}

func NewShippingGormRepository(db *gorm.DB) *ShippingGormRepository {
	return &ShippingGormRepository{db: db}
}

func (r *ShippingGormRepository) Create(ctx context.Context, s model.ShippingDetail) error {
	if err := r.db.WithContext(ctx).Create(&s).Error; err != nil {
		return err
	}
	return nil
}

func (r *ShippingGormRepository) ExistsByOrderID(ctx context.Context, orderID int64) (bool, error) {
	var count int64

	err := r.db.WithContext(ctx).Model(&model.ShippingDetail{}).
		Where("order_id = ?", orderID).
		Count(&count).Error

	if err != nil {
		return false, err
	}
	return count > 0, nil
}
