package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"

	"gorm.io/gorm"
)

type PaymentGormRepository struct {
	db *gorm.DB
}

func NewPaymentGormRepository(db *gorm.DB) *PaymentGormRepository {
	return &PaymentGormRepository{db: db}
}

func (r *PaymentGormRepository) Create(ctx context.Context, p model.PaymentDetail) (model.PaymentDetail, error) {
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return model.PaymentDetail{}, err
	}
	return p, nil
}

// refで1件取得（無いときはfound=false、エラーにしない）
func (r *PaymentGormRepository) FindByPaymentRef(ctx context.Context, paymentRef string) (model.PaymentDetail, bool, error) {
	var p model.PaymentDetail

	err := r.db.WithContext(ctx).
		Where("payment_ref = ?", paymentRef).
		First(&p).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.PaymentDetail{}, false, nil
	}
	if err != nil {
		return model.PaymentDetail{}, false, err
	}
	return p, true, nil
}

func (r *PaymentGormRepository) ListByOrderID(ctx context.Context, orderID int64) ([]model.PaymentDetail, error) {
	var items []model.PaymentDetail

	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id asc").
		Find(&items).Error; err != nil {
		return []model.PaymentDetail{}, err
	}

	return items, nil
}
