package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type VendorGormRepository struct {
	db *gorm.DB
}

func NewVendorGormRepository(db *gorm.DB) *VendorGormRepository {
	return &VendorGormRepository{db: db}
}

func (r *VendorGormRepository) FindByID(ctx context.Context, vendorID int64) (model.Vendor, error) {
	var v model.Vendor
	err := r.db.WithContext(ctx).First(&v, vendorID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Vendor{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Vendor{}, err
	}
	return v, nil
}

func (r *VendorGormRepository) FindByUserID(ctx context.Context, userID int64) (model.Vendor, error) {
	var v model.Vendor

	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&v).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Vendor{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Vendor{}, err
	}
	return v, nil
}

func (r *VendorGormRepository) Create(ctx context.Context, v model.Vendor) (model.Vendor, error) {
	if err := r.db.WithContext(ctx).Create(&v).Error; err != nil {
		return model.Vendor{}, err
	}
	return v, nil
}

func (r *VendorGormRepository) Update(ctx context.Context, v model.Vendor) error {
	res := r.db.WithContext(ctx).
		Model(&model.Vendor{}).
		Where("id = ?", v.ID).
		Updates(map[string]interface{}{
			"business_name": v.BusinessName,
			"first_name":    v.FirstName,
			"last_name":     v.LastName,
			"address":       v.Address,
			"phone":         v.Phone,
			"order_time":    v.OrderTime,
		})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
