package repository

import (
	"context"
	"errors"
	"strings"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type DealGormRepository struct {
	db *gorm.DB
}

// DI
func NewDealGormRepository(db *gorm.DB) *DealGormRepository {
	return &DealGormRepository{db: db}
}

// 公開中の出品のみを、検索/ページング付きで返す。
func (r *DealGormRepository) ListPublic(ctx context.Context, q repo.DealListQuery) ([]model.Deal, int64, error) {
	var deals []model.Deal
	var total int64

	tx := r.db.WithContext(ctx).Model(&model.Deal{})

	// 公開（is_active=true）かつ、削除されていないものだけ
	tx = tx.Where("is_active = ?", true)

	// q はtitleを対象
	if strings.TrimSpace(q.Q) != "" {
		like := "%" + strings.TrimSpace(q.Q) + "%"
		tx = tx.Where("title ILIKE ?", like)
	}

	//total（件数）
	if err := tx.Count(&total).Error; err != nil {
		return []model.Deal{}, 0, err
	}

	offset := (q.Page - 1) * q.Limit
	if err := tx.Order("created_at desc").Order("id desc").
		Offset(offset).Limit(q.Limit).Find(&deals).Error; err != nil {
		return []model.Deal{}, 0, err
	}

	return deals, total, nil
}

// 出店者の出品を一覧取得
func (r *DealGormRepository) ListByVendorID(ctx context.Context, vendorID int64) ([]model.Deal, error) {
	var deals []model.Deal

	if err := r.db.WithContext(ctx).
		Where("vendor_id = ?", vendorID).
		Order("id desc").
		Find(&deals).Error; err != nil {
		return []model.Deal{}, err
	}

	return deals, nil
}

// IDで出品を取得
func (r *DealGormRepository) FindByID(ctx context.Context, id int64) (model.Deal, error) {
	var d model.Deal
	err := r.db.WithContext(ctx).First(&d, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Deal{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Deal{}, err
	}
	return d, nil
}

// 出品の作成
func (r *DealGormRepository) Create(ctx context.Context, d model.Deal) (model.Deal, error) {
	if err := r.db.WithContext(ctx).Create(&d).Error; err != nil {
		return model.Deal{}, err
	}
	return d, nil
}

// 出品内容の更新。在庫はInventoryRepository側でだけ書く
func (r *DealGormRepository) Update(ctx context.Context, d model.Deal) error {
	res := r.db.WithContext(ctx).
		Model(&model.Deal{}).
		Where("id = ?", d.ID).
		Updates(map[string]interface{}{
			"title":       d.Title,
			"description": d.Description,
			"price":       d.Price,
			"is_active":   d.IsActive,
			"ready_time":  d.ReadyTime,
		})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 論理削除
func (r *DealGormRepository) SoftDelete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Deal{}, id)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
