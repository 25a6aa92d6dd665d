package model

import "time"

// カートの明細
// (customer_id, product_id) は一意。同じ商品の再追加はエラー（数量変更はPATCHで行う）
type CartItem struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CustomerID int64     `gorm:"not null;uniqueIndex:idx_cart_customer_product" json:"customer_id"`
	ProductID  int64     `gorm:"not null;uniqueIndex:idx_cart_customer_product" json:"product_id"`
	Quantity   int64     `gorm:"not null" json:"quantity"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
