package model

import "time"

// 注文明細
// 価格・商品名は注文時点のスナップショット
type OrderItem struct {
	ID                int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID           int64     `gorm:"not null;index" json:"order_id"`
	ProductID         int64     `gorm:"not null;index" json:"product_id"`
	VendorID          int64     `gorm:"not null;index" json:"vendor_id"`
	TitleSnapshot     string    `gorm:"type:varchar(255);not null" json:"title_snapshot"`
	UnitPriceSnapshot int64     `gorm:"not null" json:"unit_price_snapshot"`
	Quantity          int64     `gorm:"not null" json:"quantity"`
	CreatedAt         time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
