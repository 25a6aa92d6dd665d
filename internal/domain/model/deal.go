package model

import (
	"time"

	"gorm.io/gorm"
)

// 売れ残り商品の出品
type Deal struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	VendorID    int64  `gorm:"not null;index" json:"vendor_id"`
	Title       string `gorm:"type:varchar(255);not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`

	//単価と在庫
	Price int64 `gorm:"not null" json:"price"`
	Stock int64 `gorm:"not null" json:"stock"`

	IsActive bool `gorm:"not null;default:false" json:"is_active"`

	//受け取り可能になる時刻
	ReadyTime *time.Time `json:"ready_time"`

	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
