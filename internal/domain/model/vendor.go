package model

import "time"

// 出店者（飲食店など）
type Vendor struct {
	ID     int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID int64 `gorm:"not null;uniqueIndex" json:"user_id"`

	BusinessName string `gorm:"type:varchar(255);not null" json:"business_name"`
	FirstName    string `gorm:"type:varchar(100)" json:"first_name"`
	LastName     string `gorm:"type:varchar(100)" json:"last_name"`

	//受け取り場所
	Address string `gorm:"type:varchar(255);not null" json:"address"`
	Phone   string `gorm:"type:varchar(30)" json:"phone"`

	//受け取り期限の案内文（例: "18:00"）。空なら案内しない
	OrderTime string `gorm:"type:varchar(50)" json:"order_time"`

	IsApproved bool      `gorm:"not null;default:false" json:"is_approved"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
