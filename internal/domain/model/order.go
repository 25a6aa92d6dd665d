package model

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusCompleted OrderStatus = "COMPLETED"
)

type Order struct {
	ID         int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	CustomerID int64 `gorm:"not null;index" json:"customer_id"`

	//確定後は再計算しない
	TotalAmount int64       `gorm:"not null" json:"total_amount"`
	Status      OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`

	//店頭受け取り用の短いコード
	PickupCode string `gorm:"type:varchar(10);not null;uniqueIndex" json:"pickup_code"`

	//在庫減算ジョブを適用済みか（再実行しても二重減算しない）
	StockApplied bool `gorm:"not null;default:false" json:"-"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
