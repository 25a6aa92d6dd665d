package model

import "time"

type PaymentMethod string

const (
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodPayOnPickup  PaymentMethod = "pay_on_pickup"
)

// ゲートウェイを経由する決済か
func (m PaymentMethod) IsGateway() bool {
	return m == PaymentMethodCard || m == PaymentMethodBankTransfer
}

// 既知の決済方法か
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCard, PaymentMethodBankTransfer, PaymentMethodPayOnPickup:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusSuccess PaymentStatus = "success"
	PaymentStatusPending PaymentStatus = "pending"
)

// 決済記録
// payment_ref の存在が検証の二重処理ガードになる
type PaymentDetail struct {
	ID            int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	PaymentRef    string        `gorm:"type:varchar(100);not null;uniqueIndex" json:"payment_ref"`
	OrderID       int64         `gorm:"not null;index" json:"order_id"`
	PaymentMethod PaymentMethod `gorm:"type:varchar(30);not null" json:"payment_method"`

	//主要通貨単位（最小単位から換算済み）
	Amount int64 `gorm:"not null" json:"amount"`

	Status PaymentStatus `gorm:"type:varchar(20);not null" json:"status"`
	PaidAt *time.Time    `json:"paid_at"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
