package payment

import (
	"context"
	"time"
)

// ゲートウェイが返す取引状態
type Status string

const (
	StatusSuccess   Status = "success"
	StatusFailed    Status = "failed"
	StatusAbandoned Status = "abandoned"
)

// 注文と決済セッションを突き合わせるためのメタデータ
type Metadata struct {
	OrderID    int64  `json:"order_id"`
	PickupCode string `json:"pickup_code"`
}

type InitializeInput struct {
	//主要通貨単位。最小単位への換算は実装側が行う
	Amount   int64
	Email    string
	Channel  string
	Metadata Metadata
}

type InitializeResult struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type VerifyResult struct {
	Status  Status
	Channel string

	//最小通貨単位のまま返す（呼び出し側で換算）
	Amount        int64
	Reference     string
	PaidAt        *time.Time
	Metadata      Metadata
	CustomerEmail string
}

// 外部決済ゲートウェイの約束
type Gateway interface {
	InitializePayment(ctx context.Context, in InitializeInput) (InitializeResult, error)
	VerifyPayment(ctx context.Context, paymentRef string) (VerifyResult, error)
}
