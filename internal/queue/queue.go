package queue

import "context"

// ジョブ名
const (
	JobAddShippingDetails       = "add_shipping_details"
	JobAddOrderItems            = "add_order_items"
	JobUpdateStockAfterCheckout = "update_stock_after_checkout"
)

// 非同期ジョブのキュー
// at-least-onceなのでハンドラ側は再実行しても安全に作る
type Queue interface {
	Enqueue(ctx context.Context, jobName string, payload interface{}) error
}

// add_shipping_details の引数
type ShippingDetailsPayload struct {
	OrderID int64  `json:"order_id"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Phone   string `json:"phone"`
}

// add_order_items の引数
// チェックアウト時点のスナップショットを持たせる（カートは既に空）
type OrderItemsPayload struct {
	OrderID int64           `json:"order_id"`
	Items   []OrderItemLine `json:"items"`
}

type OrderItemLine struct {
	ProductID int64  `json:"product_id"`
	VendorID  int64  `json:"vendor_id"`
	Title     string `json:"title"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int64  `json:"quantity"`
}

// update_stock_after_checkout の引数
type StockPayload struct {
	OrderID int64 `json:"order_id"`
}
