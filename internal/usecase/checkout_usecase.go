package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"app/internal/domain/model"
	"app/internal/metrics"
	"app/internal/notification"
	"app/internal/payment"
	"app/internal/queue"
	repo "app/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// 受け取りコードの再生成は有限回で諦める
const pickupCodeMaxAttempts = 5

// CheckoutUsecase はチェックアウトと決済検証のワークフローです。
// カート・在庫・注文・決済・通知をこの順で調整する
type CheckoutUsecase struct {
	tx         repo.TransactionManager
	cart       *CartUsecase
	users      repo.UserRepository
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	payments   repo.PaymentRepository
	vendors    repo.VendorRepository
	q          queue.Queue
	gateway    payment.Gateway
	mailer     notification.Mailer
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

func NewCheckoutUsecase(
	tx repo.TransactionManager,
	cart *CartUsecase,
	users repo.UserRepository,
	orders repo.OrderRepository,
	orderItems repo.OrderItemRepository,
	payments repo.PaymentRepository,
	vendors repo.VendorRepository,
	q queue.Queue,
	gateway payment.Gateway,
	mailer notification.Mailer,
	m *metrics.Metrics,
	logger *zap.Logger,
) *CheckoutUsecase {
	return &CheckoutUsecase{
		tx:         tx,
		cart:       cart,
		users:      users,
		orders:     orders,
		orderItems: orderItems,
		payments:   payments,
		vendors:    vendors,
		q:          q,
		gateway:    gateway,
		mailer:     mailer,
		metrics:    m,
		logger:     logger,
	}
}

type ShippingInput struct {
	Address string
	City    string
	State   string
	Phone   string
}

type CheckoutInput struct {
	PaymentMethod model.PaymentMethod
	Shipping      ShippingInput
}

// ゲートウェイ経路ではリダイレクト系のフィールドが埋まる
type CheckoutOutput struct {
	OrderID     int64  `json:"order_id"`
	PickupCode  string `json:"pickup_code"`
	Status      string `json:"status"`
	TotalAmount int64  `json:"total_amount"`

	AuthorizationURL string `json:"authorization_url,omitempty"`
	AccessCode       string `json:"access_code,omitempty"`
	Reference        string `json:"reference,omitempty"`
}

type PaymentVerified struct {
	PaymentVerified bool   `json:"payment_verified"`
	OrderID         int64  `json:"order_id"`
	PickupCode      string `json:"pickup_code"`
}

// Checkout はカートを注文に変換して決済を開始する。
// 手順は固定: 集計→在庫再チェック→受け取りコード→注文作成→
// 非同期ジョブ投入→決済方法で分岐。
// 在庫違反のときは注文を一切作らない
func (u *CheckoutUsecase) Checkout(ctx context.Context, customerID int64, in CheckoutInput) (CheckoutOutput, error) {
	if customerID <= 0 {
		return CheckoutOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	//未知の方法を非ゲートウェイ扱いにしないようここで弾く
	if !in.PaymentMethod.IsValid() {
		return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "invalid payment_method")
	}

	user, err := u.users.FindByID(ctx, customerID)
	if err != nil {
		return CheckoutOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if user == nil {
		return CheckoutOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	//スナップショット。以降の金額は全部ここから取る
	summary, err := u.cart.GetCartSummary(ctx, customerID)
	if err != nil {
		return CheckoutOutput{}, err
	}
	if len(summary.Items) == 0 {
		return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "cart is empty")
	}

	var order model.Order
	var itemLines []queue.OrderItemLine

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//追加時にもチェックしているが、在庫はその後動くので確定前にもう一度
		itemLines = make([]queue.OrderItemLine, 0, len(summary.Items))
		for _, line := range summary.Items {
			p, err := r.Deals().FindByID(ctx, line.ProductID)
			if err == repo.ErrNotFound || (err == nil && !p.IsActive) {
				return NewHTTPError(http.StatusBadRequest, "invalid product")
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if line.Quantity > p.Stock {
				return NewHTTPError(http.StatusBadRequest,
					fmt.Sprintf("%s has: %d stocks left", p.Title, p.Stock))
			}

			itemLines = append(itemLines, queue.OrderItemLine{
				ProductID: line.ProductID,
				VendorID:  p.VendorID,
				Title:     line.Title,
				UnitPrice: line.Price,
				Quantity:  line.Quantity,
			})
		}

		//受け取りコード。衝突したら作り直す
		code, err := u.allocatePickupCode(ctx, r.Orders())
		if err != nil {
			return err
		}

		now := time.Now()
		orderID, err := r.Orders().Create(ctx, model.Order{
			CustomerID:  customerID,
			TotalAmount: summary.TotalAmount,
			Status:      model.OrderStatusPending,
			PickupCode:  code,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//カートは決済の成否に関わらずここで空になる
		if err := r.Carts().Clear(ctx, customerID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		order = model.Order{
			ID:          orderID,
			CustomerID:  customerID,
			TotalAmount: summary.TotalAmount,
			Status:      model.OrderStatusPending,
			PickupCode:  code,
			CreatedAt:   now,
		}
		return nil
	})
	if err != nil {
		return CheckoutOutput{}, err
	}

	//ここから先は注文が存在する前提のfire-and-forget
	u.enqueue(ctx, queue.JobAddShippingDetails, queue.ShippingDetailsPayload{
		OrderID: order.ID,
		Address: in.Shipping.Address,
		City:    in.Shipping.City,
		State:   in.Shipping.State,
		Phone:   in.Shipping.Phone,
	})
	u.enqueue(ctx, queue.JobAddOrderItems, queue.OrderItemsPayload{
		OrderID: order.ID,
		Items:   itemLines,
	})

	out := CheckoutOutput{
		OrderID:     order.ID,
		PickupCode:  order.PickupCode,
		Status:      string(order.Status),
		TotalAmount: order.TotalAmount,
	}

	if in.PaymentMethod.IsGateway() {
		//在庫減算は検証成功まで遅らせる。金額は主要通貨単位のまま渡す
		rsp, err := u.gateway.InitializePayment(ctx, payment.InitializeInput{
			Amount:  order.TotalAmount,
			Email:   user.Email,
			Channel: string(in.PaymentMethod),
			Metadata: payment.Metadata{
				OrderID:    order.ID,
				PickupCode: order.PickupCode,
			},
		})
		if err != nil {
			return CheckoutOutput{}, NewHTTPError(http.StatusBadGateway, "payment gateway error")
		}

		out.AuthorizationURL = rsp.AuthorizationURL
		out.AccessCode = rsp.AccessCode
		out.Reference = rsp.Reference

		u.metrics.CheckoutTotal.WithLabelValues(string(in.PaymentMethod)).Inc()
		return out, nil
	}

	//ゲートウェイを通らない決済は記録を直接作って在庫減算を積む
	now := time.Now()
	detail, err := u.payments.Create(ctx, model.PaymentDetail{
		PaymentRef:    uuid.NewString(),
		OrderID:       order.ID,
		PaymentMethod: in.PaymentMethod,
		Amount:        order.TotalAmount,
		Status:        model.PaymentStatusSuccess,
		PaidAt:        &now,
	})
	if err != nil {
		return CheckoutOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.enqueue(ctx, queue.JobUpdateStockAfterCheckout, queue.StockPayload{OrderID: order.ID})

	out.Reference = detail.PaymentRef
	u.metrics.CheckoutTotal.WithLabelValues(string(in.PaymentMethod)).Inc()
	return out, nil
}

// VerifyOrderPayment はゲートウェイに取引状態を照会して注文を確定する。
// 同じrefの二度目の呼び出しはPaymentDetailの存在で弾く
func (u *CheckoutUsecase) VerifyOrderPayment(ctx context.Context, paymentRef string) (PaymentVerified, error) {
	if paymentRef == "" {
		return PaymentVerified{}, NewHTTPError(http.StatusBadRequest, "invalid payment_ref")
	}

	_, found, err := u.payments.FindByPaymentRef(ctx, paymentRef)
	if err != nil {
		return PaymentVerified{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if found {
		return PaymentVerified{}, NewHTTPError(http.StatusBadRequest, "payment already successful")
	}

	rsp, err := u.gateway.VerifyPayment(ctx, paymentRef)
	if err != nil {
		return PaymentVerified{}, NewHTTPError(http.StatusBadGateway, "payment gateway error")
	}

	orderID := rsp.Metadata.OrderID
	pickupCode := rsp.Metadata.PickupCode

	switch rsp.Status {
	case payment.StatusAbandoned:
		u.metrics.PaymentVerifyTotal.WithLabelValues(string(rsp.Status)).Inc()
		return PaymentVerified{}, NewHTTPError(http.StatusBadRequest,
			"you have a pending transaction, complete your payment")

	case payment.StatusFailed:
		u.deleteFailedOrder(ctx, orderID)
		u.metrics.PaymentVerifyTotal.WithLabelValues(string(rsp.Status)).Inc()
		return PaymentVerified{}, NewHTTPError(http.StatusBadRequest,
			"payment failed, checkout again and complete payment")

	case payment.StatusSuccess:
		//続行

	default:
		u.deleteFailedOrder(ctx, orderID)
		u.metrics.PaymentVerifyTotal.WithLabelValues("unknown").Inc()
		return PaymentVerified{}, NewHTTPError(http.StatusBadRequest,
			"payment in unknown state, contact support and try again")
	}

	//金額は最小単位で来るので主要単位へ換算する
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if _, err := r.Payments().Create(ctx, model.PaymentDetail{
			PaymentRef:    rsp.Reference,
			OrderID:       orderID,
			PaymentMethod: model.PaymentMethod(rsp.Channel),
			Amount:        rsp.Amount / 100,
			Status:        model.PaymentStatusSuccess,
			PaidAt:        rsp.PaidAt,
		}); err != nil {
			return err
		}
		return r.Orders().UpdateStatus(ctx, orderID, model.OrderStatusPaid)
	})
	if err != nil {
		return PaymentVerified{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.enqueue(ctx, queue.JobUpdateStockAfterCheckout, queue.StockPayload{OrderID: orderID})

	//確認メールはベストエフォート。失敗してもこの操作は成功扱い
	u.sendConfirmation(ctx, orderID, pickupCode, rsp)

	u.metrics.PaymentVerifyTotal.WithLabelValues(string(payment.StatusSuccess)).Inc()
	return PaymentVerified{PaymentVerified: true, OrderID: orderID, PickupCode: pickupCode}, nil
}

// 未使用の受け取りコードを探す
func (u *CheckoutUsecase) allocatePickupCode(ctx context.Context, orders repo.OrderRepository) (string, error) {
	for i := 0; i < pickupCodeMaxAttempts; i++ {
		code := GeneratePickupCode(pickupCodeLength)

		exists, err := orders.ExistsByPickupCode(ctx, code)
		if err != nil {
			return "", NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !exists {
			return code, nil
		}
	}
	return "", NewHTTPError(http.StatusInternalServerError, "could not allocate pickup code")
}

func (u *CheckoutUsecase) enqueue(ctx context.Context, jobName string, payload interface{}) {
	if err := u.q.Enqueue(ctx, jobName, payload); err != nil {
		u.logger.Error("enqueue failed", zap.String("job", jobName), zap.Error(err))
	}
}

// 失敗・不明状態の注文は履歴ごと消す。
// 在庫減算まで適用済みだった注文は先に在庫を戻す
func (u *CheckoutUsecase) deleteFailedOrder(ctx context.Context, orderID int64) {
	if orderID <= 0 {
		return
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		order, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		if order.StockApplied {
			items, err := r.OrderItems().ListByOrderID(ctx, orderID)
			if err != nil {
				return err
			}
			for _, it := range items {
				if err := r.Inventory().IncreaseStock(ctx, it.ProductID, it.Quantity); err != nil {
					return err
				}
			}
		}

		return r.Orders().Delete(ctx, orderID)
	})
	if err != nil {
		u.logger.Error("failed order cleanup", zap.Int64("order_id", orderID), zap.Error(err))
	}
}

// 確認メールを組み立てて送る。失敗はログだけ残す
func (u *CheckoutUsecase) sendConfirmation(ctx context.Context, orderID int64, pickupCode string, rsp payment.VerifyResult) {
	if rsp.CustomerEmail == "" {
		return
	}

	amount := rsp.Amount / 100
	if order, err := u.orders.FindByID(ctx, orderID); err == nil {
		amount = order.TotalAmount
	}

	sellerName := "the store"
	orderTime := ""

	items, err := u.orderItems.ListByOrderID(ctx, orderID)
	if err == nil && len(items) > 0 {
		if vendor, err := u.vendors.FindByID(ctx, items[0].VendorID); err == nil {
			if vendor.FirstName != "" && vendor.LastName != "" {
				sellerName = vendor.FirstName + " " + vendor.LastName
			}
			orderTime = vendor.OrderTime
		}
	}

	textBody := fmt.Sprintf(
		"Hi,\n\nYour order has been placed for %s.\nPickup code: %s\nAmount: %d\nPayment method: %s\n",
		sellerName, pickupCode, amount, rsp.Channel,
	)
	if orderTime != "" {
		textBody += fmt.Sprintf("Please head to the store by: %s\n", orderTime)
	}
	textBody += "\nThank you for shopping with us."

	if err := u.mailer.SendEmail(ctx, rsp.CustomerEmail, "Order confirmed", textBody); err != nil {
		u.logger.Warn("confirmation email failed",
			zap.Int64("order_id", orderID),
			zap.Error(err))
	}
}
