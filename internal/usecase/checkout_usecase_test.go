package usecase_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"app/internal/domain/model"
	"app/internal/metrics"
	"app/internal/payment"
	"app/internal/queue"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// =====================
// TxManager / TxRepos mocks
// =====================

// CoTxManagerMock は WithinTx の中で渡す repos を固定して unit テストを回す
type CoTxManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *CoTxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	// 呼ばれた事実だけ記録（ctxの具体値は問わない）
	m.Called(ctx)
	return fn(m.Repos)
}

type CoTxReposMock struct {
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	carts      repo.CartRepository
	deals      repo.DealRepository
	inventory  repo.InventoryRepository
	payments   repo.PaymentRepository
	shipping   repo.ShippingRepository
}

func (r *CoTxReposMock) Orders() repo.OrderRepository         { return r.orders }
func (r *CoTxReposMock) OrderItems() repo.OrderItemRepository { return r.orderItems }
func (r *CoTxReposMock) Carts() repo.CartRepository           { return r.carts }
func (r *CoTxReposMock) Deals() repo.DealRepository           { return r.deals }
func (r *CoTxReposMock) Inventory() repo.InventoryRepository  { return r.inventory }
func (r *CoTxReposMock) Payments() repo.PaymentRepository     { return r.payments }
func (r *CoTxReposMock) Shipping() repo.ShippingRepository    { return r.shipping }

// =====================
// Repository mocks（Checkout向け：衝突回避の命名）
// =====================

type CoDealRepoMock struct{ mock.Mock }

func (m *CoDealRepoMock) ListPublic(ctx context.Context, q repo.DealListQuery) ([]model.Deal, int64, error) {
	panic("not used in CheckoutUsecase tests")
}

func (m *CoDealRepoMock) ListByVendorID(ctx context.Context, vendorID int64) ([]model.Deal, error) {
	panic("not used in CheckoutUsecase tests")
}

func (m *CoDealRepoMock) FindByID(ctx context.Context, id int64) (model.Deal, error) {
	args := m.Called(ctx, id)
	d, _ := args.Get(0).(model.Deal)
	return d, args.Error(1)
}

func (m *CoDealRepoMock) Create(ctx context.Context, d model.Deal) (model.Deal, error) {
	panic("not used in CheckoutUsecase tests")
}

func (m *CoDealRepoMock) Update(ctx context.Context, d model.Deal) error {
	panic("not used in CheckoutUsecase tests")
}

func (m *CoDealRepoMock) SoftDelete(ctx context.Context, id int64) error {
	panic("not used in CheckoutUsecase tests")
}

type CoCartRepoMock struct{ mock.Mock }

func (m *CoCartRepoMock) ListByCustomerID(ctx context.Context, customerID int64) ([]model.CartItem, error) {
	args := m.Called(ctx, customerID)
	items, _ := args.Get(0).([]model.CartItem)
	return items, args.Error(1)
}

func (m *CoCartRepoMock) FindByCustomerAndProduct(ctx context.Context, customerID int64, productID int64) (model.CartItem, error) {
	panic("not used in CheckoutUsecase tests")
}

func (m *CoCartRepoMock) Create(ctx context.Context, item model.CartItem) (model.CartItem, error) {
	panic("not used in CheckoutUsecase tests")
}

func (m *CoCartRepoMock) UpdateQuantity(ctx context.Context, customerID int64, productID int64, qty int64) error {
	panic("not used in CheckoutUsecase tests")
}

func (m *CoCartRepoMock) DeleteByCustomerAndProduct(ctx context.Context, customerID int64, productID int64) error {
	panic("not used in CheckoutUsecase tests")
}

func (m *CoCartRepoMock) Clear(ctx context.Context, customerID int64) error {
	args := m.Called(ctx, customerID)
	return args.Error(0)
}

type CoOrderRepoMock struct{ mock.Mock }

func (m *CoOrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *CoOrderRepoMock) ListByCustomerID(ctx context.Context, customerID int64, page int, limit int) ([]model.Order, int64, error) {
	panic("not used in CheckoutUsecase tests")
}

func (m *CoOrderRepoMock) Create(ctx context.Context, order model.Order) (int64, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(int64), args.Error(1)
}

func (m *CoOrderRepoMock) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

func (m *CoOrderRepoMock) Delete(ctx context.Context, orderID int64) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *CoOrderRepoMock) ExistsByPickupCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *CoOrderRepoMock) SetStockApplied(ctx context.Context, orderID int64) error {
	panic("not used in CheckoutUsecase tests")
}

type CoOrderItemRepoMock struct{ mock.Mock }

func (m *CoOrderItemRepoMock) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	panic("not used in CheckoutUsecase tests")
}

func (m *CoOrderItemRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

func (m *CoOrderItemRepoMock) CountByOrderID(ctx context.Context, orderID int64) (int64, error) {
	panic("not used in CheckoutUsecase tests")
}

type CoPaymentRepoMock struct{ mock.Mock }

func (m *CoPaymentRepoMock) Create(ctx context.Context, p model.PaymentDetail) (model.PaymentDetail, error) {
	args := m.Called(ctx, p)
	created, _ := args.Get(0).(model.PaymentDetail)
	return created, args.Error(1)
}

func (m *CoPaymentRepoMock) FindByPaymentRef(ctx context.Context, paymentRef string) (model.PaymentDetail, bool, error) {
	args := m.Called(ctx, paymentRef)
	p, _ := args.Get(0).(model.PaymentDetail)
	return p, args.Bool(1), args.Error(2)
}

func (m *CoPaymentRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.PaymentDetail, error) {
	panic("not used in CheckoutUsecase tests")
}

type CoInventoryRepoMock struct{ mock.Mock }

func (m *CoInventoryRepoMock) SetStock(ctx context.Context, productID int64, newStock int64) error {
	panic("not used in CheckoutUsecase tests")
}

func (m *CoInventoryRepoMock) DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error) {
	panic("not used in CheckoutUsecase tests")
}

func (m *CoInventoryRepoMock) IncreaseStock(ctx context.Context, productID int64, qty int64) error {
	args := m.Called(ctx, productID, qty)
	return args.Error(0)
}

type CoVendorRepoMock struct{ mock.Mock }

func (m *CoVendorRepoMock) FindByID(ctx context.Context, vendorID int64) (model.Vendor, error) {
	args := m.Called(ctx, vendorID)
	v, _ := args.Get(0).(model.Vendor)
	return v, args.Error(1)
}

func (m *CoVendorRepoMock) FindByUserID(ctx context.Context, userID int64) (model.Vendor, error) {
	panic("not used in CheckoutUsecase tests")
}

func (m *CoVendorRepoMock) Create(ctx context.Context, v model.Vendor) (model.Vendor, error) {
	panic("not used in CheckoutUsecase tests")
}

func (m *CoVendorRepoMock) Update(ctx context.Context, v model.Vendor) error {
	panic("not used in CheckoutUsecase tests")
}

type CoUserRepoMock struct{ mock.Mock }

func (m *CoUserRepoMock) Create(ctx context.Context, user *model.User) error {
	panic("not used in CheckoutUsecase tests")
}

func (m *CoUserRepoMock) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *CoUserRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	panic("not used in CheckoutUsecase tests")
}

func (m *CoUserRepoMock) Update(ctx context.Context, user *model.User) error {
	panic("not used in CheckoutUsecase tests")
}

// =====================
// Queue / Gateway / Mailer mocks
// =====================

type CoQueueMock struct{ mock.Mock }

func (m *CoQueueMock) Enqueue(ctx context.Context, jobName string, payload interface{}) error {
	args := m.Called(ctx, jobName, payload)
	return args.Error(0)
}

type CoGatewayMock struct{ mock.Mock }

func (m *CoGatewayMock) InitializePayment(ctx context.Context, in payment.InitializeInput) (payment.InitializeResult, error) {
	args := m.Called(ctx, in)
	rsp, _ := args.Get(0).(payment.InitializeResult)
	return rsp, args.Error(1)
}

func (m *CoGatewayMock) VerifyPayment(ctx context.Context, paymentRef string) (payment.VerifyResult, error) {
	args := m.Called(ctx, paymentRef)
	rsp, _ := args.Get(0).(payment.VerifyResult)
	return rsp, args.Error(1)
}

type CoMailerMock struct{ mock.Mock }

func (m *CoMailerMock) SendEmail(ctx context.Context, to string, subject string, textBody string) error {
	args := m.Called(ctx, to, subject, textBody)
	return args.Error(0)
}

// =====================
// 組み立てヘルパー
// =====================

type checkoutEnv struct {
	tx         *CoTxManagerMock
	carts      *CoCartRepoMock
	deals      *CoDealRepoMock
	users      *CoUserRepoMock
	orders     *CoOrderRepoMock
	orderItems *CoOrderItemRepoMock
	payments   *CoPaymentRepoMock
	inventory  *CoInventoryRepoMock
	vendors    *CoVendorRepoMock
	queue      *CoQueueMock
	gateway    *CoGatewayMock
	mailer     *CoMailerMock

	uc *usecase.CheckoutUsecase
}

func newCheckoutEnv() *checkoutEnv {
	env := &checkoutEnv{
		carts:      new(CoCartRepoMock),
		deals:      new(CoDealRepoMock),
		users:      new(CoUserRepoMock),
		orders:     new(CoOrderRepoMock),
		orderItems: new(CoOrderItemRepoMock),
		payments:   new(CoPaymentRepoMock),
		inventory:  new(CoInventoryRepoMock),
		vendors:    new(CoVendorRepoMock),
		queue:      new(CoQueueMock),
		gateway:    new(CoGatewayMock),
		mailer:     new(CoMailerMock),
	}

	env.tx = &CoTxManagerMock{
		Repos: &CoTxReposMock{
			orders:     env.orders,
			orderItems: env.orderItems,
			carts:      env.carts,
			deals:      env.deals,
			inventory:  env.inventory,
			payments:   env.payments,
		},
	}
	env.tx.On("WithinTx", mock.Anything).Return(nil).Maybe()

	cartUC := usecase.NewCartUsecase(env.carts, env.deals)

	env.uc = usecase.NewCheckoutUsecase(
		env.tx,
		cartUC,
		env.users,
		env.orders,
		env.orderItems,
		env.payments,
		env.vendors,
		env.queue,
		env.gateway,
		env.mailer,
		metrics.New(prometheus.NewRegistry()),
		zap.NewNop(),
	)
	return env
}

func assertCheckoutErrContains(t *testing.T, err error, wantSubstr string) {
	t.Helper()
	if assert.Error(t, err) {
		assert.True(t, strings.Contains(err.Error(), wantSubstr), "err=%q want contains %q", err.Error(), wantSubstr)
	}
}

// =====================
// Checkout tests
// =====================

func TestCheckout_EmptyCart(t *testing.T) {
	ctx := context.Background()
	env := newCheckoutEnv()

	env.users.On("FindByID", mock.Anything, int64(7)).Return(&model.User{ID: 7, Email: "jo@example.com"}, nil)
	env.carts.On("ListByCustomerID", mock.Anything, int64(7)).Return([]model.CartItem{}, nil)

	_, err := env.uc.Checkout(ctx, 7, usecase.CheckoutInput{PaymentMethod: model.PaymentMethodCard})
	assertCheckoutErrContains(t, err, "cart is empty")

	env.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCheckout_UnknownPaymentMethod_Rejected(t *testing.T) {
	ctx := context.Background()
	env := newCheckoutEnv()

	//未知の方法は非ゲートウェイ分岐に落とさず弾く
	_, err := env.uc.Checkout(ctx, 7, usecase.CheckoutInput{PaymentMethod: model.PaymentMethod("bitcoin")})
	assertCheckoutErrContains(t, err, "invalid payment_method")

	env.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	env.payments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	env.gateway.AssertNotCalled(t, "InitializePayment", mock.Anything, mock.Anything)
}

func TestCheckout_InsufficientStock_NoOrderCreated(t *testing.T) {
	ctx := context.Background()
	env := newCheckoutEnv()

	env.users.On("FindByID", mock.Anything, int64(7)).Return(&model.User{ID: 7, Email: "jo@example.com"}, nil)
	env.carts.On("ListByCustomerID", mock.Anything, int64(7)).Return([]model.CartItem{
		{CustomerID: 7, ProductID: 1, Quantity: 3},
	}, nil)

	//集計時は足りて見えるがtx内の再チェックで足りない
	env.deals.On("FindByID", mock.Anything, int64(1)).Return(model.Deal{
		ID: 1, VendorID: 3, Title: "Bento box", Price: 500, Stock: 2, IsActive: true,
	}, nil)

	_, err := env.uc.Checkout(ctx, 7, usecase.CheckoutInput{PaymentMethod: model.PaymentMethodCard})
	assertCheckoutErrContains(t, err, "Bento box has: 2 stocks left")

	//注文もカートクリアも起きていない
	env.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	env.carts.AssertNotCalled(t, "Clear", mock.Anything, mock.Anything)
	env.queue.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckout_Gateway_Success(t *testing.T) {
	ctx := context.Background()
	env := newCheckoutEnv()

	env.users.On("FindByID", mock.Anything, int64(7)).Return(&model.User{ID: 7, Email: "jo@example.com"}, nil)
	env.carts.On("ListByCustomerID", mock.Anything, int64(7)).Return([]model.CartItem{
		{CustomerID: 7, ProductID: 1, Quantity: 2},
		{CustomerID: 7, ProductID: 2, Quantity: 1},
	}, nil)
	env.deals.On("FindByID", mock.Anything, int64(1)).Return(model.Deal{
		ID: 1, VendorID: 3, Title: "Bento box", Price: 500, Stock: 5, IsActive: true,
	}, nil)
	env.deals.On("FindByID", mock.Anything, int64(2)).Return(model.Deal{
		ID: 2, VendorID: 3, Title: "Day-old bread", Price: 300, Stock: 5, IsActive: true,
	}, nil)

	env.orders.On("ExistsByPickupCode", mock.Anything, mock.AnythingOfType("string")).Return(false, nil)
	env.orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		return o.CustomerID == 7 && o.TotalAmount == 1300 && o.Status == model.OrderStatusPending && len(o.PickupCode) == 5
	})).Return(int64(10), nil)
	env.carts.On("Clear", mock.Anything, int64(7)).Return(nil)

	env.queue.On("Enqueue", mock.Anything, queue.JobAddShippingDetails, mock.Anything).Return(nil)
	env.queue.On("Enqueue", mock.Anything, queue.JobAddOrderItems, mock.MatchedBy(func(p interface{}) bool {
		payload, ok := p.(queue.OrderItemsPayload)
		return ok && payload.OrderID == 10 && len(payload.Items) == 2
	})).Return(nil)

	//金額は主要通貨単位のままゲートウェイ境界へ渡る（最小単位換算はクライアント実装側）
	env.gateway.On("InitializePayment", mock.Anything, mock.MatchedBy(func(in payment.InitializeInput) bool {
		return in.Amount == 1300 && in.Email == "jo@example.com" && in.Metadata.OrderID == 10
	})).Return(payment.InitializeResult{
		AuthorizationURL: "https://pay.example/abc",
		AccessCode:       "ac_123",
		Reference:        "ref_123",
	}, nil)

	out, err := env.uc.Checkout(ctx, 7, usecase.CheckoutInput{PaymentMethod: model.PaymentMethodCard})
	assert.NoError(t, err)
	assert.Equal(t, int64(10), out.OrderID)
	assert.Equal(t, int64(1300), out.TotalAmount)
	assert.Equal(t, string(model.OrderStatusPending), out.Status)
	assert.Equal(t, "https://pay.example/abc", out.AuthorizationURL)
	assert.Equal(t, "ref_123", out.Reference)
	assert.Len(t, out.PickupCode, 5)

	//在庫減算はゲートウェイ検証が終わるまで積まれない
	env.queue.AssertNotCalled(t, "Enqueue", mock.Anything, queue.JobUpdateStockAfterCheckout, mock.Anything)

	env.orders.AssertExpectations(t)
	env.gateway.AssertExpectations(t)
	env.queue.AssertExpectations(t)
}

func TestCheckout_GatewayError(t *testing.T) {
	ctx := context.Background()
	env := newCheckoutEnv()

	env.users.On("FindByID", mock.Anything, int64(7)).Return(&model.User{ID: 7, Email: "jo@example.com"}, nil)
	env.carts.On("ListByCustomerID", mock.Anything, int64(7)).Return([]model.CartItem{
		{CustomerID: 7, ProductID: 1, Quantity: 1},
	}, nil)
	env.deals.On("FindByID", mock.Anything, int64(1)).Return(model.Deal{
		ID: 1, VendorID: 3, Title: "Bento box", Price: 500, Stock: 5, IsActive: true,
	}, nil)
	env.orders.On("ExistsByPickupCode", mock.Anything, mock.AnythingOfType("string")).Return(false, nil)
	env.orders.On("Create", mock.Anything, mock.AnythingOfType("model.Order")).Return(int64(10), nil)
	env.carts.On("Clear", mock.Anything, int64(7)).Return(nil)
	env.queue.On("Enqueue", mock.Anything, mock.AnythingOfType("string"), mock.Anything).Return(nil)

	env.gateway.On("InitializePayment", mock.Anything, mock.Anything).
		Return(payment.InitializeResult{}, assert.AnError)

	_, err := env.uc.Checkout(ctx, 7, usecase.CheckoutInput{PaymentMethod: model.PaymentMethodBankTransfer})
	assertCheckoutErrContains(t, err, "payment gateway error")
}

func TestCheckout_PayOnPickup_RecordsPaymentAndQueuesStock(t *testing.T) {
	ctx := context.Background()
	env := newCheckoutEnv()

	env.users.On("FindByID", mock.Anything, int64(7)).Return(&model.User{ID: 7, Email: "jo@example.com"}, nil)
	env.carts.On("ListByCustomerID", mock.Anything, int64(7)).Return([]model.CartItem{
		{CustomerID: 7, ProductID: 1, Quantity: 2},
	}, nil)
	env.deals.On("FindByID", mock.Anything, int64(1)).Return(model.Deal{
		ID: 1, VendorID: 3, Title: "Bento box", Price: 500, Stock: 5, IsActive: true,
	}, nil)
	env.orders.On("ExistsByPickupCode", mock.Anything, mock.AnythingOfType("string")).Return(false, nil)
	env.orders.On("Create", mock.Anything, mock.AnythingOfType("model.Order")).Return(int64(11), nil)
	env.carts.On("Clear", mock.Anything, int64(7)).Return(nil)

	env.queue.On("Enqueue", mock.Anything, queue.JobAddShippingDetails, mock.Anything).Return(nil)
	env.queue.On("Enqueue", mock.Anything, queue.JobAddOrderItems, mock.Anything).Return(nil)
	env.queue.On("Enqueue", mock.Anything, queue.JobUpdateStockAfterCheckout, queue.StockPayload{OrderID: 11}).Return(nil)

	env.payments.On("Create", mock.Anything, mock.MatchedBy(func(p model.PaymentDetail) bool {
		return p.OrderID == 11 && p.Amount == 1000 &&
			p.Status == model.PaymentStatusSuccess && p.PaymentRef != "" && p.PaidAt != nil
	})).Return(model.PaymentDetail{PaymentRef: "local-ref"}, nil)

	out, err := env.uc.Checkout(ctx, 7, usecase.CheckoutInput{PaymentMethod: model.PaymentMethodPayOnPickup})
	assert.NoError(t, err)
	assert.Equal(t, int64(11), out.OrderID)
	assert.Equal(t, "local-ref", out.Reference)

	env.payments.AssertExpectations(t)
	env.queue.AssertExpectations(t)
	env.gateway.AssertNotCalled(t, "InitializePayment", mock.Anything, mock.Anything)
}

// =====================
// VerifyOrderPayment tests
// =====================

func TestVerifyOrderPayment_AlreadyProcessed(t *testing.T) {
	ctx := context.Background()
	env := newCheckoutEnv()

	env.payments.On("FindByPaymentRef", mock.Anything, "ref_123").
		Return(model.PaymentDetail{PaymentRef: "ref_123"}, true, nil)

	_, err := env.uc.VerifyOrderPayment(ctx, "ref_123")
	assertCheckoutErrContains(t, err, "payment already successful")

	env.gateway.AssertNotCalled(t, "VerifyPayment", mock.Anything, mock.Anything)
}

func TestVerifyOrderPayment_Success(t *testing.T) {
	ctx := context.Background()
	env := newCheckoutEnv()

	paidAt := time.Date(2026, 2, 10, 17, 0, 0, 0, time.UTC)

	env.payments.On("FindByPaymentRef", mock.Anything, "ref_123").
		Return(model.PaymentDetail{}, false, nil)
	env.gateway.On("VerifyPayment", mock.Anything, "ref_123").Return(payment.VerifyResult{
		Status:        payment.StatusSuccess,
		Channel:       "card",
		Amount:        130000,
		Reference:     "ref_123",
		PaidAt:        &paidAt,
		Metadata:      payment.Metadata{OrderID: 10, PickupCode: "AB12C"},
		CustomerEmail: "jo@example.com",
	}, nil)

	//最小単位130000は主要単位1300で保存される
	env.payments.On("Create", mock.Anything, mock.MatchedBy(func(p model.PaymentDetail) bool {
		return p.PaymentRef == "ref_123" && p.OrderID == 10 && p.Amount == 1300 &&
			p.Status == model.PaymentStatusSuccess
	})).Return(model.PaymentDetail{}, nil)
	env.orders.On("UpdateStatus", mock.Anything, int64(10), model.OrderStatusPaid).Return(nil)

	env.queue.On("Enqueue", mock.Anything, queue.JobUpdateStockAfterCheckout, queue.StockPayload{OrderID: 10}).Return(nil)

	//確認メールの文面
	env.orders.On("FindByID", mock.Anything, int64(10)).Return(model.Order{ID: 10, TotalAmount: 1300}, nil)
	env.orderItems.On("ListByOrderID", mock.Anything, int64(10)).Return([]model.OrderItem{
		{OrderID: 10, VendorID: 3, TitleSnapshot: "Bento box"},
	}, nil)
	env.vendors.On("FindByID", mock.Anything, int64(3)).Return(model.Vendor{
		ID: 3, FirstName: "Aiko", LastName: "Tanaka", OrderTime: "18:00",
	}, nil)
	env.mailer.On("SendEmail", mock.Anything, "jo@example.com", "Order confirmed", mock.MatchedBy(func(body string) bool {
		return strings.Contains(body, "Aiko Tanaka") &&
			strings.Contains(body, "Pickup code: AB12C") &&
			strings.Contains(body, "Please head to the store by: 18:00")
	})).Return(nil)

	out, err := env.uc.VerifyOrderPayment(ctx, "ref_123")
	assert.NoError(t, err)
	assert.True(t, out.PaymentVerified)
	assert.Equal(t, int64(10), out.OrderID)
	assert.Equal(t, "AB12C", out.PickupCode)

	env.payments.AssertExpectations(t)
	env.orders.AssertExpectations(t)
	env.mailer.AssertExpectations(t)
	env.queue.AssertExpectations(t)
}

func TestVerifyOrderPayment_Failed_DeletesOrder(t *testing.T) {
	ctx := context.Background()
	env := newCheckoutEnv()

	env.payments.On("FindByPaymentRef", mock.Anything, "ref_bad").
		Return(model.PaymentDetail{}, false, nil)
	env.gateway.On("VerifyPayment", mock.Anything, "ref_bad").Return(payment.VerifyResult{
		Status:   payment.StatusFailed,
		Metadata: payment.Metadata{OrderID: 10, PickupCode: "AB12C"},
	}, nil)
	env.orders.On("FindByID", mock.Anything, int64(10)).
		Return(model.Order{ID: 10, Status: model.OrderStatusPending}, nil)
	env.orders.On("Delete", mock.Anything, int64(10)).Return(nil)

	_, err := env.uc.VerifyOrderPayment(ctx, "ref_bad")
	assertCheckoutErrContains(t, err, "payment failed, checkout again and complete payment")

	env.orders.AssertExpectations(t)
	env.queue.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything, mock.Anything)
	env.mailer.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestVerifyOrderPayment_Failed_RestoresAppliedStock(t *testing.T) {
	ctx := context.Background()
	env := newCheckoutEnv()

	env.payments.On("FindByPaymentRef", mock.Anything, "ref_bad").
		Return(model.PaymentDetail{}, false, nil)
	env.gateway.On("VerifyPayment", mock.Anything, "ref_bad").Return(payment.VerifyResult{
		Status:   payment.StatusFailed,
		Metadata: payment.Metadata{OrderID: 10},
	}, nil)

	//在庫減算ジョブが先に走っていた注文は、消す前に在庫を戻す
	env.orders.On("FindByID", mock.Anything, int64(10)).
		Return(model.Order{ID: 10, Status: model.OrderStatusPending, StockApplied: true}, nil)
	env.orderItems.On("ListByOrderID", mock.Anything, int64(10)).Return([]model.OrderItem{
		{OrderID: 10, ProductID: 1, Quantity: 2},
		{OrderID: 10, ProductID: 2, Quantity: 1},
	}, nil)
	env.inventory.On("IncreaseStock", mock.Anything, int64(1), int64(2)).Return(nil)
	env.inventory.On("IncreaseStock", mock.Anything, int64(2), int64(1)).Return(nil)
	env.orders.On("Delete", mock.Anything, int64(10)).Return(nil)

	_, err := env.uc.VerifyOrderPayment(ctx, "ref_bad")
	assertCheckoutErrContains(t, err, "payment failed, checkout again and complete payment")

	env.inventory.AssertExpectations(t)
	env.orders.AssertExpectations(t)
}

func TestVerifyOrderPayment_Abandoned_KeepsOrder(t *testing.T) {
	ctx := context.Background()
	env := newCheckoutEnv()

	env.payments.On("FindByPaymentRef", mock.Anything, "ref_123").
		Return(model.PaymentDetail{}, false, nil)
	env.gateway.On("VerifyPayment", mock.Anything, "ref_123").Return(payment.VerifyResult{
		Status:   payment.StatusAbandoned,
		Metadata: payment.Metadata{OrderID: 10},
	}, nil)

	_, err := env.uc.VerifyOrderPayment(ctx, "ref_123")
	assertCheckoutErrContains(t, err, "you have a pending transaction, complete your payment")

	//放棄は再試行できるので注文は残す
	env.orders.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestVerifyOrderPayment_UnknownState_DeletesOrder(t *testing.T) {
	ctx := context.Background()
	env := newCheckoutEnv()

	env.payments.On("FindByPaymentRef", mock.Anything, "ref_odd").
		Return(model.PaymentDetail{}, false, nil)
	env.gateway.On("VerifyPayment", mock.Anything, "ref_odd").Return(payment.VerifyResult{
		Status:   payment.Status("reversed"),
		Metadata: payment.Metadata{OrderID: 10},
	}, nil)
	env.orders.On("FindByID", mock.Anything, int64(10)).
		Return(model.Order{ID: 10, Status: model.OrderStatusPending}, nil)
	env.orders.On("Delete", mock.Anything, int64(10)).Return(nil)

	_, err := env.uc.VerifyOrderPayment(ctx, "ref_odd")
	assertCheckoutErrContains(t, err, "payment in unknown state, contact support and try again")

	env.orders.AssertExpectations(t)
}

func TestVerifyOrderPayment_GatewayError(t *testing.T) {
	ctx := context.Background()
	env := newCheckoutEnv()

	env.payments.On("FindByPaymentRef", mock.Anything, "ref_123").
		Return(model.PaymentDetail{}, false, nil)
	env.gateway.On("VerifyPayment", mock.Anything, "ref_123").
		Return(payment.VerifyResult{}, assert.AnError)

	_, err := env.uc.VerifyOrderPayment(ctx, "ref_123")
	assertCheckoutErrContains(t, err, "payment gateway error")
}
