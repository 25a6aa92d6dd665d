package queue_test

import (
	"context"
	"testing"

	"app/internal/domain/model"
	infraQueue "app/internal/infra/queue"
	"app/internal/queue"
	repo "app/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// =====================
// TxManager / TxRepos mocks
// =====================

type WkTxManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *WkTxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	m.Called(ctx)
	return fn(m.Repos)
}

type WkTxReposMock struct {
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	carts      repo.CartRepository
	deals      repo.DealRepository
	inventory  repo.InventoryRepository
	payments   repo.PaymentRepository
	shipping   repo.ShippingRepository
}

func (r *WkTxReposMock) Orders() repo.OrderRepository         { return r.orders }
func (r *WkTxReposMock) OrderItems() repo.OrderItemRepository { return r.orderItems }
func (r *WkTxReposMock) Carts() repo.CartRepository           { return r.carts }
func (r *WkTxReposMock) Deals() repo.DealRepository           { return r.deals }
func (r *WkTxReposMock) Inventory() repo.InventoryRepository  { return r.inventory }
func (r *WkTxReposMock) Payments() repo.PaymentRepository     { return r.payments }
func (r *WkTxReposMock) Shipping() repo.ShippingRepository    { return r.shipping }

// =====================
// Repository mocks（Worker向け：衝突回避の命名）
// =====================

type WkOrderRepoMock struct{ mock.Mock }

func (m *WkOrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *WkOrderRepoMock) ListByCustomerID(ctx context.Context, customerID int64, page int, limit int) ([]model.Order, int64, error) {
	panic("not used in Worker tests")
}

func (m *WkOrderRepoMock) Create(ctx context.Context, order model.Order) (int64, error) {
	panic("not used in Worker tests")
}

func (m *WkOrderRepoMock) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	panic("not used in Worker tests")
}

func (m *WkOrderRepoMock) Delete(ctx context.Context, orderID int64) error {
	panic("not used in Worker tests")
}

func (m *WkOrderRepoMock) ExistsByPickupCode(ctx context.Context, code string) (bool, error) {
	panic("not used in Worker tests")
}

func (m *WkOrderRepoMock) SetStockApplied(ctx context.Context, orderID int64) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

type WkOrderItemRepoMock struct{ mock.Mock }

func (m *WkOrderItemRepoMock) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

func (m *WkOrderItemRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

func (m *WkOrderItemRepoMock) CountByOrderID(ctx context.Context, orderID int64) (int64, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).(int64), args.Error(1)
}

type WkInventoryRepoMock struct{ mock.Mock }

func (m *WkInventoryRepoMock) SetStock(ctx context.Context, productID int64, newStock int64) error {
	panic("not used in Worker tests")
}

func (m *WkInventoryRepoMock) DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error) {
	args := m.Called(ctx, productID, qty)
	return args.Bool(0), args.Error(1)
}

func (m *WkInventoryRepoMock) IncreaseStock(ctx context.Context, productID int64, qty int64) error {
	panic("not used in Worker tests")
}

type WkShippingRepoMock struct{ mock.Mock }

func (m *WkShippingRepoMock) Create(ctx context.Context, s model.ShippingDetail) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *WkShippingRepoMock) ExistsByOrderID(ctx context.Context, orderID int64) (bool, error) {
	args := m.Called(ctx, orderID)
	return args.Bool(0), args.Error(1)
}

// =====================
// 組み立てヘルパー
// =====================

type workerEnv struct {
	orders     *WkOrderRepoMock
	orderItems *WkOrderItemRepoMock
	inventory  *WkInventoryRepoMock
	shipping   *WkShippingRepoMock

	w *infraQueue.Worker
}

func newWorkerEnv() *workerEnv {
	env := &workerEnv{
		orders:     new(WkOrderRepoMock),
		orderItems: new(WkOrderItemRepoMock),
		inventory:  new(WkInventoryRepoMock),
		shipping:   new(WkShippingRepoMock),
	}

	tx := &WkTxManagerMock{
		Repos: &WkTxReposMock{
			orders:     env.orders,
			orderItems: env.orderItems,
			inventory:  env.inventory,
			shipping:   env.shipping,
		},
	}
	tx.On("WithinTx", mock.Anything).Return(nil).Maybe()

	//ハンドラのテストではredisに触らない
	env.w = infraQueue.NewWorker(nil, tx, zap.NewNop())
	return env
}

// =====================
// add_shipping_details
// =====================

func TestWorker_AddShippingDetails_CreatesOnce(t *testing.T) {
	ctx := context.Background()
	env := newWorkerEnv()

	env.shipping.On("ExistsByOrderID", mock.Anything, int64(10)).Return(false, nil)
	env.shipping.On("Create", mock.Anything, model.ShippingDetail{
		OrderID: 10, Address: "1-2-3 Ginza", City: "Tokyo", State: "Tokyo", Phone: "0312345678",
	}).Return(nil)

	err := env.w.HandleAddShippingDetails(ctx, queue.ShippingDetailsPayload{
		OrderID: 10, Address: "1-2-3 Ginza", City: "Tokyo", State: "Tokyo", Phone: "0312345678",
	})
	assert.NoError(t, err)
	env.shipping.AssertExpectations(t)
}

func TestWorker_AddShippingDetails_SkipsWhenExists(t *testing.T) {
	ctx := context.Background()
	env := newWorkerEnv()

	env.shipping.On("ExistsByOrderID", mock.Anything, int64(10)).Return(true, nil)

	err := env.w.HandleAddShippingDetails(ctx, queue.ShippingDetailsPayload{OrderID: 10})
	assert.NoError(t, err)
	env.shipping.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// =====================
// add_order_items
// =====================

func TestWorker_AddOrderItems_BulkInsertFromSnapshot(t *testing.T) {
	ctx := context.Background()
	env := newWorkerEnv()

	env.orderItems.On("CountByOrderID", mock.Anything, int64(10)).Return(int64(0), nil)
	env.orderItems.On("CreateBulk", mock.Anything, int64(10), []model.OrderItem{
		{ProductID: 1, VendorID: 3, TitleSnapshot: "Bento box", UnitPriceSnapshot: 500, Quantity: 2},
	}).Return(nil)

	err := env.w.HandleAddOrderItems(ctx, queue.OrderItemsPayload{
		OrderID: 10,
		Items: []queue.OrderItemLine{
			{ProductID: 1, VendorID: 3, Title: "Bento box", UnitPrice: 500, Quantity: 2},
		},
	})
	assert.NoError(t, err)
	env.orderItems.AssertExpectations(t)
}

func TestWorker_AddOrderItems_SkipsWhenAlreadyMaterialized(t *testing.T) {
	ctx := context.Background()
	env := newWorkerEnv()

	env.orderItems.On("CountByOrderID", mock.Anything, int64(10)).Return(int64(2), nil)

	err := env.w.HandleAddOrderItems(ctx, queue.OrderItemsPayload{OrderID: 10})
	assert.NoError(t, err)
	env.orderItems.AssertNotCalled(t, "CreateBulk", mock.Anything, mock.Anything, mock.Anything)
}

// =====================
// update_stock_after_checkout
// =====================

func TestWorker_UpdateStock_DecrementsAndMarksApplied(t *testing.T) {
	ctx := context.Background()
	env := newWorkerEnv()

	env.orders.On("FindByID", mock.Anything, int64(10)).Return(model.Order{ID: 10, StockApplied: false}, nil)
	env.orderItems.On("ListByOrderID", mock.Anything, int64(10)).Return([]model.OrderItem{
		{ProductID: 1, Quantity: 2},
		{ProductID: 2, Quantity: 1},
	}, nil)
	env.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(1), int64(2)).Return(true, nil)
	env.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(2), int64(1)).Return(true, nil)
	env.orders.On("SetStockApplied", mock.Anything, int64(10)).Return(nil)

	err := env.w.HandleUpdateStockAfterCheckout(ctx, queue.StockPayload{OrderID: 10})
	assert.NoError(t, err)
	env.inventory.AssertExpectations(t)
	env.orders.AssertExpectations(t)
}

func TestWorker_UpdateStock_IdempotentWhenAlreadyApplied(t *testing.T) {
	ctx := context.Background()
	env := newWorkerEnv()

	env.orders.On("FindByID", mock.Anything, int64(10)).Return(model.Order{ID: 10, StockApplied: true}, nil)

	err := env.w.HandleUpdateStockAfterCheckout(ctx, queue.StockPayload{OrderID: 10})
	assert.NoError(t, err)
	env.inventory.AssertNotCalled(t, "DecreaseStockIfEnough", mock.Anything, mock.Anything, mock.Anything)
	env.orders.AssertNotCalled(t, "SetStockApplied", mock.Anything, mock.Anything)
}

func TestWorker_UpdateStock_ErrorsWhenItemsNotYetMaterialized(t *testing.T) {
	ctx := context.Background()
	env := newWorkerEnv()

	env.orders.On("FindByID", mock.Anything, int64(10)).Return(model.Order{ID: 10}, nil)
	env.orderItems.On("ListByOrderID", mock.Anything, int64(10)).Return([]model.OrderItem{}, nil)

	//明細ジョブがまだなら失敗＝リトライに回る
	err := env.w.HandleUpdateStockAfterCheckout(ctx, queue.StockPayload{OrderID: 10})
	assert.Error(t, err)
	env.orders.AssertNotCalled(t, "SetStockApplied", mock.Anything, mock.Anything)
}

func TestWorker_UpdateStock_ExhaustedStockDoesNotFailJob(t *testing.T) {
	ctx := context.Background()
	env := newWorkerEnv()

	env.orders.On("FindByID", mock.Anything, int64(10)).Return(model.Order{ID: 10}, nil)
	env.orderItems.On("ListByOrderID", mock.Anything, int64(10)).Return([]model.OrderItem{
		{ProductID: 1, Quantity: 2},
	}, nil)
	//同時チェックアウトの負け側でもジョブ自体は完了する
	env.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(1), int64(2)).Return(false, nil)
	env.orders.On("SetStockApplied", mock.Anything, int64(10)).Return(nil)

	err := env.w.HandleUpdateStockAfterCheckout(ctx, queue.StockPayload{OrderID: 10})
	assert.NoError(t, err)
	env.orders.AssertExpectations(t)
}
