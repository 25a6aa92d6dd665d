package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// CartUsecase は /cart の業務ロジックです。
type CartUsecase struct {
	cartRepo repo.CartRepository
	dealRepo repo.DealRepository
}

func NewCartUsecase(cartRepo repo.CartRepository, dealRepo repo.DealRepository) *CartUsecase {
	return &CartUsecase{
		cartRepo: cartRepo,
		dealRepo: dealRepo,
	}
}

type AddCartInput struct {
	ProductID int64
	Quantity  int64
}

type UpdateCartInput struct {
	ProductID int64
	Quantity  int64
}

// カート1行ぶんの表示用データ
type CartLine struct {
	ProductID int64  `json:"product_id"`
	Title     string `json:"title"`
	Price     int64  `json:"price"`
	Quantity  int64  `json:"quantity"`
	Total     int64  `json:"total"`
}

type CartSummary struct {
	Items       []CartLine `json:"items"`
	TotalItems  int64      `json:"total_items"`
	TotalAmount int64      `json:"total_amount"`
}

// カートに追加。同じ商品の二重追加は拒否する
func (u *CartUsecase) AddToCart(ctx context.Context, customerID int64, in AddCartInput) (model.CartItem, error) {
	if customerID <= 0 {
		return model.CartItem{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.ProductID <= 0 {
		return model.CartItem{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if in.Quantity < 1 {
		return model.CartItem{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	// 商品チェック（公開のみ）
	p, err := u.dealRepo.FindByID(ctx, in.ProductID)
	if err == repo.ErrNotFound {
		return model.CartItem{}, NewHTTPError(http.StatusBadRequest, "invalid product")
	}
	if err != nil {
		return model.CartItem{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !p.IsActive {
		return model.CartItem{}, NewHTTPError(http.StatusBadRequest, "invalid product")
	}

	//既にカートにある商品は追加できない
	_, err = u.cartRepo.FindByCustomerAndProduct(ctx, customerID, in.ProductID)
	if err == nil {
		return model.CartItem{}, NewHTTPError(http.StatusBadRequest, "already added to cart")
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return model.CartItem{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//在庫チェック（確定時にもう一度やる）
	if in.Quantity > p.Stock {
		return model.CartItem{}, NewHTTPError(http.StatusBadRequest, fmt.Sprintf("stocks available: %d", p.Stock))
	}

	item, err := u.cartRepo.Create(ctx, model.CartItem{
		CustomerID: customerID,
		ProductID:  in.ProductID,
		Quantity:   in.Quantity,
	})
	if err != nil {
		return model.CartItem{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return item, nil
}

// 数量変更（在庫チェック付き）
func (u *CartUsecase) UpdateCartItem(ctx context.Context, customerID int64, in UpdateCartInput) (model.CartItem, error) {
	if customerID <= 0 {
		return model.CartItem{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.ProductID <= 0 {
		return model.CartItem{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if in.Quantity < 1 {
		return model.CartItem{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	_, err := u.cartRepo.FindByCustomerAndProduct(ctx, customerID, in.ProductID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.CartItem{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.CartItem{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//商品の在庫チェック
	p, err := u.dealRepo.FindByID(ctx, in.ProductID)
	if err == repo.ErrNotFound {
		return model.CartItem{}, NewHTTPError(http.StatusBadRequest, "invalid product")
	}
	if err != nil {
		return model.CartItem{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if in.Quantity > p.Stock {
		return model.CartItem{}, NewHTTPError(http.StatusBadRequest, fmt.Sprintf("%d item stock left", p.Stock))
	}

	if err := u.cartRepo.UpdateQuantity(ctx, customerID, in.ProductID, in.Quantity); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.CartItem{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return model.CartItem{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	item, err := u.cartRepo.FindByCustomerAndProduct(ctx, customerID, in.ProductID)
	if err != nil {
		return model.CartItem{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return item, nil
}

// 明細削除
func (u *CartUsecase) DeleteCartItem(ctx context.Context, customerID int64, productID int64) error {
	if customerID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	if err := u.cartRepo.DeleteByCustomerAndProduct(ctx, customerID, productID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// カートを空にする
func (u *CartUsecase) ClearCart(ctx context.Context, customerID int64) error {
	if customerID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	if err := u.cartRepo.Clear(ctx, customerID); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// カートの集計。現在価格で明細と合計を組み立てる。
// 消えた商品・非公開になった商品は黙って読み飛ばす
func (u *CartUsecase) GetCartSummary(ctx context.Context, customerID int64) (CartSummary, error) {
	if customerID <= 0 {
		return CartSummary{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	items, err := u.cartRepo.ListByCustomerID(ctx, customerID)
	if err != nil {
		return CartSummary{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	lines := make([]CartLine, 0, len(items))
	var totalAmount int64 = 0
	var totalItems int64 = 0

	for _, it := range items {
		p, err := u.dealRepo.FindByID(ctx, it.ProductID)
		if err == repo.ErrNotFound {
			continue
		}
		if err != nil {
			//読み飛ばしていいのは「商品がもう無い」だけ
			return CartSummary{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !p.IsActive {
			continue
		}

		lineTotal := p.Price * it.Quantity
		lines = append(lines, CartLine{
			ProductID: it.ProductID,
			Title:     p.Title,
			Price:     p.Price,
			Quantity:  it.Quantity,
			Total:     lineTotal,
		})

		totalAmount += lineTotal
		totalItems += it.Quantity
	}

	return CartSummary{Items: lines, TotalItems: totalItems, TotalAmount: totalAmount}, nil
}
