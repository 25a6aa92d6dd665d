package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type DealUsecase struct {
	dealRepo      repo.DealRepository
	vendorRepo    repo.VendorRepository
	inventoryRepo repo.InventoryRepository
}

// DI
func NewDealUsecase(dealRepo repo.DealRepository, vendorRepo repo.VendorRepository, inventoryRepo repo.InventoryRepository) *DealUsecase {
	return &DealUsecase{
		dealRepo:      dealRepo,
		vendorRepo:    vendorRepo,
		inventoryRepo: inventoryRepo,
	}
}

// GET /dealsの入力DTO
type ListDealsInput struct {
	Page  int
	Limit int
	Q     string
}

type DealListOutput struct {
	Items []model.Deal `json:"items"`
	Total int64        `json:"total"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
}

type CreateDealInput struct {
	Title       string
	Description string
	Price       int64
	Stock       int64
	ReadyTime   *time.Time
}

type UpdateDealInput struct {
	Title       string
	Description string
	Price       int64
	Stock       int64
	IsActive    bool
	ReadyTime   *time.Time
}

func (u *DealUsecase) ListPublicDeals(ctx context.Context, in ListDealsInput) (DealListOutput, error) {
	if in.Page < 1 {
		return DealListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return DealListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if len(in.Q) > 100 {
		return DealListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid q")
	}

	items, total, err := u.dealRepo.ListPublic(ctx, repo.DealListQuery{
		Page:  in.Page,
		Limit: in.Limit,
		Q:     in.Q,
	})
	if err != nil {
		return DealListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return DealListOutput{Items: items, Total: total, Page: in.Page, Limit: in.Limit}, nil
}

func (u *DealUsecase) GetDealDetail(ctx context.Context, id int64) (model.Deal, error) {
	if id <= 0 {
		return model.Deal{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	d, err := u.dealRepo.FindByID(ctx, id)
	if err == repo.ErrNotFound {
		return model.Deal{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Deal{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//非公開の出品は存在しない扱い
	if !d.IsActive {
		return model.Deal{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	return d, nil
}

// 出店者が自分の出品を作る
func (u *DealUsecase) CreateDeal(ctx context.Context, userID int64, in CreateDealInput) (model.Deal, error) {
	if userID <= 0 {
		return model.Deal{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if strings.TrimSpace(in.Title) == "" {
		return model.Deal{}, NewHTTPError(http.StatusBadRequest, "invalid title")
	}
	if in.Price < 0 {
		return model.Deal{}, NewHTTPError(http.StatusBadRequest, "invalid price")
	}
	if in.Stock < 0 {
		return model.Deal{}, NewHTTPError(http.StatusBadRequest, "invalid stock")
	}

	vendor, err := u.vendorRepo.FindByUserID(ctx, userID)
	if err == repo.ErrNotFound {
		return model.Deal{}, NewHTTPError(http.StatusForbidden, "vendor profile required")
	}
	if err != nil {
		return model.Deal{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	d, err := u.dealRepo.Create(ctx, model.Deal{
		VendorID:    vendor.ID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		IsActive:    true,
		ReadyTime:   in.ReadyTime,
	})
	if err != nil {
		return model.Deal{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return d, nil
}

// 出店者が自分の出品を更新する（他人のものは404扱い）
func (u *DealUsecase) UpdateDeal(ctx context.Context, userID int64, dealID int64, in UpdateDealInput) (model.Deal, error) {
	if userID <= 0 {
		return model.Deal{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if dealID <= 0 {
		return model.Deal{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if in.Price < 0 || in.Stock < 0 {
		return model.Deal{}, NewHTTPError(http.StatusBadRequest, "invalid price or stock")
	}

	vendor, err := u.vendorRepo.FindByUserID(ctx, userID)
	if err == repo.ErrNotFound {
		return model.Deal{}, NewHTTPError(http.StatusForbidden, "vendor profile required")
	}
	if err != nil {
		return model.Deal{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	d, err := u.dealRepo.FindByID(ctx, dealID)
	if err == repo.ErrNotFound {
		return model.Deal{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Deal{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if d.VendorID != vendor.ID {
		return model.Deal{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	d.Title = in.Title
	d.Description = in.Description
	d.Price = in.Price
	d.IsActive = in.IsActive
	d.ReadyTime = in.ReadyTime

	if err := u.dealRepo.Update(ctx, d); err != nil {
		return model.Deal{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//在庫の書き込みは在庫リポジトリ経由で一本化する
	if in.Stock != d.Stock {
		if err := u.inventoryRepo.SetStock(ctx, d.ID, in.Stock); err != nil {
			return model.Deal{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
	}
	d.Stock = in.Stock

	return d, nil
}
