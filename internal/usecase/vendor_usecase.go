package usecase

import (
	"context"
	"net/http"
	"strings"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type VendorUsecase struct {
	vendorRepo repo.VendorRepository
}

func NewVendorUsecase(vendorRepo repo.VendorRepository) *VendorUsecase {
	return &VendorUsecase{vendorRepo: vendorRepo}
}

type UpsertVendorInput struct {
	BusinessName string
	FirstName    string
	LastName     string
	Address      string
	Phone        string
	//受け取り期限の案内文（例: "18:00"）
	OrderTime string
}

func (u *VendorUsecase) GetMyProfile(ctx context.Context, userID int64) (model.Vendor, error) {
	if userID <= 0 {
		return model.Vendor{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	v, err := u.vendorRepo.FindByUserID(ctx, userID)
	if err == repo.ErrNotFound {
		return model.Vendor{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Vendor{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return v, nil
}

// プロフィールを作成または更新
func (u *VendorUsecase) UpsertMyProfile(ctx context.Context, userID int64, in UpsertVendorInput) (model.Vendor, error) {
	if userID <= 0 {
		return model.Vendor{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if strings.TrimSpace(in.BusinessName) == "" {
		return model.Vendor{}, NewHTTPError(http.StatusBadRequest, "invalid business_name")
	}
	if strings.TrimSpace(in.Address) == "" {
		return model.Vendor{}, NewHTTPError(http.StatusBadRequest, "invalid address")
	}

	existing, err := u.vendorRepo.FindByUserID(ctx, userID)
	if err != nil && err != repo.ErrNotFound {
		return model.Vendor{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err == repo.ErrNotFound {
		v, err := u.vendorRepo.Create(ctx, model.Vendor{
			UserID:       userID,
			BusinessName: in.BusinessName,
			FirstName:    in.FirstName,
			LastName:     in.LastName,
			Address:      in.Address,
			Phone:        in.Phone,
			OrderTime:    in.OrderTime,
		})
		if err != nil {
			return model.Vendor{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return v, nil
	}

	existing.BusinessName = in.BusinessName
	existing.FirstName = in.FirstName
	existing.LastName = in.LastName
	existing.Address = in.Address
	existing.Phone = in.Phone
	existing.OrderTime = in.OrderTime

	if err := u.vendorRepo.Update(ctx, existing); err != nil {
		return model.Vendor{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return existing, nil
}
