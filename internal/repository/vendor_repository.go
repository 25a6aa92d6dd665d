package repository

import (
	"context"

	"app/internal/domain/model"
)

type VendorRepository interface {
	FindByID(ctx context.Context, vendorID int64) (model.Vendor, error)
	FindByUserID(ctx context.Context, userID int64) (model.Vendor, error)
	Create(ctx context.Context, v model.Vendor) (model.Vendor, error)
	Update(ctx context.Context, v model.Vendor) error
}
