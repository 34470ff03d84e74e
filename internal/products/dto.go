package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/coverline/coverline-backend/pkg/db/models"
	"github.com/coverline/coverline-backend/pkg/pagination"
	"github.com/coverline/coverline-backend/pkg/types"
)

// CreateProductInput holds the validated payload to register a product.
type CreateProductInput struct {
	Name                  string
	SerialNumber          string
	ModelNumber           string
	PurchasePrice         decimal.Decimal
	ManufactureDate       types.Date
	WarrantyPeriodMonths  int
	AssignedDistributorID *uuid.UUID
	ImageMediaID          *uuid.UUID
}

// UpdateProductInput holds optional mutation values for a product. Nil fields
// are left untouched; serial numbers are immutable after registration.
type UpdateProductInput struct {
	Name                  *string
	ModelNumber           *string
	PurchasePrice         *decimal.Decimal
	ManufactureDate       *types.Date
	WarrantyPeriodMonths  *int
	AssignedDistributorID *uuid.UUID
	ClearDistributor      bool
	ImageMediaID          *uuid.UUID
}

// ListProductsInput scopes a paginated listing.
type ListProductsInput struct {
	CompanyID     *uuid.UUID
	DistributorID *uuid.UUID
	Query         string
	Pagination    pagination.Params
}

// ProductDTO is the API projection of a product row.
type ProductDTO struct {
	ID                    uuid.UUID       `json:"id"`
	Name                  string          `json:"name"`
	SerialNumber          string          `json:"serial_number"`
	ModelNumber           string          `json:"model_number"`
	PurchasePrice         decimal.Decimal `json:"purchase_price"`
	ManufactureDate       types.Date      `json:"manufacture_date"`
	WarrantyPeriodMonths  int             `json:"warranty_period_months"`
	AssignedDistributorID *uuid.UUID      `json:"assigned_distributor_id,omitempty"`
	ImageMediaID          *uuid.UUID      `json:"image_media_id,omitempty"`
	Sold                  bool            `json:"sold"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

// ProductListResult carries one page of products plus the next cursor.
type ProductListResult struct {
	Products   []ProductDTO `json:"products"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

func toDTO(product *models.Product) *ProductDTO {
	return &ProductDTO{
		ID:                    product.ID,
		Name:                  product.Name,
		SerialNumber:          product.SerialNumber,
		ModelNumber:           product.ModelNumber,
		PurchasePrice:         product.PurchasePrice,
		ManufactureDate:       product.ManufactureDate,
		WarrantyPeriodMonths:  product.WarrantyPeriodMonths,
		AssignedDistributorID: product.AssignedDistributorID,
		ImageMediaID:          product.ImageMediaID,
		Sold:                  len(product.Sales) > 0,
		CreatedAt:             product.CreatedAt,
		UpdatedAt:             product.UpdatedAt,
	}
}
