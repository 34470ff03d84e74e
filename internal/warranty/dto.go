package warranty

import (
	"github.com/google/uuid"

	"github.com/coverline/coverline-backend/pkg/enums"
	"github.com/coverline/coverline-backend/pkg/types"
)

// CheckResult is the public warranty lookup payload. Coverage is absent when
// the product has never been sold, which is distinct from an unknown
// identifier.
type CheckResult struct {
	Product  ProductInfo   `json:"product"`
	Coverage *CoverageInfo `json:"coverage,omitempty"`
}

// ProductInfo identifies the matched product.
type ProductInfo struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	SerialNumber string    `json:"serial_number"`
	ModelNumber  string    `json:"model_number"`
	ImageURL     *string   `json:"image_url,omitempty"`
}

// CoverageInfo carries the persisted warranty window and the status computed
// against the lookup clock.
type CoverageInfo struct {
	CustomerName      string               `json:"customer_name"`
	SaleDate          types.Date           `json:"sale_date"`
	WarrantyStartDate types.Date           `json:"warranty_start_date"`
	WarrantyEndDate   types.Date           `json:"warranty_end_date"`
	Status            enums.WarrantyStatus `json:"status"`
}
