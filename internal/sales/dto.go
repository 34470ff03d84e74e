package sales

import (
	"time"

	"github.com/google/uuid"

	"github.com/coverline/coverline-backend/pkg/pagination"
	"github.com/coverline/coverline-backend/pkg/types"
)

// CreateSaleInput holds the validated payload to register a sale.
type CreateSaleInput struct {
	ProductID     uuid.UUID
	CustomerName  string
	CustomerEmail *string
	CustomerPhone *string
	SaleDate      types.Date
}

// ListSalesInput scopes a paginated listing.
type ListSalesInput struct {
	CompanyID     *uuid.UUID
	DistributorID *uuid.UUID
	Pagination    pagination.Params
}

// SaleDTO is the API projection of a sale row joined with product identity.
type SaleDTO struct {
	ID                uuid.UUID  `json:"id"`
	ProductID         uuid.UUID  `json:"product_id"`
	ProductName       string     `json:"product_name"`
	SerialNumber      string     `json:"serial_number"`
	DistributorID     *uuid.UUID `json:"distributor_id,omitempty"`
	CustomerName      string     `json:"customer_name"`
	CustomerEmail     *string    `json:"customer_email,omitempty"`
	CustomerPhone     *string    `json:"customer_phone,omitempty"`
	SaleDate          types.Date `json:"sale_date"`
	WarrantyStartDate types.Date `json:"warranty_start_date"`
	WarrantyEndDate   types.Date `json:"warranty_end_date"`
	CreatedAt         time.Time  `json:"created_at"`
}

// SaleListResult carries one page of sales plus the next cursor.
type SaleListResult struct {
	Sales      []SaleDTO `json:"sales"`
	NextCursor string    `json:"next_cursor,omitempty"`
}
