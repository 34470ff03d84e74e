package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/coverline/coverline-backend/pkg/types"
)

// Sale records the hand-off of a product to an end customer. Rows are
// immutable once written; the warranty window is frozen at sale time.
type Sale struct {
	ID                uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID         uuid.UUID  `gorm:"column:product_id;type:uuid;not null;index"`
	DistributorID     *uuid.UUID `gorm:"column:distributor_id;type:uuid"`
	CustomerName      string     `gorm:"column:customer_name;not null"`
	CustomerEmail     *string    `gorm:"column:customer_email"`
	CustomerPhone     *string    `gorm:"column:customer_phone"`
	SaleDate          types.Date `gorm:"column:sale_date;type:date;not null"`
	WarrantyStartDate types.Date `gorm:"column:warranty_start_date;type:date;not null"`
	WarrantyEndDate   types.Date `gorm:"column:warranty_end_date;type:date;not null"`
	CreatedAt         time.Time  `gorm:"column:created_at;autoCreateTime"`
}
