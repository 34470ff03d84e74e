package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/coverline/coverline-backend/pkg/types"
)

// Product is a registered unit in the warranty ledger. Rows are never
// deleted; sold units keep their product record forever.
type Product struct {
	ID                    uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CompanyID             uuid.UUID       `gorm:"column:company_id;type:uuid;not null"`
	Name                  string          `gorm:"column:name;not null"`
	SerialNumber          string          `gorm:"column:serial_number;not null;uniqueIndex"`
	ModelNumber           string          `gorm:"column:model_number;not null"`
	PurchasePrice         decimal.Decimal `gorm:"column:purchase_price;type:numeric(12,2);not null"`
	ManufactureDate       types.Date      `gorm:"column:manufacture_date;type:date;not null"`
	WarrantyPeriodMonths  int             `gorm:"column:warranty_period_months;not null"`
	AssignedDistributorID *uuid.UUID      `gorm:"column:assigned_distributor_id;type:uuid"`
	ImageMediaID          *uuid.UUID      `gorm:"column:image_media_id;type:uuid"`
	Sales                 []Sale          `gorm:"foreignKey:ProductID"`
	CreatedAt             time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
