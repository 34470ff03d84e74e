package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/coverline/coverline-backend/pkg/db/models"
	pkgerrors "github.com/coverline/coverline-backend/pkg/errors"
	"github.com/coverline/coverline-backend/pkg/pagination"
	"github.com/coverline/coverline-backend/pkg/types"
)

// Repository exposes sale persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a sales repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts an immutable sale row.
func (r *Repository) Create(ctx context.Context, sale *models.Sale) (*models.Sale, error) {
	if sale.ID == uuid.Nil {
		sale.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(sale).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert sale")
	}
	return sale, nil
}

type saleRecord struct {
	ID                uuid.UUID
	ProductID         uuid.UUID
	ProductName       string
	SerialNumber      string
	DistributorID     *uuid.UUID
	CustomerName      string
	CustomerEmail     *string
	CustomerPhone     *string
	SaleDate          types.Date
	WarrantyStartDate types.Date
	WarrantyEndDate   types.Date
	CreatedAt         time.Time
}

// List returns one keyset page of sales joined with product identity, newest
// first.
func (r *Repository) List(ctx context.Context, query ListSalesInput) (*SaleListResult, error) {
	pageSize := pagination.NormalizeLimit(query.Pagination.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(query.Pagination.Limit)
	if limitWithBuffer <= pageSize {
		limitWithBuffer = pageSize + 1
	}

	cursor, err := pagination.ParseCursor(query.Pagination.Cursor)
	if err != nil {
		return nil, err
	}

	qb := r.db.WithContext(ctx).
		Table("sales s").
		Select("s.id, s.product_id, p.name AS product_name, p.serial_number, s.distributor_id, s.customer_name, s.customer_email, s.customer_phone, s.sale_date, s.warranty_start_date, s.warranty_end_date, s.created_at").
		Joins("JOIN products p ON p.id = s.product_id")

	if query.CompanyID != nil {
		qb = qb.Where("p.company_id = ?", *query.CompanyID)
	}
	if query.DistributorID != nil {
		qb = qb.Where("s.distributor_id = ?", *query.DistributorID)
	}

	if cursor != nil {
		qb = qb.Where("(s.created_at < ?) OR (s.created_at = ? AND s.id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var records []saleRecord
	if err := qb.Order("s.created_at DESC").Order("s.id DESC").Limit(limitWithBuffer).Scan(&records).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list sales")
	}

	resultRows := records
	nextCursor := ""
	if len(records) > pageSize {
		resultRows = records[:pageSize]
		last := resultRows[len(resultRows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	dtos := make([]SaleDTO, 0, len(resultRows))
	for _, record := range resultRows {
		dtos = append(dtos, SaleDTO{
			ID:                record.ID,
			ProductID:         record.ProductID,
			ProductName:       record.ProductName,
			SerialNumber:      record.SerialNumber,
			DistributorID:     record.DistributorID,
			CustomerName:      record.CustomerName,
			CustomerEmail:     record.CustomerEmail,
			CustomerPhone:     record.CustomerPhone,
			SaleDate:          record.SaleDate,
			WarrantyStartDate: record.WarrantyStartDate,
			WarrantyEndDate:   record.WarrantyEndDate,
			CreatedAt:         record.CreatedAt,
		})
	}

	return &SaleListResult{Sales: dtos, NextCursor: nextCursor}, nil
}
