package distributors

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/coverline/coverline-backend/pkg/db/models"
	pkgerrors "github.com/coverline/coverline-backend/pkg/errors"
	"github.com/coverline/coverline-backend/pkg/pagination"
)

// Repository exposes distributor persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a distributors repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a distributor row. The id must match the auth user id it
// belongs to.
func (r *Repository) Create(ctx context.Context, distributor *models.Distributor) (*models.Distributor, error) {
	if err := r.db.WithContext(ctx).Create(distributor).Error; err != nil {
		return nil, err
	}
	return distributor, nil
}

// FindByID loads a distributor by id.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Distributor, error) {
	var distributor models.Distributor
	if err := r.db.WithContext(ctx).First(&distributor, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &distributor, nil
}

// Update saves a mutated distributor row.
func (r *Repository) Update(ctx context.Context, distributor *models.Distributor) (*models.Distributor, error) {
	if err := r.db.WithContext(ctx).Save(distributor).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update distributor")
	}
	return distributor, nil
}

// List returns one keyset page of the company's distributors, newest first.
func (r *Repository) List(ctx context.Context, query ListDistributorsInput) (*DistributorListResult, error) {
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
		Model(&models.Distributor{}).
		Where("company_id = ?", query.CompanyID)

	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Distributor
	if err := qb.Order("created_at DESC").Order("id DESC").Limit(limitWithBuffer).Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list distributors")
	}

	resultRows := rows
	nextCursor := ""
	if len(rows) > pageSize {
		resultRows = rows[:pageSize]
		last := resultRows[len(resultRows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	dtos := make([]DistributorDTO, 0, len(resultRows))
	for i := range resultRows {
		dtos = append(dtos, *toDTO(&resultRows[i]))
	}

	return &DistributorListResult{Distributors: dtos, NextCursor: nextCursor}, nil
}
