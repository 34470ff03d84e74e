package warranty

import (
	"context"

	"gorm.io/gorm"

	"github.com/coverline/coverline-backend/pkg/db/models"
	"github.com/google/uuid"
)

// Repository resolves products for public warranty lookups.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByIdentifier returns every product whose serial number or model number
// equals the identifier, with its sale preloaded. Callers decide how to treat
// zero or multiple matches.
func (r *Repository) FindByIdentifier(ctx context.Context, identifier string) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Preload("Sales", func(db *gorm.DB) *gorm.DB {
			return db.Order("sale_date DESC").Order("created_at DESC")
		}).
		Where("serial_number = ? OR model_number = ?", identifier, identifier).
		Order("created_at DESC").
		Find(&rows).
		Error
	return rows, err
}

// FindMediaByID loads a media row for image URL signing.
func (r *Repository) FindMediaByID(ctx context.Context, id uuid.UUID) (*models.Media, error) {
	var media models.Media
	if err := r.db.WithContext(ctx).First(&media, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &media, nil
}
