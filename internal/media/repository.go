package media

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/coverline/coverline-backend/pkg/db/models"
	"github.com/coverline/coverline-backend/pkg/enums"
	pkgerrors "github.com/coverline/coverline-backend/pkg/errors"
)

// Repository exposes media persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a media repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new media row in pending state.
func (r *Repository) Create(ctx context.Context, media *models.Media) (*models.Media, error) {
	if media.ID == uuid.Nil {
		media.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(media).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert media")
	}
	return media, nil
}

// FindByID loads a media row. Callers translate gorm.ErrRecordNotFound.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Media, error) {
	var media models.Media
	if err := r.db.WithContext(ctx).First(&media, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &media, nil
}

// ListPendingBefore returns pending rows created before the cutoff. The
// cleanup worker uses it to find uploads that were presigned but never
// confirmed.
func (r *Repository) ListPendingBefore(ctx context.Context, cutoff time.Time) ([]models.Media, error) {
	var rows []models.Media
	if err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", enums.MediaStatusPending, cutoff).
		Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list pending media")
	}
	return rows, nil
}

// HardDelete removes a media row outright.
func (r *Repository) HardDelete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Media{}).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete media")
	}
	return nil
}

// UpdateStatus moves a media row through its lifecycle.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.MediaStatus) error {
	if err := r.db.WithContext(ctx).
		Model(&models.Media{}).
		Where("id = ?", id).
		UpdateColumn("status", status).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update media status")
	}
	return nil
}
