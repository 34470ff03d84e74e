package media

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/coverline/coverline-backend/pkg/config"
	"github.com/coverline/coverline-backend/pkg/db/models"
	"github.com/coverline/coverline-backend/pkg/enums"
	pkgerrors "github.com/coverline/coverline-backend/pkg/errors"
	"github.com/coverline/coverline-backend/pkg/logger"
)

// Accepted image types for product images. Other kinds keep the same
// allowlist until a use case needs more.
var allowedMimeTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// Service issues signed upload urls and tracks object lifecycle. Objects are
// uploaded by the browser straight to the bucket; the API only ever handles
// metadata.
type Service interface {
	CreateUpload(ctx context.Context, ownerID uuid.UUID, input CreateUploadInput) (*UploadDTO, error)
	ConfirmUpload(ctx context.Context, ownerID, mediaID uuid.UUID) (*MediaDTO, error)
	PresignDownload(ctx context.Context, ownerID, mediaID uuid.UUID) (*DownloadDTO, error)
	Delete(ctx context.Context, ownerID, mediaID uuid.UUID) error
}

type objectSigner interface {
	SignedURL(bucket, object, contentType string, expires time.Duration) (string, error)
	SignedReadURL(bucket, object string, expires time.Duration) (string, error)
}

type objectDeleter interface {
	DeleteObject(ctx context.Context, bucket, object string) error
}

// ServiceParams packages the dependencies for the media flows.
type ServiceParams struct {
	Repo      *Repository
	Signer    objectSigner
	Deleter   objectDeleter
	GCSConfig config.GCSConfig
	Media     config.MediaConfig
	Logger    *logger.Logger
}

type service struct {
	repo    *Repository
	signer  objectSigner
	deleter objectDeleter
	gcsCfg  config.GCSConfig
	cfg     config.MediaConfig
	logg    *logger.Logger
}

// NewService builds a media service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("media repository required")
	}
	if params.Signer == nil {
		return nil, fmt.Errorf("object signer required")
	}
	if params.GCSConfig.BucketName == "" {
		return nil, fmt.Errorf("gcs bucket required")
	}
	return &service{
		repo:    params.Repo,
		signer:  params.Signer,
		deleter: params.Deleter,
		gcsCfg:  params.GCSConfig,
		cfg:     params.Media,
		logg:    params.Logger,
	}, nil
}

// CreateUpload registers a pending media row and returns a signed PUT url.
// The row stays pending until the client confirms the upload finished.
func (s *service) CreateUpload(ctx context.Context, ownerID uuid.UUID, input CreateUploadInput) (*UploadDTO, error) {
	fileName := strings.TrimSpace(input.FileName)
	if fileName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file name is required")
	}
	if !input.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown media kind")
	}
	ext, ok := allowedMimeTypes[input.MimeType]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported content type")
	}
	maxBytes := int64(s.cfg.MaxUploadMB) * 1024 * 1024
	if input.SizeBytes <= 0 || (maxBytes > 0 && input.SizeBytes > maxBytes) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("file size must be between 1 byte and %d MB", s.cfg.MaxUploadMB))
	}

	key := path.Join("media", ownerID.String(), uuid.NewString()+ext)

	created, err := s.repo.Create(ctx, &models.Media{
		OwnerUserID: ownerID,
		Kind:        input.Kind,
		Status:      enums.MediaStatusPending,
		GCSKey:      key,
		FileName:    fileName,
		MimeType:    input.MimeType,
		SizeBytes:   input.SizeBytes,
	})
	if err != nil {
		return nil, err
	}

	uploadURL, err := s.signer.SignedURL(s.gcsCfg.BucketName, key, input.MimeType, s.gcsCfg.UploadURLExpiry)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sign upload url")
	}

	return &UploadDTO{
		Media:     toDTO(created),
		UploadURL: uploadURL,
		ExpiresIn: int64(s.gcsCfg.UploadURLExpiry / time.Second),
	}, nil
}

// ConfirmUpload marks a pending object ready. Confirming twice is a no-op so
// client retries stay safe.
func (s *service) ConfirmUpload(ctx context.Context, ownerID, mediaID uuid.UUID) (*MediaDTO, error) {
	media, err := s.loadOwned(ctx, ownerID, mediaID)
	if err != nil {
		return nil, err
	}

	switch media.Status {
	case enums.MediaStatusReady:
		dto := toDTO(media)
		return &dto, nil
	case enums.MediaStatusPending:
		if err := s.repo.UpdateStatus(ctx, media.ID, enums.MediaStatusReady); err != nil {
			return nil, err
		}
		media.Status = enums.MediaStatusReady
		dto := toDTO(media)
		return &dto, nil
	default:
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "media is no longer confirmable")
	}
}

// PresignDownload returns a short-lived read url for a finalized object.
func (s *service) PresignDownload(ctx context.Context, ownerID, mediaID uuid.UUID) (*DownloadDTO, error) {
	media, err := s.loadOwned(ctx, ownerID, mediaID)
	if err != nil {
		return nil, err
	}
	if media.Status != enums.MediaStatusReady {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "media not found")
	}

	downloadURL, err := s.signer.SignedReadURL(s.gcsCfg.BucketName, media.GCSKey, s.gcsCfg.DownloadURLExpiry)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sign download url")
	}

	return &DownloadDTO{
		DownloadURL: downloadURL,
		ExpiresIn:   int64(s.gcsCfg.DownloadURLExpiry / time.Second),
	}, nil
}

// Delete tombstones the row, then removes the object best effort. A failed
// bucket delete leaves only an orphaned object; the row already reads deleted.
func (s *service) Delete(ctx context.Context, ownerID, mediaID uuid.UUID) error {
	media, err := s.loadOwned(ctx, ownerID, mediaID)
	if err != nil {
		return err
	}
	if media.Status == enums.MediaStatusDeleted {
		return nil
	}

	if err := s.repo.UpdateStatus(ctx, media.ID, enums.MediaStatusDeleted); err != nil {
		return err
	}

	if s.deleter != nil {
		if err := s.deleter.DeleteObject(ctx, s.gcsCfg.BucketName, media.GCSKey); err != nil && s.logg != nil {
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
				"media_id": media.ID.String(),
				"error":    err.Error(),
			}), "media.delete.object_failed")
		}
	}
	return nil
}

func (s *service) loadOwned(ctx context.Context, ownerID, mediaID uuid.UUID) (*models.Media, error) {
	media, err := s.repo.FindByID(ctx, mediaID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "media not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load media")
	}
	if media.OwnerUserID != ownerID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "media not found")
	}
	return media, nil
}
