package media

import (
	"time"

	"github.com/google/uuid"

	"github.com/coverline/coverline-backend/pkg/db/models"
	"github.com/coverline/coverline-backend/pkg/enums"
)

// CreateUploadInput describes the object a client wants to upload.
type CreateUploadInput struct {
	FileName  string
	MimeType  string
	SizeBytes int64
	Kind      enums.MediaKind
}

// MediaDTO is the API projection of a media row. The storage key stays
// internal; clients only ever see signed urls.
type MediaDTO struct {
	ID        uuid.UUID         `json:"id"`
	Kind      enums.MediaKind   `json:"kind"`
	Status    enums.MediaStatus `json:"status"`
	FileName  string            `json:"file_name"`
	MimeType  string            `json:"mime_type"`
	SizeBytes int64             `json:"size_bytes"`
	CreatedAt time.Time         `json:"created_at"`
}

// UploadDTO pairs a pending media record with its one-time upload url.
type UploadDTO struct {
	Media     MediaDTO `json:"media"`
	UploadURL string   `json:"upload_url"`
	ExpiresIn int64    `json:"expires_in"`
}

// DownloadDTO carries a short-lived read url for a finalized object.
type DownloadDTO struct {
	DownloadURL string `json:"download_url"`
	ExpiresIn   int64  `json:"expires_in"`
}

func toDTO(media *models.Media) MediaDTO {
	return MediaDTO{
		ID:        media.ID,
		Kind:      media.Kind,
		Status:    media.Status,
		FileName:  media.FileName,
		MimeType:  media.MimeType,
		SizeBytes: media.SizeBytes,
		CreatedAt: media.CreatedAt,
	}
}
