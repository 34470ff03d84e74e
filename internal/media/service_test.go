package media

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/coverline/coverline-backend/pkg/config"
	"github.com/coverline/coverline-backend/pkg/db/models"
	"github.com/coverline/coverline-backend/pkg/enums"
	pkgerrors "github.com/coverline/coverline-backend/pkg/errors"
)

func openSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	mediaDDL := `
CREATE TABLE IF NOT EXISTS media (
  id TEXT PRIMARY KEY,
  owner_user_id TEXT NOT NULL,
  kind TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  gcs_key TEXT NOT NULL UNIQUE,
  file_name TEXT NOT NULL,
  mime_type TEXT NOT NULL,
  size_bytes INTEGER NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, conn.Exec(mediaDDL).Error)

	t.Cleanup(func() {
		conn.Exec("DELETE FROM media")
	})

	return conn
}

type fakeSigner struct {
	signErr error
}

func (f *fakeSigner) SignedURL(bucket, object, contentType string, expires time.Duration) (string, error) {
	if f.signErr != nil {
		return "", f.signErr
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s?sig=put", bucket, object), nil
}

func (f *fakeSigner) SignedReadURL(bucket, object string, expires time.Duration) (string, error) {
	if f.signErr != nil {
		return "", f.signErr
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s?sig=get", bucket, object), nil
}

type fakeDeleter struct {
	mu      sync.Mutex
	deleted []string
	err     error
}

func (f *fakeDeleter) DeleteObject(ctx context.Context, bucket, object string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, object)
	return nil
}

func newTestService(t *testing.T, conn *gorm.DB, deleter *fakeDeleter) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:    NewRepository(conn),
		Signer:  &fakeSigner{},
		Deleter: deleter,
		GCSConfig: config.GCSConfig{
			BucketName:        "coverline-test",
			UploadURLExpiry:   15 * time.Minute,
			DownloadURLExpiry: time.Hour,
		},
		Media: config.MediaConfig{MaxUploadMB: 20},
	})
	require.NoError(t, err)
	return svc
}

func TestCreateUploadIssuesPendingRecordAndSignedURL(t *testing.T) {
	conn := openSQLiteDB(t)
	svc := newTestService(t, conn, nil)
	ownerID := uuid.New()

	upload, err := svc.CreateUpload(context.Background(), ownerID, CreateUploadInput{
		FileName:  "front.jpg",
		MimeType:  "image/jpeg",
		SizeBytes: 1024,
		Kind:      enums.MediaKindProductImage,
	})
	require.NoError(t, err)
	require.Equal(t, enums.MediaStatusPending, upload.Media.Status)
	require.Contains(t, upload.UploadURL, "sig=put")
	require.EqualValues(t, 15*60, upload.ExpiresIn)

	var stored models.Media
	require.NoError(t, conn.First(&stored, "id = ?", upload.Media.ID).Error)
	require.Equal(t, ownerID, stored.OwnerUserID)
	require.Contains(t, stored.GCSKey, "media/"+ownerID.String()+"/")
	require.Contains(t, upload.UploadURL, stored.GCSKey)
}

func TestCreateUploadValidation(t *testing.T) {
	conn := openSQLiteDB(t)
	svc := newTestService(t, conn, nil)
	ownerID := uuid.New()

	cases := []struct {
		name  string
		input CreateUploadInput
	}{
		{
			name:  "blank file name",
			input: CreateUploadInput{FileName: " ", MimeType: "image/png", SizeBytes: 10, Kind: enums.MediaKindProductImage},
		},
		{
			name:  "unsupported content type",
			input: CreateUploadInput{FileName: "doc.pdf", MimeType: "application/pdf", SizeBytes: 10, Kind: enums.MediaKindProductImage},
		},
		{
			name:  "zero size",
			input: CreateUploadInput{FileName: "a.png", MimeType: "image/png", SizeBytes: 0, Kind: enums.MediaKindProductImage},
		},
		{
			name:  "over size cap",
			input: CreateUploadInput{FileName: "a.png", MimeType: "image/png", SizeBytes: 21 * 1024 * 1024, Kind: enums.MediaKindProductImage},
		},
		{
			name:  "unknown kind",
			input: CreateUploadInput{FileName: "a.png", MimeType: "image/png", SizeBytes: 10, Kind: enums.MediaKind("banner")},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateUpload(context.Background(), ownerID, tc.input)
			typed := pkgerrors.As(err)
			require.NotNil(t, typed)
			require.Equal(t, pkgerrors.CodeValidation, typed.Code())
		})
	}
}

func TestConfirmUploadIsIdempotent(t *testing.T) {
	conn := openSQLiteDB(t)
	svc := newTestService(t, conn, nil)
	ownerID := uuid.New()

	upload, err := svc.CreateUpload(context.Background(), ownerID, CreateUploadInput{
		FileName:  "front.png",
		MimeType:  "image/png",
		SizeBytes: 1024,
		Kind:      enums.MediaKindProductImage,
	})
	require.NoError(t, err)

	confirmed, err := svc.ConfirmUpload(context.Background(), ownerID, upload.Media.ID)
	require.NoError(t, err)
	require.Equal(t, enums.MediaStatusReady, confirmed.Status)

	again, err := svc.ConfirmUpload(context.Background(), ownerID, upload.Media.ID)
	require.NoError(t, err)
	require.Equal(t, enums.MediaStatusReady, again.Status)
}

func TestConfirmUploadHidesForeignMedia(t *testing.T) {
	conn := openSQLiteDB(t)
	svc := newTestService(t, conn, nil)

	upload, err := svc.CreateUpload(context.Background(), uuid.New(), CreateUploadInput{
		FileName:  "front.png",
		MimeType:  "image/png",
		SizeBytes: 1024,
		Kind:      enums.MediaKindProductImage,
	})
	require.NoError(t, err)

	_, err = svc.ConfirmUpload(context.Background(), uuid.New(), upload.Media.ID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestPresignDownloadRequiresReadyStatus(t *testing.T) {
	conn := openSQLiteDB(t)
	svc := newTestService(t, conn, nil)
	ownerID := uuid.New()

	upload, err := svc.CreateUpload(context.Background(), ownerID, CreateUploadInput{
		FileName:  "front.webp",
		MimeType:  "image/webp",
		SizeBytes: 1024,
		Kind:      enums.MediaKindProductImage,
	})
	require.NoError(t, err)

	_, err = svc.PresignDownload(context.Background(), ownerID, upload.Media.ID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code(), "pending upload has no readable object")

	_, err = svc.ConfirmUpload(context.Background(), ownerID, upload.Media.ID)
	require.NoError(t, err)

	download, err := svc.PresignDownload(context.Background(), ownerID, upload.Media.ID)
	require.NoError(t, err)
	require.Contains(t, download.DownloadURL, "sig=get")
	require.EqualValues(t, 3600, download.ExpiresIn)
}

func TestDeleteTombstonesAndRemovesObject(t *testing.T) {
	conn := openSQLiteDB(t)
	deleter := &fakeDeleter{}
	svc := newTestService(t, conn, deleter)
	ownerID := uuid.New()

	upload, err := svc.CreateUpload(context.Background(), ownerID, CreateUploadInput{
		FileName:  "front.jpg",
		MimeType:  "image/jpeg",
		SizeBytes: 1024,
		Kind:      enums.MediaKindProductImage,
	})
	require.NoError(t, err)
	_, err = svc.ConfirmUpload(context.Background(), ownerID, upload.Media.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), ownerID, upload.Media.ID))

	var stored models.Media
	require.NoError(t, conn.First(&stored, "id = ?", upload.Media.ID).Error)
	require.Equal(t, enums.MediaStatusDeleted, stored.Status)
	require.Len(t, deleter.deleted, 1)
	require.Equal(t, stored.GCSKey, deleter.deleted[0])

	require.NoError(t, svc.Delete(context.Background(), ownerID, upload.Media.ID), "delete is idempotent")
	require.Len(t, deleter.deleted, 1)

	_, err = svc.ConfirmUpload(context.Background(), ownerID, upload.Media.ID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeConflict, typed.Code(), "deleted media cannot be confirmed")
}
