package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/inkpress/core/internal/models"
	"github.com/inkpress/core/internal/pkg/apperror"
	"github.com/inkpress/core/internal/pkg/pagination"
	"github.com/inkpress/core/internal/pkg/response"
	"gorm.io/gorm"
)

// Service is the media library: records in the database, bytes in the
// blob store. An image block only ever sees the resulting URL.
type Service struct {
	db   *gorm.DB
	blob BlobStore
}

func NewService(db *gorm.DB, blob BlobStore) *Service {
	return &Service{db: db, blob: blob}
}

// List returns the media library, newest first.
func (s *Service) List(q pagination.Query) ([]models.MediaModel, response.Pagination, error) {
	tx := s.db.Model(&models.MediaModel{}).Order("created_at DESC")
	var items []models.MediaModel
	pag, err := pagination.Paginate(tx, q, &items)
	return items, pag, err
}

// Upload stores the file in the blob store and records it.
func (s *Service) Upload(ctx context.Context, uploaderID, filename, contentType string, size int64, body io.Reader) (*models.MediaModel, error) {
	if s.blob == nil {
		return nil, apperror.Validation("storage", "object storage is not configured")
	}

	key := objectKey(filename)
	url, err := s.blob.Upload(ctx, key, body, contentType)
	if err != nil {
		return nil, apperror.Persistence("upload media", err)
	}

	m := models.MediaModel{
		Key:        key,
		URL:        url,
		Filename:   filename,
		MimeType:   contentType,
		Size:       size,
		UploaderID: uploaderID,
	}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		// The object landed but the record did not; drop the object so
		// the library and the bucket stay in sync.
		_ = s.blob.Delete(ctx, key)
		return nil, err
	}
	return &m, nil
}

// Delete removes the object and its record.
func (s *Service) Delete(ctx context.Context, id string) error {
	var m models.MediaModel
	if err := s.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("media", id)
		}
		return err
	}

	if s.blob != nil {
		if err := s.blob.Delete(ctx, m.Key); err != nil {
			return apperror.Persistence("delete media object", err)
		}
	}
	return s.db.WithContext(ctx).Unscoped().Delete(&m).Error
}

// objectKey builds a collision-free storage key that keeps the original
// extension for content-type sniffing on the CDN side.
func objectKey(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("media/%s/%s%s",
		time.Now().UTC().Format("2006/01"), uuid.New().String(), ext)
}
