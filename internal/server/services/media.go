package services

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"mime"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/authkeeper/internal/server/storage"
	"github.com/google/uuid"
)

const (
	MaxFileSize      = 10 << 20
	MaxFilesPerCall  = 5
	MaxMediaPerUser  = 5
	MsgMediaNotFound = "Media not found"

	msgUploadFailed = "Media could not be uploaded"
	msgUpdateFailed = "Media could not be updated"
	msgDeleteFailed = "Media could not be deleted"
)

// AllowedMimeTypes lists the content types accepted for upload.
var AllowedMimeTypes = []string{
	"image/jpeg",
	"image/jpg",
	"image/png",
	"image/gif",
	"image/webp",
	"image/svg+xml",
	"video/mp4",
	"video/webm",
	"audio/mp3",
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/vnd.ms-excel",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"text/plain",
}

// UploadFile is one file of a multipart upload, already read into memory.
type UploadFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

type MediaService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	store       storage.ObjectStore
	log         logging.Logger
}

func NewMediaService(db *sql.DB, rm repomanager.RepositoryManager, store storage.ObjectStore, log logging.Logger) *MediaService {
	return &MediaService{db: db, repomanager: rm, store: store, log: log}
}

// ResourceType classifies a MIME type as image, video or raw.
func ResourceType(mimeType string) string {
	t := strings.ToLower(mimeType)
	switch {
	case strings.HasPrefix(t, "image/"):
		return "image"
	case strings.HasPrefix(t, "video/"):
		return "video"
	default:
		return "raw"
	}
}

// ValidateFiles enforces the per-request count, MIME allowlist and size
// limits.
func ValidateFiles(files []UploadFile) error {
	if len(files) == 0 {
		return common.BadRequest("No file provided for upload")
	}
	if len(files) > MaxFilesPerCall {
		return common.BadRequest(fmt.Sprintf("Too many files. Maximum allowed is %d per upload.", MaxFilesPerCall))
	}
	for _, f := range files {
		if !slices.Contains(AllowedMimeTypes, strings.ToLower(f.ContentType)) {
			return common.BadRequest(fmt.Sprintf("File type %s is not allowed", f.ContentType))
		}
		if len(f.Data) > MaxFileSize {
			return common.BadRequest("File size exceeds the maximum allowed limit.")
		}
		if len(f.Data) == 0 {
			return common.BadRequest("Empty file provided for upload")
		}
	}
	return nil
}

// Upload stores files for user, enforcing the per-user item limit.
func (s *MediaService) Upload(ctx context.Context, user *models.User, files []UploadFile) ([]*models.Media, error) {
	if err := ValidateFiles(files); err != nil {
		return nil, err
	}

	repo := s.repomanager.Media(s.db)
	count, err := repo.CountByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if count+len(files) > MaxMediaPerUser {
		return nil, common.UnprocessableEntity(
			fmt.Sprintf("Media upload limit reached. Maximum allowed is %d items.", MaxMediaPerUser))
	}

	result := make([]*models.Media, 0, len(files))
	for _, f := range files {
		m, err := s.uploadOne(ctx, user, f)
		if err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, nil
}

func (s *MediaService) uploadOne(ctx context.Context, user *models.User, f UploadFile) (*models.Media, error) {
	ext := fileExtension(f.Filename, f.ContentType)
	key := fmt.Sprintf("media/%s/%s%s", user.PublicID, uuid.NewString(), ext)
	resource := ResourceType(f.ContentType)

	if err := s.store.Put(ctx, key, f.ContentType, bytes.NewReader(f.Data), int64(len(f.Data))); err != nil {
		return nil, common.UnprocessableEntity(msgUploadFailed).Wrap(err)
	}

	secureURL, err := s.store.PresignGet(ctx, key)
	if err != nil {
		s.discard(ctx, key)
		return nil, common.UnprocessableEntity(msgUploadFailed).Wrap(err)
	}

	m := &models.Media{
		Filename:      f.Filename,
		MimeType:      f.ContentType,
		FileExtension: strings.TrimPrefix(ext, "."),
		SecureURL:     secureURL,
		FileSize:      int64(len(f.Data)),
		StorageKey:    key,
		MediaType:     resource,
		UploadedBy:    user.ID,
		StorageMetadata: map[string]any{
			"key":               key,
			"resource_type":     resource,
			"original_filename": f.Filename,
			"bytes":             len(f.Data),
		},
	}
	if resource == "image" {
		if cfg, _, err := image.DecodeConfig(bytes.NewReader(f.Data)); err == nil {
			w, h := cfg.Width, cfg.Height
			m.Width, m.Height = &w, &h
		}
	}

	created, err := s.repomanager.Media(s.db).Create(ctx, m)
	if err != nil {
		s.discard(ctx, key)
		if errors.Is(err, common.ErrorNoRowReturned) {
			return nil, common.UnprocessableEntity(msgUploadFailed)
		}
		return nil, err
	}

	s.log.Info(ctx, "media uploaded", "user_id", user.ID, "key", key, "size", created.FileSize)
	return created, nil
}

// List returns the user's media with refreshed secure URLs.
func (s *MediaService) List(ctx context.Context, userID int64) ([]*models.Media, error) {
	items, err := s.repomanager.Media(s.db).ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, m := range items {
		s.refreshURL(ctx, m)
	}
	return items, nil
}

func (s *MediaService) Get(ctx context.Context, userID int64, publicID string) (*models.Media, error) {
	m, err := s.repomanager.Media(s.db).GetByPublicID(ctx, userID, publicID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NotFound(MsgMediaNotFound)
		}
		return nil, err
	}
	s.refreshURL(ctx, m)
	return m, nil
}

// Update changes alt text and display name. Nil fields are left as they
// are.
func (s *MediaService) Update(ctx context.Context, userID int64, publicID string, altText, name *string) (*models.Media, error) {
	m, err := s.repomanager.Media(s.db).Update(ctx, userID, publicID, altText, name)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.UnprocessableEntity(msgUpdateFailed)
		}
		return nil, err
	}
	s.refreshURL(ctx, m)
	return m, nil
}

// Delete removes the row and then the stored object.
func (s *MediaService) Delete(ctx context.Context, userID int64, publicID string) (*models.Media, error) {
	repo := s.repomanager.Media(s.db)

	m, err := repo.GetByPublicID(ctx, userID, publicID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.UnprocessableEntity(msgDeleteFailed)
		}
		return nil, err
	}
	if err := repo.Delete(ctx, userID, publicID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.UnprocessableEntity(msgDeleteFailed)
		}
		return nil, err
	}
	s.discard(ctx, m.StorageKey)
	return m, nil
}

func (s *MediaService) refreshURL(ctx context.Context, m *models.Media) {
	u, err := s.store.PresignGet(ctx, m.StorageKey)
	if err != nil {
		s.log.Warn(ctx, "presign failed, keeping stored url", "key", m.StorageKey, "error", err)
		return
	}
	m.SecureURL = u
}

func (s *MediaService) discard(ctx context.Context, key string) {
	if err := s.store.Delete(ctx, key); err != nil {
		s.log.Warn(ctx, "orphaned media object", "key", key, "error", err)
	}
}

func fileExtension(filename, contentType string) string {
	if ext := filepath.Ext(filename); ext != "" {
		return strings.ToLower(ext)
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}
