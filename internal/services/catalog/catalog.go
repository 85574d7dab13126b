package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/signageops/signage-service/internal/config"
	"github.com/signageops/signage-service/internal/store"
	"github.com/signageops/signage-service/internal/types"
)

var (
	ErrUnsupportedType = errors.New("file extension is not allowed")
	ErrTooLarge        = errors.New("file exceeds the size limit for its type")
)

// extTypes is the upload allow-list, keyed by lower-case extension.
var extTypes = map[string]types.MediaType{
	".jpg":  types.MediaTypeImage,
	".jpeg": types.MediaTypeImage,
	".png":  types.MediaTypeImage,
	".gif":  types.MediaTypeImage,
	".bmp":  types.MediaTypeImage,
	".webp": types.MediaTypeImage,
	".mp4":  types.MediaTypeVideo,
	".avi":  types.MediaTypeVideo,
	".mov":  types.MediaTypeVideo,
	".mkv":  types.MediaTypeVideo,
	".webm": types.MediaTypeVideo,
	".pdf":  types.MediaTypePDF,
}

// BlobStore is the slice of the blob collaborator the catalog needs.
type BlobStore interface {
	Upload(ctx context.Context, objectName string, data []byte) error
	Remove(ctx context.Context, objectName string) error
}

// Snapshotter persists state after a mutation.
type Snapshotter interface {
	Save()
}

// Service is the media catalog: metadata for every uploaded file, with the
// bytes delegated to the blob store.
type Service struct {
	store         *store.Store
	blobs         BlobStore
	snapshots     Snapshotter
	maxImageBytes int64
	maxVideoBytes int64
}

func NewService(st *store.Store, blobs BlobStore, snapshots Snapshotter, cfg config.Media) *Service {
	return &Service{
		store:         st,
		blobs:         blobs,
		snapshots:     snapshots,
		maxImageBytes: cfg.MaxImageBytes,
		maxVideoBytes: cfg.MaxVideoBytes,
	}
}

// SaveMedia validates and stores an upload. On success it assigns a fresh
// unique id, generates a collision-free storage name, persists the bytes via
// the blob store and records the metadata.
func (s *Service) SaveMedia(ctx context.Context, data []byte, originalName, description string) (types.MediaItem, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	mediaType, ok := extTypes[ext]
	if !ok {
		return types.MediaItem{}, fmt.Errorf("%w: %s", ErrUnsupportedType, ext)
	}

	limit := s.maxVideoBytes
	if mediaType == types.MediaTypeImage {
		limit = s.maxImageBytes
	}
	if int64(len(data)) > limit {
		return types.MediaItem{}, fmt.Errorf("%w: %d bytes", ErrTooLarge, len(data))
	}

	item := types.MediaItem{
		ID:           s.store.NextMediaID(),
		StoredName:   uuid.New().String() + ext,
		OriginalName: originalName,
		Type:         mediaType,
		SizeBytes:    int64(len(data)),
		UploadedAt:   time.Now(),
		Description:  description,
	}

	if err := s.blobs.Upload(ctx, item.StoredName, data); err != nil {
		return types.MediaItem{}, fmt.Errorf("failed to store media bytes: %w", err)
	}

	s.store.PutMedia(item)
	s.snapshots.Save()

	slog.Info("Media saved",
		slog.Int64("media_id", item.ID),
		slog.String("stored_name", item.StoredName),
		slog.String("type", string(item.Type)))

	return item, nil
}

func (s *Service) List() []types.MediaItem {
	return s.store.ListMedia()
}

func (s *Service) Get(id int64) (types.MediaItem, bool) {
	return s.store.GetMedia(id)
}

// Delete removes the metadata entry, strips the media id from every playlist
// and deletes the underlying blob. Returns false when the id is unknown.
func (s *Service) Delete(ctx context.Context, id int64) bool {
	item, ok := s.store.DeleteMediaCascade(id)
	if !ok {
		return false
	}

	if err := s.blobs.Remove(ctx, item.StoredName); err != nil {
		slog.Error("Failed to delete media blob",
			slog.String("stored_name", item.StoredName),
			slog.String("error", err.Error()))
	}

	s.snapshots.Save()

	slog.Info("Media deleted", slog.Int64("media_id", id))
	return true
}
