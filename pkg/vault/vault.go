// Package vault is the community file-sharing widget: an object storage
// bucket paired with a metadata table. Uploads go straight to the storage
// platform; the widget refreshes its list whenever the table changes.
package vault

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"adminpanel/models"
)

// DefaultUploader is recorded when the caller gives no name.
const DefaultUploader = "Community User"

// Storage is an object bucket.
type Storage interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// PublicURL returns the URL under which key is served.
	PublicURL(key string) string
}

// MetaStore is the metadata table.
type MetaStore interface {
	// List returns every row, newest first.
	List(ctx context.Context) ([]models.FileMeta, error)
	Insert(ctx context.Context, m *models.FileMeta) error
	Get(ctx context.Context, id uint) (models.FileMeta, error)
}

// StorageError carries the storage platform's message verbatim so it can be
// shown to the user as is.
type StorageError struct {
	Key string
	Err error
}

func (e *StorageError) Error() string { return e.Err.Error() }
func (e *StorageError) Unwrap() error { return e.Err }

// Service performs vault operations.
type Service struct {
	storage Storage
	meta    MetaStore
	now     func() time.Time
}

func NewService(storage Storage, meta MetaStore) *Service {
	return &Service{storage: storage, meta: meta, now: time.Now}
}

// ListFiles returns metadata rows newest first.
func (s *Service) ListFiles(ctx context.Context) ([]models.FileMeta, error) {
	return s.meta.List(ctx)
}

// File returns one metadata row.
func (s *Service) File(ctx context.Context, id uint) (models.FileMeta, error) {
	return s.meta.Get(ctx, id)
}

// Open streams the stored object behind a metadata row.
func (s *Service) Open(ctx context.Context, f models.FileMeta) (io.ReadCloser, error) {
	return s.storage.Get(ctx, f.ObjectKey)
}

// Upload stores body under a timestamped key and records one metadata row.
// When the storage put fails nothing is inserted and a *StorageError is returned.
func (s *Service) Upload(ctx context.Context, name string, body io.Reader, size int64, contentType, uploadedBy string) (*models.FileMeta, error) {
	if name == "" {
		return nil, fmt.Errorf("upload: file name required")
	}
	key := StorageKey(s.now(), name)
	if err := s.storage.Put(ctx, key, body, size, contentType); err != nil {
		return nil, &StorageError{Key: key, Err: err}
	}
	if uploadedBy == "" {
		uploadedBy = DefaultUploader
	}
	m := &models.FileMeta{
		Name:       name,
		URL:        s.storage.PublicURL(key),
		Size:       FormatSize(size),
		UploadedBy: uploadedBy,
		ObjectKey:  key,
	}
	if err := s.meta.Insert(ctx, m); err != nil {
		return nil, fmt.Errorf("record file metadata: %w", err)
	}
	return m, nil
}

// StorageKey is "{epoch-millis}-{filename}". Two uploads of the same name in
// the same millisecond collide.
func StorageKey(t time.Time, name string) string {
	return strconv.FormatInt(t.UnixMilli(), 10) + "-" + name
}

// FormatSize renders bytes as kilobytes with one decimal, e.g. "12.3 KB".
func FormatSize(bytes int64) string {
	return strconv.FormatFloat(float64(bytes)/1024, 'f', 1, 64) + " KB"
}

// Clipboard receives copied text.
type Clipboard interface {
	WriteText(text string) error
}

// WriterClipboard "copies" by printing to a writer, for terminals without a
// clipboard integration.
type WriterClipboard struct{ W io.Writer }

func (c WriterClipboard) WriteText(text string) error {
	_, err := fmt.Fprintln(c.W, text)
	return err
}

// CopyLink puts url on the clipboard and returns the confirmation message.
func CopyLink(clip Clipboard, url string) (string, error) {
	if err := clip.WriteText(url); err != nil {
		return "", err
	}
	return "Link copied!", nil
}
