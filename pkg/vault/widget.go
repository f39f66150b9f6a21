package vault

import (
	"context"
	"io"
	"sync"

	"adminpanel/models"
)

// Widget keeps the file list for one viewer. Any change notification causes a
// full re-fetch; there is no incremental patching.
type Widget struct {
	svc      *Service
	feed     ChangeFeed
	onChange func([]models.FileMeta)

	mu    sync.RWMutex
	files []models.FileMeta
}

// NewWidget builds a widget. onChange, if set, runs after every successful refresh.
func NewWidget(svc *Service, feed ChangeFeed, onChange func([]models.FileMeta)) *Widget {
	return &Widget{svc: svc, feed: feed, onChange: onChange}
}

// Refresh re-fetches the list. On error the previous list is kept.
func (w *Widget) Refresh(ctx context.Context) error {
	files, err := w.svc.ListFiles(ctx)
	if err != nil {
		return err
	}
	w.mu.Lock()
	w.files = files
	w.mu.Unlock()
	if w.onChange != nil {
		w.onChange(w.Files())
	}
	return nil
}

// Files returns a copy of the current list.
func (w *Widget) Files() []models.FileMeta {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]models.FileMeta, len(w.files))
	copy(out, w.files)
	return out
}

// Run loads the list and then follows the change feed until ctx is done.
// The feed subscription ends with Run.
func (w *Widget) Run(ctx context.Context) error {
	_ = w.Refresh(ctx)
	return w.feed.Listen(ctx, func() {
		_ = w.Refresh(ctx)
	})
}

// Upload sends a file through the service. The list updates when the change
// notification for the new row arrives.
func (w *Widget) Upload(ctx context.Context, name string, body io.Reader, size int64, contentType, uploadedBy string) (*models.FileMeta, error) {
	return w.svc.Upload(ctx, name, body, size, contentType, uploadedBy)
}
