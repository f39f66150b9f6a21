package vault

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"adminpanel/models"

	"github.com/fsnotify/fsnotify"
)

// DropFolder imports files placed in a directory into the vault. A file is
// uploaded once it has not changed for Settle, then moved into
// ProcessedDir so a later run does not upload it again.
type DropFolder struct {
	Dir          string
	ProcessedDir string
	UploadedBy   string
	Settle       time.Duration
	Logf         func(format string, args ...any)

	svc *Service
}

func NewDropFolder(svc *Service, dir string) *DropFolder {
	return &DropFolder{
		Dir:          dir,
		ProcessedDir: filepath.Join(dir, "processed"),
		Settle:       300 * time.Millisecond,
		Logf:         func(string, ...any) {},
		svc:          svc,
	}
}

// ImportExisting uploads every regular file already in Dir.
func (d *DropFolder) ImportExisting(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(d.Dir)
	if err != nil {
		return 0, fmt.Errorf("read dir: %w", err)
	}
	n := 0
	for _, e := range entries {
		if e.IsDir() || skipName(e.Name()) {
			continue
		}
		if err := d.importFile(ctx, e.Name()); err != nil {
			d.Logf("import %s: %v", e.Name(), err)
			continue
		}
		n++
	}
	return n, nil
}

// Watch blocks until ctx is done, importing files as they settle.
func (d *DropFolder) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(d.Dir); err != nil {
		return err
	}
	d.Logf("watching %s", d.Dir)

	pending := map[string]time.Time{}
	tick := d.Settle / 2
	if tick <= 0 {
		tick = 50 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			name := filepath.Base(ev.Name)
			if skipName(name) {
				continue
			}
			pending[name] = time.Now()
		case <-ticker.C:
			now := time.Now()
			for name, t := range pending {
				if now.Sub(t) < d.Settle {
					continue
				}
				delete(pending, name)
				if err := d.importFile(ctx, name); err != nil {
					d.Logf("import %s: %v", name, err)
				}
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			d.Logf("watch error: %v", err)
		}
	}
}

func (d *DropFolder) importFile(ctx context.Context, name string) error {
	path := filepath.Join(d.Dir, name)
	m, err := d.upload(ctx, path, name)
	if errors.Is(err, fs.ErrNotExist) {
		// already moved by an earlier event
		return nil
	}
	if err != nil || m == nil {
		return err
	}
	if err := d.moveToProcessed(path, name); err != nil {
		return fmt.Errorf("uploaded as %s but not moved: %w", m.ObjectKey, err)
	}
	d.Logf("imported %s as %s", name, m.ObjectKey)
	return nil
}

// upload returns nil metadata for anything that is not a regular file.
func (d *DropFolder) upload(ctx context.Context, path, name string) (*models.FileMeta, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if !st.Mode().IsRegular() {
		return nil, nil
	}
	ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
	return d.svc.Upload(ctx, name, f, st.Size(), ct, d.UploadedBy)
}

// moveToProcessed takes an uploaded file out of the watched directory. An
// existing file of the same name in ProcessedDir is replaced.
func (d *DropFolder) moveToProcessed(path, name string) error {
	if err := os.MkdirAll(d.ProcessedDir, 0o755); err != nil {
		return err
	}
	return os.Rename(path, filepath.Join(d.ProcessedDir, name))
}

// skipName ignores hidden files and common editor/partial-download temporaries.
func skipName(name string) bool {
	return strings.HasPrefix(name, ".") ||
		strings.HasSuffix(name, "~") ||
		strings.HasSuffix(name, ".part") ||
		strings.HasSuffix(name, ".tmp")
}
