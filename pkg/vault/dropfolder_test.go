package vault

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDropFolder_ImportExisting(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden"), []byte("h"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.part"), []byte("p"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o700))

	svc, st, meta, _ := newTestService(t)
	d := NewDropFolder(svc, dir)
	d.UploadedBy = "importer"

	n, err := d.ImportExisting(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.NoFileExists(t, filepath.Join(dir, "a.txt"))
	assert.FileExists(t, filepath.Join(dir, "processed", "a.txt"))

	// a second run over the same directory, as a fresh importer process would do
	n, err = NewDropFolder(svc, dir).ImportExisting(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	n, err = d.ImportExisting(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Len(t, st.Keys(), 1)

	rows, _ := meta.List(ctx)
	require.Len(t, rows, 1)
	assert.Equal(t, "a.txt", rows[0].Name)
	assert.Equal(t, "importer", rows[0].UploadedBy)
}

func TestDropFolder_Watch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	dir := t.TempDir()

	svc, _, meta, _ := newTestService(t)
	d := NewDropFolder(svc, dir)
	d.Settle = 50 * time.Millisecond
	ready := make(chan struct{})
	d.Logf = func(format string, args ...any) {
		if strings.HasPrefix(format, "watching") {
			close(ready)
		}
	}

	done := make(chan error, 1)
	go func() { done <- d.Watch(ctx) }()
	select {
	case <-ready:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not start")
	}

	require.NoError(t, os.WriteFile(filepath.Join(dir, "clip.mp4"), []byte("video"), 0o600))

	require.Eventually(t, func() bool {
		rows, _ := meta.List(context.Background())
		return len(rows) == 1 && rows[0].Name == "clip.mp4"
	}, 3*time.Second, 20*time.Millisecond)
	require.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(dir, "processed", "clip.mp4"))
		return err == nil
	}, 3*time.Second, 20*time.Millisecond)

	// dropping a new file with the same name uploads it again
	require.NoError(t, os.WriteFile(filepath.Join(dir, "clip.mp4"), []byte("video 2"), 0o600))
	require.Eventually(t, func() bool {
		rows, _ := meta.List(context.Background())
		return len(rows) == 2
	}, 3*time.Second, 20*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}
