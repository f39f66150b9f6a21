package vault

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"adminpanel/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStorage struct{ *MemoryStorage }

func (failingStorage) Put(context.Context, string, io.Reader, int64, string) error {
	return errors.New("The resource already exists")
}

func newTestService(t *testing.T) (*Service, *MemoryStorage, *MemoryMeta, *LocalFeed) {
	t.Helper()
	feed := NewLocalFeed()
	st := NewMemoryStorage("https://cdn.test/community-files")
	meta := NewMemoryMeta(feed)
	return NewService(st, meta), st, meta, feed
}

func TestStorageKey(t *testing.T) {
	ts := time.UnixMilli(1700000000123)
	assert.Equal(t, "1700000000123-photo.jpg", StorageKey(ts, "photo.jpg"))
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "0.0 KB", FormatSize(0))
	assert.Equal(t, "1.0 KB", FormatSize(1024))
	assert.Equal(t, "12.3 KB", FormatSize(12595))
	assert.Equal(t, "2048.0 KB", FormatSize(2<<20))
}

func TestPreviewKind(t *testing.T) {
	cases := map[string]Kind{
		"photo.jpg":   KindImage,
		"PHOTO.JPEG":  KindImage,
		"a.b.png":     KindImage,
		"anim.gif":    KindImage,
		"pic.webp":    KindImage,
		"paper.pdf":   KindDocument,
		"clip.mp4":    KindVideo,
		"clip.webm":   KindVideo,
		"song.mp3":    KindAudio,
		"voice.wav":   KindAudio,
		"notes.txt":   KindGeneric,
		"README":      KindGeneric,
		"archive.zip": KindGeneric,
	}
	for name, want := range cases {
		assert.Equal(t, want, PreviewKind(name), name)
	}
}

func TestService_Upload(t *testing.T) {
	ctx := context.Background()
	svc, st, meta, _ := newTestService(t)
	svc.now = func() time.Time { return time.UnixMilli(1700000000000) }

	body := []byte("jpeg bytes")
	m, err := svc.Upload(ctx, "photo.jpg", bytes.NewReader(body), int64(len(body)), "image/jpeg", "")
	require.NoError(t, err)

	assert.Equal(t, "1700000000000-photo.jpg", m.ObjectKey)
	assert.Equal(t, "https://cdn.test/community-files/1700000000000-photo.jpg", m.URL)
	assert.Equal(t, "photo.jpg", m.Name)
	assert.Equal(t, DefaultUploader, m.UploadedBy)
	assert.Equal(t, "0.0 KB", m.Size)
	assert.Equal(t, []string{"1700000000000-photo.jpg"}, st.Keys())

	rows, err := meta.List(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, m.URL, rows[0].URL)

	rc, err := svc.Open(ctx, rows[0])
	require.NoError(t, err)
	got, _ := io.ReadAll(rc)
	assert.Equal(t, body, got)
}

func TestService_UploadStorageFailureInsertsNothing(t *testing.T) {
	ctx := context.Background()
	feed := NewLocalFeed()
	meta := NewMemoryMeta(feed)
	svc := NewService(failingStorage{NewMemoryStorage("")}, meta)

	_, err := svc.Upload(ctx, "doc.pdf", strings.NewReader("x"), 1, "", "bob")
	var se *StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "The resource already exists", err.Error(), "message is passed through verbatim")

	rows, _ := meta.List(ctx)
	assert.Empty(t, rows)
}

func TestService_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	_, _, meta, _ := newTestService(t)
	base := time.Now()
	require.NoError(t, meta.Insert(ctx, &models.FileMeta{Name: "old", CreatedAt: base.Add(-time.Hour)}))
	require.NoError(t, meta.Insert(ctx, &models.FileMeta{Name: "new", CreatedAt: base}))
	require.NoError(t, meta.Insert(ctx, &models.FileMeta{Name: "mid", CreatedAt: base.Add(-time.Minute)}))

	rows, err := NewService(nil, meta).ListFiles(ctx)
	require.NoError(t, err)
	names := []string{rows[0].Name, rows[1].Name, rows[2].Name}
	assert.Equal(t, []string{"new", "mid", "old"}, names)
}

func TestCopyLink(t *testing.T) {
	var buf bytes.Buffer
	msg, err := CopyLink(WriterClipboard{W: &buf}, "https://cdn.test/x")
	require.NoError(t, err)
	assert.Equal(t, "Link copied!", msg)
	assert.Equal(t, "https://cdn.test/x\n", buf.String())
}

func TestWidget_RefetchesOnChange(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc, _, _, feed := newTestService(t)

	refreshed := make(chan int, 8)
	w := NewWidget(svc, feed, func(files []models.FileMeta) { refreshed <- len(files) })

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	assert.Equal(t, 0, <-refreshed)
	require.Eventually(t, func() bool { return feed.Listeners() == 1 }, time.Second, 5*time.Millisecond)

	_, err := w.Upload(ctx, "song.mp3", strings.NewReader("abc"), 3, "audio/mpeg", "")
	require.NoError(t, err)

	select {
	case n := <-refreshed:
		assert.Equal(t, 1, n)
	case <-time.After(time.Second):
		t.Fatal("widget did not refresh after insert")
	}
	assert.Len(t, w.Files(), 1)

	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, 0, feed.Listeners(), "subscription released with Run")
}
