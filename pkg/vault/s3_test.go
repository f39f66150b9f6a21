package vault

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"testing"

	appconfig "adminpanel/pkg/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 answers the path-style PUT and GET requests the storage issues.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	failPut bool
}

func (f *fakeS3) RoundTrip(req *http.Request) (*http.Response, error) {
	parts := strings.SplitN(strings.TrimPrefix(req.URL.Path, "/"), "/", 2)
	key := ""
	if len(parts) == 2 {
		key = parts[1]
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	switch req.Method {
	case http.MethodPut:
		if f.failPut {
			body := `<?xml version="1.0" encoding="UTF-8"?><Error><Code>AccessDenied</Code><Message>Access Denied</Message></Error>`
			return &http.Response{StatusCode: http.StatusForbidden, Body: io.NopCloser(strings.NewReader(body)),
				Header: http.Header{"Content-Type": {"application/xml"}}}, nil
		}
		b, _ := io.ReadAll(req.Body)
		if dec, ok := decodeSingleChunk(b); ok {
			b = dec
		}
		f.objects[key] = b
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewReader(nil)),
			Header: http.Header{"ETag": {`"etag"`}}}, nil
	case http.MethodGet:
		b, ok := f.objects[key]
		if !ok {
			body := `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>missing</Message></Error>`
			return &http.Response{StatusCode: http.StatusNotFound, Body: io.NopCloser(strings.NewReader(body)),
				Header: http.Header{"Content-Type": {"application/xml"}}}, nil
		}
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewReader(b)),
			Header: http.Header{"Content-Length": {strconv.Itoa(len(b))}}}, nil
	}
	return &http.Response{StatusCode: http.StatusNotImplemented, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{}}, nil
}

// decodeSingleChunk unwraps an aws-chunked body holding one data chunk.
func decodeSingleChunk(b []byte) ([]byte, bool) {
	parts := strings.Split(string(b), "\r\n")
	if len(parts) < 3 {
		return nil, false
	}
	size, err := strconv.ParseInt(strings.SplitN(parts[0], ";", 2)[0], 16, 64)
	if err != nil || int64(len(parts[1])) != size || !strings.HasPrefix(parts[2], "0") {
		return nil, false
	}
	return []byte(parts[1]), true
}

func newFakeS3Storage(t *testing.T, fake *fakeS3) *S3Storage {
	t.Helper()
	cfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion("us-east-1"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("AKIA", "SECRET", "")),
	)
	require.NoError(t, err)
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.HTTPClient = &http.Client{Transport: fake}
		o.UsePathStyle = true
		o.BaseEndpoint = aws.String("https://mock.s3.local")
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
	})
	return newS3Storage(client, "community-files", "https://mock.s3.local/community-files/")
}

func TestS3Storage_PutGet(t *testing.T) {
	ctx := context.Background()
	fake := &fakeS3{objects: map[string][]byte{}}
	st := newFakeS3Storage(t, fake)

	body := []byte("hello vault")
	require.NoError(t, st.Put(ctx, "1-hello.txt", bytes.NewReader(body), int64(len(body)), "text/plain"))
	assert.Equal(t, body, fake.objects["1-hello.txt"])

	rc, err := st.Get(ctx, "1-hello.txt")
	require.NoError(t, err)
	defer rc.Close()
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, body, got)

	_, err = st.Get(ctx, "nope")
	assert.Error(t, err)
}

func TestS3Storage_PutFailureSurfacesThroughService(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{}, failPut: true}
	meta := NewMemoryMeta(nil)
	svc := NewService(newFakeS3Storage(t, fake), meta)

	_, err := svc.Upload(context.Background(), "photo.jpg", strings.NewReader("x"), 1, "image/jpeg", "")
	var se *StorageError
	require.ErrorAs(t, err, &se)
	assert.Contains(t, err.Error(), "Access Denied")

	rows, _ := meta.List(context.Background())
	assert.Empty(t, rows)
}

func TestS3Storage_PublicURL(t *testing.T) {
	st := newS3Storage(nil, "b", "https://cdn.example.com/b/")
	assert.Equal(t, "https://cdn.example.com/b/1-my%20file.pdf", st.PublicURL("1-my file.pdf"))

	assert.Equal(t, "http://minio:9000/b", publicBase(S3Config{Bucket: "b", Endpoint: "http://minio:9000/"}, "us-east-1"))
	assert.Equal(t, "https://b.s3.eu-west-1.amazonaws.com", publicBase(S3Config{Bucket: "b"}, "eu-west-1"))
	assert.Equal(t, "https://files.example.com", publicBase(S3Config{Bucket: "b", PublicBaseURL: "https://files.example.com"}, "x"))
}

func TestNewS3Storage_RequiresBucket(t *testing.T) {
	_, err := NewS3Storage(context.Background(), S3Config{})
	assert.Error(t, err)
}

func TestS3ConfigFrom(t *testing.T) {
	c := &appconfig.Config{}
	c.LoadDefaults()
	c.S3Endpoint = "http://minio:9000"
	got := S3ConfigFrom(c)
	assert.Equal(t, "community-files", got.Bucket)
	assert.Equal(t, "us-east-1", got.Region)
	assert.Equal(t, "http://minio:9000", got.Endpoint)
}
