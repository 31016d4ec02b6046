package s3_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiltepin/InsuranceAIPOCs/internal/config"
	"github.com/xiltepin/InsuranceAIPOCs/internal/port"
	s3storage "github.com/xiltepin/InsuranceAIPOCs/internal/storage/s3"
)

// fakeS3 answers the two calls the client makes against a path-style endpoint.
type fakeS3 struct {
	mu      sync.Mutex
	bucket  string
	objects map[string][]byte
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	parts := strings.SplitN(strings.TrimPrefix(r.URL.Path, "/"), "/", 2)
	if parts[0] != f.bucket {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	switch {
	case r.Method == http.MethodHead && len(parts) == 1:
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodPut && len(parts) == 2:
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.objects[parts[1]] = body
		f.mu.Unlock()
		w.Header().Set("ETag", `"abc123"`)
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newTestClient(t *testing.T) (port.ObjectStorage, *fakeS3) {
	t.Helper()
	fake := &fakeS3{bucket: "policy-ocr-uploads", objects: map[string][]byte{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client, err := s3storage.NewS3Client(context.Background(), &config.S3Config{
		Region:    "us-east-1",
		Endpoint:  srv.URL,
		AccessKey: "test",
		SecretKey: "test",
	})
	require.NoError(t, err)
	return client, fake
}

func TestS3Client_Ping(t *testing.T) {
	client, _ := newTestClient(t)

	assert.NoError(t, client.Ping(context.Background(), "policy-ocr-uploads"))
	assert.Error(t, client.Ping(context.Background(), "missing-bucket"))
}

func TestS3Client_Upload(t *testing.T) {
	client, fake := newTestClient(t)

	out, err := client.Upload(context.Background(), port.UploadInput{
		Bucket:      "policy-ocr-uploads",
		Key:         "uploads/2024/03/01/a.png",
		Body:        strings.NewReader("png bytes"),
		ContentType: "image/png",
		Size:        9,
	})
	require.NoError(t, err)

	assert.Equal(t, `"abc123"`, out.ETag)
	fake.mu.Lock()
	defer fake.mu.Unlock()
	require.Contains(t, fake.objects, "uploads/2024/03/01/a.png")
	assert.Contains(t, string(fake.objects["uploads/2024/03/01/a.png"]), "png bytes")
}
