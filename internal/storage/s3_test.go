package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/portfolio-backoffice/internal/config"
)

type recordedRequest struct {
	Method      string
	Path        string
	ContentType string
	Body        []byte
}

func fakeS3(t *testing.T) (*httptest.Server, func() []recordedRequest) {
	t.Helper()
	var (
		mu   sync.Mutex
		reqs []recordedRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		reqs = append(reqs, recordedRequest{Method: r.Method, Path: r.URL.Path, ContentType: r.Header.Get("Content-Type"), Body: body})
		mu.Unlock()
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return srv, func() []recordedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]recordedRequest(nil), reqs...)
	}
}

func newTestStore(t *testing.T, endpoint string) *S3Store {
	t.Helper()
	store, err := NewS3Store(context.Background(), config.StorageConfig{
		Bucket:          "media",
		Endpoint:        endpoint,
		Region:          "auto",
		AccessKeyID:     "test-key",
		SecretAccessKey: "test-secret",
	})
	require.NoError(t, err)
	return store
}

func TestNewS3Store_RequiresBucket(t *testing.T) {
	_, err := NewS3Store(context.Background(), config.StorageConfig{Region: "auto"})
	assert.Error(t, err)
}

func TestS3Store_PutAndDelete(t *testing.T) {
	srv, requests := fakeS3(t)
	store := newTestStore(t, srv.URL)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "project/p1/1700000000000_logo.png", []byte("png-bytes"), "image/png"))
	require.NoError(t, store.Delete(ctx, "project/p1/1700000000000_logo.png"))

	got := requests()
	require.Len(t, got, 2)
	assert.Equal(t, http.MethodPut, got[0].Method)
	assert.Equal(t, "/media/project/p1/1700000000000_logo.png", got[0].Path)
	assert.Equal(t, "image/png", got[0].ContentType)
	assert.Contains(t, string(got[0].Body), "png-bytes")
	assert.Equal(t, http.MethodDelete, got[1].Method)
}

func TestS3Store_PutFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	store := newTestStore(t, srv.URL)
	err := store.Put(context.Background(), "a/b/c.png", []byte("x"), "image/png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to upload a/b/c.png")
}

func TestS3Store_PublicURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.StorageConfig
		key  string
		want string
	}{
		{
			name: "explicit public base",
			cfg:  config.StorageConfig{Bucket: "media", Region: "auto", PublicBaseURL: "https://cdn.example.com/"},
			key:  "project/p1/1_a.png",
			want: "https://cdn.example.com/project/p1/1_a.png",
		},
		{
			name: "custom endpoint",
			cfg:  config.StorageConfig{Bucket: "media", Region: "auto", Endpoint: "http://localhost:9000"},
			key:  "blog/x/2_b.pdf",
			want: "http://localhost:9000/media/blog/x/2_b.pdf",
		},
		{
			name: "aws default",
			cfg:  config.StorageConfig{Bucket: "media", Region: "us-east-1"},
			key:  "project/p 1/3_c.png",
			want: "https://media.s3.amazonaws.com/project/p%201/3_c.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewS3Store(context.Background(), tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, store.PublicURL(tt.key))
		})
	}
}
