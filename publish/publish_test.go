package publish

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPublisher(url string) *WebhookPublisher {
	p := NewWebhookPublisher(url, nil)
	p.InitialInterval = time.Millisecond
	return p
}

func writeImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trace.png")
	require.NoError(t, os.WriteFile(path, []byte("not really a png"), 0644))
	return path
}

func TestWebhookPublisher_SendsForm(t *testing.T) {
	var (
		status string
		media  []byte
		name   string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		status = r.FormValue("status")
		f, hdr, err := r.FormFile("media")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer f.Close()
		name = hdr.Filename
		media, _ = io.ReadAll(f)
	}))
	defer srv.Close()

	err := testPublisher(srv.URL).Publish(context.Background(), "hello", writeImage(t))

	require.NoError(t, err)
	assert.Equal(t, "hello", status)
	assert.Equal(t, "trace.png", name)
	assert.Equal(t, "not really a png", string(media))
}

func TestWebhookPublisher_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	err := testPublisher(srv.URL).Publish(context.Background(), "retry", "")

	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestWebhookPublisher_GivesUp(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := testPublisher(srv.URL)
	p.MaxTries = 2
	err := p.Publish(context.Background(), "fail", "")

	assert.Error(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestWebhookPublisher_ClientErrorIsPermanent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	err := testPublisher(srv.URL).Publish(context.Background(), "denied", "")

	assert.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestWebhookPublisher_MissingImage(t *testing.T) {
	err := testPublisher("http://127.0.0.1:1").Publish(context.Background(), "x", filepath.Join(t.TempDir(), "nope.png"))
	assert.Error(t, err)
}

func TestLogPublisher(t *testing.T) {
	assert.NoError(t, NewLogPublisher(nil).Publish(context.Background(), "msg", "img.png"))
}
