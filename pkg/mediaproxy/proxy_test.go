package mediaproxy

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jasim8799/api/internal/utils"
)

func TestProxy_ForwardsWithoutPrefix(t *testing.T) {
	var got *http.Request
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		w.Header().Set("Content-Type", "video/mp4")
		_, _ = io.WriteString(w, "frames")
	}))
	defer upstream.Close()

	p, err := New(Config{Name: "video", Prefix: "/proxy/video/", Target: upstream.URL + "/media"}, utils.NewNopLogger())
	require.NoError(t, err)
	assert.Equal(t, "/proxy/video", p.Prefix())

	req := httptest.NewRequest(http.MethodGet, "/proxy/video/v/1.mp4?q=720", nil)
	req.Header.Set("Authorization", "Bearer secret")
	req.Header.Set("x-api-key", "key")
	req.Header.Set("Range", "bytes=0-99")
	rec := httptest.NewRecorder()
	p.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "frames", rec.Body.String())
	assert.Equal(t, "video/mp4", rec.Header().Get("Content-Type"))

	require.NotNil(t, got)
	assert.Equal(t, "/media/v/1.mp4", got.URL.Path)
	assert.Equal(t, "q=720", got.URL.RawQuery)
	assert.Equal(t, upstream.Listener.Addr().String(), got.Host)
	assert.Empty(t, got.Header.Get("Authorization"))
	assert.Empty(t, got.Header.Get("x-api-key"))
	assert.Equal(t, "bytes=0-99", got.Header.Get("Range"))
	assert.NotEmpty(t, got.Header.Get("X-Forwarded-For"))
}

func TestProxy_Gate(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("gated request reached upstream")
	}))
	defer upstream.Close()

	p, err := New(Config{Name: "video", Prefix: "/proxy/video", Target: upstream.URL}, utils.NewNopLogger(),
		WithGate(func(context.Context) error { return errors.New("provider down") }))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	p.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/proxy/video/x", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "Upstream provider is currently unavailable")
}

type failingTransport struct{}

func (failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, errors.New("connection refused")
}

func TestProxy_UpstreamFailure(t *testing.T) {
	p, err := New(Config{Name: "api", Prefix: "/proxy/api", Target: "http://upstream.invalid"}, utils.NewNopLogger(),
		WithTransport(failingTransport{}))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	p.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/proxy/api/users", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestNew_Rejects(t *testing.T) {
	log := utils.NewNopLogger()

	_, err := New(Config{Prefix: "/proxy/api", Target: "upstream.example.com"}, log)
	assert.ErrorIs(t, err, ErrInvalidTarget)

	_, err = New(Config{Prefix: "/proxy/api", Target: "ftp://upstream.example.com"}, log)
	assert.ErrorIs(t, err, ErrInvalidTarget)

	_, err = New(Config{Prefix: "proxy", Target: "https://upstream.example.com"}, log)
	assert.ErrorIs(t, err, ErrInvalidPrefix)
}

func TestStripPrefix(t *testing.T) {
	assert.Equal(t, "/", stripPrefix("/proxy/api", "/proxy/api"))
	assert.Equal(t, "/", stripPrefix("/proxy/api/", "/proxy/api"))
	assert.Equal(t, "/a/b", stripPrefix("/proxy/api/a/b", "/proxy/api"))
}
