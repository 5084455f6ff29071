package httpapi

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kreuzberg-go/kreuzberg"
	"github.com/kreuzberg-go/kreuzberg/internal/config"
)

func newTestServer(t *testing.T) (*Server, *kreuzberg.Core) {
	t.Helper()
	core, err := kreuzberg.New()
	require.NoError(t, err)
	cfg := config.Default()
	return NewServer(core, &cfg.Server), core
}

func multipartBody(t *testing.T, filename, contentType string, content []byte, extraFields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreatePart(map[string][]string{
		"Content-Disposition": {`form-data; name="file"; filename="` + filename + `"`},
		"Content-Type":        {contentType},
	})
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)

	for k, v := range extraFields {
		require.NoError(t, writer.WriteField(k, v))
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestHandleExtractReturnsContentForPlainText(t *testing.T) {
	s, _ := newTestServer(t)
	body, contentType := multipartBody(t, "hello.txt", "text/plain", []byte("Hello, Kreuzberg!"), nil)

	req := httptest.NewRequest(http.MethodPost, "/extract", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Hello, Kreuzberg!")
}

func TestHandleExtractRejectsMissingFilePart(t *testing.T) {
	s, _ := newTestServer(t)
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("config", "{}"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/extract", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()

	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleExtractRejectsUnknownConfigField(t *testing.T) {
	s, _ := newTestServer(t)
	body, contentType := multipartBody(t, "hello.txt", "text/plain", []byte("hi"), map[string]string{
		"config": `{"not_a_real_field": true}`,
	})

	req := httptest.NewRequest(http.MethodPost, "/extract", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "not_a_real_field")
}

func TestHandleHealthReportsOK(t *testing.T) {
	s, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"ok"`)
}

func TestHandleInfoReportsName(t *testing.T) {
	s, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/info", nil)
	rec := httptest.NewRecorder()

	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "kreuzberg")
}

func TestHandleCacheStatsAndClear(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/cache/stats", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodDelete, "/cache/clear", nil)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCORSReflectsAllowedOrigin(t *testing.T) {
	core, err := kreuzberg.New()
	require.NoError(t, err)
	cfg := &config.ServerConfig{MaxRequestBodyBytes: 1 << 20, MaxMultipartFieldBytes: 1 << 20, CORSOrigins: []string{"https://allowed.example"}}
	s := NewServer(core, cfg)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://not-allowed.example")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://allowed.example")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, "https://allowed.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSPermissiveWhenOriginsUnset(t *testing.T) {
	s, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://anywhere.example")
	rec := httptest.NewRecorder()

	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, "https://anywhere.example", rec.Header().Get("Access-Control-Allow-Origin"))
}
