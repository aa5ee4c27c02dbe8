package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

func TestAssetsETag(t *testing.T) {
	fsys := fstest.MapFS{"css/site.css": {Data: []byte("body{margin:0}")}}
	h := http.StripPrefix("/assets", Assets(fsys))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/assets/css/site.css", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "body{margin:0}", rr.Body.String())
	et := rr.Header().Get("ETag")
	require.NotEmpty(t, et)
	require.Contains(t, rr.Header().Get("Cache-Control"), "max-age=604800")

	req := httptest.NewRequest(http.MethodGet, "/assets/css/site.css", nil)
	req.Header.Set("If-None-Match", et)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusNotModified, rr.Code)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/assets/missing.css", nil))
	require.Equal(t, http.StatusNotFound, rr.Code)
}
