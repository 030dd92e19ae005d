package middleware

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMethodOverride(t *testing.T) {
	var method string
	h := MethodOverride(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
	}))

	testCases := []struct {
		name   string
		method string
		form   url.Values
		want   string
	}{
		{name: "put", method: http.MethodPost, form: url.Values{"_method": {"put"}}, want: http.MethodPut},
		{name: "delete", method: http.MethodPost, form: url.Values{"_method": {"DELETE"}}, want: http.MethodDelete},
		{name: "unknown keeps post", method: http.MethodPost, form: url.Values{"_method": {"TRACE"}}, want: http.MethodPost},
		{name: "plain post", method: http.MethodPost, form: url.Values{"longURL": {"x"}}, want: http.MethodPost},
		{name: "get untouched", method: http.MethodGet, want: http.MethodGet},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, "/urls/b1", strings.NewReader(tc.form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			h.ServeHTTP(httptest.NewRecorder(), req)
			assert.Equal(t, tc.want, method)
		})
	}
}

func TestGzipRequestMiddleware(t *testing.T) {
	var body string
	h := GzipRequestMiddleware(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		body = string(b)
	}))

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte("longURL=example.com"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	req := httptest.NewRequest(http.MethodPost, "/urls", &buf)
	req.Header.Set("Content-Encoding", "gzip")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "longURL=example.com", body)

	req = httptest.NewRequest(http.MethodPost, "/urls", strings.NewReader("not gzip"))
	req.Header.Set("Content-Encoding", "gzip")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/urls", strings.NewReader("plain"))
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "plain", body)
}
