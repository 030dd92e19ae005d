package middleware

import (
	"compress/gzip"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// GzipRequestMiddleware распаковывает тело запроса со сжатием gzip.
// Сжатие ответов делает chi middleware.Compress.
func GzipRequestMiddleware(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.Contains(r.Header.Get("Content-Encoding"), "gzip") {
				next.ServeHTTP(w, r)
				return
			}
			gzipReader, err := gzip.NewReader(r.Body)
			if err != nil {
				http.Error(w, "Invalid gzip body", http.StatusBadRequest)
				return
			}
			defer func(gzipReader *gzip.Reader) {
				if err := gzipReader.Close(); err != nil {
					log.Warn("close gzip reader", zap.Error(err))
				}
			}(gzipReader)
			r.Body = gzipReader
			r.Header.Del("Content-Encoding")
			r.Header.Del("Content-Length")
			r.ContentLength = -1
			next.ServeHTTP(w, r)
		})
	}
}
