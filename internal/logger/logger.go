// Logger пакет для инициализация логгера zap
package logger

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// ServerLogger структура логера
type ServerLogger struct {
	Logger *zap.Logger
}

// CreateLogger функция создания с возможностью регулирования уровней
func CreateLogger(level string) (*ServerLogger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &ServerLogger{Logger: l}, nil
}

// NewNop логгер-заглушка для тестов
func NewNop() *ServerLogger {
	return &ServerLogger{Logger: zap.NewNop()}
}

// LoggingMW middleware журнала запросов. Ответы 5xx пишутся уровнем Error.
func (l ServerLogger) LoggingMW() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, req *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, req)

			status := ww.Status()
			if status == 0 {
				// хендлер ничего не записал, net/http ответит 200
				status = http.StatusOK
			}
			fields := []zap.Field{
				zap.String("request_id", middleware.GetReqID(req.Context())),
				zap.String("uri", req.RequestURI),
				zap.String("method", req.Method),
				zap.Int("status", status),
				zap.Duration("duration", time.Since(start)),
				zap.Int("size", ww.BytesWritten()),
			}
			if status >= http.StatusInternalServerError {
				l.Logger.Error("request", fields...)
				return
			}
			l.Logger.Info("request", fields...)
		}
		return http.HandlerFunc(fn)
	}
}
