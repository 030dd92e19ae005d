package interceptors

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// NewLoggerInterceptor логирует входящие запросы.
func NewLoggerInterceptor(l *zap.Logger) grpc.UnaryServerInterceptor {
	sl := l.Sugar()
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		duration := time.Since(start)
		st, _ := status.FromError(err)
		sl.Infow(
			"gRPC request",
			"method", info.FullMethod,
			"duration", duration,
			"code", st.Code().String(),
		)
		return resp, err
	}
}
