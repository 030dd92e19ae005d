// Package grpcsrv gRPC сервер проверки здоровья для оркестратора.
package grpcsrv

import (
	"context"
	"net"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/SversusN/tinyapp/internal/grpcsrv/interceptors"
	"github.com/SversusN/tinyapp/internal/storage/storage"
)

// ServiceName имя сервиса в протоколе grpc.health.v1
const ServiceName = "tinyapp.Directory"

// Server gRPC сервер со статусом, зависящим от доступности хранилища
type Server struct {
	srv     *grpc.Server
	health  *health.Server
	storage storage.Storage
	log     *zap.Logger
}

// NewGRPCServer создает сервер, статус до первой проверки NOT_SERVING
func NewGRPCServer(st storage.Storage, log *zap.Logger) *Server {
	s := &Server{
		srv:     grpc.NewServer(grpc.ChainUnaryInterceptor(interceptors.NewLoggerInterceptor(log))),
		health:  health.NewServer(),
		storage: st,
		log:     log,
	}
	healthpb.RegisterHealthServer(s.srv, s.health)
	s.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
	return s
}

// CheckStorage пингует хранилище и выставляет статус
func (s *Server) CheckStorage(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	if pinger, ok := s.storage.(storage.Pinger); ok {
		if err := pinger.Ping(ctx); err != nil {
			s.log.Warn("storage ping failed", zap.Error(err))
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	s.setStatus(status)
	return status
}

func (s *Server) setStatus(status healthpb.HealthCheckResponse_ServingStatus) {
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

// Serve блокирующий запуск
func (s *Server) Serve(lis net.Listener) error {
	return s.srv.Serve(lis)
}

// GracefulStop сначала сообщает NOT_SERVING, потом дожидается активных вызовов
func (s *Server) GracefulStop() {
	s.health.Shutdown()
	s.srv.GracefulStop()
}
