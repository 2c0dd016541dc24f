package grpc

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/Mrinal-Agrawal21/veera-app/pkg/tlsutil"
)

// ServiceName is the name reported through the gRPC health service.
const ServiceName = "veera"

// Config configures the gRPC server.
type Config struct {
	Address     string
	TLSCertFile string
	TLSKeyFile  string
	Reflection  bool
}

// Server exposes the standard gRPC health service so that orchestrators can
// probe the risk service over gRPC.
type Server struct {
	address    string
	grpcServer *grpc.Server
	health     *health.Server
	logger     *slog.Logger
}

// NewServer creates a new gRPC server. The service starts NOT_SERVING until
// a readiness probe says otherwise.
func NewServer(cfg Config, logger *slog.Logger) (*Server, error) {
	var serverOpts []grpc.ServerOption

	if cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
		creds, err := tlsutil.ServerCredentials(cfg.TLSCertFile, cfg.TLSKeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load gRPC TLS credentials: %w", err)
		}
		serverOpts = append(serverOpts, grpc.Creds(creds))
		logger.Info("gRPC TLS enabled", "cert", cfg.TLSCertFile)
	} else {
		logger.Info("gRPC TLS not configured, running without TLS")
	}

	grpcServer := grpc.NewServer(serverOpts...)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	if cfg.Reflection {
		reflection.Register(grpcServer)
	}

	return &Server{
		address:    cfg.Address,
		grpcServer: grpcServer,
		health:     healthServer,
		logger:     logger,
	}, nil
}

// SetReady sets the serving status of the service and the server as a whole.
func (s *Server) SetReady(ready bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if ready {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(ServiceName, status)
	s.health.SetServingStatus("", status)
}

// WatchReadiness evaluates probe every interval and mirrors the result into
// the health service until ctx is done.
func (s *Server) WatchReadiness(ctx context.Context, interval time.Duration, probe func(context.Context) bool) {
	last := probe(ctx)
	s.SetReady(last)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ready := probe(ctx)
			if ready != last {
				s.logger.Info("gRPC readiness changed", "ready", ready)
			}
			s.SetReady(ready)
			last = ready
		}
	}
}

// Start begins listening and serving gRPC requests.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.address, err)
	}
	return s.Serve(listener)
}

// Serve serves gRPC requests on an existing listener.
func (s *Server) Serve(listener net.Listener) error {
	s.logger.Info("gRPC server starting",
		slog.String("address", listener.Addr().String()),
	)
	return s.grpcServer.Serve(listener)
}

// Stop gracefully stops the gRPC server.
func (s *Server) Stop() {
	s.logger.Info("gRPC server shutting down")
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}
