package httpapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"userbase.dev/internal/obs"
)

const serviceName = "userbase-api"

// HealthServer answers grpc.health.v1.Health/Check from the same readiness
// probe that backs GET /ready.
type HealthServer struct {
	healthpb.UnimplementedHealthServer

	readiness readinessChecker
}

// NewHealthServer creates the gRPC health service.
func NewHealthServer(r readinessChecker) *HealthServer {
	if r == nil {
		r = ProbeFunc(nil)
	}
	return &HealthServer{readiness: r}
}

// Register attaches the health service to srv.
func (s *HealthServer) Register(srv *grpc.Server) {
	healthpb.RegisterHealthServer(srv, s)
}

// Check reports SERVING while the store answers and NOT_SERVING otherwise.
// Only the overall ("") and userbase-api service names are known.
func (s *HealthServer) Check(ctx context.Context, req *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	switch req.GetService() {
	case "", serviceName:
	default:
		return nil, status.Errorf(codes.NotFound, "unknown service %q", req.GetService())
	}
	if err := s.readiness.Check(ctx); err != nil {
		obs.SetReady(false)
		obs.Logger().WarnContext(ctx, "grpc readiness probe failed", "error", err)
		return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_NOT_SERVING}, nil
	}
	obs.SetReady(true)
	return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING}, nil
}
