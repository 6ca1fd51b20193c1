package observability

import (
	"fmt"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// GRPCHealth serves the standard grpc.health.v1 service for orchestrators
// that probe over gRPC instead of HTTP
type GRPCHealth struct {
	server   *grpc.Server
	health   *health.Server
	listener net.Listener
}

// NewGRPCHealth binds the health service to the given port (":0" picks a free one)
func NewGRPCHealth(port string) (*GRPCHealth, error) {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%s", port))
	if err != nil {
		return nil, fmt.Errorf("failed to listen on gRPC port %s: %w", port, err)
	}

	hs := health.NewServer()
	srv := grpc.NewServer()
	healthpb.RegisterHealthServer(srv, hs)

	// Not serving until the HTTP side is up
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)

	return &GRPCHealth{server: srv, health: hs, listener: lis}, nil
}

// Addr returns the bound address
func (g *GRPCHealth) Addr() string {
	return g.listener.Addr().String()
}

// Serve blocks serving gRPC requests
func (g *GRPCHealth) Serve() error {
	return g.server.Serve(g.listener)
}

// SetServing flips the overall serving status
func (g *GRPCHealth) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	g.health.SetServingStatus("", status)
}

// Stop marks the service as not serving and drains connections
func (g *GRPCHealth) Stop() {
	g.health.Shutdown()
	g.server.GracefulStop()
}
