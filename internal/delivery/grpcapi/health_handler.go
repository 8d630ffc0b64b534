package grpcapi

import (
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const servicePrefix = "ingestion."

// HealthHandler serves the standard gRPC health protocol. The empty service
// is the process itself; each network is reported as ingestion.<slug>.
type HealthHandler struct {
	server *health.Server
	logger *slog.Logger
}

func NewHealthHandler(logger *slog.Logger) *HealthHandler {
	server := health.NewServer()
	server.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	return &HealthHandler{server: server, logger: logger}
}

func (h *HealthHandler) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.server)
}

// ReportIngestion marks a network SERVING after a successful run and
// NOT_SERVING after a failed one.
func (h *HealthHandler) ReportIngestion(slug string, success bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if success {
		status = healthpb.HealthCheckResponse_SERVING
	}
	h.server.SetServingStatus(ServiceName(slug), status)
	h.logger.Debug("ingestion health updated", "service", ServiceName(slug), "status", status.String())
}

// Shutdown flips every service to NOT_SERVING ahead of stopping the server.
func (h *HealthHandler) Shutdown() {
	h.server.Shutdown()
}

func ServiceName(slug string) string {
	return servicePrefix + slug
}
