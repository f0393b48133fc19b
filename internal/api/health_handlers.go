package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/rhedu/adstudio-server/internal/source"
)

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns server health status with one check per config source",
		Tags:        []string{"Health"},
	}, s.handleHealthCheck)
}

// ComponentHealth describes the health of a single component.
type ComponentHealth struct {
	Status  string `json:"status" doc:"Component status: healthy or unhealthy"`
	Latency string `json:"latency,omitempty" doc:"Time taken to load the source"`
	Message string `json:"message,omitempty" doc:"Additional status information"`
}

// HealthResponse contains health check data in API responses.
type HealthResponse struct {
	Status     string                     `json:"status" doc:"Overall status: healthy or degraded"`
	Components map[string]ComponentHealth `json:"components" doc:"Individual config source statuses"`
}

// HealthOutput wraps the health response for Huma.
type HealthOutput struct {
	Body HealthResponse
}

// handleHealthCheck loads every config source. Any failing source marks the
// service degraded; the endpoint itself still answers 200.
func (s *Server) handleHealthCheck(ctx context.Context, _ *struct{}) (*HealthOutput, error) {
	components := make(map[string]ComponentHealth)
	overall := "healthy"

	for _, src := range source.All() {
		start := time.Now()
		_, err := s.resolver.Loader().Load(ctx, src.Name)
		latency := time.Since(start)

		if err != nil {
			components[string(src.Name)] = ComponentHealth{
				Status:  "unhealthy",
				Latency: latency.String(),
				Message: toAPIError(err).Message,
			}
			overall = "degraded"
			continue
		}

		components[string(src.Name)] = ComponentHealth{
			Status:  "healthy",
			Latency: latency.String(),
		}
	}

	return &HealthOutput{
		Body: HealthResponse{
			Status:     overall,
			Components: components,
		},
	}, nil
}
