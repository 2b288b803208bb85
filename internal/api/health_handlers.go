package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns server health status with component checks",
		Tags:        []string{"Health"},
	}, s.handleHealthCheck)
}

// ComponentHealth describes the health of a single component.
type ComponentHealth struct {
	Status  string `json:"status" doc:"Component status: healthy, degraded, or unhealthy"`
	Latency string `json:"latency,omitempty" doc:"Response time for this component"`
	Message string `json:"message,omitempty" doc:"Additional status information"`
}

// HealthResponse contains health check data in API responses.
type HealthResponse struct {
	Status     string                     `json:"status" doc:"Overall status: healthy, degraded, or unhealthy"`
	Components map[string]ComponentHealth `json:"components" doc:"Individual component statuses"`
}

// HealthOutput wraps the health response for Huma.
type HealthOutput struct {
	Body HealthResponse
}

func (s *Server) handleHealthCheck(ctx context.Context, _ *struct{}) (*HealthOutput, error) {
	components := map[string]ComponentHealth{
		"settings": s.checkSettings(ctx),
		"journal":  s.checkJournal(ctx),
		"events":   s.checkEvents(),
	}

	overall := "healthy"
	for _, c := range components {
		switch c.Status {
		case "unhealthy":
			overall = "unhealthy"
		case "degraded":
			if overall == "healthy" {
				overall = "degraded"
			}
		}
	}

	return &HealthOutput{
		Body: HealthResponse{
			Status:     overall,
			Components: components,
		},
	}, nil
}

// checkSettings reports where settings live. A missing file is healthy: defaults apply.
func (s *Server) checkSettings(ctx context.Context) ComponentHealth {
	if s.services.Queries == nil {
		return ComponentHealth{Status: "unhealthy", Message: "settings not configured"}
	}

	start := time.Now()
	status := s.services.Queries.Status(ctx)
	latency := time.Since(start)

	msg := status.SettingsPath
	if !status.FileExists {
		msg += " (not yet written, defaults in effect)"
	}
	return ComponentHealth{
		Status:  "healthy",
		Latency: latency.String(),
		Message: msg,
	}
}

// checkJournal verifies the history database is readable.
func (s *Server) checkJournal(ctx context.Context) ComponentHealth {
	if s.services.Journal == nil {
		return ComponentHealth{
			Status:  "degraded",
			Message: "history disabled",
		}
	}

	start := time.Now()
	n, err := s.services.Journal.Count(ctx)
	latency := time.Since(start)

	if err != nil {
		return ComponentHealth{
			Status:  "unhealthy",
			Latency: latency.String(),
			Message: "history read failed",
		}
	}
	return ComponentHealth{
		Status:  "healthy",
		Latency: latency.String(),
		Message: strconv.Itoa(n) + " entries",
	}
}

// checkEvents reports the number of stream subscribers.
func (s *Server) checkEvents() ComponentHealth {
	if s.services.Events == nil {
		return ComponentHealth{
			Status:  "degraded",
			Message: "event stream not configured",
		}
	}
	return ComponentHealth{
		Status:  "healthy",
		Message: strconv.Itoa(s.services.Events.ClientCount()) + " clients connected",
	}
}
