package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/qualcodeapp/prefs-core/internal/tools"
)

func (s *Server) registerToolRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listTools",
		Method:      http.MethodGet,
		Path:        "/api/v1/tools",
		Summary:     "List tools",
		Description: "Returns every agent tool with its parameter schema",
		Tags:        []string{"Tools"},
	}, s.handleListTools)

	huma.Register(s.api, huma.Operation{
		OperationID: "invokeTool",
		Method:      http.MethodPost,
		Path:        "/api/v1/tools/{name}",
		Summary:     "Invoke tool",
		Description: "Runs a tool. Tool failures are reported in the result with an error code and suggestions, not as HTTP errors.",
		Tags:        []string{"Tools"},
		Middlewares: huma.Middlewares{s.rateLimitTools},
	}, s.handleInvokeTool)
}

// === DTOs ===

// ListToolsOutput contains the tool catalog.
type ListToolsOutput struct {
	Body []tools.Descriptor
}

// InvokeToolInput carries the tool name and its raw JSON parameters.
type InvokeToolInput struct {
	Name    string `path:"name" doc:"Tool name"`
	RawBody []byte `contentType:"application/json"`
}

// InvokeToolOutput contains the tool result.
type InvokeToolOutput struct {
	Body tools.Result
}

// === Handlers ===

func (s *Server) handleListTools(_ context.Context, _ *struct{}) (*ListToolsOutput, error) {
	return &ListToolsOutput{Body: s.services.Tools.List()}, nil
}

func (s *Server) handleInvokeTool(ctx context.Context, input *InvokeToolInput) (*InvokeToolOutput, error) {
	result := s.services.Tools.Invoke(ctx, input.Name, input.RawBody)
	return &InvokeToolOutput{Body: result}, nil
}
