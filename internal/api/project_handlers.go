package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/qualcodeapp/prefs-core/internal/domain"
)

func (s *Server) registerProjectRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listRecentProjects",
		Method:      http.MethodGet,
		Path:        "/api/v1/recent-projects",
		Summary:     "List recent projects",
		Description: "Returns recently opened projects, most recent first",
		Tags:        []string{"Projects"},
	}, s.handleListRecentProjects)

	huma.Register(s.api, huma.Operation{
		OperationID: "openProject",
		Method:      http.MethodPost,
		Path:        "/api/v1/recent-projects",
		Summary:     "Record opened project",
		Description: "Moves the project to the front of the recent list, evicting the oldest beyond ten",
		Tags:        []string{"Projects"},
	}, s.handleOpenProject)

	huma.Register(s.api, huma.Operation{
		OperationID: "forgetProject",
		Method:      http.MethodDelete,
		Path:        "/api/v1/recent-projects",
		Summary:     "Forget project",
		Description: "Removes one project from the recent list",
		Tags:        []string{"Projects"},
	}, s.handleForgetProject)

	huma.Register(s.api, huma.Operation{
		OperationID:   "clearRecentProjects",
		Method:        http.MethodDelete,
		Path:          "/api/v1/recent-projects/all",
		Summary:       "Clear recent projects",
		Tags:          []string{"Projects"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleClearRecentProjects)
}

// === DTOs ===

// RecentProjectsOutput contains the recent projects list.
type RecentProjectsOutput struct {
	Body []domain.RecentProject
}

// OpenProjectInput contains parameters for recording an opened project.
type OpenProjectInput struct {
	Body struct {
		Path string `json:"path" minLength:"1" doc:"Absolute path of the project file"`
		Name string `json:"name,omitempty" doc:"Display name; defaults to the file name"`
	}
}

// ForgetProjectInput identifies the project to remove.
type ForgetProjectInput struct {
	Path string `query:"path" required:"true" doc:"Path of the project to remove"`
}

// === Handlers ===

func (s *Server) handleListRecentProjects(ctx context.Context, _ *struct{}) (*RecentProjectsOutput, error) {
	return &RecentProjectsOutput{Body: s.services.Queries.GetRecentProjects(ctx)}, nil
}

func (s *Server) handleOpenProject(ctx context.Context, input *OpenProjectInput) (*RecentProjectsOutput, error) {
	projects, err := s.services.Settings.OpenProject(ctx, input.Body.Path, input.Body.Name)
	if err != nil {
		return nil, toHTTPError(err)
	}
	return &RecentProjectsOutput{Body: projects}, nil
}

func (s *Server) handleForgetProject(ctx context.Context, input *ForgetProjectInput) (*RecentProjectsOutput, error) {
	projects, err := s.services.Settings.ForgetProject(ctx, input.Path)
	if err != nil {
		return nil, toHTTPError(err)
	}
	return &RecentProjectsOutput{Body: projects}, nil
}

func (s *Server) handleClearRecentProjects(ctx context.Context, _ *struct{}) (*struct{}, error) {
	if err := s.services.Settings.ClearRecentProjects(ctx); err != nil {
		return nil, toHTTPError(err)
	}
	return nil, nil
}
