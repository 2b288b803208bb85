// Package tools exposes settings commands and queries as named operations for
// programmatic agents.
//
// Each tool has a JSON Schema for its parameters and may be marked
// destructive. Invocation never returns a Go error: failures come back as a
// Result with success=false, the failure code, and remediation suggestions.
package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"reflect"
	"slices"

	"github.com/danielgtaylor/huma/v2"

	apperrors "github.com/qualcodeapp/prefs-core/internal/errors"
	"github.com/qualcodeapp/prefs-core/internal/service"
	"github.com/qualcodeapp/prefs-core/internal/validation"
)

// Result is the outcome of a tool invocation.
type Result struct {
	Success     bool     `json:"success"`
	Data        any      `json:"data,omitempty"`
	Error       string   `json:"error,omitempty"`
	ErrorCode   string   `json:"error_code,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// Descriptor describes a tool to callers.
type Descriptor struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Destructive bool         `json:"destructive"`
	Parameters  *huma.Schema `json:"parameters"`
}

type tool struct {
	Descriptor
	invoke func(ctx context.Context, params json.RawMessage) (any, error)
}

// Registry holds the available tools in registration order.
type Registry struct {
	tools     map[string]*tool
	order     []string
	schemas   huma.Registry
	validator *validation.Validator
	logger    *slog.Logger

	settings *service.SettingsService
	queries  *service.SettingsQueries
}

// NewRegistry creates a registry with every settings tool registered.
func NewRegistry(settings *service.SettingsService, queries *service.SettingsQueries, v *validation.Validator, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if v == nil {
		v = validation.New()
	}

	r := &Registry{
		tools:     make(map[string]*tool),
		schemas:   huma.NewMapRegistry("#/components/schemas/", huma.DefaultSchemaNamer),
		validator: v,
		logger:    logger,
		settings:  settings,
		queries:   queries,
	}
	r.registerAll()
	return r
}

// List returns every tool descriptor in registration order.
func (r *Registry) List() []Descriptor {
	out := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name].Descriptor)
	}
	return out
}

// Invoke runs the named tool with raw JSON parameters.
func (r *Registry) Invoke(ctx context.Context, name string, params json.RawMessage) Result {
	t, ok := r.tools[name]
	if !ok {
		return Result{
			Success:     false,
			Error:       "Unknown tool '" + name + "'",
			ErrorCode:   string(apperrors.CodeNotFound),
			Suggestions: r.names(),
		}
	}

	data, err := t.invoke(ctx, params)
	if err != nil {
		code := apperrors.CodeOf(err)
		r.logger.Debug("tool invocation failed",
			slog.String("tool", name),
			slog.String("code", string(code)),
			slog.String("error", err.Error()))
		return Result{
			Success:     false,
			Error:       apperrors.MessageOf(err),
			ErrorCode:   string(code),
			Suggestions: suggestionsFor(err),
		}
	}

	r.logger.Debug("tool invoked", slog.String("tool", name))
	return Result{Success: true, Data: data}
}

func (r *Registry) names() []string {
	return slices.Clone(r.order)
}

// register adds a tool whose parameters decode into P.
func register[P any](r *Registry, name, description string, destructive bool, fn func(context.Context, P) (any, error)) {
	schema := huma.SchemaFromType(r.schemas, reflect.TypeFor[P]())

	r.tools[name] = &tool{
		Descriptor: Descriptor{
			Name:        name,
			Description: description,
			Destructive: destructive,
			Parameters:  schema,
		},
		invoke: func(ctx context.Context, raw json.RawMessage) (any, error) {
			var params P
			if err := decodeParams(raw, &params); err != nil {
				return nil, err
			}
			if err := r.validator.Validate(params); err != nil {
				return nil, err
			}
			return fn(ctx, params)
		},
	}
	r.order = append(r.order, name)
}

// decodeParams rejects unknown fields so misspelled parameters surface as
// errors instead of silently taking defaults.
func decodeParams(raw json.RawMessage, dst any) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		raw = json.RawMessage("{}")
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperrors.Validation("invalid parameters: " + err.Error())
	}
	return nil
}
