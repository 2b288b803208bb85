package api

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qualcodeapp/prefs-core/internal/bus"
	"github.com/qualcodeapp/prefs-core/internal/domain"
	"github.com/qualcodeapp/prefs-core/internal/journal"
	"github.com/qualcodeapp/prefs-core/internal/ratelimit"
	"github.com/qualcodeapp/prefs-core/internal/service"
	"github.com/qualcodeapp/prefs-core/internal/sse"
	"github.com/qualcodeapp/prefs-core/internal/store"
	"github.com/qualcodeapp/prefs-core/internal/tools"
	"github.com/qualcodeapp/prefs-core/internal/validation"
)

// testEnvelope decodes both success and error envelopes.
type testEnvelope[T any] struct {
	V       int    `json:"v"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details"`
}

type testServer struct {
	*Server
	api     humatest.TestAPI
	store   *store.Store
	manager *sse.Manager
}

func setupTestServer(t *testing.T, opts Options) *testServer {
	t.Helper()

	st := store.New(filepath.Join(t.TempDir(), "settings.json"), nil)
	b := bus.New(nil)

	j, err := journal.OpenInMemory(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })

	manager := sse.NewManager(nil)
	t.Cleanup(func() { _ = manager.Shutdown(context.Background()) })

	b.SubscribeAll(j.Record)
	b.SubscribeAll(manager.HandleEvent)

	settings := service.NewSettingsService(st, b, nil)
	queries := service.NewSettingsQueries(st, j)

	s := NewServer(&Services{
		Settings: settings,
		Queries:  queries,
		Tools:    tools.NewRegistry(settings, queries, validation.New(), nil),
		Events:   manager,
		Journal:  j,
	}, opts, nil)

	return &testServer{
		Server:  s,
		api:     humatest.Wrap(t, s.API()),
		store:   st,
		manager: manager,
	}
}

func decode[T any](t *testing.T, resp *httptest.ResponseRecorder) testEnvelope[T] {
	t.Helper()
	var env testEnvelope[T]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env), resp.Body.String())
	assert.Equal(t, EnvelopeVersion, env.V)
	return env
}

func TestHealthCheck(t *testing.T) {
	ts := setupTestServer(t, Options{})

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	env := decode[HealthResponse](t, resp)
	assert.True(t, env.Success)
	assert.Equal(t, "healthy", env.Data.Status)
	assert.Contains(t, env.Data.Components["settings"].Message, "defaults in effect")
	assert.Equal(t, "healthy", env.Data.Components["journal"].Status)
}

func TestGetSettings_Defaults(t *testing.T) {
	ts := setupTestServer(t, Options{})

	resp := ts.api.Get("/api/v1/settings")
	require.Equal(t, http.StatusOK, resp.Code)

	env := decode[domain.UserSettings](t, resp)
	assert.True(t, env.Data.Equal(domain.DefaultUserSettings()))
}

func TestChangeTheme_PersistsAndReturnsEvent(t *testing.T) {
	ts := setupTestServer(t, Options{})

	resp := ts.api.Put("/api/v1/settings/theme", map[string]any{"name": "dark"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	env := decode[domain.ThemeChanged](t, resp)
	assert.Equal(t, domain.ThemeLight, env.Data.Old.Name)
	assert.Equal(t, domain.ThemeDark, env.Data.New.Name)
	assert.NotEmpty(t, env.Data.CorrelationID)

	resp = ts.api.Get("/api/v1/settings/theme")
	got := decode[domain.ThemePreference](t, resp)
	assert.Equal(t, domain.ThemeDark, got.Data.Name)
}

func TestCommandFailures_MapToCodedErrors(t *testing.T) {
	tests := []struct {
		name string
		path string
		body map[string]any
		code string
	}{
		{"theme", "/api/v1/settings/theme", map[string]any{"name": "purple"}, "INVALID_THEME"},
		{"font size", "/api/v1/settings/font", map[string]any{"family": "Inter", "size": 30}, "INVALID_FONT_SIZE"},
		{"font family", "/api/v1/settings/font", map[string]any{"family": "Comic Sans", "size": 12}, "INVALID_FONT_FAMILY"},
		{"language", "/api/v1/settings/language", map[string]any{"code": "xx"}, "INVALID_LANGUAGE"},
		{"backup interval", "/api/v1/settings/backup", map[string]any{"enabled": true, "interval_minutes": 3, "max_backups": 5}, "INVALID_BACKUP_INTERVAL"},
		{"speaker format", "/api/v1/settings/av-coding", map[string]any{"timestamp_format": "HH:MM:SS", "speaker_format": "Speaker"}, "INVALID_SPEAKER_FORMAT"},
		{"convex url", "/api/v1/settings/cloud-sync", map[string]any{"enabled": true, "convex_url": "ftp://x"}, "INVALID_CONVEX_URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := setupTestServer(t, Options{})

			resp := ts.api.Put(tt.path, tt.body)
			require.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())

			env := decode[any](t, resp)
			assert.False(t, env.Success)
			assert.Equal(t, tt.code, env.Code)
			assert.NotEmpty(t, env.Message)

			// Nothing was written.
			assert.False(t, ts.store.Exists())
		})
	}
}

func TestChangeFont_MissingFieldIsValidation(t *testing.T) {
	ts := setupTestServer(t, Options{})

	resp := ts.api.Put("/api/v1/settings/font", map[string]any{"family": "Inter"})
	require.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	env := decode[any](t, resp)
	assert.Equal(t, "VALIDATION", env.Code)
}

func TestConfigureCloudSync_KeepAndClear(t *testing.T) {
	ts := setupTestServer(t, Options{})

	resp := ts.api.Put("/api/v1/settings/cloud-sync", map[string]any{
		"enabled":           true,
		"convex_url":        "https://quick-fox-123.convex.cloud",
		"convex_project_id": "proj-1",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	// Omitted url keeps the stored one.
	resp = ts.api.Put("/api/v1/settings/cloud-sync", map[string]any{"enabled": false})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	got := decode[domain.BackendConfig](t, ts.api.Get("/api/v1/settings/cloud-sync"))
	require.NotNil(t, got.Data.ConvexURL)
	assert.Equal(t, "https://quick-fox-123.convex.cloud", *got.Data.ConvexURL)
	assert.False(t, got.Data.CloudSyncEnabled)

	// Empty string clears it.
	resp = ts.api.Put("/api/v1/settings/cloud-sync", map[string]any{"enabled": false, "convex_url": ""})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	got = decode[domain.BackendConfig](t, ts.api.Get("/api/v1/settings/cloud-sync"))
	assert.Nil(t, got.Data.ConvexURL)
}

func TestResetSettings(t *testing.T) {
	ts := setupTestServer(t, Options{})

	ts.api.Put("/api/v1/settings/theme", map[string]any{"name": "dark"})
	ts.api.Put("/api/v1/settings/language", map[string]any{"code": "de"})

	resp := ts.api.Post("/api/v1/settings/reset", map[string]any{})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	env := decode[ResetResponse](t, resp)
	kinds := make([]string, 0, len(env.Data.Changes))
	for _, c := range env.Data.Changes {
		kinds = append(kinds, c.Kind)
	}
	assert.ElementsMatch(t, []string{
		string(domain.KindThemeChanged),
		string(domain.KindLanguageChanged),
	}, kinds)

	// Second reset is a no-op.
	env = decode[ResetResponse](t, ts.api.Post("/api/v1/settings/reset", map[string]any{}))
	assert.Empty(t, env.Data.Changes)
}

func TestHistory_NewestFirst(t *testing.T) {
	ts := setupTestServer(t, Options{})

	ts.api.Put("/api/v1/settings/theme", map[string]any{"name": "dark"})
	ts.api.Put("/api/v1/settings/font", map[string]any{"family": "Roboto", "size": 16})

	resp := ts.api.Get("/api/v1/settings/history?limit=1")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	env := decode[[]journal.Entry](t, resp)
	require.Len(t, env.Data, 1)
	assert.Equal(t, domain.KindFontChanged, env.Data[0].Kind)
}

func TestRecentProjects(t *testing.T) {
	ts := setupTestServer(t, Options{})

	for i := range domain.MaxRecentProjects + 2 {
		resp := ts.api.Post("/api/v1/recent-projects", map[string]any{
			"path": "/projects/study-" + string(rune('a'+i)) + ".qda",
		})
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	}

	env := decode[[]domain.RecentProject](t, ts.api.Get("/api/v1/recent-projects"))
	require.Len(t, env.Data, domain.MaxRecentProjects)
	assert.Equal(t, "/projects/study-l.qda", env.Data[0].Path)
	assert.Equal(t, "study-l.qda", env.Data[0].Name)

	resp := ts.api.Delete("/api/v1/recent-projects?path=/projects/study-l.qda")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	env = decode[[]domain.RecentProject](t, resp)
	assert.Len(t, env.Data, domain.MaxRecentProjects-1)

	resp = ts.api.Delete("/api/v1/recent-projects/all")
	assert.Equal(t, http.StatusNoContent, resp.Code)

	env = decode[[]domain.RecentProject](t, ts.api.Get("/api/v1/recent-projects"))
	assert.Empty(t, env.Data)
}

func TestRecentProjects_BlankPathRejected(t *testing.T) {
	ts := setupTestServer(t, Options{})

	resp := ts.api.Post("/api/v1/recent-projects", map[string]any{"path": "   "})
	require.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
	assert.Equal(t, "VALIDATION", decode[any](t, resp).Code)
}

func TestTools_ListAndInvoke(t *testing.T) {
	ts := setupTestServer(t, Options{})

	env := decode[[]tools.Descriptor](t, ts.api.Get("/api/v1/tools"))
	require.NotEmpty(t, env.Data)

	resp := ts.api.Post("/api/v1/tools/change_theme", map[string]any{"theme": "system"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	result := decode[tools.Result](t, resp)
	assert.True(t, result.Data.Success)

	// Tool failures travel inside the result.
	resp = ts.api.Post("/api/v1/tools/change_language", map[string]any{"code": "deu"})
	require.Equal(t, http.StatusOK, resp.Code)
	result = decode[tools.Result](t, resp)
	assert.False(t, result.Data.Success)
	assert.Equal(t, "INVALID_LANGUAGE", result.Data.ErrorCode)
	assert.NotEmpty(t, result.Data.Suggestions)

	resp = ts.api.Post("/api/v1/tools/does_not_exist", map[string]any{})
	result = decode[tools.Result](t, resp)
	assert.Equal(t, "NOT_FOUND", result.Data.ErrorCode)
}

func TestTools_RateLimited(t *testing.T) {
	limiter := ratelimit.PerMinute(2)
	t.Cleanup(limiter.Stop)
	ts := setupTestServer(t, Options{ToolLimiter: limiter})

	for range 2 {
		resp := ts.api.Post("/api/v1/tools/get_settings_status", map[string]any{})
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	}

	resp := ts.api.Post("/api/v1/tools/get_settings_status", map[string]any{})
	require.Equal(t, http.StatusTooManyRequests, resp.Code)
	assert.Equal(t, "RATE_LIMITED", decode[any](t, resp).Code)

	// Rotating proxy headers does not buy a fresh budget.
	resp = ts.api.Post("/api/v1/tools/get_settings_status", "X-Forwarded-For: 203.0.113.9", map[string]any{})
	assert.Equal(t, http.StatusTooManyRequests, resp.Code)
	resp = ts.api.Post("/api/v1/tools/get_settings_status", "X-Real-IP: 203.0.113.10", map[string]any{})
	assert.Equal(t, http.StatusTooManyRequests, resp.Code)

	// Another socket address has its own budget.
	req := httptest.NewRequest(http.MethodPost, "/api/v1/tools/get_settings_status", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "198.51.100.7:40000"
	rec := httptest.NewRecorder()
	ts.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestClientIP(t *testing.T) {
	assert.Equal(t, "192.0.2.1", clientIP("192.0.2.1:1234"))
	assert.Equal(t, "::1", clientIP("[::1]:8765"))
	assert.Equal(t, "pipe", clientIP("pipe"))
}

func TestCORS_AllowedOrigin(t *testing.T) {
	ts := setupTestServer(t, Options{AllowedOrigins: []string{"http://localhost:5173"}})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/settings", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	rec := httptest.NewRecorder()
	ts.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestEventStream_DeliversCommittedChanges(t *testing.T) {
	ts := setupTestServer(t, Options{})
	srv := httptest.NewServer(ts)
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/events", nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := bufio.NewScanner(resp.Body)
	require.True(t, lines.Scan())
	assert.Equal(t, "event: connected", lines.Text())

	require.Eventually(t, func() bool { return ts.manager.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	rec := ts.api.Put("/api/v1/settings/font", map[string]any{"family": "Lato", "size": 18})
	require.Equal(t, http.StatusOK, rec.Code)

	for lines.Scan() {
		if strings.HasPrefix(lines.Text(), "event: "+string(domain.KindFontChanged)) {
			require.True(t, lines.Scan())
			assert.Contains(t, lines.Text(), `"Lato"`)
			return
		}
	}
	t.Fatal("font change was not streamed")
}
