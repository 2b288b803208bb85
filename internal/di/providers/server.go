package providers

import (
	"errors"
	"net"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/qualcodeapp/prefs-core/internal/api"
	"github.com/qualcodeapp/prefs-core/internal/config"
	"github.com/qualcodeapp/prefs-core/internal/logger"
	"github.com/qualcodeapp/prefs-core/internal/service"
	"github.com/qualcodeapp/prefs-core/internal/tools"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	injector do.Injector
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := shutdownContext(h.injector)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server and starts listening.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	journalHandle := do.MustInvoke[*JournalHandle](i)
	limiterHandle := do.MustInvoke[*ToolLimiterHandle](i)

	services := &api.Services{
		Settings: do.MustInvoke[*service.SettingsService](i),
		Queries:  do.MustInvoke[*service.SettingsQueries](i),
		Tools:    do.MustInvoke[*tools.Registry](i),
		Events:   sseHandle.Manager,
		Journal:  journalHandle.Journal,
	}

	opts := api.Options{AllowedOrigins: cfg.Server.AllowedOrigins}
	if cfg.Tools.RatePerMinute > 0 {
		opts.ToolLimiter = limiterHandle.KeyedRateLimiter
	}

	handler := api.NewServer(services, opts, log.Component("http"))

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Bind synchronously so a taken port fails startup.
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return nil, err
	}

	go func() {
		log.Info("HTTP server starting", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv, injector: i}, nil
}
