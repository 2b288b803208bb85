package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/qualcodeapp/prefs-core/internal/config"
	"github.com/qualcodeapp/prefs-core/internal/logger"
	"github.com/qualcodeapp/prefs-core/internal/ratelimit"
	"github.com/qualcodeapp/prefs-core/internal/watcher"
)

// FileWatcherHandle wraps the settings file watcher. Watcher is nil when
// watching is disabled.
type FileWatcherHandle struct {
	*watcher.Watcher
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *FileWatcherHandle) Shutdown() error {
	if h.Watcher == nil {
		return nil
	}
	h.cancel()
	return h.Stop()
}

// ProvideFileWatcher watches settings.json and publishes events for edits
// made by other processes.
func ProvideFileWatcher(i do.Injector) (*FileWatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	detector := do.MustInvoke[*ReloadDetectorHandle](i)

	if !cfg.Settings.Watch {
		log.Info("Settings file watching disabled by configuration")
		return &FileWatcherHandle{}, nil
	}

	onChange := func(ctx context.Context) {
		if events := detector.Check(ctx); len(events) > 0 {
			log.Info("Settings changed on disk", "events", len(events))
		}
	}

	w, err := watcher.New(cfg.Settings.Path, onChange, log.Component("watcher"), watcher.Options{})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := w.Start(ctx); err != nil {
		cancel()
		_ = w.Stop()
		return nil, err
	}

	log.Info("Settings file watcher started", "path", cfg.Settings.Path)

	return &FileWatcherHandle{
		Watcher: w,
		cancel:  cancel,
	}, nil
}

// ToolLimiterHandle wraps the per-client tool rate limiter.
type ToolLimiterHandle struct {
	*ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *ToolLimiterHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvideToolLimiter provides the tool invocation rate limiter.
func ProvideToolLimiter(i do.Injector) (*ToolLimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return &ToolLimiterHandle{KeyedRateLimiter: ratelimit.PerMinute(cfg.Tools.RatePerMinute)}, nil
}
