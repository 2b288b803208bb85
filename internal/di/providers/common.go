package providers

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/qualcodeapp/prefs-core/internal/config"
)

// defaultShutdownTimeout applies when the config leaves the timeout unset.
const defaultShutdownTimeout = 10 * time.Second

// shutdownContext bounds a graceful shutdown by the configured timeout.
func shutdownContext(i do.Injector) (context.Context, context.CancelFunc) {
	timeout := defaultShutdownTimeout
	if cfg, err := do.Invoke[*config.Config](i); err == nil && cfg.Server.ShutdownTimeout > 0 {
		timeout = cfg.Server.ShutdownTimeout
	}
	return context.WithTimeout(context.Background(), timeout)
}
