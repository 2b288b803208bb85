package api

import (
	"github.com/qualcodeapp/prefs-core/internal/journal"
	"github.com/qualcodeapp/prefs-core/internal/ratelimit"
	"github.com/qualcodeapp/prefs-core/internal/service"
	"github.com/qualcodeapp/prefs-core/internal/sse"
	"github.com/qualcodeapp/prefs-core/internal/tools"
)

// Services groups everything the HTTP layer calls into.
type Services struct {
	Settings *service.SettingsService
	Queries  *service.SettingsQueries
	Tools    *tools.Registry
	Events   *sse.Manager
	Journal  *journal.Journal // nil when history is disabled
}

// Options tunes the router.
type Options struct {
	AllowedOrigins []string
	ToolLimiter    *ratelimit.KeyedRateLimiter // nil disables tool rate limiting
}
