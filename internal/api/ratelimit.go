package api

import (
	"net"

	"github.com/danielgtaylor/huma/v2"

	apperrors "github.com/qualcodeapp/prefs-core/internal/errors"
)

// toolLimiter is satisfied by ratelimit.KeyedRateLimiter.
type toolLimiter interface {
	Allow(key string) bool
}

// rateLimitTools rejects tool calls over the per-client budget with 429 RATE_LIMITED.
func (s *Server) rateLimitTools(ctx huma.Context, next func(huma.Context)) {
	if s.toolLimiter == nil {
		next(ctx)
		return
	}

	key := clientIP(ctx.RemoteAddr())
	if !s.toolLimiter.Allow(key) {
		s.logger.Warn("Rate limit exceeded",
			"ip", key,
			"path", ctx.URL().Path,
		)
		err := apperrors.ErrRateLimited
		_ = huma.WriteErr(s.api, ctx, err.HTTPStatus(), err.Message, err)
		return
	}

	next(ctx)
}

// clientIP returns the host part of the socket address. Proxy headers are
// ignored so a caller cannot pick its own rate limit key.
func clientIP(remoteAddr string) string {
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return remoteAddr
}
