package middleware

import (
	"math"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/link-clicks/internal/ratelimit"
	"go.uber.org/zap"
)

// WriteRateLimiter limits link and user management writes per client IP. Reads pass through,
// so redirects and statistics are never throttled.
func WriteRateLimiter(api huma.API, limiter ratelimit.Limiter, logger *zap.Logger) func(ctx huma.Context, next func(huma.Context)) {
	retryAfter := strconv.Itoa(int(math.Ceil(limiter.Window().Seconds())))

	return func(ctx huma.Context, next func(huma.Context)) {
		if !isWrite(ctx.Method()) {
			next(ctx)

			return
		}

		ip := ClientIP(ctx)

		allowed, err := limiter.Allow(ctx.Context(), ip)
		if err != nil {
			logger.Error("rate limit check failed", zap.String("clientIp", ip), zap.Error(err))
			_ = huma.WriteErr(api, ctx, http.StatusServiceUnavailable, "rate limiter unavailable")

			return
		}

		if !allowed {
			logger.Warn("rate limit exceeded",
				zap.String("clientIp", ip),
				zap.String("method", ctx.Method()),
				zap.String("path", operationPath(ctx)),
			)
			ctx.SetHeader("Retry-After", retryAfter)
			_ = huma.WriteErr(api, ctx, http.StatusTooManyRequests, "rate limit exceeded")

			return
		}

		next(ctx)
	}
}

func isWrite(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	default:
		return true
	}
}

func operationPath(ctx huma.Context) string {
	if op := ctx.Operation(); op != nil {
		return op.Path
	}

	return ""
}
