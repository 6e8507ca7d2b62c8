package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/printstarter/printstarter/internal/infrastructure/monitoring"
	"github.com/printstarter/printstarter/internal/infrastructure/ratelimit"
	"github.com/printstarter/printstarter/pkg/constants"
	"github.com/printstarter/printstarter/pkg/errors"
	"github.com/printstarter/printstarter/pkg/logger"
)

// ErrorLabelKey is the gin-context key under which handlers and middleware
// leave the short error label that the request monitor records.
const ErrorLabelKey = "error_label"

// ResponseMetaKey carries handler-provided metadata (e.g. cache outcome)
// to the request monitor.
const ResponseMetaKey = "response_meta"

// RateLimit enforces the per-identity fixed window for one scope. The
// X-RateLimit-* headers are set on every response that passed through the
// limiter, allowed or not. A store failure fails closed with a 500: an
// unreachable counter must not admit unlimited traffic.
func RateLimit(
	limiter *ratelimit.FixedWindowLimiter,
	scope constants.RateLimitScope,
	limit int64,
	window time.Duration,
	metrics *monitoring.Metrics,
	log logger.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := ClientIdentity(c)

		result, err := limiter.Check(c.Request.Context(), scope, identity, limit, window)
		if err != nil {
			log.Error(c.Request.Context(), "rate limit check failed", err,
				logger.String("scope", string(scope)),
				logger.String("identity", identity),
			)
			c.Set(ErrorLabelKey, "server_error")
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				gin.H{"error": "Service temporarily unavailable."})
			return
		}

		c.Header(constants.HeaderRateLimitLimit, strconv.FormatInt(result.Limit, 10))
		c.Header(constants.HeaderRateLimitRemaining, strconv.FormatInt(result.Remaining, 10))
		c.Header(constants.HeaderRateLimitWindow, strconv.FormatInt(int64(result.Window/time.Second), 10))

		if !result.Allowed {
			if metrics != nil {
				metrics.RecordRateLimitHit(string(scope))
			}
			log.Warn(c.Request.Context(), "rate limit exceeded",
				logger.String("scope", string(scope)),
				logger.String("identity", identity),
				logger.Int64("count", result.Count),
				logger.Int64("limit", result.Limit),
			)
			appErr := errors.ErrRateLimited(result.Limit, int64(result.Window/time.Second))
			c.Set(ErrorLabelKey, errors.Label(appErr))
			c.AbortWithStatusJSON(appErr.HTTPStatus(), gin.H{"error": appErr.Error()})
			return
		}

		c.Next()
	}
}
