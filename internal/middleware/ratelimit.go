package middleware

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/go-petr/pet-ledger/pkg/ratelimitpkg"
	"github.com/go-petr/pet-ledger/pkg/web"
	"github.com/rs/zerolog"
)

// RateLimit rejects clients that exceeded the limiter quota with 429.
//
// Clients are identified by IP. When the limiter itself fails the request is let through.
func RateLimit(limiter ratelimitpkg.Limiter) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		ctx := gctx.Request.Context()
		l := zerolog.Ctx(ctx)

		res, err := limiter.Allow(ctx, gctx.ClientIP())
		if err != nil {
			l.Warn().Err(err).Msg("rate limiter unavailable, request allowed")
			gctx.Next()

			return
		}

		gctx.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))

		if !res.Allowed {
			retryAfter := int(math.Ceil(res.RetryAfter.Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}

			l.Info().Str("client_ip", gctx.ClientIP()).Int("retry_after", retryAfter).Msg("rate limited")

			gctx.Header("Retry-After", strconv.Itoa(retryAfter))
			gctx.AbortWithStatusJSON(http.StatusTooManyRequests, web.Error(errorspkg.ErrTooManyRequests))

			return
		}

		gctx.Next()
	}
}
