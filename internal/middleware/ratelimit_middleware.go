package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"pixelforge-backend-go/internal/ratelimit"
)

// RateLimit gates a route group through the fixed-window limiter. It must run
// after the authenticator so the bucket key prefers the authenticated user ID;
// anonymous traffic falls back to the client network address, which means
// unauthenticated callers behind one address share a bucket.
//
// X-RateLimit-Limit / -Remaining / -Reset (epoch milliseconds) are attached to
// every response, allowed or not.
func RateLimit(limiter *ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetString("userID")
		if key == "" {
			key = c.ClientIP()
		}

		res := limiter.Check(c.Request.Context(), key)

		c.Header("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.UnixMilli(), 10))

		if !res.Allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{
				Error:   "Rate limit exceeded",
				Details: "Retry after the time in X-RateLimit-Reset.",
			})
			return
		}

		c.Next()
	}
}
