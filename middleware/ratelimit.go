package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/el-tafouk/eltafouk-api/metrics"
	"github.com/el-tafouk/eltafouk-api/services"
)

// CheckoutRateLimit throttles checkout attempts per client IP. Backend
// errors fail open: an unreachable limiter store must not block orders.
func CheckoutRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		limiter := services.GetRateLimiter()
		if limiter == nil {
			c.Next()
			return
		}

		allowed, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			log.WithError(err).Warn("Rate limiter unavailable, allowing request")
			c.Next()
			return
		}

		if !allowed {
			metrics.RateLimitedTotal.Inc()
			c.JSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "RATE_LIMITED",
					"message": "Too many orders from this address, try again shortly",
				},
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
