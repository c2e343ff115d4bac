package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/veldran/cinerec/internal/config"
	"github.com/veldran/cinerec/internal/services"
)

// RateLimit applies the configured per-user sliding window. Falls back to
// the client IP when no authenticated user is present.
func RateLimit(limiter *services.RateLimiter, cfg *config.Config, logger *logrus.Logger) gin.HandlerFunc {
	limit := cfg.Auth.RateLimit.Requests
	window := cfg.Auth.RateLimit.Window

	return func(c *gin.Context) {
		subject := c.ClientIP()
		if userID, exists := c.Get("user_id"); exists {
			if s, ok := userID.(string); ok {
				subject = s
			}
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))

		if !limiter.Allow(c.Request.Context(), subject, limit, window) {
			logger.WithFields(logrus.Fields{
				"subject": subject,
				"limit":   limit,
			}).Warn("Rate limit exceeded")

			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": gin.H{
					"code":    "RATE_LIMIT_EXCEEDED",
					"message": "Too many requests, slow down",
				},
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
