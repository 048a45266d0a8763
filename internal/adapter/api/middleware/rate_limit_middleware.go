package middleware

import (
	"math"

	"github.com/labstack/echo/v4"

	"gringochat/internal/usecase"
	"gringochat/pkg/errors"
	"gringochat/pkg/logger"
	"gringochat/pkg/response"
)

// RateLimitMiddleware throttles write-heavy chat routes per principal. The
// limiter is injected, never a package global, so tests can substitute a
// deterministic fake.
type RateLimitMiddleware struct {
	limiter usecase.Limiter
}

func NewRateLimitMiddleware(limiter usecase.Limiter) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		limiter: limiter,
	}
}

func (m *RateLimitMiddleware) Limit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		key, _ := c.Get("uid").(string)
		if key == "" {
			// Unauthenticated traffic is keyed by address so it cannot
			// bypass the limiter.
			key = c.RealIP()
		}

		allowed, retryAfter := m.limiter.Allow(key)
		if !allowed {
			seconds := int(math.Ceil(retryAfter.Seconds()))
			logger.Warn("Rate limited principal %s (retry in %ds)", key, seconds)
			return response.Error(c, errors.RateLimited("Too many requests. Please slow down", seconds))
		}

		return next(c)
	}
}
