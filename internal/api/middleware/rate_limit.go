package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/princeprakhar/freelance-backend/internal/config"
	"github.com/princeprakhar/freelance-backend/internal/utils"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// limiterRate allows RateLimitBurst requests per window, where the window
// is sized so the average stays at RateLimitRPS.
func limiterRate(cfg *config.Config) limiter.Rate {
	rps := int64(cfg.RateLimitRPS)
	if rps <= 0 {
		rps = 1
	}
	burst := int64(cfg.RateLimitBurst)
	if burst < rps {
		burst = rps
	}
	return limiter.Rate{
		Period: time.Duration(burst) * time.Second / time.Duration(rps),
		Limit:  burst,
	}
}

// rateLimitKey buckets requests per client and route. Forwarded headers
// are honoured through gin's trusted proxy settings in ClientIP.
func rateLimitKey(c *gin.Context) string {
	return fmt.Sprintf("%s:%s", c.ClientIP(), c.FullPath())
}

func RateLimitMiddleware(cfg *config.Config) gin.HandlerFunc {
	store := memory.NewStore()
	instance := limiter.New(store, limiterRate(cfg))

	return mgin.NewMiddleware(instance,
		mgin.WithKeyGetter(rateLimitKey),
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			utils.SendError(c, http.StatusTooManyRequests, "Too many requests", nil)
		}),
	)
}
