package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Muharom433/SIMPELUNYbackup-sub005/pkg/i18n"
	"github.com/Muharom433/SIMPELUNYbackup-sub005/pkg/response"
)

// RateLimiter 滑动窗口计数（pkg/redis.Client 实现）
type RateLimiter interface {
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, int64, error)
}

// RateLimit 基于 Redis 滑动窗口的速率限制中间件
// limit: 窗口内允许的最大请求数
// window: 滑动窗口时长
// limiter 为 nil 或 limit<=0 时放行
func RateLimit(limiter RateLimiter, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || limit <= 0 {
			c.Next()
			return
		}

		// 已认证请求按用户限流，否则按 IP
		subject := c.GetString("user_id")
		if subject == "" {
			subject = c.ClientIP()
		}
		key := fmt.Sprintf("%s:%s", c.FullPath(), subject)

		allowed, count, err := limiter.CheckRateLimit(c.Request.Context(), key, limit, window)
		if err != nil {
			// Redis 出错时降级放行
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		if !allowed {
			c.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
			response.TooManyRequests(c, 10004, i18n.T(c.GetString("lang"), i18n.MsgRateLimited))
			c.Abort()
			return
		}
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(int64(limit)-count, 10))

		c.Next()
	}
}
