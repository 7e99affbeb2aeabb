package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimit enforces `limit` requests per `window` per client, keyed by
// authenticated user when available, otherwise by remote IP. Counters live
// in Redis so no per-process state accumulates; without Redis (or on Redis
// errors) it fails open.
func RateLimit(rdb *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil {
			c.Next()
			return
		}

		var id string
		if uid := c.GetString("userId"); uid != "" {
			id = "user:" + uid
		} else {
			id = "ip:" + c.ClientIP()
		}
		key := fmt.Sprintf("rl:%s:%s", c.FullPath(), id)

		ctx := c.Request.Context()
		cnt, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			c.Next()
			return
		}
		if cnt == 1 {
			rdb.Expire(ctx, key, window)
		}
		if cnt > int64(limit) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			c.Abort()
			return
		}

		c.Next()
	}
}
