// app/seenmw.go
package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"tooltrack/db"
)

// TouchLastSeen updates personnel.last_active_at, throttled through Redis so
// a busy scanner terminal does not hammer the row.
func TouchLastSeen(repo *db.Repo, rdb *redis.Client, throttle time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := c.Get("personnelID")
		if !ok {
			c.Next()
			return
		}
		pid, _ := v.(string)
		if pid == "" {
			c.Next()
			return
		}

		key := "tooltrack:lastseen:" + pid
		if ok, _ := rdb.SetNX(c, key, "1", throttle).Result(); ok {
			_ = repo.TouchPersonnelSeen(c, pid) // 忽略错误，不阻塞请求
		}
		c.Next()
	}
}
