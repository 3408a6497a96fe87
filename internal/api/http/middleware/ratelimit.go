package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	sweepInterval = 5 * time.Minute
	clientTTL     = 10 * time.Minute
)

// RateLimit limits requests per client IP. Stale limiters are swept on the
// request path, so the middleware holds no background goroutine and the map
// does not grow without bound.
func RateLimit(r rate.Limit, burst int) gin.HandlerFunc {
	type client struct {
		limiter  *rate.Limiter
		lastSeen time.Time
	}

	var (
		mu        sync.Mutex
		clients   = make(map[string]*client)
		lastSweep = time.Now()
	)

	return func(c *gin.Context) {
		ip := c.ClientIP()
		now := time.Now()

		mu.Lock()
		if now.Sub(lastSweep) > sweepInterval {
			for key, cl := range clients {
				if now.Sub(cl.lastSeen) > clientTTL {
					delete(clients, key)
				}
			}
			lastSweep = now
		}

		cl, ok := clients[ip]
		if !ok {
			cl = &client{limiter: rate.NewLimiter(r, burst)}
			clients[ip] = cl
		}
		cl.lastSeen = now
		allowed := cl.limiter.Allow()
		mu.Unlock()

		if !allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			c.Abort()
			return
		}
		c.Next()
	}
}
