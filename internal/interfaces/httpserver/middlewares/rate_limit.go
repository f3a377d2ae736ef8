package middlewares

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// simple token bucket per key (principal or IP).
type rateBucket struct {
	tokens     float64
	lastRefill time.Time
}

const bucketIdleTTL = 10 * time.Minute

// RateLimitMiddleware throttles bursts per caller. It is a transport guard and is unrelated to the
// daily message quota.
func RateLimitMiddleware(limitPerMinute float64) gin.HandlerFunc {
	if limitPerMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	var (
		mu        sync.Mutex
		buckets   = make(map[string]*rateBucket)
		rate      = limitPerMinute / 60.0
		lastSweep = time.Now()
	)

	return func(c *gin.Context) {
		key := rateKey(c)
		now := time.Now()

		mu.Lock()
		if now.Sub(lastSweep) > bucketIdleTTL {
			for k, b := range buckets {
				if now.Sub(b.lastRefill) > bucketIdleTTL {
					delete(buckets, k)
				}
			}
			lastSweep = now
		}

		bucket, ok := buckets[key]
		if !ok {
			bucket = &rateBucket{tokens: limitPerMinute, lastRefill: now}
			buckets[key] = bucket
		}

		elapsed := now.Sub(bucket.lastRefill).Seconds()
		bucket.tokens = min(limitPerMinute, bucket.tokens+elapsed*rate)
		bucket.lastRefill = now

		if bucket.tokens < 1 {
			mu.Unlock()
			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate_limited",
				"message": "Too many requests",
			})
			return
		}
		bucket.tokens--
		mu.Unlock()

		c.Next()
	}
}

func rateKey(c *gin.Context) string {
	if principal, ok := PrincipalFromContext(c); ok && principal.ID != "" {
		return "pid:" + principal.ID
	}
	if ip := clientIP(c.ClientIP()); ip != "" {
		return "ip:" + ip
	}
	return "anonymous"
}

// Normalize IPv6-mapped IPv4 etc.
func clientIP(raw string) string {
	if raw == "" {
		return ""
	}
	if ip := net.ParseIP(raw); ip != nil {
		return ip.String()
	}
	return raw
}
