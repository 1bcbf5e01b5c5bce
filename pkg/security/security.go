package security

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const allowedHeaders = "Authorization, Content-Type, Content-Length, Accept, Accept-Encoding, Origin, Cache-Control, X-Requested-With"

// CORS 仅放行白名单内的 Origin。标注端依赖 Cookie（可信设备免验证），
// 因此必须回显具体 Origin 而不能使用通配符。
func CORS(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}

	return func(c *gin.Context) {
		if origin := c.GetHeader("Origin"); origin != "" {
			if _, ok := allowed[origin]; ok {
				h := c.Writer.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Set("Access-Control-Allow-Headers", allowedHeaders)
				h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				h.Set("Vary", "Origin")
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Secure 设置基础安全响应头。对比链接在新窗口打开，本站页面不允许被嵌入。
func Secure() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "no-referrer")
		if c.Request.TLS != nil {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		c.Next()
	}
}

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter 按客户端 IP 限流。窗口事件上报频率高（焦点切换、心跳），
// 额度要按"每分钟若干千次"来配，而不是常规 API 的量级。
func RateLimiter(maxRequests int, window time.Duration) gin.HandlerFunc {
	var (
		mu      sync.Mutex
		buckets = make(map[string]*clientBucket)
	)

	perRequest := rate.Every(window / time.Duration(maxRequests))
	retryAfter := strconv.Itoa(int(window.Seconds()))

	// 过期条目清理，避免 map 随 IP 数无限增长
	go func() {
		ttl := 3 * window
		if ttl < time.Minute {
			ttl = time.Minute
		}
		for range time.Tick(time.Minute) {
			mu.Lock()
			for ip, b := range buckets {
				if time.Since(b.lastSeen) > ttl {
					delete(buckets, ip)
				}
			}
			mu.Unlock()
		}
	}()

	return func(c *gin.Context) {
		ip := c.ClientIP()

		mu.Lock()
		b, ok := buckets[ip]
		if !ok {
			b = &clientBucket{limiter: rate.NewLimiter(perRequest, maxRequests)}
			buckets[ip] = b
		}
		b.lastSeen = time.Now()
		mu.Unlock()

		if !b.limiter.Allow() {
			c.Header("Retry-After", retryAfter)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":    http.StatusTooManyRequests,
				"message": "too many requests",
			})
			return
		}

		c.Next()
	}
}
