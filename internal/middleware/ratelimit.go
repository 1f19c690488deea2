package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// RateLimit 按客户端 IP 的令牌桶，空闲 10 分钟的 limiter 自动淘汰
func RateLimit(rps float64, burst int) gin.HandlerFunc {
	limiters := cache.New(10*time.Minute, 20*time.Minute)

	return func(c *gin.Context) {
		ip := c.ClientIP()
		var limiter *rate.Limiter
		if v, ok := limiters.Get(ip); ok {
			limiter = v.(*rate.Limiter)
		} else {
			limiter = rate.NewLimiter(rate.Limit(rps), burst)
			if err := limiters.Add(ip, limiter, cache.DefaultExpiration); err != nil {
				// 并发下另一个请求先写入
				if v, ok := limiters.Get(ip); ok {
					limiter = v.(*rate.Limiter)
				}
			}
		}
		limiters.SetDefault(ip, limiter)

		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"code": "RATE_LIMITED", "msg": "too many requests"})
			return
		}
		c.Next()
	}
}
