package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderRequestID 请求ID头
const HeaderRequestID = "X-Request-ID"

const slowRequest = 3 * time.Second

// Logger 请求日志中间件
// 为每个请求生成请求ID（上游已带X-Request-ID时沿用），结束后记录方法、路径、状态码、耗时
// 不记录请求体和Token
func Logger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header(HeaderRequestID, requestID)

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		attrs := []any{
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", latency,
			"client_ip", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "errors", c.Errors.String())
		}

		ctx := c.Request.Context()
		switch {
		case c.Writer.Status() >= 500:
			log.ErrorContext(ctx, "http request", attrs...)
		case latency > slowRequest:
			log.WarnContext(ctx, "slow request", attrs...)
		default:
			log.InfoContext(ctx, "http request", attrs...)
		}
	}
}

// RequestID 当前请求ID
func RequestID(c *gin.Context) string {
	return c.GetString("request_id")
}
