package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDMaxLen = 64

// RequestID 请求 ID 中间件
// 优先使用客户端传入的 X-Request-ID，超长或缺失时生成新 UUID
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader("X-Request-ID")
		if reqID == "" || len(reqID) > requestIDMaxLen {
			reqID = uuid.NewString()
		}

		c.Set("request_id", reqID)
		c.Header("X-Request-ID", reqID)

		c.Next()
	}
}
