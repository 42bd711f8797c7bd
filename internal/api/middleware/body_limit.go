package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Muharom433/SIMPELUNYbackup-sub005/pkg/response"
)

// BodyLimit 请求体大小限制中间件
// maxBytes<=0 时不限制；Content-Length 已超限的请求直接拒绝，
// 未声明长度的请求体在读取时由 MaxBytesReader 截断，绑定失败由 handler 报 400
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 || c.Request.Body == nil {
			c.Next()
			return
		}
		if c.Request.ContentLength > maxBytes {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
			c.Abort()
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
