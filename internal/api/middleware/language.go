package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/Muharom433/SIMPELUNYbackup-sub005/pkg/i18n"
)

// Language 协商本次请求的响应语言并注入上下文 "lang"
// ?lang= 优先，其次 Accept-Language，最后 fallback
func Language(fallback string) gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := c.Query("lang")
		if !i18n.Supported(lang) {
			lang = i18n.Negotiate(c.GetHeader("Accept-Language"), fallback)
		}
		c.Set("lang", lang)
		c.Header("Content-Language", lang)
		c.Next()
	}
}
