package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Muharom433/SIMPELUNYbackup-sub005/pkg/i18n"
	"github.com/Muharom433/SIMPELUNYbackup-sub005/pkg/response"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// GetLang 读取 Language 中间件协商出的语言；缺失时使用默认语言
func GetLang(c *gin.Context) string {
	if lang := c.GetString("lang"); i18n.Supported(lang) {
		return lang
	}
	return i18n.Default
}
