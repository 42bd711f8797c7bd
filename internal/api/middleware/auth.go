package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Muharom433/SIMPELUNYbackup-sub005/pkg/jwt"
	"github.com/Muharom433/SIMPELUNYbackup-sub005/pkg/response"
)

// JWTAuth 校验统一认证签发的 Access Token，并把提交人身份注入上下文：
// user_id、role、identity_number（NIM / NIP）
func JWTAuth(jwtMgr *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.Unauthorized(c, 10002, "缺少或无效的认证头")
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(token)
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			response.Unauthorized(c, 10006, "Token 已过期")
			c.Abort()
			return
		case err != nil:
			response.Unauthorized(c, 10002, "Token 无效")
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)
		c.Set("identity_number", claims.IdentityNumber)

		c.Next()
	}
}

// bearerToken 解析 "Bearer <token>"，scheme 不区分大小写
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// RoleAuth 角色权限中间件，须挂在 JWTAuth 之后
func RoleAuth(allowedRoles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		role := c.GetString("role")
		if role == "" {
			response.Unauthorized(c, 10002, "未认证")
			c.Abort()
			return
		}
		if _, ok := allowed[role]; !ok {
			response.Forbidden(c, 10003, "无权限访问")
			c.Abort()
			return
		}
		c.Next()
	}
}
