package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Muharom433/SIMPELUNYbackup-sub005/config"
	"github.com/Muharom433/SIMPELUNYbackup-sub005/internal/api/handler"
	"github.com/Muharom433/SIMPELUNYbackup-sub005/internal/api/middleware"
	"github.com/Muharom433/SIMPELUNYbackup-sub005/pkg/jwt"
)

// Setup 初始化并返回 Gin 路由引擎
// limiter 为 nil 时提交接口不限流
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, limiter middleware.RateLimiter, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))
	r.Use(middleware.Language(cfg.Schedule.DefaultLanguage))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1（全部需要认证）──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(jwtMgr))
	{
		// 房间状态
		rooms := v1.Group("/rooms")
		{
			rooms.GET("/status", h.Room.ListStatuses)
			rooms.GET("/:id/schedule", h.Room.GetSchedule)
			rooms.GET("/:id/calendar.ics", h.Room.GetCalendar)
		}

		// 预约
		bookings := v1.Group("/bookings")
		{
			bookings.GET("/options", h.Booking.GetOptions)
			bookings.GET("/end-time", h.Booking.CalculateEndTime)
			bookings.POST("",
				middleware.RateLimit(limiter, cfg.Feature.SubmitRateLimit, cfg.Feature.SubmitRateLimitWindow),
				h.Booking.Submit,
			)
		}

		// 导出
		export := v1.Group("/export")
		{
			export.GET("/room-status", middleware.RoleAuth("admin", "staff"), h.Export.ExportRoomStatus)
		}
	}

	return r
}
