package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Muharom433/SIMPELUNYbackup-sub005/config"
	"github.com/Muharom433/SIMPELUNYbackup-sub005/internal/api/handler"
	"github.com/Muharom433/SIMPELUNYbackup-sub005/internal/api/middleware"
	"github.com/Muharom433/SIMPELUNYbackup-sub005/internal/api/router"
	"github.com/Muharom433/SIMPELUNYbackup-sub005/internal/monitor"
	"github.com/Muharom433/SIMPELUNYbackup-sub005/internal/repository"
	"github.com/Muharom433/SIMPELUNYbackup-sub005/internal/service"
	"github.com/Muharom433/SIMPELUNYbackup-sub005/pkg/database"
	"github.com/Muharom433/SIMPELUNYbackup-sub005/pkg/jwt"
	applogger "github.com/Muharom433/SIMPELUNYbackup-sub005/pkg/logger"
	"github.com/Muharom433/SIMPELUNYbackup-sub005/pkg/redis"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load(os.Getenv("SIMPEL_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.String("timezone", cfg.Schedule.Timezone),
	)

	// 3. 连接数据库
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	logger.Info("数据库连接成功")

	// 3.1 执行数据库迁移
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，提交锁、限流与快照缓存将不可用", zap.Error(err))
		rdb = nil
	}

	// 5. 初始化 JWT 管理器
	jwtMgr := jwt.NewManager(&cfg.Auth)

	// 6. 依赖注入: Repository → RoomStatus → Monitor → Service → Handler
	// 接口变量只在 rdb 非空时赋值，避免持有包着 nil 指针的非 nil 接口
	repo := repository.NewRepository(db)
	roomStatus, err := service.NewRoomStatusService(&cfg.Schedule, repo, logger.Named("room_status"))
	if err != nil {
		logger.Fatal("初始化房间状态服务失败", zap.Error(err))
	}

	monOpts := monitor.Options{
		NowInterval:     cfg.Schedule.NowTickInterval,
		RefreshInterval: cfg.Schedule.RefreshInterval,
		SnapshotTTL:     cfg.Schedule.SnapshotTTL,
	}
	deps := service.Deps{}
	var limiter middleware.RateLimiter
	if rdb != nil {
		monOpts.Cache = rdb
		if cfg.Feature.RefreshBroadcast {
			monOpts.Bus = rdb
		}
		deps.Locker = rdb
		limiter = rdb
	}

	mon := monitor.New(roomStatus, monOpts, logger.Named("monitor"))
	deps.Trigger = mon

	svc := service.NewService(cfg, repo, roomStatus, deps, logger)
	h := handler.NewHandler(svc, mon, nil)

	// 7. 启动房间状态监控
	rootCtx, stopRoot := context.WithCancel(context.Background())
	defer stopRoot()
	mon.Start(rootCtx)

	// 8. 初始化路由
	engine := router.Setup(cfg, h, jwtMgr, limiter, logger)

	// 9. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 10. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 先停监控，之后完成的刷新不会再写入
	mon.Stop()

	// 关闭数据库连接
	if sqlDB != nil {
		sqlDB.Close()
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
