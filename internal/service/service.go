package service

import (
	"time"

	"go.uber.org/zap"

	"github.com/Muharom433/SIMPELUNYbackup-sub005/config"
	"github.com/Muharom433/SIMPELUNYbackup-sub005/internal/repository"
)

// Deps 写路径的可选协作者；零值可用（无锁、无刷新）
type Deps struct {
	Locker   RoomLocker
	Trigger  RefreshTrigger
	LockTTL  time.Duration
	Location *time.Location
}

// Service 所有 Service 的聚合入口
type Service struct {
	RoomStatus RoomStatusService
	Booking    BookingService
	Export     ExportService
}

// NewService 创建 Service 聚合
// roomStatus 由调用方先行创建，以便监控器与服务共用同一实例
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	roomStatus RoomStatusService,
	deps Deps,
	logger *zap.Logger,
) *Service {
	if deps.LockTTL <= 0 {
		deps.LockTTL = cfg.Schedule.SubmitLockTTL
	}
	if deps.Location == nil {
		deps.Location = roomStatus.Location()
	}
	return &Service{
		RoomStatus: roomStatus,
		Booking:    NewBookingService(repo, deps, logger.Named("booking")),
		Export:     NewExportService(roomStatus, logger.Named("export")),
	}
}
