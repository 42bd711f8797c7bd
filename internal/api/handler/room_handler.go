package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Muharom433/SIMPELUNYbackup-sub005/internal/dto"
	"github.com/Muharom433/SIMPELUNYbackup-sub005/internal/monitor"
	"github.com/Muharom433/SIMPELUNYbackup-sub005/internal/service"
	"github.com/Muharom433/SIMPELUNYbackup-sub005/pkg/i18n"
	"github.com/Muharom433/SIMPELUNYbackup-sub005/pkg/response"
)

// RoomHandler 房间状态 HTTP 处理器
type RoomHandler struct {
	roomSvc   service.RoomStatusService
	exportSvc service.ExportService
	snapshots SnapshotSource
	now       func() time.Time
}

// NewRoomHandler 创建 RoomHandler
func NewRoomHandler(roomSvc service.RoomStatusService, exportSvc service.ExportService, snapshots SnapshotSource, now func() time.Time) *RoomHandler {
	return &RoomHandler{roomSvc: roomSvc, exportSvc: exportSvc, snapshots: snapshots, now: now}
}

// ListStatuses 全部房间状态
// GET /api/v1/rooms/status[?at=RFC3339]
// 不带 at 时返回监控器的最近快照；带 at 时以该时刻实时计算
func (h *RoomHandler) ListStatuses(c *gin.Context) {
	lang := GetLang(c)

	var q dto.RoomStatusQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if q.At != "" {
		at, err := time.Parse(time.RFC3339, q.At)
		if err != nil {
			response.BadRequest(c, 10001, "at 必须为 RFC3339 时间")
			return
		}
		h.computeFresh(c, at, lang)
		return
	}

	st := h.currentState()
	if st == nil || st.Snapshot == nil {
		// 监控器尚未成功刷新过
		h.computeFresh(c, h.now(), lang)
		return
	}

	resp := h.roomSvc.Render(st.Snapshot, lang)
	if st.Stale() {
		resp.Stale = true
		resp.LastError = st.LastError.Error()
	}
	response.OK(c, resp)
}

// GetSchedule 单个房间当天的排程
// GET /api/v1/rooms/:id/schedule
func (h *RoomHandler) GetSchedule(c *gin.Context) {
	lang := GetLang(c)
	resp, err := h.roomSvc.GetRoomSchedule(c.Request.Context(), c.Param("id"), h.now(), lang)
	if err != nil {
		h.handleRoomError(c, err, lang)
		return
	}
	response.OK(c, resp)
}

// GetCalendar 单个房间当天排程的 iCalendar 文件
// GET /api/v1/rooms/:id/calendar.ics
func (h *RoomHandler) GetCalendar(c *gin.Context) {
	body, filename, err := h.exportSvc.ExportRoomCalendar(c.Request.Context(), c.Param("id"), h.now())
	if err != nil {
		h.handleRoomError(c, err, GetLang(c))
		return
	}
	response.Attachment(c, filename, "text/calendar; charset=utf-8", body)
}

func (h *RoomHandler) computeFresh(c *gin.Context, at time.Time, lang string) {
	resp, err := h.roomSvc.GetRoomStatuses(c.Request.Context(), at, lang)
	if err != nil {
		h.handleRoomError(c, err, lang)
		return
	}
	response.OK(c, resp)
}

func (h *RoomHandler) currentState() *monitor.State {
	if h.snapshots == nil {
		return nil
	}
	return h.snapshots.Current()
}

func (h *RoomHandler) handleRoomError(c *gin.Context, err error, lang string) {
	switch {
	case errors.Is(err, service.ErrRoomNotFound):
		response.NotFound(c, 30002, i18n.T(lang, i18n.MsgRoomNotFound))
	case errors.Is(err, service.ErrRoomStatusFetchFailed):
		response.ServiceUnavailable(c, 30001, i18n.T(lang, i18n.MsgRoomStatusFetchFailed))
	default:
		response.InternalError(c)
	}
}
