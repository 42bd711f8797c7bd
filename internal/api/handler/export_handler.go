package handler

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Muharom433/SIMPELUNYbackup-sub005/internal/service"
	"github.com/Muharom433/SIMPELUNYbackup-sub005/pkg/i18n"
	"github.com/Muharom433/SIMPELUNYbackup-sub005/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
	now       func() time.Time
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService, now func() time.Time) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc, now: now}
}

// ExportRoomStatus 导出当前全部房间状态
// GET /api/v1/export/room-status
func (h *ExportHandler) ExportRoomStatus(c *gin.Context) {
	lang := GetLang(c)
	buf, filename, err := h.exportSvc.ExportRoomStatus(c.Request.Context(), h.now(), lang)
	if err != nil {
		h.handleExportError(c, err, lang)
		return
	}

	// 设置下载响应头
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Header("Content-Type", xlsxContentType)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error, lang string) {
	switch {
	case errors.Is(err, service.ErrRoomStatusFetchFailed):
		response.ServiceUnavailable(c, 30001, i18n.T(lang, i18n.MsgRoomStatusFetchFailed))
	case errors.Is(err, service.ErrExportGenerateFail):
		response.Error(c, http.StatusInternalServerError, 30003, i18n.T(lang, i18n.MsgExportGenerateFailed))
	default:
		response.InternalError(c)
	}
}
