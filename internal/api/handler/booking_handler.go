package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Muharom433/SIMPELUNYbackup-sub005/internal/dto"
	"github.com/Muharom433/SIMPELUNYbackup-sub005/internal/service"
	"github.com/Muharom433/SIMPELUNYbackup-sub005/pkg/i18n"
	"github.com/Muharom433/SIMPELUNYbackup-sub005/pkg/response"
)

// BookingHandler 预约模块 HTTP 处理器
type BookingHandler struct {
	bookingSvc service.BookingService
}

// NewBookingHandler 创建 BookingHandler
func NewBookingHandler(bookingSvc service.BookingService) *BookingHandler {
	return &BookingHandler{bookingSvc: bookingSvc}
}

// GetOptions 预约表单可选项（设备、学习项目、课程类型）
// GET /api/v1/bookings/options
func (h *BookingHandler) GetOptions(c *gin.Context) {
	opts, err := h.bookingSvc.GetOptions(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, opts)
}

// CalculateEndTime 结束时间试算
// GET /api/v1/bookings/end-time?start_time=&units=&class_type=&end_time=
func (h *BookingHandler) CalculateEndTime(c *gin.Context) {
	var req dto.EndTimeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	response.OK(c, h.bookingSvc.CalculateEndTime(&req))
}

// Submit 提交预约
// POST /api/v1/bookings
func (h *BookingHandler) Submit(c *gin.Context) {
	lang := GetLang(c)
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.SubmitBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, i18n.T(lang, i18n.MsgBookingInvalid), err.Error())
		return
	}

	resp, err := h.bookingSvc.SubmitBooking(c.Request.Context(), &req, userID, lang)
	if err != nil {
		h.handleBookingError(c, err, lang)
		return
	}

	response.Created(c, i18n.T(lang, i18n.MsgBookingSubmitted), resp, resp.Warnings)
}

func (h *BookingHandler) handleBookingError(c *gin.Context, err error, lang string) {
	switch {
	case errors.Is(err, service.ErrBookingRoomRequired):
		response.BadRequest(c, 40001, i18n.T(lang, i18n.MsgBookingRoomRequired))
	case errors.Is(err, service.ErrBookingInvalid):
		response.ErrorWithDetails(c, http.StatusBadRequest, 40002, i18n.T(lang, i18n.MsgBookingInvalid), causeOf(err, service.ErrBookingInvalid))
	case errors.Is(err, service.ErrBookingRoomNotFound):
		response.NotFound(c, 40003, i18n.T(lang, i18n.MsgBookingRoomNotFound))
	case errors.Is(err, service.ErrBookingEndTimeMissing):
		response.BadRequest(c, 40004, i18n.T(lang, i18n.MsgBookingEndTimeMissing))
	case errors.Is(err, service.ErrBookingRoomBusy):
		response.Conflict(c, 40005, i18n.T(lang, i18n.MsgBookingRoomBusy))
	case errors.Is(err, service.ErrBookingSupersedeFailed):
		response.Error(c, http.StatusInternalServerError, 40006, i18n.Fallback(causeOf(err, service.ErrBookingSupersedeFailed), lang, i18n.MsgBookingGenericError))
	case errors.Is(err, service.ErrBookingCreateFailed):
		response.Error(c, http.StatusInternalServerError, 40007, i18n.Fallback(causeOf(err, service.ErrBookingCreateFailed), lang, i18n.MsgBookingGenericError))
	default:
		response.Error(c, http.StatusInternalServerError, 50000, i18n.T(lang, i18n.MsgBookingGenericError))
	}
}

// causeOf 取出 "哨兵: 原因" 中的原因部分；无原因时返回空串
func causeOf(err, sentinel error) string {
	msg := strings.TrimPrefix(err.Error(), sentinel.Error())
	return strings.TrimSpace(strings.TrimPrefix(msg, ":"))
}
