package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Muharom433/SIMPELUNYbackup-sub005/internal/availability"
	"github.com/Muharom433/SIMPELUNYbackup-sub005/internal/dto"
	"github.com/Muharom433/SIMPELUNYbackup-sub005/internal/model"
	"github.com/Muharom433/SIMPELUNYbackup-sub005/internal/repository"
	pkgerrors "github.com/Muharom433/SIMPELUNYbackup-sub005/pkg/errors"
	"github.com/Muharom433/SIMPELUNYbackup-sub005/pkg/i18n"
)

// ── 预约模块业务错误 ──

var (
	ErrBookingRoomRequired    = errors.New("未选择房间")
	ErrBookingInvalid         = errors.New("预约信息校验失败")
	ErrBookingRoomNotFound    = errors.New("预约的房间不存在")
	ErrBookingEndTimeMissing  = errors.New("无法计算预约结束时间")
	ErrBookingRoomBusy        = errors.New("房间正在处理其他预约")
	ErrBookingSupersedeFailed = errors.New("替换已批准预约失败")
	ErrBookingCreateFailed    = errors.New("保存预约失败")
)

// RoomLocker 房间级提交锁（Redis 实现；为空时仅依赖数据库事务）
type RoomLocker interface {
	AcquireRoomLock(ctx context.Context, roomID string, ttl time.Duration) (string, error)
	ReleaseRoomLock(ctx context.Context, roomID, token string) error
}

// RefreshTrigger 提交成功后触发一次完整的状态刷新
type RefreshTrigger interface {
	Refresh(ctx context.Context, reason string) error
}

// BookingService 预约业务接口
type BookingService interface {
	// SubmitBooking 提交预约：替换旧批准 → 计算结束时间 → 插入 pending → 标记房间 → 触发刷新
	SubmitBooking(ctx context.Context, req *dto.SubmitBookingRequest, userID, lang string) (*dto.SubmitBookingResponse, error)
	// CalculateEndTime 结束时间试算；无法计算时 EndTime 为 nil
	CalculateEndTime(req *dto.EndTimeRequest) *dto.EndTimeResponse
	// GetOptions 预约表单可选项
	GetOptions(ctx context.Context) (*dto.BookingOptionsResponse, error)
}

type bookingService struct {
	repo     *repository.Repository
	validate *validator.Validate
	locker   RoomLocker
	trigger  RefreshTrigger
	lockTTL  time.Duration
	loc      *time.Location
	logger   *zap.Logger
}

// NewBookingService 创建 BookingService 实例
func NewBookingService(repo *repository.Repository, deps Deps, logger *zap.Logger) BookingService {
	lockTTL := deps.LockTTL
	if lockTTL <= 0 {
		lockTTL = 10 * time.Second
	}
	loc := deps.Location
	if loc == nil {
		loc = time.Local
	}
	return &bookingService{
		repo:     repo,
		validate: validator.New(),
		locker:   deps.Locker,
		trigger:  deps.Trigger,
		lockTTL:  lockTTL,
		loc:      loc,
		logger:   logger,
	}
}

// ────────────────────── SubmitBooking ──────────────────────

func (s *bookingService) SubmitBooking(ctx context.Context, req *dto.SubmitBookingRequest, userID, lang string) (*dto.SubmitBookingResponse, error) {
	// 1. 未选房间直接拒绝，不产生任何副作用
	if strings.TrimSpace(req.RoomID) == "" {
		return nil, ErrBookingRoomRequired
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrBookingInvalid, describeValidation(err))
	}

	room, err := s.repo.Room.GetByID(ctx, req.RoomID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrBookingRoomNotFound
		}
		s.logger.Error("查询房间失败", zap.String("room_id", req.RoomID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrBookingCreateFailed, err)
	}

	// 3. 结束时间先行计算：2~4 在同一事务内，提前失败可避免无谓的加锁
	endRes, ok := availability.ResolveEndTime(req.StartTime, req.Units, availability.ClassType(req.ClassType), req.EndTime)
	if !ok {
		return nil, ErrBookingEndTimeMissing
	}

	var warnings []string
	if n := len(req.EquipmentIDs); n > 0 {
		available, err := s.repo.Equipment.CountAvailableByIDs(ctx, req.EquipmentIDs)
		if err != nil {
			s.logger.Warn("查询设备可用性失败", zap.Error(err))
		} else if missing := int64(n) - available; missing > 0 {
			warnings = append(warnings, i18n.T(lang, i18n.MsgWarnEquipmentUnavailable, missing))
		}
	}

	// 同一房间的并发提交互斥
	if s.locker != nil {
		token, err := s.locker.AcquireRoomLock(ctx, room.RoomID, s.lockTTL)
		switch {
		case errors.Is(err, pkgerrors.ErrRoomLocked):
			return nil, ErrBookingRoomBusy
		case err != nil:
			// 锁服务不可用时退化为仅依赖事务
			s.logger.Warn("获取房间提交锁失败，退化为事务保护", zap.String("room_id", room.RoomID), zap.Error(err))
		default:
			defer func() {
				if err := s.locker.ReleaseRoomLock(context.WithoutCancel(ctx), room.RoomID, token); err != nil {
					s.logger.Warn("释放房间提交锁失败", zap.String("room_id", room.RoomID), zap.Error(err))
				}
			}()
		}
	}

	end := endRes.End
	booking := &model.Booking{
		RoomID:         room.RoomID,
		UserID:         userID,
		FullName:       strings.TrimSpace(req.FullName),
		IdentityNumber: req.IdentityNumber,
		StudyProgramID: optionalString(req.StudyProgramID),
		Phone:          req.Phone,
		Purpose:        req.Purpose,
		StartTime:      req.StartTime,
		EndTime:        &end,
		Units:          req.Units,
		ClassType:      req.ClassType,
		EquipmentIDs:   model.StringArray(req.EquipmentIDs),
		Notes:          req.Notes,
		AttachmentURL:  req.AttachmentURL,
		Status:         model.BookingStatusPending,
	}
	booking.CreatedBy = &userID
	booking.UpdatedBy = &userID

	// 2 + 4. 替换旧批准并插入新预约（单事务）
	superseded, err := s.repo.Booking.SupersedeAndCreate(ctx, booking)
	if err != nil {
		s.logger.Error("预约提交失败，事务已回滚",
			zap.String("room_id", room.RoomID),
			zap.String("user_id", userID),
			zap.Error(err),
		)
		if errors.Is(err, pkgerrors.ErrSupersede) || errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, fmt.Errorf("%w: %v", ErrBookingSupersedeFailed, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrBookingCreateFailed, err)
	}
	if len(superseded) > 0 {
		s.logger.Info("已替换房间的批准预约",
			zap.String("room_id", room.RoomID),
			zap.Strings("superseded", superseded),
		)
	}

	// 5. 行政可用标记仅为提示性缓存，失败不影响提交结果
	if err := s.repo.Room.UpdateAvailability(ctx, room.RoomID, false); err != nil {
		s.logger.Warn("更新房间可用标记失败", zap.String("room_id", room.RoomID), zap.Error(err))
		warnings = append(warnings, i18n.T(lang, i18n.MsgWarnAvailabilityUpdate))
	}

	// 6. 触发刷新
	if s.trigger != nil {
		if err := s.trigger.Refresh(ctx, "booking:"+booking.BookingID); err != nil {
			s.logger.Warn("提交后刷新房间状态失败", zap.Error(err))
			warnings = append(warnings, i18n.T(lang, i18n.MsgWarnRefreshFailed))
		}
	}

	// 7.
	return &dto.SubmitBookingResponse{
		BookingID:       booking.BookingID,
		Status:          booking.Status,
		StartTime:       booking.StartTime.In(s.loc).Format(time.RFC3339),
		EndTime:         end.In(s.loc).Format(time.RFC3339),
		DurationMinutes: endRes.DurationMinutes,
		ManualEndTime:   endRes.Manual,
		SupersededIDs:   superseded,
		Warnings:        warnings,
	}, nil
}

// ────────────────────── CalculateEndTime ──────────────────────

func (s *bookingService) CalculateEndTime(req *dto.EndTimeRequest) *dto.EndTimeResponse {
	resp := &dto.EndTimeResponse{}

	start, err := parseOptionalTime(req.StartTime)
	if err != nil || start == nil {
		return resp
	}
	manual, err := parseOptionalTime(req.EndTime)
	if err != nil {
		return resp
	}

	res, ok := availability.ResolveEndTime(*start, req.Units, availability.ClassType(req.ClassType), manual)
	if !ok {
		return resp
	}
	end := res.End.In(s.loc).Format(time.RFC3339)
	resp.EndTime = &end
	resp.DurationMinutes = res.DurationMinutes
	resp.Manual = res.Manual
	return resp
}

// ────────────────────── GetOptions ──────────────────────

func (s *bookingService) GetOptions(ctx context.Context) (*dto.BookingOptionsResponse, error) {
	equipment, err := s.repo.Equipment.ListAvailable(ctx)
	if err != nil {
		s.logger.Error("查询设备列表失败", zap.Error(err))
		return nil, err
	}
	programs, err := s.repo.StudyProgram.List(ctx)
	if err != nil {
		s.logger.Error("查询学习项目失败", zap.Error(err))
		return nil, err
	}
	depts, err := s.repo.Department.List(ctx)
	if err != nil {
		s.logger.Error("查询院系失败", zap.Error(err))
		return nil, err
	}

	resp := &dto.BookingOptionsResponse{
		Equipment:     make([]dto.EquipmentOption, 0, len(equipment)),
		StudyPrograms: make([]dto.StudyProgramOption, 0, len(programs)),
		Departments:   make([]dto.DepartmentResponse, 0, len(depts)),
		ClassTypes: []dto.ClassTypeOption{
			{Value: string(availability.ClassTheory), MinutesPerUnit: availability.MinutesPerUnit[availability.ClassTheory]},
			{Value: string(availability.ClassPractical), MinutesPerUnit: availability.MinutesPerUnit[availability.ClassPractical]},
		},
		MinUnits: availability.MinUnits,
		MaxUnits: availability.MaxUnits,
	}
	for _, e := range equipment {
		resp.Equipment = append(resp.Equipment, dto.EquipmentOption{
			ID:       e.EquipmentID,
			Name:     e.Name,
			Code:     e.Code,
			Category: e.Category,
			Quantity: e.Quantity,
		})
	}
	for _, p := range programs {
		resp.StudyPrograms = append(resp.StudyPrograms, dto.StudyProgramOption{
			ID:           p.StudyProgramID,
			Name:         p.Name,
			DepartmentID: p.DepartmentID,
		})
	}
	for _, d := range depts {
		resp.Departments = append(resp.Departments, dto.DepartmentResponse{ID: d.DepartmentID, Name: d.Name})
	}
	return resp, nil
}

// ── 辅助函数 ──

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func parseOptionalTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// describeValidation 把校验错误压缩为 "field:tag" 列表
func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fe.Field()+":"+fe.Tag())
	}
	return strings.Join(parts, ", ")
}
