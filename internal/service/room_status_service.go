package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"github.com/Muharom433/SIMPELUNYbackup-sub005/config"
	"github.com/Muharom433/SIMPELUNYbackup-sub005/internal/availability"
	"github.com/Muharom433/SIMPELUNYbackup-sub005/internal/dto"
	"github.com/Muharom433/SIMPELUNYbackup-sub005/internal/model"
	"github.com/Muharom433/SIMPELUNYbackup-sub005/internal/repository"
	"github.com/Muharom433/SIMPELUNYbackup-sub005/pkg/i18n"
)

// ── 房间状态模块业务错误 ──

var (
	// ErrRoomStatusFetchFailed 任一数据源读取失败，整次刷新作废（可重试）
	ErrRoomStatusFetchFailed = errors.New("读取房间排程数据失败")
	ErrRoomNotFound          = errors.New("房间不存在")
)

// RoomDataset 一次刷新读取到的原始数据（每个数据源各读一次）
type RoomDataset struct {
	Date      time.Time            `json:"date"` // 数据所属日期（本地时区零点）
	FetchedAt time.Time            `json:"fetched_at"`
	Rooms     []model.Room         `json:"rooms"`
	Sources   availability.Sources `json:"sources"`
}

// RoomState 单个房间在某一时刻的分类结果
type RoomState struct {
	Room      model.Room
	Conflicts availability.RoomConflicts
	Status    availability.Status
}

// RoomStatusSnapshot 对 RoomDataset 在某一参考时刻的纯计算结果
type RoomStatusSnapshot struct {
	Now         time.Time
	Dataset     *RoomDataset
	Aggregation *availability.Aggregation
	Rooms       []RoomState
}

// RoomStatusService 房间状态业务接口
type RoomStatusService interface {
	// Load 读取 now 所在日期的房间、预约、课表与考试
	Load(ctx context.Context, now time.Time) (*RoomDataset, error)
	// Evaluate 以 now 为参考时刻聚合并分类，不访问存储
	Evaluate(ds *RoomDataset, now time.Time) *RoomStatusSnapshot
	// GetRoomStatuses 读取并计算全部房间状态
	GetRoomStatuses(ctx context.Context, now time.Time, lang string) (*dto.RoomStatusListResponse, error)
	// GetRoomSchedule 单个房间当天的全部排程
	GetRoomSchedule(ctx context.Context, roomID string, now time.Time, lang string) (*dto.RoomScheduleResponse, error)
	// Render 将快照转换为响应
	Render(snap *RoomStatusSnapshot, lang string) *dto.RoomStatusListResponse
	// Location 计算所用时区
	Location() *time.Location
}

type roomStatusService struct {
	repo    *repository.Repository
	loc     *time.Location
	matcher *availability.NameMatcher
	logger  *zap.Logger
}

// NewRoomStatusService 创建 RoomStatusService 实例
func NewRoomStatusService(cfg *config.ScheduleConfig, repo *repository.Repository, logger *zap.Logger) (RoomStatusService, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("加载时区 %q 失败: %w", cfg.Timezone, err)
	}
	return &roomStatusService{
		repo:    repo,
		loc:     loc,
		matcher: availability.NewNameMatcher(cfg.RoomAliases),
		logger:  logger,
	}, nil
}

func (s *roomStatusService) Location() *time.Location { return s.loc }

// ────────────────────── Load ──────────────────────

func (s *roomStatusService) Load(ctx context.Context, now time.Time) (*RoomDataset, error) {
	local := now.In(s.loc)
	dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.loc)
	dayEnd := dayStart.AddDate(0, 0, 1)

	rooms, err := s.repo.Room.ListWithDepartment(ctx)
	if err != nil {
		s.logger.Error("查询房间失败", zap.Error(err))
		return nil, fmt.Errorf("%w: rooms: %v", ErrRoomStatusFetchFailed, err)
	}

	bookings, err := s.repo.Booking.ListApprovedBetween(ctx, dayStart, dayEnd)
	if err != nil {
		s.logger.Error("查询预约失败", zap.Error(err))
		return nil, fmt.Errorf("%w: bookings: %v", ErrRoomStatusFetchFailed, err)
	}

	lectures, err := s.repo.Lecture.ListByDay(ctx, availability.ISOWeekday(local))
	if err != nil {
		s.logger.Error("查询课表失败", zap.Error(err))
		return nil, fmt.Errorf("%w: lectures: %v", ErrRoomStatusFetchFailed, err)
	}

	exams, err := s.repo.Exam.ListByDate(ctx, dayStart)
	if err != nil {
		s.logger.Error("查询考试安排失败", zap.Error(err))
		return nil, fmt.Errorf("%w: exams: %v", ErrRoomStatusFetchFailed, err)
	}

	return &RoomDataset{
		Date:      dayStart,
		FetchedAt: time.Now(),
		Rooms:     rooms,
		Sources: availability.Sources{
			Bookings: toBookingRecords(bookings),
			Lectures: toLectureRecords(lectures),
			Exams:    toExamRecords(exams),
		},
	}, nil
}

// ────────────────────── Evaluate ──────────────────────

// LogSkipped 逐条记录无法解析的排程记录。
// 同一份数据会被每分钟重新分类，只有读取新数据后才应使用 Warn。
func LogSkipped(logger *zap.Logger, level zapcore.Level, skipped []availability.Skipped) {
	for _, sk := range skipped {
		if ce := logger.Check(level, "排程记录时间无法解析，已跳过"); ce != nil {
			ce.Write(
				zap.String("kind", string(sk.Kind)),
				zap.String("record_id", sk.RecordID),
				zap.Error(sk.Err),
			)
		}
	}
}

func (s *roomStatusService) Evaluate(ds *RoomDataset, now time.Time) *RoomStatusSnapshot {
	agg := availability.Aggregate(now, s.loc, ds.Sources, s.matcher)
	LogSkipped(s.logger, zapcore.DebugLevel, agg.Skipped)

	states := make([]RoomState, 0, len(ds.Rooms))
	for _, room := range ds.Rooms {
		c := agg.For(availability.RoomRef{ID: room.RoomID, Name: room.Name})
		states = append(states, RoomState{
			Room:      room,
			Conflicts: c,
			Status:    availability.Classify(c),
		})
	}

	return &RoomStatusSnapshot{
		Now:         agg.Now,
		Dataset:     ds,
		Aggregation: agg,
		Rooms:       states,
	}
}

// ────────────────────── GetRoomStatuses ──────────────────────

func (s *roomStatusService) GetRoomStatuses(ctx context.Context, now time.Time, lang string) (*dto.RoomStatusListResponse, error) {
	ds, err := s.Load(ctx, now)
	if err != nil {
		return nil, err
	}
	snap := s.Evaluate(ds, now)
	LogSkipped(s.logger, zapcore.WarnLevel, snap.Aggregation.Skipped)
	return s.Render(snap, lang), nil
}

// ────────────────────── GetRoomSchedule ──────────────────────

func (s *roomStatusService) GetRoomSchedule(ctx context.Context, roomID string, now time.Time, lang string) (*dto.RoomScheduleResponse, error) {
	ds, err := s.Load(ctx, now)
	if err != nil {
		return nil, err
	}
	snap := s.Evaluate(ds, now)

	for _, st := range snap.Rooms {
		if st.Room.RoomID != roomID {
			continue
		}
		entries := snap.Aggregation.Entries(availability.RoomRef{ID: st.Room.RoomID, Name: st.Room.Name})
		return &dto.RoomScheduleResponse{
			Room:    s.toRoomStatusResponse(st, lang),
			Date:    ds.Date.Format("2006-01-02"),
			Entries: toEntryResponses(entries),
		}, nil
	}
	return nil, ErrRoomNotFound
}

// ────────────────────── Render ──────────────────────

func (s *roomStatusService) Render(snap *RoomStatusSnapshot, lang string) *dto.RoomStatusListResponse {
	resp := &dto.RoomStatusListResponse{
		ComputedAt:   snap.Dataset.FetchedAt.In(s.loc).Format(time.RFC3339),
		Now:          snap.Now.Format(time.RFC3339),
		SkippedCount: len(snap.Aggregation.Skipped),
		Rooms:        make([]dto.RoomStatusResponse, 0, len(snap.Rooms)),
	}
	for _, st := range snap.Rooms {
		resp.Rooms = append(resp.Rooms, s.toRoomStatusResponse(st, lang))
	}
	return resp
}

// ── 转换辅助 ──

func (s *roomStatusService) toRoomStatusResponse(st RoomState, lang string) dto.RoomStatusResponse {
	r := dto.RoomStatusResponse{
		ID:               st.Room.RoomID,
		Name:             st.Room.Name,
		Code:             st.Room.Code,
		Capacity:         st.Room.Capacity,
		IsAvailable:      st.Room.IsAvailable,
		Status:           string(st.Status),
		StatusLabel:      StatusLabel(st.Status, lang),
		HasScheduleToday: st.Conflicts.HasAnyToday,
		ActiveBookings:   toEntryResponses(st.Conflicts.Bookings),
		ActiveLectures:   toEntryResponses(st.Conflicts.Lectures),
		ActiveExams:      toEntryResponses(st.Conflicts.Exams),
	}
	if st.Room.Department != nil {
		r.Department = &dto.DepartmentResponse{
			ID:   st.Room.Department.DepartmentID,
			Name: st.Room.Department.Name,
		}
	}
	return r
}

// StatusLabel 房间状态的本地化文案
func StatusLabel(status availability.Status, lang string) string {
	switch status {
	case availability.StatusInUse:
		return i18n.T(lang, i18n.MsgStatusInUse)
	case availability.StatusScheduled:
		return i18n.T(lang, i18n.MsgStatusScheduled)
	default:
		return i18n.T(lang, i18n.MsgStatusAvailable)
	}
}

func toEntryResponses(entries []availability.Entry) []dto.ScheduleEntryResponse {
	if len(entries) == 0 {
		return nil
	}
	out := make([]dto.ScheduleEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.ScheduleEntryResponse{
			Kind:      string(e.Kind),
			RecordID:  e.RecordID,
			Label:     e.Label,
			StartTime: e.Window.Start.Format(time.RFC3339),
			EndTime:   e.Window.End.Format(time.RFC3339),
			Active:    e.Active,
		})
	}
	return out
}

func toBookingRecords(bookings []model.Booking) []availability.Booking {
	out := make([]availability.Booking, 0, len(bookings))
	for i := range bookings {
		b := bookings[i]
		start := b.StartTime
		out = append(out, availability.Booking{
			ID:      b.BookingID,
			RoomID:  b.RoomID,
			Status:  b.Status,
			Purpose: b.Purpose,
			Start:   &start,
			End:     b.EndTime,
		})
	}
	return out
}

func toLectureRecords(lectures []model.LectureSchedule) []availability.Lecture {
	out := make([]availability.Lecture, 0, len(lectures))
	for _, l := range lectures {
		out = append(out, availability.Lecture{
			ID:        l.LectureScheduleID,
			RoomName:  l.Room,
			Course:    l.CourseName,
			Lecturer:  l.Lecturer,
			DayOfWeek: l.DayOfWeek,
			StartTime: deref(l.StartTime),
			EndTime:   deref(l.EndTime),
		})
	}
	return out
}

func toExamRecords(exams []model.ExamSchedule) []availability.Exam {
	out := make([]availability.Exam, 0, len(exams))
	for _, e := range exams {
		out = append(out, availability.Exam{
			ID:        e.ExamScheduleID,
			RoomID:    deref(e.RoomID),
			Course:    e.CourseName,
			Date:      e.ExamDate,
			StartTime: deref(e.StartTime),
			EndTime:   deref(e.EndTime),
			TakeHome:  e.IsTakeHome,
		})
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// isNotFound 统一判断记录不存在
func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
