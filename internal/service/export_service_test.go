package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/Muharom433/SIMPELUNYbackup-sub005/internal/model"
	"github.com/Muharom433/SIMPELUNYbackup-sub005/pkg/i18n"
)

// ── 测试辅助 ──

func setupTestExportService(t *testing.T) (ExportService, *mockRepos) {
	t.Helper()
	roomStatus, m := setupRoomStatusService(t, nil)
	seedRooms(m)
	return NewExportService(roomStatus, zap.NewNop()), m
}

// ── ExportRoomStatus 测试 ──

func TestExportService_ExportRoomStatus(t *testing.T) {
	svc, m := setupTestExportService(t)
	m.lecture.lectures = []model.LectureSchedule{{
		LectureScheduleID: "lec-1", Room: "Lab A 1", CourseName: "Sistem Digital",
		DayOfWeek: 1, StartTime: strPtr("08:00:00"), EndTime: strPtr("09:40:00"),
	}}

	buf, filename, err := svc.ExportRoomStatus(context.Background(), monday0900, i18n.English)
	if err != nil {
		t.Fatalf("ExportRoomStatus 应成功: %v", err)
	}
	if filename != "room_status_20240101_0900.xlsx" {
		t.Errorf("文件名不符: %s", filename)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("生成的文件应可被解析: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Status")
	if err != nil {
		t.Fatalf("读取 Sheet 失败: %v", err)
	}
	// 标题 + 表头 + 3 个房间
	if len(rows) != 5 {
		t.Fatalf("期望 5 行，实际: %d", len(rows))
	}
	if rows[1][0] != "Room" || rows[1][4] != "Status" {
		t.Errorf("表头不符: %v", rows[1])
	}

	found := false
	for _, r := range rows[2:] {
		if r[0] == "Lab A.1" {
			found = true
			if r[4] != "In Use" {
				t.Errorf("Lab A.1 期望 In Use，实际: %s", r[4])
			}
			if r[5] != "[lecture] Sistem Digital" {
				t.Errorf("占用说明不符: %s", r[5])
			}
		}
	}
	if !found {
		t.Error("报表中缺少 Lab A.1")
	}
}

func TestExportService_ExportRoomStatus_FetchFailure(t *testing.T) {
	svc, m := setupTestExportService(t)
	m.exam.err = errors.New("db down")

	if _, _, err := svc.ExportRoomStatus(context.Background(), monday0900, i18n.English); !errors.Is(err, ErrRoomStatusFetchFailed) {
		t.Errorf("期望 ErrRoomStatusFetchFailed，实际: %v", err)
	}
}

// ── ExportRoomCalendar 测试 ──

func TestExportService_ExportRoomCalendar(t *testing.T) {
	svc, m := setupTestExportService(t)
	start := time.Date(2024, 1, 1, 13, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)
	_ = m.booking.Create(context.Background(), &model.Booking{
		RoomID: "r-aula", Status: model.BookingStatusApproved, Purpose: "Wisuda",
		StartTime: start, EndTime: &end,
	})
	m.exam.exams = []model.ExamSchedule{{
		ExamScheduleID: "exam-1", RoomID: strPtr("r-aula"), CourseName: "Fisika",
		ExamDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), StartTime: strPtr("08:00:00"), EndTime: strPtr("10:00:00"),
	}}

	data, filename, err := svc.ExportRoomCalendar(context.Background(), "r-aula", monday0900)
	if err != nil {
		t.Fatalf("ExportRoomCalendar 应成功: %v", err)
	}
	if filename != "AU_20240101.ics" {
		t.Errorf("文件名不符: %s", filename)
	}

	cal, err := ics.ParseCalendar(strings.NewReader(string(data)))
	if err != nil {
		t.Fatalf("生成的日历应可被解析: %v", err)
	}
	events := cal.Events()
	if len(events) != 2 {
		t.Fatalf("期望 2 个事件，实际: %d", len(events))
	}
	first := events[0].GetProperty(ics.ComponentPropertySummary)
	if first == nil || first.Value != "[exam] Fisika" {
		t.Errorf("事件应按开始时间排序，首个事件: %v", first)
	}
	got, err := events[1].GetStartAt()
	if err != nil || !got.Equal(start) {
		t.Errorf("预约开始时间不符: %v (%v)", got, err)
	}
}

func TestExportService_ExportRoomCalendar_NotFound(t *testing.T) {
	svc, _ := setupTestExportService(t)

	if _, _, err := svc.ExportRoomCalendar(context.Background(), "missing", monday0900); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("期望 ErrRoomNotFound，实际: %v", err)
	}
}
