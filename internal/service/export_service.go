package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/Muharom433/SIMPELUNYbackup-sub005/internal/availability"
)

// ── 导出模块业务错误 ──

var ErrExportGenerateFail = errors.New("生成导出文件失败")

// ExportService 导出业务接口
//
// 设计说明：
//   - 房间状态报表导出为 Excel (.xlsx)，每个房间一行
//   - 单个房间当天排程导出为 iCalendar (.ics)，供日历客户端订阅
//   - 两者都基于同一次 Load + Evaluate，不读取监控快照
type ExportService interface {
	// ExportRoomStatus 导出 now 时刻全部房间状态
	ExportRoomStatus(ctx context.Context, now time.Time, lang string) (*bytes.Buffer, string, error)
	// ExportRoomCalendar 导出单个房间当天排程
	ExportRoomCalendar(ctx context.Context, roomID string, now time.Time) ([]byte, string, error)
}

type exportService struct {
	roomStatus RoomStatusService
	logger     *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(roomStatus RoomStatusService, logger *zap.Logger) ExportService {
	return &exportService{roomStatus: roomStatus, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportRoomStatus — 房间状态报表
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - Sheet "Status"
//   - 第 1 行标题（日期 + 时刻），第 2 行表头
//   - 列：房间 | 编码 | 院系 | 容量 | 状态 | 当前占用 | 行政可用

func (s *exportService) ExportRoomStatus(ctx context.Context, now time.Time, lang string) (*bytes.Buffer, string, error) {
	ds, err := s.roomStatus.Load(ctx, now)
	if err != nil {
		return nil, "", err
	}
	snap := s.roomStatus.Evaluate(ds, now)

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Status"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headers := []string{"Room", "Code", "Department", "Capacity", "Status", "Occupied By", "Available Flag"}
	widths := []float64{24, 12, 24, 10, 18, 40, 14}
	for i, w := range widths {
		col := colName(i)
		f.SetColWidth(sheetName, col, col, w)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	inUseStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#F8CBAD"}, Pattern: 1},
	})
	scheduledStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#FFE699"}, Pattern: 1},
	})

	// 标题行
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("Room status %s", snap.Now.Format("2006-01-02 15:04")))
	f.MergeCell(sheetName, "A1", cell(colName(len(headers)-1), 1))
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	for i, h := range headers {
		f.SetCellValue(sheetName, cell(colName(i), 2), h)
	}
	f.SetCellStyle(sheetName, "A2", cell(colName(len(headers)-1), 2), headerStyle)

	// 数据行
	row := 3
	for _, st := range snap.Rooms {
		dept := "-"
		if st.Room.Department != nil {
			dept = st.Room.Department.Name
		}
		f.SetCellValue(sheetName, cell("A", row), st.Room.Name)
		f.SetCellValue(sheetName, cell("B", row), st.Room.Code)
		f.SetCellValue(sheetName, cell("C", row), dept)
		f.SetCellValue(sheetName, cell("D", row), st.Room.Capacity)
		f.SetCellValue(sheetName, cell("E", row), StatusLabel(st.Status, lang))
		f.SetCellValue(sheetName, cell("F", row), occupiedBy(st.Conflicts))
		f.SetCellValue(sheetName, cell("G", row), st.Room.IsAvailable)

		switch st.Status {
		case availability.StatusInUse:
			f.SetCellStyle(sheetName, cell("E", row), cell("E", row), inUseStyle)
		case availability.StatusScheduled:
			f.SetCellStyle(sheetName, cell("E", row), cell("E", row), scheduledStyle)
		}
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("room_status_%s.xlsx", snap.Now.Format("20060102_1504"))
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// ExportRoomCalendar — 单个房间当天排程
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportRoomCalendar(ctx context.Context, roomID string, now time.Time) ([]byte, string, error) {
	ds, err := s.roomStatus.Load(ctx, now)
	if err != nil {
		return nil, "", err
	}
	snap := s.roomStatus.Evaluate(ds, now)

	var target *RoomState
	for i := range snap.Rooms {
		if snap.Rooms[i].Room.RoomID == roomID {
			target = &snap.Rooms[i]
			break
		}
	}
	if target == nil {
		return nil, "", ErrRoomNotFound
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//SIMPELUNY//Room Schedule//ID")
	cal.SetName(target.Room.Name)
	cal.SetXWRTimezone(s.roomStatus.Location().String())

	stamp := time.Now().UTC()
	entries := snap.Aggregation.Entries(availability.RoomRef{ID: target.Room.RoomID, Name: target.Room.Name})
	for _, e := range entries {
		evt := cal.AddEvent(fmt.Sprintf("%s-%s@simpeluny", e.Kind, e.RecordID))
		evt.SetDtStampTime(stamp)
		evt.SetStartAt(e.Window.Start)
		evt.SetEndAt(e.Window.End)
		evt.SetSummary(eventSummary(e))
		evt.SetLocation(target.Room.Name)
		evt.SetDescription(string(e.Kind))
	}

	filename := fmt.Sprintf("%s_%s.ics", target.Room.Code, ds.Date.Format("20060102"))
	return []byte(cal.Serialize()), filename, nil
}

// ── 辅助函数 ──

func occupiedBy(c availability.RoomConflicts) string {
	var first *availability.Entry
	switch {
	case len(c.Bookings) > 0:
		first = &c.Bookings[0]
	case len(c.Exams) > 0:
		first = &c.Exams[0]
	case len(c.Lectures) > 0:
		first = &c.Lectures[0]
	default:
		return ""
	}
	return eventSummary(*first)
}

func eventSummary(e availability.Entry) string {
	if e.Label == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Label)
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
