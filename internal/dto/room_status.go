package dto

// ── 房间状态 DTO ──

// RoomStatusQuery 房间状态查询参数；at 为空时返回监控快照
type RoomStatusQuery struct {
	At string `form:"at" binding:"omitempty"` // RFC3339
}

// RoomStatusResponse 单个房间的状态投影
type RoomStatusResponse struct {
	ID               string                  `json:"id"`
	Name             string                  `json:"name"`
	Code             string                  `json:"code"`
	Capacity         int                     `json:"capacity"`
	Department       *DepartmentResponse     `json:"department,omitempty"`
	IsAvailable      bool                    `json:"is_available"` // 行政开关
	Status           string                  `json:"status"`       // Available | Scheduled | In Use
	StatusLabel      string                  `json:"status_label"` // 本地化文案
	HasScheduleToday bool                    `json:"has_schedule_today"`
	ActiveBookings   []ScheduleEntryResponse `json:"active_bookings,omitempty"`
	ActiveLectures   []ScheduleEntryResponse `json:"active_lectures,omitempty"`
	ActiveExams      []ScheduleEntryResponse `json:"active_exams,omitempty"`
}

// RoomStatusListResponse 一次刷新的全部房间状态
type RoomStatusListResponse struct {
	ComputedAt   string               `json:"computed_at"`
	Now          string               `json:"now"`
	Stale        bool                 `json:"stale"` // 最近一次刷新失败，仍在使用上一份快照
	LastError    string               `json:"last_error,omitempty"`
	SkippedCount int                  `json:"skipped_count"`
	Rooms        []RoomStatusResponse `json:"rooms"`
}

// RoomScheduleResponse 单个房间当天的完整排程
type RoomScheduleResponse struct {
	Room    RoomStatusResponse      `json:"room"`
	Date    string                  `json:"date"` // YYYY-MM-DD
	Entries []ScheduleEntryResponse `json:"entries"`
}
