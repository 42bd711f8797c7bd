package dto

// ── 通用简要信息 ──

// DepartmentResponse 院系简要信息
type DepartmentResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ScheduleEntryResponse 房间当天的一条排程记录
type ScheduleEntryResponse struct {
	Kind      string `json:"kind"` // booking | lecture | exam
	RecordID  string `json:"record_id"`
	Label     string `json:"label,omitempty"`
	StartTime string `json:"start_time"` // RFC3339
	EndTime   string `json:"end_time"`   // RFC3339
	Active    bool   `json:"active"`
}
