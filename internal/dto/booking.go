package dto

import "time"

// ── 预约模块 DTO ──

// SubmitBookingRequest 预约提交请求
// 使用 validate 标签由服务层校验：未选房间需先于其他校验单独报错
type SubmitBookingRequest struct {
	RoomID         string     `json:"room_id"          validate:"omitempty,uuid"`
	FullName       string     `json:"full_name"        validate:"required,min=2,max=100"`
	IdentityNumber string     `json:"identity_number"  validate:"required,numeric,min=5,max=30"` // NIM / NIP
	StudyProgramID string     `json:"study_program_id" validate:"omitempty,uuid"`
	Phone          string     `json:"phone"            validate:"required,numeric,min=8,max=20"`
	Purpose        string     `json:"purpose"          validate:"omitempty,max=200"`
	StartTime      time.Time  `json:"start_time"       validate:"required"`
	Units          int        `json:"units"            validate:"omitempty,min=1,max=6"`
	ClassType      string     `json:"class_type"       validate:"omitempty,oneof=theory practical"`
	EquipmentIDs   []string   `json:"equipment_ids"    validate:"omitempty,max=20,dive,uuid"`
	Notes          string     `json:"notes"            validate:"omitempty,max=1000"`
	EndTime        *time.Time `json:"end_time"         validate:"omitempty,gtfield=StartTime"` // 手动结束时间
	AttachmentURL  string     `json:"attachment_url"   validate:"omitempty,url,max=500"`
}

// SubmitBookingResponse 预约提交结果
type SubmitBookingResponse struct {
	BookingID       string   `json:"booking_id"`
	Status          string   `json:"status"`
	StartTime       string   `json:"start_time"`
	EndTime         string   `json:"end_time"`
	DurationMinutes int      `json:"duration_minutes"`
	ManualEndTime   bool     `json:"manual_end_time"`
	SupersededIDs   []string `json:"superseded_ids,omitempty"`
	Warnings        []string `json:"-"` // 由 handler 放入响应外层
}

// EndTimeRequest 结束时间试算参数
type EndTimeRequest struct {
	StartTime string `form:"start_time" binding:"omitempty"` // RFC3339
	Units     int    `form:"units"      binding:"omitempty"`
	ClassType string `form:"class_type" binding:"omitempty"`
	EndTime   string `form:"end_time"   binding:"omitempty"` // 手动结束时间 RFC3339
}

// EndTimeResponse 结束时间试算结果；无法计算时 end_time 为 null
type EndTimeResponse struct {
	EndTime         *string `json:"end_time"`
	DurationMinutes int     `json:"duration_minutes"`
	Manual          bool    `json:"manual"`
}

// BookingOptionsResponse 预约表单可选项
type BookingOptionsResponse struct {
	Equipment     []EquipmentOption    `json:"equipment"`
	StudyPrograms []StudyProgramOption `json:"study_programs"`
	Departments   []DepartmentResponse `json:"departments"`
	ClassTypes    []ClassTypeOption    `json:"class_types"`
	MinUnits      int                  `json:"min_units"`
	MaxUnits      int                  `json:"max_units"`
}

// EquipmentOption 可借用设备
type EquipmentOption struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Code     string `json:"code"`
	Category string `json:"category,omitempty"`
	Quantity int    `json:"quantity"`
}

// StudyProgramOption 学习项目
type StudyProgramOption struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	DepartmentID *string `json:"department_id,omitempty"`
}

// ClassTypeOption 课程类型及每学分分钟数
type ClassTypeOption struct {
	Value          string `json:"value"`
	MinutesPerUnit int    `json:"minutes_per_unit"`
}
