package model

import "time"

// 预约状态
const (
	BookingStatusPending   = "pending"
	BookingStatusApproved  = "approved"
	BookingStatusCompleted = "completed"
	BookingStatusRejected  = "rejected"
)

// Booking 房间预约表 — 对应 bookings
type Booking struct {
	BookingID      string      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"booking_id"`
	RoomID         string      `gorm:"type:uuid;not null"                             json:"room_id"`
	UserID         string      `gorm:"type:uuid;not null"                             json:"user_id"`
	FullName       string      `gorm:"type:varchar(100);not null"                     json:"full_name"`
	IdentityNumber string      `gorm:"type:varchar(30);not null"                      json:"identity_number"` // NIM / NIP
	StudyProgramID *string     `gorm:"type:uuid"                                      json:"study_program_id,omitempty"`
	Phone          string      `gorm:"type:varchar(20);not null"                      json:"phone"`
	Purpose        string      `gorm:"type:varchar(200)"                              json:"purpose,omitempty"`
	StartTime      time.Time   `gorm:"not null"                                       json:"start_time"`
	EndTime        *time.Time  `json:"end_time,omitempty"`
	Units          int         `gorm:"type:smallint;not null;default:0"               json:"units"`      // SKS 1-6
	ClassType      string      `gorm:"type:varchar(20);not null;default:''"           json:"class_type"` // theory | practical
	EquipmentIDs   StringArray `gorm:"type:text[]"                                    json:"equipment_ids,omitempty"`
	Notes          string      `gorm:"type:text"                                      json:"notes,omitempty"`
	AttachmentURL  string      `gorm:"type:varchar(500)"                              json:"attachment_url,omitempty"` // 许可文件
	Status         string      `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"`                   // pending | approved | completed | rejected
	VersionedModel

	// 关联
	Room *Room `gorm:"foreignKey:RoomID;references:RoomID" json:"room,omitempty"`
}

// TableName 指定表名
func (Booking) TableName() string { return "bookings" }
