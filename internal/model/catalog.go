package model

// Equipment 可借用设备表 — 对应 equipment
type Equipment struct {
	EquipmentID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"equipment_id"`
	Name        string `gorm:"type:varchar(100);not null"                     json:"name"`
	Code        string `gorm:"type:varchar(30);not null"                      json:"code"`
	Category    string `gorm:"type:varchar(50)"                               json:"category,omitempty"`
	Quantity    int    `gorm:"not null;default:1"                             json:"quantity"`
	IsAvailable bool   `gorm:"not null;default:true"                          json:"is_available"`
	SoftDeleteModel
}

// TableName 指定表名
func (Equipment) TableName() string { return "equipment" }

// StudyProgram 学习项目（专业）表 — 对应 study_programs
type StudyProgram struct {
	StudyProgramID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"study_program_id"`
	Name           string  `gorm:"type:varchar(100);not null"                     json:"name"`
	Code           string  `gorm:"type:varchar(20)"                               json:"code,omitempty"`
	DepartmentID   *string `gorm:"type:uuid"                                      json:"department_id,omitempty"`
	SoftDeleteModel
}

// TableName 指定表名
func (StudyProgram) TableName() string { return "study_programs" }
