package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Room         RoomRepository
	Department   DepartmentRepository
	StudyProgram StudyProgramRepository
	Equipment    EquipmentRepository
	Booking      BookingRepository
	Lecture      LectureRepository
	Exam         ExamRepository

	db *gorm.DB
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Room:         NewRoomRepo(db),
		Department:   NewDepartmentRepo(db),
		StudyProgram: NewStudyProgramRepo(db),
		Equipment:    NewEquipmentRepo(db),
		Booking:      NewBookingRepo(db),
		Lecture:      NewLectureRepo(db),
		Exam:         NewExamRepo(db),
		db:           db,
	}
}

// BeginTx 开启事务，调用方负责 Commit / Rollback
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	tx := r.db.WithContext(ctx).Begin()
	return tx, tx.Error
}

// WithTx 返回绑定到指定事务的 Repository 聚合
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return NewRepository(tx)
}
