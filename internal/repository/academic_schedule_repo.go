package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Muharom433/SIMPELUNYbackup-sub005/internal/model"
)

// LectureRepository 课表数据访问接口
type LectureRepository interface {
	Create(ctx context.Context, lecture *model.LectureSchedule) error
	// ListByDay 指定星期（1=周一 … 7=周日）的全部课表
	ListByDay(ctx context.Context, dayOfWeek int) ([]model.LectureSchedule, error)
}

type lectureRepo struct {
	db *gorm.DB
}

// NewLectureRepo 创建 LectureRepository 实例
func NewLectureRepo(db *gorm.DB) LectureRepository {
	return &lectureRepo{db: db}
}

func (r *lectureRepo) Create(ctx context.Context, lecture *model.LectureSchedule) error {
	return r.db.WithContext(ctx).Create(lecture).Error
}

func (r *lectureRepo) ListByDay(ctx context.Context, dayOfWeek int) ([]model.LectureSchedule, error) {
	var lectures []model.LectureSchedule
	err := r.db.WithContext(ctx).
		Where("day_of_week = ?", dayOfWeek).
		Order("start_time ASC").
		Find(&lectures).Error
	return lectures, err
}

// ExamRepository 考试安排数据访问接口
type ExamRepository interface {
	Create(ctx context.Context, exam *model.ExamSchedule) error
	// ListByDate 指定日期的考试（含居家考试，由调用方过滤）
	ListByDate(ctx context.Context, date time.Time) ([]model.ExamSchedule, error)
}

type examRepo struct {
	db *gorm.DB
}

// NewExamRepo 创建 ExamRepository 实例
func NewExamRepo(db *gorm.DB) ExamRepository {
	return &examRepo{db: db}
}

func (r *examRepo) Create(ctx context.Context, exam *model.ExamSchedule) error {
	return r.db.WithContext(ctx).Create(exam).Error
}

func (r *examRepo) ListByDate(ctx context.Context, date time.Time) ([]model.ExamSchedule, error) {
	var exams []model.ExamSchedule
	err := r.db.WithContext(ctx).
		Where("exam_date = ?", date.Format("2006-01-02")).
		Order("start_time ASC").
		Find(&exams).Error
	return exams, err
}
