package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Muharom433/SIMPELUNYbackup-sub005/internal/model"
)

// DepartmentRepository 院系数据访问接口
type DepartmentRepository interface {
	Create(ctx context.Context, dept *model.Department) error
	List(ctx context.Context) ([]model.Department, error)
}

// departmentRepo DepartmentRepository 的 GORM 实现
type departmentRepo struct {
	db *gorm.DB
}

// NewDepartmentRepo 创建 DepartmentRepository 实例
func NewDepartmentRepo(db *gorm.DB) DepartmentRepository {
	return &departmentRepo{db: db}
}

func (r *departmentRepo) Create(ctx context.Context, dept *model.Department) error {
	return r.db.WithContext(ctx).Create(dept).Error
}

func (r *departmentRepo) List(ctx context.Context) ([]model.Department, error) {
	var depts []model.Department
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&depts).Error
	return depts, err
}

// StudyProgramRepository 学习项目数据访问接口
type StudyProgramRepository interface {
	List(ctx context.Context) ([]model.StudyProgram, error)
}

type studyProgramRepo struct {
	db *gorm.DB
}

// NewStudyProgramRepo 创建 StudyProgramRepository 实例
func NewStudyProgramRepo(db *gorm.DB) StudyProgramRepository {
	return &studyProgramRepo{db: db}
}

func (r *studyProgramRepo) List(ctx context.Context) ([]model.StudyProgram, error) {
	var programs []model.StudyProgram
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&programs).Error
	return programs, err
}

// EquipmentRepository 设备数据访问接口
type EquipmentRepository interface {
	// ListAvailable 可借用设备，按分类、名称排序
	ListAvailable(ctx context.Context) ([]model.Equipment, error)
	// CountAvailableByIDs 统计给定 ID 中可借用的设备数量
	CountAvailableByIDs(ctx context.Context, ids []string) (int64, error)
}

type equipmentRepo struct {
	db *gorm.DB
}

// NewEquipmentRepo 创建 EquipmentRepository 实例
func NewEquipmentRepo(db *gorm.DB) EquipmentRepository {
	return &equipmentRepo{db: db}
}

func (r *equipmentRepo) ListAvailable(ctx context.Context) ([]model.Equipment, error) {
	var items []model.Equipment
	err := r.db.WithContext(ctx).
		Where("is_available = ?", true).
		Order("category ASC, name ASC").
		Find(&items).Error
	return items, err
}

func (r *equipmentRepo) CountAvailableByIDs(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Equipment{}).
		Where("equipment_id IN ? AND is_available = ?", ids, true).
		Count(&count).Error
	return count, err
}
