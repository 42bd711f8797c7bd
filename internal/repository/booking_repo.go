package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Muharom433/SIMPELUNYbackup-sub005/internal/model"
	pkgerrors "github.com/Muharom433/SIMPELUNYbackup-sub005/pkg/errors"
)

// BookingRepository 预约数据访问接口
type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	// ListApprovedBetween 已批准且与 [from, to) 有交集的预约（结束时间为空视为有交集）
	ListApprovedBetween(ctx context.Context, from, to time.Time) ([]model.Booking, error)
	// SupersedeAndCreate 在同一事务内将房间现有 approved 预约置为 completed 并插入新预约，
	// 返回被替换的预约 ID；任一步失败则整体回滚
	SupersedeAndCreate(ctx context.Context, booking *model.Booking) ([]string, error)
}

// bookingRepo BookingRepository 的 GORM 实现
type bookingRepo struct {
	db *gorm.DB
}

// NewBookingRepo 创建 BookingRepository 实例
func NewBookingRepo(db *gorm.DB) BookingRepository {
	return &bookingRepo{db: db}
}

func (r *bookingRepo) Create(ctx context.Context, booking *model.Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *bookingRepo) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	var booking model.Booking
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", id).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepo) ListApprovedBetween(ctx context.Context, from, to time.Time) ([]model.Booking, error) {
	var bookings []model.Booking
	err := r.db.WithContext(ctx).
		Where("status = ?", model.BookingStatusApproved).
		Where("start_time < ?", to).
		// 无结束时间的预约只归属开始当天
		Where("end_time >= ? OR (end_time IS NULL AND start_time >= ?)", from, from).
		Order("start_time ASC").
		Find(&bookings).Error
	return bookings, err
}

func (r *bookingRepo) SupersedeAndCreate(ctx context.Context, booking *model.Booking) ([]string, error) {
	var superseded []string

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current []model.Booking
		if err := tx.Select("booking_id", "version").
			Where("room_id = ? AND status = ?", booking.RoomID, model.BookingStatusApproved).
			Find(&current).Error; err != nil {
			return fmt.Errorf("%w: 查询待替换预约: %w", pkgerrors.ErrSupersede, err)
		}

		for _, b := range current {
			res := tx.Model(&model.Booking{}).
				Where("booking_id = ? AND version = ?", b.BookingID, b.Version).
				Updates(map[string]interface{}{
					"status":     model.BookingStatusCompleted,
					"version":    gorm.Expr("version + 1"),
					"updated_at": gorm.Expr("NOW()"),
					"updated_by": booking.UserID,
				})
			if res.Error != nil {
				return fmt.Errorf("%w: 预约 %s: %w", pkgerrors.ErrSupersede, b.BookingID, res.Error)
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("%w: 预约 %s: %w", pkgerrors.ErrSupersede, b.BookingID, pkgerrors.ErrOptimisticLock)
			}
			superseded = append(superseded, b.BookingID)
		}

		if err := tx.Create(booking).Error; err != nil {
			return fmt.Errorf("插入预约失败: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return superseded, nil
}
