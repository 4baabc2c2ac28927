package mysql

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/xiebiao/library/internal/domain/calendar"
	"github.com/xiebiao/library/internal/domain/reservation"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// reservationRepository 预约仓储实现
// 待处理(pending)即completed = false
type reservationRepository struct {
	db *gorm.DB
}

// NewReservationRepository 创建预约仓储
func NewReservationRepository(db *gorm.DB) reservation.Repository {
	return &reservationRepository{db: db}
}

func (r *reservationRepository) Create(ctx context.Context, res *reservation.Reservation) error {
	model := &ReservationModel{
		BookID:          res.BookID,
		UserID:          res.UserID,
		ReservationDate: toDateValue(res.ReservationDate),
		Completed:       res.Completed,
		CreatedAt:       res.CreatedAt,
		UpdatedAt:       res.UpdatedAt,
	}
	if err := conn(ctx, r.db).Create(model).Error; err != nil {
		return apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "创建预约失败")
	}
	res.ID = model.ID
	res.CreatedAt = model.CreatedAt
	res.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *reservationRepository) FindByID(ctx context.Context, id uint) (*reservation.Reservation, error) {
	return r.first(conn(ctx, r.db), id)
}

func (r *reservationRepository) LockByID(ctx context.Context, id uint) (*reservation.Reservation, error) {
	return r.first(conn(ctx, r.db).Scopes(forUpdate), id)
}

func (r *reservationRepository) first(db *gorm.DB, id uint) (*reservation.Reservation, error) {
	var model ReservationModel
	if err := db.First(&model, id).Error; err != nil {
		if isNotFound(err) {
			return nil, reservation.ErrReservationNotFound
		}
		return nil, apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "查询预约失败")
	}
	return toReservationEntity(&model), nil
}

func (r *reservationRepository) Update(ctx context.Context, res *reservation.Reservation) error {
	err := conn(ctx, r.db).Model(&ReservationModel{}).
		Where("id = ?", res.ID).
		Updates(map[string]any{
			"reservation_date": toDateValue(res.ReservationDate),
			"completed":        res.Completed,
			"updated_at":       res.UpdatedAt,
		}).Error
	if err != nil {
		return apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "更新预约失败")
	}
	return nil
}

// Delete 取消预约(物理删除)
func (r *reservationRepository) Delete(ctx context.Context, id uint) error {
	result := conn(ctx, r.db).Delete(&ReservationModel{}, id)
	if result.Error != nil {
		return apperrors.WrapCode(result.Error, apperrors.ErrCodeDatabaseError, "删除预约失败")
	}
	if result.RowsAffected == 0 {
		return reservation.ErrReservationNotFound
	}
	return nil
}

func (r *reservationRepository) pending(ctx context.Context) *gorm.DB {
	return conn(ctx, r.db).Model(&ReservationModel{}).Where("completed = ?", false)
}

func (r *reservationRepository) ExistsPendingByUserFrom(ctx context.Context, userID uint, date calendar.Date) (bool, error) {
	var count int64
	err := r.pending(ctx).
		Where("user_id = ? AND reservation_date >= ?", userID, toDateValue(date)).
		Count(&count).Error
	if err != nil {
		return false, apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "查询待处理预约失败")
	}
	return count > 0, nil
}

func (r *reservationRepository) ExistsPendingByUserCreatedAfter(ctx context.Context, userID uint, since time.Time) (bool, error) {
	var count int64
	err := r.pending(ctx).
		Where("user_id = ? AND created_at > ?", userID, since).
		Count(&count).Error
	if err != nil {
		return false, apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "查询待处理预约失败")
	}
	return count > 0, nil
}

// CountPendingByBookBetween 借出时检查:借期内被其他用户预约的副本数
func (r *reservationRepository) CountPendingByBookBetween(ctx context.Context, bookID uint, from, to calendar.Date, excludeUserID uint) (int64, error) {
	var count int64
	query := r.pending(ctx).
		Where("book_id = ? AND reservation_date >= ? AND reservation_date < ?", bookID, toDateValue(from), toDateValue(to))
	if excludeUserID != 0 {
		query = query.Where("user_id <> ?", excludeUserID)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "统计预约失败")
	}
	return count, nil
}

// CountPendingByBookFrom 预约时检查:该日期及之后已占用的副本数
func (r *reservationRepository) CountPendingByBookFrom(ctx context.Context, bookID uint, date calendar.Date, excludeID uint) (int64, error) {
	var count int64
	query := r.pending(ctx).
		Where("book_id = ? AND reservation_date >= ?", bookID, toDateValue(date))
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "统计预约失败")
	}
	return count, nil
}

// CompletePending 借到书后完成该用户对这本书的全部待处理预约
func (r *reservationRepository) CompletePending(ctx context.Context, bookID, userID uint) (int64, error) {
	result := r.pending(ctx).
		Where("book_id = ? AND user_id = ?", bookID, userID).
		Updates(map[string]any{
			"completed":  true,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return 0, apperrors.WrapCode(result.Error, apperrors.ErrCodeDatabaseError, "完成预约失败")
	}
	return result.RowsAffected, nil
}

// List 按预约日期排序
func (r *reservationRepository) List(ctx context.Context, params reservation.ListParams) ([]*reservation.Reservation, int64, error) {
	var models []ReservationModel
	var total int64

	query := conn(ctx, r.db).Model(&ReservationModel{})
	if params.UserID != 0 {
		query = query.Where("user_id = ?", params.UserID)
	}
	if params.BookID != 0 {
		query = query.Where("book_id = ?", params.BookID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "查询预约总数失败")
	}
	err := query.Order("reservation_date ASC").Order("id ASC").
		Scopes(paginate(params.Page, params.PageSize)).
		Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "查询预约列表失败")
	}

	list := make([]*reservation.Reservation, len(models))
	for i := range models {
		list[i] = toReservationEntity(&models[i])
	}
	return list, total, nil
}

func toReservationEntity(model *ReservationModel) *reservation.Reservation {
	return &reservation.Reservation{
		ID:              model.ID,
		BookID:          model.BookID,
		UserID:          model.UserID,
		ReservationDate: model.ReservationDate.Date(),
		Completed:       model.Completed,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}
}
