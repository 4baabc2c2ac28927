package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/xiebiao/library/internal/domain/shelf"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// shelfRepository 书架仓储实现
// 书架是物理删除,名称由唯一索引保证不重复
type shelfRepository struct {
	db *gorm.DB
}

// NewShelfRepository 创建书架仓储
func NewShelfRepository(db *gorm.DB) shelf.Repository {
	return &shelfRepository{db: db}
}

func (r *shelfRepository) Create(ctx context.Context, s *shelf.Shelf) error {
	model := &ShelfModel{
		Name:              s.Name,
		Capacity:          s.Capacity,
		AvailableCapacity: s.AvailableCapacity,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
	if err := conn(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return shelf.ErrShelfNameDuplicate
		}
		return apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "创建书架失败")
	}
	s.ID = model.ID
	s.CreatedAt = model.CreatedAt
	s.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *shelfRepository) FindByID(ctx context.Context, id uint) (*shelf.Shelf, error) {
	return r.first(conn(ctx, r.db), id)
}

// LockByID 图书上架、换架、修正剩余容量时锁住书架行
func (r *shelfRepository) LockByID(ctx context.Context, id uint) (*shelf.Shelf, error) {
	return r.first(conn(ctx, r.db).Scopes(forUpdate), id)
}

func (r *shelfRepository) first(db *gorm.DB, id uint) (*shelf.Shelf, error) {
	var model ShelfModel
	if err := db.First(&model, id).Error; err != nil {
		if isNotFound(err) {
			return nil, shelf.ErrShelfNotFound
		}
		return nil, apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "查询书架失败")
	}
	return toShelfEntity(&model), nil
}

func (r *shelfRepository) ExistsByName(ctx context.Context, name string, excludeID uint) (bool, error) {
	var count int64
	query := conn(ctx, r.db).Model(&ShelfModel{}).Where("name = ?", name)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "查询书架名称失败")
	}
	return count > 0, nil
}

// Update 只写名称与容量
func (r *shelfRepository) Update(ctx context.Context, s *shelf.Shelf) error {
	err := conn(ctx, r.db).Model(&ShelfModel{}).
		Where("id = ?", s.ID).
		Updates(map[string]any{
			"name":       s.Name,
			"capacity":   s.Capacity,
			"updated_at": s.UpdatedAt,
		}).Error
	if err != nil {
		if isDuplicateError(err) {
			return shelf.ErrShelfNameDuplicate
		}
		return apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "更新书架失败")
	}
	return nil
}

func (r *shelfRepository) Delete(ctx context.Context, id uint) error {
	result := conn(ctx, r.db).Delete(&ShelfModel{}, id)
	if result.Error != nil {
		return apperrors.WrapCode(result.Error, apperrors.ErrCodeDatabaseError, "删除书架失败")
	}
	if result.RowsAffected == 0 {
		return shelf.ErrShelfNotFound
	}
	return nil
}

func (r *shelfRepository) List(ctx context.Context, page, pageSize int) ([]*shelf.Shelf, int64, error) {
	var models []ShelfModel
	var total int64

	query := conn(ctx, r.db).Model(&ShelfModel{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "查询书架总数失败")
	}
	if err := query.Order("id ASC").Scopes(paginate(page, pageSize)).Find(&models).Error; err != nil {
		return nil, 0, apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "查询书架列表失败")
	}

	shelves := make([]*shelf.Shelf, len(models))
	for i := range models {
		shelves[i] = toShelfEntity(&models[i])
	}
	return shelves, total, nil
}

func (r *shelfRepository) SetAvailableCapacity(ctx context.Context, id uint, capacity int) error {
	err := conn(ctx, r.db).Model(&ShelfModel{}).
		Where("id = ?", id).
		Update("available_capacity", capacity).Error
	if err != nil {
		return apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "更新剩余容量失败")
	}
	return nil
}

func toShelfEntity(model *ShelfModel) *shelf.Shelf {
	return &shelf.Shelf{
		ID:                model.ID,
		Name:              model.Name,
		Capacity:          model.Capacity,
		AvailableCapacity: model.AvailableCapacity,
		CreatedAt:         model.CreatedAt,
		UpdatedAt:         model.UpdatedAt,
	}
}
