package mysql

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/xiebiao/library/internal/domain/book"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// bookRepository 图书仓储实现(MySQL)
// 设计说明:
// 1. 实现domain/book/repository.go定义的接口
// 2. 负责domain实体与GORM模型之间的转换
// 3. 处理数据库特定的错误(如ISBN重复),转换为业务错误
type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository 创建图书仓储
func NewBookRepository(db *gorm.DB) book.Repository {
	return &bookRepository{db: db}
}

// Create 创建图书
func (r *bookRepository) Create(ctx context.Context, b *book.Book) error {
	model := toBookModel(b)

	if err := conn(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return book.ErrISBNDuplicate
		}
		return apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "创建图书失败")
	}

	b.ID = model.ID
	b.CreatedAt = model.CreatedAt
	b.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByID 根据ID查找图书
func (r *bookRepository) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	return r.first(conn(ctx, r.db), id)
}

// LockByID 悲观锁查询图书
// 借出、修改总量、修正可借数量都先锁住图书行
func (r *bookRepository) LockByID(ctx context.Context, id uint) (*book.Book, error) {
	return r.first(conn(ctx, r.db).Scopes(forUpdate), id)
}

func (r *bookRepository) first(db *gorm.DB, id uint) (*book.Book, error) {
	var model BookModel
	if err := db.Scopes(alive).First(&model, id).Error; err != nil {
		if isNotFound(err) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "查询图书失败")
	}
	return toBookEntity(&model), nil
}

// ExistsByISBN 检查ISBN是否被其他在架图书占用
func (r *bookRepository) ExistsByISBN(ctx context.Context, isbn string, excludeID uint) (bool, error) {
	var count int64
	query := conn(ctx, r.db).Model(&BookModel{}).Scopes(alive).Where("isbn = ?", isbn)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "查询ISBN失败")
	}
	return count > 0, nil
}

// Update 更新图书信息
// 只写业务字段,available_count归修正任务所有
func (r *bookRepository) Update(ctx context.Context, b *book.Book) error {
	err := conn(ctx, r.db).Model(&BookModel{}).
		Where("id = ?", b.ID).
		Updates(map[string]any{
			"isbn":        b.ISBN,
			"title":       b.Title,
			"author":      b.Author,
			"publisher":   b.Publisher,
			"description": b.Description,
			"total_count": b.TotalCount,
			"shelf_id":    b.ShelfID,
			"updated_at":  b.UpdatedAt,
		}).Error
	if err != nil {
		if isDuplicateError(err) {
			return book.ErrISBNDuplicate
		}
		return apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "更新图书失败")
	}
	return nil
}

// Delete 墓碑删除
// deleted_at写入当前时间戳,原ISBN可以被新书复用
func (r *bookRepository) Delete(ctx context.Context, id uint) error {
	result := conn(ctx, r.db).Model(&BookModel{}).
		Scopes(alive).
		Where("id = ?", id).
		Update("deleted_at", time.Now().Unix())
	if result.Error != nil {
		return apperrors.WrapCode(result.Error, apperrors.ErrCodeDatabaseError, "删除图书失败")
	}
	if result.RowsAffected == 0 {
		return book.ErrBookNotFound
	}
	return nil
}

// List 分页查询图书列表
func (r *bookRepository) List(ctx context.Context, params book.ListParams) ([]*book.Book, int64, error) {
	var models []BookModel
	var total int64

	query := conn(ctx, r.db).Model(&BookModel{}).Scopes(alive)

	// 关键词搜索(标题、作者、ISBN)
	if params.Keyword != "" {
		keyword := "%" + params.Keyword + "%"
		query = query.Where("title LIKE ? OR author LIKE ? OR isbn LIKE ?", keyword, keyword, keyword)
	}
	if params.ShelfID != 0 {
		query = query.Where("shelf_id = ?", params.ShelfID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "查询图书总数失败")
	}

	err := query.Order("id ASC").
		Scopes(paginate(params.Page, params.PageSize)).
		Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "查询图书列表失败")
	}

	books := make([]*book.Book, len(models))
	for i := range models {
		books[i] = toBookEntity(&models[i])
	}
	return books, total, nil
}

// CountByShelf 书架上的在架图书数
func (r *bookRepository) CountByShelf(ctx context.Context, shelfID uint) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&BookModel{}).
		Scopes(alive).
		Where("shelf_id = ?", shelfID).
		Count(&count).Error
	if err != nil {
		return 0, apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "统计书架图书失败")
	}
	return count, nil
}

// SetAvailableCount 写入修正后的可借数量
func (r *bookRepository) SetAvailableCount(ctx context.Context, id uint, count int) error {
	err := conn(ctx, r.db).Model(&BookModel{}).
		Where("id = ?", id).
		Update("available_count", count).Error
	if err != nil {
		return apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "更新可借数量失败")
	}
	return nil
}

// =========================================
// 辅助函数:模型转换
// =========================================

func toBookModel(b *book.Book) *BookModel {
	return &BookModel{
		ID:             b.ID,
		ISBN:           b.ISBN,
		Title:          b.Title,
		Author:         b.Author,
		Publisher:      b.Publisher,
		Description:    b.Description,
		TotalCount:     b.TotalCount,
		AvailableCount: b.AvailableCount,
		ShelfID:        b.ShelfID,
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}
}

// toBookEntity GORM模型 → 领域实体
func toBookEntity(model *BookModel) *book.Book {
	return &book.Book{
		ID:             model.ID,
		ISBN:           model.ISBN,
		Title:          model.Title,
		Author:         model.Author,
		Publisher:      model.Publisher,
		Description:    model.Description,
		TotalCount:     model.TotalCount,
		AvailableCount: model.AvailableCount,
		ShelfID:        model.ShelfID,
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	}
}
