package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/xiebiao/library/internal/domain/calendar"
	"github.com/xiebiao/library/internal/domain/lending"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// lendingRepository 借阅记录仓储实现
type lendingRepository struct {
	db *gorm.DB
}

// NewLendingRepository 创建借阅记录仓储
func NewLendingRepository(db *gorm.DB) lending.Repository {
	return &lendingRepository{db: db}
}

func (r *lendingRepository) Create(ctx context.Context, tx *lending.Transaction) error {
	model := toLendModel(tx)
	if err := conn(ctx, r.db).Create(model).Error; err != nil {
		return apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "创建借阅记录失败")
	}
	tx.CreatedAt = model.CreatedAt
	tx.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *lendingRepository) FindByID(ctx context.Context, id string) (*lending.Transaction, error) {
	return r.first(conn(ctx, r.db), id)
}

// LockByID 归还与缴费互斥
func (r *lendingRepository) LockByID(ctx context.Context, id string) (*lending.Transaction, error) {
	return r.first(conn(ctx, r.db).Scopes(forUpdate), id)
}

func (r *lendingRepository) first(db *gorm.DB, id string) (*lending.Transaction, error) {
	var model LendTransactionModel
	if err := db.Where("id = ?", id).First(&model).Error; err != nil {
		if isNotFound(err) {
			return nil, lending.ErrTransactionNotFound
		}
		return nil, apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "查询借阅记录失败")
	}
	return toLendEntity(&model), nil
}

// Update 只写归还状态与已付滞纳金,其余字段借出后不再变化
func (r *lendingRepository) Update(ctx context.Context, tx *lending.Transaction) error {
	err := conn(ctx, r.db).Model(&LendTransactionModel{}).
		Where("id = ?", tx.ID).
		Updates(map[string]any{
			"returned":      tx.Returned,
			"return_date":   tx.ReturnDate,
			"late_fee_paid": tx.LateFeePaid,
			"updated_at":    tx.UpdatedAt,
		}).Error
	if err != nil {
		return apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "更新借阅记录失败")
	}
	return nil
}

func (r *lendingRepository) ExistsUnreturnedByUser(ctx context.Context, userID uint) (bool, error) {
	var count int64
	err := conn(ctx, r.db).Model(&LendTransactionModel{}).
		Where("user_id = ? AND returned = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return false, apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "查询未归还借阅失败")
	}
	return count > 0, nil
}

func (r *lendingRepository) CountUnreturnedByBook(ctx context.Context, bookID uint) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&LendTransactionModel{}).
		Where("book_id = ? AND returned = ?", bookID, false).
		Count(&count).Error
	if err != nil {
		return 0, apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "统计未归还借阅失败")
	}
	return count, nil
}

func (r *lendingRepository) CountUnreturnedByBookDueBy(ctx context.Context, bookID uint, date calendar.Date) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&LendTransactionModel{}).
		Where("book_id = ? AND returned = ? AND deadline_date <= ?", bookID, false, toDateValue(date)).
		Count(&count).Error
	if err != nil {
		return 0, apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "统计到期借阅失败")
	}
	return count, nil
}

// List 按借出时间倒序
func (r *lendingRepository) List(ctx context.Context, params lending.ListParams) ([]*lending.Transaction, int64, error) {
	var models []LendTransactionModel
	var total int64

	query := conn(ctx, r.db).Model(&LendTransactionModel{})
	if params.UserID != 0 {
		query = query.Where("user_id = ?", params.UserID)
	}
	if params.Returned != nil {
		query = query.Where("returned = ?", *params.Returned)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "查询借阅总数失败")
	}
	err := query.Order("lend_date DESC").Order("id ASC").
		Scopes(paginate(params.Page, params.PageSize)).
		Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "查询借阅列表失败")
	}

	txs := make([]*lending.Transaction, len(models))
	for i := range models {
		txs[i] = toLendEntity(&models[i])
	}
	return txs, total, nil
}

func toLendModel(tx *lending.Transaction) *LendTransactionModel {
	return &LendTransactionModel{
		ID:           tx.ID,
		BookID:       tx.BookID,
		UserID:       tx.UserID,
		LenderID:     tx.LenderID,
		LendDate:     tx.LendDate,
		DeadlineDate: toDateValue(tx.DeadlineDate),
		ReturnDate:   tx.ReturnDate,
		LateFeePaid:  tx.LateFeePaid,
		Returned:     tx.Returned,
		CreatedAt:    tx.CreatedAt,
		UpdatedAt:    tx.UpdatedAt,
	}
}

func toLendEntity(model *LendTransactionModel) *lending.Transaction {
	return &lending.Transaction{
		ID:           model.ID,
		BookID:       model.BookID,
		UserID:       model.UserID,
		LenderID:     model.LenderID,
		LendDate:     model.LendDate,
		DeadlineDate: model.DeadlineDate.Date(),
		ReturnDate:   model.ReturnDate,
		LateFeePaid:  model.LateFeePaid,
		Returned:     model.Returned,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}
