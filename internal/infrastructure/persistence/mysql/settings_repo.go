package mysql

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/library/internal/domain/settings"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

type settingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository 创建设置项仓储
func NewSettingsRepository(db *gorm.DB) settings.Repository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) Get(ctx context.Context, key settings.Key) (*settings.Setting, error) {
	var model SettingModel
	err := conn(ctx, r.db).Where("setting_key = ?", string(key)).First(&model).Error
	if err != nil {
		if isNotFound(err) {
			return nil, settings.ErrSettingNotFound
		}
		return nil, apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "查询设置失败")
	}
	return &settings.Setting{
		Key:       settings.Key(model.Key),
		Value:     model.Value,
		UpdatedAt: model.UpdatedAt,
	}, nil
}

// Upsert INSERT ... ON DUPLICATE KEY UPDATE(SQLite为ON CONFLICT)
func (r *settingsRepository) Upsert(ctx context.Context, s *settings.Setting) error {
	model := &SettingModel{
		Key:       string(s.Key),
		Value:     s.Value,
		UpdatedAt: s.UpdatedAt,
	}
	err := conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "setting_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"setting_value", "updated_at"}),
	}).Create(model).Error
	if err != nil {
		return apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "保存设置失败")
	}
	s.UpdatedAt = model.UpdatedAt
	return nil
}
