package mysql

import (
	"context"
	"errors"
	"log"

	"book-order-service/internal/domain"
	"book-order-service/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type settingRepo struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) repository.SettingRepository {
	return &settingRepo{db: db}
}

func (r *settingRepo) GetSettings(ctx context.Context) (*domain.AdminSetting, error) {
	var s domain.AdminSetting
	if err := r.db.WithContext(ctx).First(&s, "id = ?", domain.SettingsKey).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.Printf("GetSettings error: %v", err)
		return nil, err
	}
	return &s, nil
}

func (r *settingRepo) SaveSettings(ctx context.Context, setting *domain.AdminSetting) error {
	setting.ID = domain.SettingsKey
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(setting).Error
	if err != nil {
		log.Printf("SaveSettings error: %v", err)
		return err
	}
	return nil
}
