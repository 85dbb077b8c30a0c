package models

import (
	"context"
	"time"

	"bitbucket.org/vetadata/iga_backend/config"
	"bitbucket.org/vetadata/iga_backend/utils"
)

// DistributionFormula ties a GFS code to a configurable distribution
// expression, overriding the built-in bucket rates when present.
type DistributionFormula struct {
	ID             int           `gorm:"primary_key" json:"id"`
	Expression     string        `gorm:"size:255;not null" json:"expression"`
	GfsCodeId      int           `gorm:"not null;index" json:"gfs_code_id"`
	GfsCode        *GfsCode      `gorm:"foreignKey:GfsCodeId" json:"gfs_code,omitempty"`
	SystemConfigId int           `gorm:"index" json:"system_config_id"`
	SystemConfig   *SystemConfig `gorm:"foreignKey:SystemConfigId" json:"system_config,omitempty"`
	CreatedAt      time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

type SystemConfig struct {
	ID          int       `gorm:"primary_key" json:"id"`
	ConfigKey   string    `gorm:"size:100;not null;unique" json:"config_key"`
	ConfigValue string    `gorm:"size:255" json:"config_value"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func GetDistributionFormulas(ctx context.Context) ([]*DistributionFormula, error) {
	return utils.FetchAllModels[DistributionFormula](ctx, "GfsCode")
}

func GetDistributionFormulaByGfsCode(ctx context.Context, gfsCodeId int) (*DistributionFormula, error) {
	return utils.FetchModelWhere[DistributionFormula](ctx, "gfs_code_id = ?", gfsCodeId)
}

func GetSystemConfig(ctx context.Context, key string) (*SystemConfig, error) {
	return utils.FetchModelWhere[SystemConfig](ctx, "config_key = ?", key)
}

func SetSystemConfig(ctx context.Context, key, value string) (*SystemConfig, error) {
	db := config.GetDB()

	var cfg SystemConfig
	err := db.WithContext(ctx).Where("config_key = ?", key).First(&cfg).Error
	if err != nil {
		cfg = SystemConfig{ConfigKey: key, ConfigValue: value}
		if err := db.WithContext(ctx).Create(&cfg).Error; err != nil {
			return nil, err
		}
		return &cfg, nil
	}

	cfg.ConfigValue = value
	if err := db.WithContext(ctx).Save(&cfg).Error; err != nil {
		return nil, err
	}
	return &cfg, nil
}
