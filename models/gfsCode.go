package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"bitbucket.org/vetadata/iga_backend/config"
	"bitbucket.org/vetadata/iga_backend/utils"
)

// GfsCode is a government financial statistics service classification. The
// markup percent is stored as entered ("40", "40%" or "0.4") and parsed on
// use.
type GfsCode struct {
	ID            int       `gorm:"primary_key" json:"id"`
	Code          string    `gorm:"size:20;not null;unique" json:"code" binding:"required"`
	Description   string    `gorm:"size:255" json:"description"`
	MarkupPercent string    `gorm:"size:20" json:"markup_percent"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Markup returns the markup as a fraction. Values above 1 are treated as
// whole percentages, so "40" and "40%" both parse to 0.4. Unparseable input
// parses to zero.
func (g GfsCode) Markup() decimal.Decimal {
	return ParseMarkup(g.MarkupPercent)
}

func ParseMarkup(markupPercent string) decimal.Decimal {
	t := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(markupPercent), "%"))
	if t == "" {
		return decimal.Zero
	}
	parsed, err := decimal.NewFromString(t)
	if err != nil {
		return decimal.Zero
	}
	if parsed.GreaterThan(decimal.NewFromInt(1)) {
		return parsed.DivRound(decimal.NewFromInt(100), 4)
	}
	return parsed
}

func GetAllGfsCodes(ctx context.Context) ([]*GfsCode, error) {
	if cached, err := utils.RetrieveRedisList[GfsCode](); err == nil && cached != nil {
		return cached, nil
	}
	codes, err := utils.FetchAllModels[GfsCode](ctx)
	if err != nil {
		return nil, err
	}
	if err := utils.StoreRedisList[GfsCode](codes); err != nil {
		config.LogError(config.GetLogger(), "models", "GetAllGfsCodes", "redis", nil, err)
	}
	return codes, nil
}

func GetGfsCode(ctx context.Context, id int) (*GfsCode, error) {
	return utils.FetchSingleModel[GfsCode](ctx, id)
}

func CreateGfsCode(ctx context.Context, input *GfsCode) (*GfsCode, error) {
	db := config.GetDB()

	if err := utils.ValidateUnique[GfsCode](ctx, "code", input.Code, 0); err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Create(input).Error; err != nil {
		return nil, err
	}
	if err := utils.RemoveRedisList[GfsCode](); err != nil {
		config.LogError(config.GetLogger(), "models", "CreateGfsCode", "redis", input, err)
	}
	return input, nil
}

// FindOrCreateGfsCode resolves a code seen in upstream data, creating a bare
// record when the code is unknown.
func FindOrCreateGfsCode(ctx context.Context, code string) (*GfsCode, error) {
	db := config.GetDB()

	var gfs GfsCode
	err := db.WithContext(ctx).Where("code = ?", code).First(&gfs).Error
	if err == nil {
		return &gfs, nil
	}

	gfs = GfsCode{Code: code}
	if err := db.WithContext(ctx).Create(&gfs).Error; err != nil {
		return nil, err
	}
	return &gfs, nil
}

func (input *GfsCode) UpdateGfsCode(ctx context.Context, id int) (*GfsCode, error) {
	db := config.GetDB()

	var existing GfsCode
	if err := db.WithContext(ctx).First(&existing, id).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	if input.Code != "" {
		if err := utils.ValidateUnique[GfsCode](ctx, "code", input.Code, id); err != nil {
			return nil, err
		}
		existing.Code = input.Code
	}
	if input.Description != "" {
		existing.Description = input.Description
	}
	if input.MarkupPercent != "" {
		existing.MarkupPercent = input.MarkupPercent
	}
	if err := db.WithContext(ctx).Save(&existing).Error; err != nil {
		return nil, err
	}
	if err := utils.RemoveRedisList[GfsCode](); err != nil {
		config.LogError(config.GetLogger(), "models", "UpdateGfsCode", "redis", existing, err)
	}
	return &existing, nil
}

func DeleteGfsCode(ctx context.Context, id int) error {
	db := config.GetDB()

	var gfs GfsCode
	if err := db.WithContext(ctx).First(&gfs, id).Error; err != nil {
		return utils.ErrorRecordNotFound
	}

	var collectionCount int64
	if err := db.WithContext(ctx).Model(&Collection{}).Where("gfs_code_id = ?", id).Count(&collectionCount).Error; err != nil {
		return err
	}
	if collectionCount > 0 {
		return errors.New("gfs code has collections")
	}

	if err := db.WithContext(ctx).Delete(&gfs).Error; err != nil {
		return err
	}
	return utils.RemoveRedisList[GfsCode]()
}
