package models

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"bitbucket.org/vetadata/iga_backend/config"
	"bitbucket.org/vetadata/iga_backend/utils"
)

type Centre struct {
	ID        int        `gorm:"primary_key" json:"id"`
	Name      string     `gorm:"size:100;not null;index" json:"name" binding:"required"`
	Code      string     `gorm:"size:20;unique" json:"code"`
	Rank      CentreRank `gorm:"type:enum('A','B','C');not null;default:'A'" json:"rank"`
	ZoneId    int        `gorm:"not null;index" json:"zone_id" binding:"required"`
	Zone      *Zone      `gorm:"foreignKey:ZoneId" json:"zone,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func GetAllCentres(ctx context.Context) ([]*Centre, error) {
	return utils.FetchAllModels[Centre](ctx, "Zone")
}

func GetCentre(ctx context.Context, id int) (*Centre, error) {
	if cached, err := utils.RetrieveRedis[Centre](id); err == nil && cached != nil {
		return cached, nil
	}
	centre, err := utils.FetchSingleModel[Centre](ctx, id, "Zone")
	if err != nil {
		return nil, err
	}
	if err := utils.StoreRedis[Centre](centre, id); err != nil {
		config.LogError(config.GetLogger(), "models", "GetCentre", "redis", centre, err)
	}
	return centre, nil
}

func GetCentresByZone(ctx context.Context, zoneId int) ([]*Centre, error) {
	return utils.FetchModelsWhere[Centre](ctx, "zone_id = ?", zoneId)
}

func CreateCentre(ctx context.Context, input *Centre) (*Centre, error) {
	db := config.GetDB()

	if !input.Rank.IsValid() {
		return nil, errors.New("invalid centre rank")
	}
	if err := utils.ValidateResourceId[Zone](ctx, input.ZoneId); err != nil {
		return nil, errors.New("zone not found")
	}
	if input.Code == "" {
		input.Code = uuid.NewString()[:8]
	} else if err := utils.ValidateUnique[Centre](ctx, "code", input.Code, 0); err != nil {
		return nil, err
	}

	if err := db.WithContext(ctx).Create(input).Error; err != nil {
		return nil, err
	}
	return input, nil
}

// FindOrCreateCentre resolves a centre by upstream name. Unknown centres are
// created rank A under the zone derived from the name's region token.
func FindOrCreateCentre(ctx context.Context, name string) (*Centre, error) {
	db := config.GetDB()

	var centre Centre
	err := db.WithContext(ctx).Where("name = ?", name).First(&centre).Error
	if err == nil {
		return &centre, nil
	}

	zone, err := FindOrCreateZone(ctx, ZoneNameForCentre(name))
	if err != nil {
		return nil, err
	}

	centre = Centre{
		Name:   name,
		Code:   uuid.NewString()[:8],
		Rank:   CentreRankA,
		ZoneId: zone.ID,
	}
	if err := db.WithContext(ctx).Create(&centre).Error; err != nil {
		return nil, err
	}
	return &centre, nil
}

func (input *Centre) UpdateCentre(ctx context.Context, id int) (*Centre, error) {
	db := config.GetDB()

	var existing Centre
	if err := db.WithContext(ctx).First(&existing, id).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	if input.Name != "" {
		existing.Name = input.Name
	}
	if input.Code != "" {
		if err := utils.ValidateUnique[Centre](ctx, "code", input.Code, id); err != nil {
			return nil, err
		}
		existing.Code = input.Code
	}
	if input.Rank != "" {
		if !input.Rank.IsValid() {
			return nil, errors.New("invalid centre rank")
		}
		existing.Rank = input.Rank
	}
	if input.ZoneId != 0 {
		if err := utils.ValidateResourceId[Zone](ctx, input.ZoneId); err != nil {
			return nil, errors.New("zone not found")
		}
		existing.ZoneId = input.ZoneId
	}
	if err := db.WithContext(ctx).Save(&existing).Error; err != nil {
		return nil, err
	}
	if err := utils.RemoveRedisItem[Centre](id); err != nil {
		config.LogError(config.GetLogger(), "models", "UpdateCentre", "redis", existing, err)
	}
	return &existing, nil
}

func DeleteCentre(ctx context.Context, id int) error {
	db := config.GetDB()

	var centre Centre
	if err := db.WithContext(ctx).First(&centre, id).Error; err != nil {
		return utils.ErrorRecordNotFound
	}

	var collectionCount int64
	if err := db.WithContext(ctx).Model(&Collection{}).Where("centre_id = ?", id).Count(&collectionCount).Error; err != nil {
		return err
	}
	if collectionCount > 0 {
		return errors.New("centre has collections")
	}

	if err := db.WithContext(ctx).Delete(&centre).Error; err != nil {
		return err
	}
	return utils.RemoveRedisItem[Centre](id)
}
