package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"bitbucket.org/vetadata/iga_backend/config"
	"bitbucket.org/vetadata/iga_backend/utils"
)

type Zone struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:100;not null;unique" json:"name" binding:"required"`
	Code      string    `gorm:"size:20" json:"code"`
	Centres   []Centre  `gorm:"foreignKey:ZoneId" json:"centres,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// regionZones maps the first token of an upstream centre name (a region) to
// its administrative zone. Unknown regions fall into HIGHLAND ZONE.
var regionZones = map[string]string{
	"DODOMA": "CENTRAL ZONE", "SINDIDA": "CENTRAL ZONE", "MANYARA": "CENTRAL ZONE",
	"MWANZA": "LAKE ZONE", "MARA": "LAKE ZONE", "KAGERA": "LAKE ZONE", "GEITA": "LAKE ZONE",
	"MBEYA": "SOUTH WEST ZONE", "RUKWA": "SOUTH WEST ZONE",
	"DAR":    "DSM ZONE",
	"ARUSHA": "NORTHERN ZONE", "TANGA": "NORTHERN ZONE",
	"KIGOMA": "WESTERN ZONE", "TABORA": "WESTERN ZONE", "SHINYANGA": "WESTERN ZONE", "SIMIYU": "WESTERN ZONE",
	"PWANI": "EASTERN ZONE", "KIHONDA": "EASTERN ZONE", "MIKUMI": "EASTERN ZONE",
	"MTWARA": "SOUTH EAST ZONE", "LINDI": "SOUTH EAST ZONE",
	"IRINGA": "HIGHLAND ZONE", "NJOMBE": "HIGHLAND ZONE",
}

const defaultZoneName = "HIGHLAND ZONE"

// ZoneNameForRegion resolves a region token to its zone name.
func ZoneNameForRegion(region string) string {
	name := strings.ToUpper(strings.TrimSpace(region))
	if name == "" {
		return defaultZoneName
	}
	if zone, ok := regionZones[name]; ok {
		return zone
	}
	return defaultZoneName
}

// ZoneNameForCentre derives the zone from a centre name's leading region
// token.
func ZoneNameForCentre(centreName string) string {
	token := ""
	if fields := strings.Fields(centreName); len(fields) > 0 {
		token = fields[0]
	}
	return ZoneNameForRegion(token)
}

func GetAllZones(ctx context.Context) ([]*Zone, error) {
	return utils.FetchAllModels[Zone](ctx)
}

func GetZone(ctx context.Context, id int) (*Zone, error) {
	if cached, err := utils.RetrieveRedis[Zone](id); err == nil && cached != nil {
		return cached, nil
	}
	zone, err := utils.FetchSingleModel[Zone](ctx, id, "Centres")
	if err != nil {
		return nil, err
	}
	if err := utils.StoreRedis[Zone](zone, id); err != nil {
		config.LogError(config.GetLogger(), "models", "GetZone", "redis", zone, err)
	}
	return zone, nil
}

func CreateZone(ctx context.Context, input *Zone) (*Zone, error) {
	db := config.GetDB()

	if err := utils.ValidateUnique[Zone](ctx, "name", input.Name, 0); err != nil {
		return nil, err
	}
	if input.Code == "" {
		input.Code = uuid.NewString()[:8]
	}
	if err := db.WithContext(ctx).Create(input).Error; err != nil {
		return nil, err
	}
	return input, nil
}

// FindOrCreateZone resolves a zone by name, creating it with a generated
// code on first sight. Used by the sync worker.
func FindOrCreateZone(ctx context.Context, name string) (*Zone, error) {
	db := config.GetDB()

	var zone Zone
	err := db.WithContext(ctx).Where("name = ?", name).First(&zone).Error
	if err == nil {
		return &zone, nil
	}

	zone = Zone{Name: name, Code: uuid.NewString()[:8]}
	if err := db.WithContext(ctx).Create(&zone).Error; err != nil {
		return nil, err
	}
	return &zone, nil
}

func (input *Zone) UpdateZone(ctx context.Context, id int) (*Zone, error) {
	db := config.GetDB()

	var existing Zone
	if err := db.WithContext(ctx).First(&existing, id).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	if input.Name != "" {
		if err := utils.ValidateUnique[Zone](ctx, "name", input.Name, id); err != nil {
			return nil, err
		}
		existing.Name = input.Name
	}
	if input.Code != "" {
		existing.Code = input.Code
	}
	if err := db.WithContext(ctx).Save(&existing).Error; err != nil {
		return nil, err
	}
	if err := utils.RemoveRedisItem[Zone](id); err != nil {
		config.LogError(config.GetLogger(), "models", "UpdateZone", "redis", existing, err)
	}
	return &existing, nil
}

func DeleteZone(ctx context.Context, id int) error {
	db := config.GetDB()

	var zone Zone
	if err := db.WithContext(ctx).First(&zone, id).Error; err != nil {
		return utils.ErrorRecordNotFound
	}

	var centreCount int64
	if err := db.WithContext(ctx).Model(&Centre{}).Where("zone_id = ?", id).Count(&centreCount).Error; err != nil {
		return err
	}
	if centreCount > 0 {
		return errors.New("zone has centres")
	}

	if err := db.WithContext(ctx).Delete(&zone).Error; err != nil {
		return err
	}
	return utils.RemoveRedisItem[Zone](id)
}
