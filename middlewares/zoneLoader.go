package middlewares

import (
	"context"

	"github.com/graph-gophers/dataloader/v7"
	"gorm.io/gorm"

	"bitbucket.org/vetadata/iga_backend/models"
)

type zoneReader struct {
	db *gorm.DB
}

func (r *zoneReader) getZones(ctx context.Context, ids []int) []*dataloader.Result[*models.Zone] {
	var results []*models.Zone
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&results).Error
	if err != nil {
		return handleError[*models.Zone](len(ids), err)
	}

	return generateLoaderResults(results, func(z *models.Zone) int { return z.ID }, ids)
}

func GetZone(ctx context.Context, id int) (*models.Zone, error) {
	loaders := For(ctx)
	return loaders.ZoneLoader.Load(ctx, id)()
}
