package middlewares

import (
	"context"

	"github.com/graph-gophers/dataloader/v7"
	"gorm.io/gorm"

	"bitbucket.org/vetadata/iga_backend/models"
)

type centreReader struct {
	db *gorm.DB
}

func (r *centreReader) getCentres(ctx context.Context, ids []int) []*dataloader.Result[*models.Centre] {
	var results []*models.Centre
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&results).Error
	if err != nil {
		return handleError[*models.Centre](len(ids), err)
	}

	return generateLoaderResults(results, func(c *models.Centre) int { return c.ID }, ids)
}

func GetCentre(ctx context.Context, id int) (*models.Centre, error) {
	loaders := For(ctx)
	return loaders.CentreLoader.Load(ctx, id)()
}
