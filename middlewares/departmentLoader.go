package middlewares

import (
	"context"

	"github.com/graph-gophers/dataloader/v7"
	"gorm.io/gorm"

	"bitbucket.org/vetadata/iga_backend/models"
)

type departmentReader struct {
	db *gorm.DB
}

func (r *departmentReader) getDepartments(ctx context.Context, ids []int) []*dataloader.Result[*models.Department] {
	var results []*models.Department
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&results).Error
	if err != nil {
		return handleError[*models.Department](len(ids), err)
	}

	return generateLoaderResults(results, func(d *models.Department) int { return d.ID }, ids)
}

func GetDepartment(ctx context.Context, id int) (*models.Department, error) {
	loaders := For(ctx)
	return loaders.DepartmentLoader.Load(ctx, id)()
}
