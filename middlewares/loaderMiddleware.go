package middlewares

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/graph-gophers/dataloader/v7"
	"gorm.io/gorm"

	"bitbucket.org/vetadata/iga_backend/config"
	"bitbucket.org/vetadata/iga_backend/models"
)

type ctxKey string

const loadersKey = ctxKey("dataloaders")

// Loaders batch the id lookups list views fan out into: many users share
// the same handful of centres, zones and departments.
type Loaders struct {
	CentreLoader     *dataloader.Loader[int, *models.Centre]
	ZoneLoader       *dataloader.Loader[int, *models.Zone]
	DepartmentLoader *dataloader.Loader[int, *models.Department]
}

func NewLoaders(db *gorm.DB) *Loaders {
	centreReader := &centreReader{db: db}
	zoneReader := &zoneReader{db: db}
	departmentReader := &departmentReader{db: db}

	return &Loaders{
		CentreLoader:     dataloader.NewBatchedLoader(centreReader.getCentres, dataloader.WithWait[int, *models.Centre](time.Millisecond)),
		ZoneLoader:       dataloader.NewBatchedLoader(zoneReader.getZones, dataloader.WithWait[int, *models.Zone](time.Millisecond)),
		DepartmentLoader: dataloader.NewBatchedLoader(departmentReader.getDepartments, dataloader.WithWait[int, *models.Department](time.Millisecond)),
	}
}

func LoaderMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		loader := NewLoaders(config.GetDB())
		ctx := context.WithValue(c.Request.Context(), loadersKey, loader)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func For(ctx context.Context) *Loaders {
	return ctx.Value(loadersKey).(*Loaders)
}

// handleError creates array of result with the same error repeated for as many items requested
func handleError[T any](itemsLength int, err error) []*dataloader.Result[T] {
	result := make([]*dataloader.Result[T], itemsLength)
	for i := 0; i < itemsLength; i++ {
		result[i] = &dataloader.Result[T]{Error: err}
	}
	return result
}

// generateLoaderResults maps fetched rows back onto the requested id order.
// Missing ids resolve to nil rather than an error.
func generateLoaderResults[T any](results []*T, id func(*T) int, ids []int) []*dataloader.Result[*T] {
	resultMap := make(map[int]*T, len(results))
	for _, result := range results {
		resultMap[id(result)] = result
	}

	loaderResults := make([]*dataloader.Result[*T], 0, len(ids))
	for _, requested := range ids {
		loaderResults = append(loaderResults, &dataloader.Result[*T]{Data: resultMap[requested]})
	}
	return loaderResults
}
