package models

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"bitbucket.org/vetadata/iga_backend/config"
	"bitbucket.org/vetadata/iga_backend/utils"
)

// Apposhment is a centre's service-income apportionment for a date range,
// with per-service derived shares.
type Apposhment struct {
	ID            int                      `gorm:"primary_key" json:"id"`
	StartDate     time.Time                `gorm:"not null" json:"start_date"`
	EndDate       time.Time                `gorm:"not null" json:"end_date"`
	CentreId      int                      `gorm:"not null;index" json:"centre_id"`
	Centre        *Centre                  `gorm:"foreignKey:CentreId" json:"centre,omitempty"`
	Services      []ServiceItem            `gorm:"foreignKey:ApposhmentId" json:"services"`
	Distributions []ApposhmentDistribution `gorm:"foreignKey:ApposhmentId" json:"distributions,omitempty"`
	CreatedAt     time.Time                `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time                `gorm:"autoUpdateTime" json:"updated_at"`
}

type ServiceItem struct {
	ID                    int             `gorm:"primary_key" json:"id"`
	ApposhmentId          int             `gorm:"not null;index" json:"apposhment_id"`
	ServiceName           string          `gorm:"size:150;not null" json:"service_name"`
	ServiceReturnProfit   decimal.Decimal `gorm:"type:decimal(12,2)" json:"service_return_profit"`
	Executors             decimal.Decimal `gorm:"type:decimal(12,2)" json:"executors"`
	SupportersToExecutors decimal.Decimal `gorm:"type:decimal(12,2)" json:"supporters_to_executors"`
	AgencyFee             decimal.Decimal `gorm:"type:decimal(12,2)" json:"agency_fee"`
	AmountPaid            decimal.Decimal `gorm:"type:decimal(12,2)" json:"amount_paid"`
	CreatedAt             time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type ApposhmentDistribution struct {
	ID           int             `gorm:"primary_key" json:"id"`
	ApposhmentId int             `gorm:"not null;index" json:"apposhment_id"`
	Name         string          `gorm:"size:100;not null" json:"name"`
	Description  string          `gorm:"size:255" json:"description"`
	Amount       decimal.Decimal `gorm:"type:decimal(12,2)" json:"amount"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

var ErrApposhmentExists = errors.New("apposhment already exists for this centre and range")

func GetAllApposhments(ctx context.Context) ([]*Apposhment, error) {
	return utils.FetchAllModels[Apposhment](ctx, "Centre", "Services")
}

func GetApposhment(ctx context.Context, id int) (*Apposhment, error) {
	return utils.FetchSingleModel[Apposhment](ctx, id, "Centre", "Services", "Distributions")
}

func GetApposhmentsByCentre(ctx context.Context, centreId int) ([]*Apposhment, error) {
	db := config.GetDB()

	var results []*Apposhment
	err := db.WithContext(ctx).
		Preload("Centre").Preload("Services").
		Where("centre_id = ?", centreId).
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// ApposhmentExists reports whether a record already covers the centre and
// range.
func ApposhmentExists(ctx context.Context, centreId int, startDate, endDate time.Time) (bool, error) {
	count, err := utils.ResourceCountWhere[Apposhment](ctx,
		"centre_id = ? AND start_date = ? AND end_date = ?", centreId, startDate, endDate)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateApposhment saves the apposhment with its service items in one
// transaction.
func CreateApposhment(ctx context.Context, apposhment *Apposhment) error {
	db := config.GetDB()

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(apposhment).Error; err != nil {
			return err
		}
		if err := utils.RemoveRedisList[Apposhment](); err != nil {
			config.LogError(config.GetLogger(), "models", "CreateApposhment", "redis", apposhment, err)
		}
		return nil
	})
}

func DeleteApposhment(ctx context.Context, id int) error {
	db := config.GetDB()

	var apposhment Apposhment
	if err := db.WithContext(ctx).First(&apposhment, id).Error; err != nil {
		return utils.ErrorRecordNotFound
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("apposhment_id = ?", id).Delete(&ServiceItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("apposhment_id = ?", id).Delete(&ApposhmentDistribution{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&apposhment).Error; err != nil {
			return err
		}
		return utils.RemoveRedisList[Apposhment]()
	})
}
