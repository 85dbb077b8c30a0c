package models

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"bitbucket.org/vetadata/iga_backend/config"
	"bitbucket.org/vetadata/iga_backend/utils"
)

// Allocation is one distribution line: a centre's takings for one GFS code
// split into expenditure, profit and the administrative contribution buckets.
type Allocation struct {
	ID                 int             `gorm:"primary_key" json:"id"`
	OriginalAmount     decimal.Decimal `gorm:"type:decimal(12,2)" json:"original_amount"`
	ExpenditureAmount  decimal.Decimal `gorm:"type:decimal(12,4)" json:"expenditure_amount"`
	ProfitAmount       decimal.Decimal `gorm:"type:decimal(12,4)" json:"profit_amount"`
	DifferenceOnMarkup decimal.Decimal `gorm:"type:decimal(12,4)" json:"difference_on_markup"`

	ContributionToCentralIGA decimal.Decimal `gorm:"type:decimal(12,2)" json:"contribution_to_central_iga"`
	FacilitationCentral      decimal.Decimal `gorm:"type:decimal(12,2)" json:"facilitation_central"`
	FacilitationZonal        decimal.Decimal `gorm:"type:decimal(12,2)" json:"facilitation_zonal"`
	FacilitationCentre       decimal.Decimal `gorm:"type:decimal(12,2)" json:"facilitation_centre"`
	SupportToProductionUnit  decimal.Decimal `gorm:"type:decimal(12,2)" json:"support_to_production_unit"`
	ContributionToCentreFund decimal.Decimal `gorm:"type:decimal(12,2)" json:"contribution_to_centre_fund"`
	DepreciationIncentive    decimal.Decimal `gorm:"type:decimal(12,2)" json:"depreciation_incentive"`
	RemittedToCentre         decimal.Decimal `gorm:"type:decimal(12,2)" json:"remitted_to_centre"`

	GfsCode            string `gorm:"size:40" json:"gfs_code"`
	GfsCodeDescription string `gorm:"size:255" json:"gfs_code_description"`

	CentreId int     `gorm:"not null;index" json:"centre_id"`
	Centre   *Centre `gorm:"foreignKey:CentreId" json:"centre,omitempty"`

	Date      time.Time `gorm:"not null" json:"date"`
	Month     int       `gorm:"column:allocation_month" json:"month"`
	Year      int       `gorm:"column:allocation_year" json:"year"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func GetAllocationsByCentre(ctx context.Context, centreId int) ([]*Allocation, error) {
	return utils.FetchModelsWhere[Allocation](ctx, "centre_id = ?", centreId)
}

func GetAllocationsForMonth(ctx context.Context, year, month int) ([]*Allocation, error) {
	db := config.GetDB()

	var results []*Allocation
	err := db.WithContext(ctx).
		Preload("Centre").Preload("Centre.Zone").
		Where("allocation_year = ? AND allocation_month = ?", year, month).
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// SaveAllocations replaces the stored lines for one month in a single
// transaction.
func SaveAllocations(ctx context.Context, year, month int, allocations []*Allocation) error {
	db := config.GetDB()

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("allocation_year = ? AND allocation_month = ?", year, month).
			Delete(&Allocation{}).Error; err != nil {
			return err
		}
		for _, a := range allocations {
			a.Year = year
			a.Month = month
			if err := tx.Create(a).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
