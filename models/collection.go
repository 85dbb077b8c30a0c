package models

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"bitbucket.org/vetadata/iga_backend/config"
	"bitbucket.org/vetadata/iga_backend/utils"
)

// Collection is one payment receipt pulled from the upstream gateway.
// ControlNumber may be empty for older gateway records.
type Collection struct {
	ID            int             `gorm:"primary_key" json:"id"`
	CustomerId    int             `gorm:"not null;index" json:"customer_id"`
	Customer      *Customer       `gorm:"foreignKey:CustomerId" json:"customer,omitempty"`
	CentreId      int             `gorm:"not null;index:idx_collections_centre_date" json:"centre_id"`
	Centre        *Centre         `gorm:"foreignKey:CentreId" json:"centre,omitempty"`
	GfsCodeId     int             `gorm:"not null;index" json:"gfs_code_id"`
	GfsCode       *GfsCode        `gorm:"foreignKey:GfsCodeId" json:"gfs_code,omitempty"`
	AmountBilled  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount_billed"`
	AmountPaid    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount_paid"`
	Description   string          `gorm:"size:255" json:"description"`
	ControlNumber string          `gorm:"size:50;index" json:"control_number"`
	PaymentType   string          `gorm:"size:50" json:"payment_type"`
	Date          time.Time       `gorm:"not null;index:idx_collections_centre_date" json:"date"`
	LastFetched   *time.Time      `json:"last_fetched"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// GetCollectionsInRange loads the scope window for the report pipeline. Both
// bounds are inclusive.
func GetCollectionsInRange(ctx context.Context, start, end time.Time) ([]*Collection, error) {
	db := config.GetDB()

	var results []*Collection
	err := db.WithContext(ctx).
		Preload("Customer").Preload("Centre").Preload("Centre.Zone").Preload("GfsCode").
		Where("date >= ? AND date < ?", start, end.AddDate(0, 0, 1)).
		Order("date DESC").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// CollectionMaxDate returns MAX(date), the sync cursor base. Returns the
// zero time when the table is empty.
func CollectionMaxDate(ctx context.Context) (time.Time, error) {
	db := config.GetDB()

	var max *time.Time
	err := db.WithContext(ctx).Model(&Collection{}).Select("MAX(date)").Scan(&max).Error
	if err != nil {
		return time.Time{}, err
	}
	if max == nil {
		return time.Time{}, nil
	}
	return *max, nil
}

// FindExistingCollection locates a row using the stable upsert key. Amounts
// are excluded so re-fetched rows with corrected amounts match.
func FindExistingCollection(ctx context.Context, controlNumber, customerName, gfsCode string, centreId int, date time.Time, description string) (*Collection, error) {
	db := config.GetDB()

	query := db.WithContext(ctx).Model(&Collection{}).
		Joins("JOIN gfs_codes ON gfs_codes.id = collections.gfs_code_id").
		Where("gfs_codes.code = ?", gfsCode).
		Where("collections.centre_id = ?", centreId).
		Where("collections.date = ?", date).
		Where("collections.description = ?", description)

	if controlNumber != "" {
		query = query.Where("collections.control_number = ?", controlNumber)
	} else {
		query = query.
			Joins("JOIN customers ON customers.id = collections.customer_id").
			Where("customers.name = ?", customerName)
	}

	var result Collection
	if err := query.First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Collection) Save(ctx context.Context) error {
	db := config.GetDB()
	if err := db.WithContext(ctx).Save(c).Error; err != nil {
		return err
	}
	return utils.RemoveRedisList[Collection]()
}

func CountCollections(ctx context.Context) (int64, error) {
	return utils.ResourceCountWhere[Collection](ctx, "1 = 1")
}
