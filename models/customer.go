package models

import (
	"context"
	"strings"
	"time"

	"bitbucket.org/vetadata/iga_backend/config"
	"bitbucket.org/vetadata/iga_backend/utils"
)

type Customer struct {
	ID              int       `gorm:"primary_key" json:"id"`
	Name            string    `gorm:"size:150;not null;index" json:"name" binding:"required"`
	Email           string    `gorm:"size:150" json:"email"`
	AdmissionNumber string    `gorm:"size:50" json:"admission_number"`
	PhoneNumber     string    `gorm:"size:20" json:"phone_number"`
	PayStation      string    `gorm:"size:100" json:"pay_station"`
	CentreId        int       `gorm:"not null;index" json:"centre_id"`
	Centre          *Centre   `gorm:"foreignKey:CentreId" json:"centre,omitempty"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func GetAllCustomers(ctx context.Context) ([]*Customer, error) {
	return utils.FetchAllModels[Customer](ctx, "Centre")
}

func GetCustomer(ctx context.Context, id int) (*Customer, error) {
	return utils.FetchSingleModel[Customer](ctx, id, "Centre")
}

func GetCustomersByCentre(ctx context.Context, centreId int) ([]*Customer, error) {
	return utils.FetchModelsWhere[Customer](ctx, "centre_id = ?", centreId)
}

// SearchCustomers matches name, email or admission number, capped at
// config.SearchLimit rows for typeahead use.
func SearchCustomers(ctx context.Context, term string) ([]*Customer, error) {
	db := config.GetDB()

	var customers []*Customer
	like := "%" + strings.TrimSpace(term) + "%"
	err := db.WithContext(ctx).
		Where("name LIKE ? OR email LIKE ? OR admission_number LIKE ?", like, like, like).
		Order("name ASC").
		Limit(config.SearchLimit).
		Find(&customers).Error
	if err != nil {
		return nil, err
	}
	return customers, nil
}

func CreateCustomer(ctx context.Context, input *Customer) (*Customer, error) {
	db := config.GetDB()

	if input.Email != "" && !utils.IsValidEmail(input.Email) {
		return nil, errInvalidEmail
	}
	if input.PhoneNumber != "" {
		if err := utils.ValidatePhoneNumber(input.PhoneNumber, utils.CountryCode); err != nil {
			return nil, err
		}
	}
	if err := utils.ValidateResourceId[Centre](ctx, input.CentreId); err != nil {
		return nil, errCentreNotFound
	}
	if err := db.WithContext(ctx).Create(input).Error; err != nil {
		return nil, err
	}
	return input, nil
}

// FindOrCreateCustomer resolves a customer by name within a centre. Unknown
// customers get a placeholder email derived from the name.
func FindOrCreateCustomer(ctx context.Context, name string, centreId int) (*Customer, error) {
	db := config.GetDB()

	if strings.TrimSpace(name) == "" {
		name = "UNKNOWN"
	}

	var customer Customer
	err := db.WithContext(ctx).Where("name = ? AND centre_id = ?", name, centreId).First(&customer).Error
	if err == nil {
		return &customer, nil
	}

	emailName := strings.ToLower(strings.ReplaceAll(name, " ", "."))
	if emailName == "" {
		emailName = "unknown"
	}
	customer = Customer{
		Name:     name,
		Email:    emailName + "@example.com",
		CentreId: centreId,
	}
	if err := db.WithContext(ctx).Create(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (input *Customer) UpdateCustomer(ctx context.Context, id int) (*Customer, error) {
	db := config.GetDB()

	var existing Customer
	if err := db.WithContext(ctx).First(&existing, id).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	if input.Name != "" {
		existing.Name = input.Name
	}
	if input.Email != "" {
		if !utils.IsValidEmail(input.Email) {
			return nil, errInvalidEmail
		}
		existing.Email = input.Email
	}
	if input.PhoneNumber != "" {
		if err := utils.ValidatePhoneNumber(input.PhoneNumber, utils.CountryCode); err != nil {
			return nil, err
		}
		existing.PhoneNumber = input.PhoneNumber
	}
	if input.AdmissionNumber != "" {
		existing.AdmissionNumber = input.AdmissionNumber
	}
	if input.PayStation != "" {
		existing.PayStation = input.PayStation
	}
	if input.CentreId != 0 {
		if err := utils.ValidateResourceId[Centre](ctx, input.CentreId); err != nil {
			return nil, errCentreNotFound
		}
		existing.CentreId = input.CentreId
	}
	if err := db.WithContext(ctx).Save(&existing).Error; err != nil {
		return nil, err
	}
	if err := utils.RemoveRedisItem[Customer](id); err != nil {
		config.LogError(config.GetLogger(), "models", "UpdateCustomer", "redis", existing, err)
	}
	return &existing, nil
}

func DeleteCustomer(ctx context.Context, id int) error {
	db := config.GetDB()

	var customer Customer
	if err := db.WithContext(ctx).First(&customer, id).Error; err != nil {
		return utils.ErrorRecordNotFound
	}
	if err := db.WithContext(ctx).Delete(&customer).Error; err != nil {
		return err
	}
	return utils.RemoveRedisItem[Customer](id)
}
