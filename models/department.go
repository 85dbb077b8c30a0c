package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/vetadata/iga_backend/config"
	"bitbucket.org/vetadata/iga_backend/utils"
)

type Department struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:100;not null;unique" json:"name" binding:"required"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func GetAllDepartments(ctx context.Context) ([]*Department, error) {
	return utils.FetchAllModels[Department](ctx)
}

func GetDepartment(ctx context.Context, id int) (*Department, error) {
	return utils.FetchSingleModel[Department](ctx, id)
}

func CreateDepartment(ctx context.Context, input *Department) (*Department, error) {
	db := config.GetDB()

	if err := utils.ValidateUnique[Department](ctx, "name", input.Name, 0); err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Create(input).Error; err != nil {
		return nil, err
	}
	return input, nil
}

func (input *Department) UpdateDepartment(ctx context.Context, id int) (*Department, error) {
	db := config.GetDB()

	var existing Department
	if err := db.WithContext(ctx).First(&existing, id).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	if input.Name != "" {
		if err := utils.ValidateUnique[Department](ctx, "name", input.Name, id); err != nil {
			return nil, err
		}
		existing.Name = input.Name
	}
	if err := db.WithContext(ctx).Save(&existing).Error; err != nil {
		return nil, err
	}
	return &existing, nil
}

func DeleteDepartment(ctx context.Context, id int) error {
	db := config.GetDB()

	var department Department
	if err := db.WithContext(ctx).First(&department, id).Error; err != nil {
		return utils.ErrorRecordNotFound
	}

	var userCount int64
	if err := db.WithContext(ctx).Model(&User{}).Where("department_id = ?", id).Count(&userCount).Error; err != nil {
		return err
	}
	if userCount > 0 {
		return errors.New("department has users")
	}

	return db.WithContext(ctx).Delete(&department).Error
}
