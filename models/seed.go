package models

import (
	"context"

	"github.com/sirupsen/logrus"

	"bitbucket.org/vetadata/iga_backend/config"
	"bitbucket.org/vetadata/iga_backend/utils"
)

// SeedAll populates lookup data on an empty database. Each seeder is a
// no-op when its table already has rows.
func SeedAll(ctx context.Context) error {
	if err := SeedGfsCodes(ctx); err != nil {
		return err
	}
	if err := SeedDepartments(ctx); err != nil {
		return err
	}
	if err := SeedAdminUser(ctx); err != nil {
		return err
	}
	if err := SeedDistributionFormulas(ctx); err != nil {
		return err
	}
	return SeedApiKeys(ctx)
}

func SeedGfsCodes(ctx context.Context) error {
	db := config.GetDB()

	var count int64
	if err := db.WithContext(ctx).Model(&GfsCode{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	codes := []GfsCode{
		{Code: "142301600001", Description: "Vocational Short and Tailor made course fees", MarkupPercent: "0.4"},
		{Code: "142202120086", Description: "Tuition Fees", MarkupPercent: "0.1"},
		{Code: "142201610607", Description: "Miscellaneous receipts", MarkupPercent: "0.2"},
		{Code: "142301610001", Description: "Receipt from Vocational Workshop Production", MarkupPercent: "0.3"},
		{Code: "142201360007", Description: "Receipts from Examination Fees", MarkupPercent: "0.1"},
		{Code: "142202540053", Description: "Receipts from Application Fee", MarkupPercent: "0.1"},
		{Code: "141501070049", Description: "Rent - Government Quarter and Offices", MarkupPercent: "0.1"},
		{Code: "142201530014", Description: "Receipt from Annual Fees", MarkupPercent: "0.1"},
		{Code: "142201230004", Description: "Receipts from Full Registration", MarkupPercent: "0.1"},
		{Code: "0", Description: "Extra amount paid", MarkupPercent: "0.1"},
		{Code: "142201220001", Description: "Receipts from Sale of Tender Document", MarkupPercent: "0.1"},
		{Code: "143101010018", Description: "Fines, Penalties and Forfetures", MarkupPercent: "0.1"},
		{Code: "112011010001", Description: "Payroll/Skills and Development Levy", MarkupPercent: "0.1"},
		{Code: "142202110012", Description: "Salary in Lieu of Notice", MarkupPercent: "0.1"},
		{Code: "142201270030", Description: "Receipt from Inspection Fees", MarkupPercent: "0.1"},
	}

	if err := db.WithContext(ctx).Create(&codes).Error; err != nil {
		return err
	}
	config.GetLogger().WithField("count", len(codes)).Info("gfs codes seeded")
	return nil
}

func SeedDepartments(ctx context.Context) error {
	db := config.GetDB()

	var count int64
	if err := db.WithContext(ctx).Model(&Department{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	departments := []Department{{Name: "ICT"}, {Name: "Finance"}}
	if err := db.WithContext(ctx).Create(&departments).Error; err != nil {
		return err
	}
	config.GetLogger().Info("departments seeded: ICT, Finance")
	return nil
}

func SeedAdminUser(ctx context.Context) error {
	db := config.GetDB()

	var count int64
	if err := db.WithContext(ctx).Model(&User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashed, err := utils.HashPassword("password123")
	if err != nil {
		return err
	}

	admin := User{
		FirstName:   "System",
		MiddleName:  "",
		LastName:    "Administrator",
		Username:    "admin",
		Email:       "admin@veta.go.tz",
		PhoneNumber: "1234567890",
		Password:    string(hashed),
		Role:        RoleAdmin,
		UserType:    UserTypeHQ,
		Status:      UserStatusActive,
	}
	var department Department
	if err := db.WithContext(ctx).First(&department).Error; err == nil {
		admin.DepartmentId = &department.ID
	}

	if err := db.WithContext(ctx).Create(&admin).Error; err != nil {
		return err
	}
	config.GetLogger().WithField("username", admin.Username).Info("admin user seeded")
	return nil
}

// SeedDistributionFormulas stores the bucket rates as system config and one
// formula row per seeded GFS code so the admin screens can show how profit
// is derived.
func SeedDistributionFormulas(ctx context.Context) error {
	db := config.GetDB()

	rates := map[string]string{
		"rate_central_iga":        "0.30",
		"rate_central_activity":   "0.04",
		"rate_zonal_activity":     "0.04",
		"rate_centre_activity":    "0.02",
		"rate_centre_fund":        "0.60",
		"rate_remitted_to_centre": "0.62",
	}
	for key, value := range rates {
		if _, err := SetSystemConfig(ctx, key, value); err != nil {
			return err
		}
	}

	var count int64
	if err := db.WithContext(ctx).Model(&DistributionFormula{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	codes, err := GetAllGfsCodes(ctx)
	if err != nil {
		return err
	}
	formulas := make([]DistributionFormula, 0, len(codes))
	for _, code := range codes {
		formulas = append(formulas, DistributionFormula{
			Expression: "expenditure = total / (1 + " + code.MarkupPercent + "); profit = total - expenditure",
			GfsCodeId:  code.ID,
		})
	}
	if len(formulas) == 0 {
		return nil
	}
	if err := db.WithContext(ctx).Create(&formulas).Error; err != nil {
		return err
	}
	config.GetLogger().WithField("count", len(formulas)).Info("distribution formulas seeded")
	return nil
}

func SeedApiKeys(ctx context.Context) error {
	db := config.GetDB()

	var count int64
	if err := db.WithContext(ctx).Model(&ApiKey{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	adminKey, err := CreateApiKey(ctx, "ADMIN_SYSTEM")
	if err != nil {
		return err
	}
	serviceKey, err := CreateApiKey(ctx, "ALLOCATION_SERVICE")
	if err != nil {
		return err
	}
	config.GetLogger().WithFields(logrus.Fields{
		"admin_owner":   adminKey.Owner,
		"service_owner": serviceKey.Owner,
	}).Info("api keys seeded")
	return nil
}
