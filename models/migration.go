package models

import (
	"log"

	"bitbucket.org/vetadata/iga_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Zone{}, &Centre{}, &Department{},
		&Customer{}, &GfsCode{}, &Collection{},
		&Allocation{},
		&Apposhment{}, &ServiceItem{}, &ApposhmentDistribution{},
		&DistributionFormula{}, &SystemConfig{},
		&User{}, &ApiKey{}, &ApiUsage{},
		&AuditLog{}, &LoginAttempt{},
		&ExportArchive{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
