package models

import (
	"context"
	"time"

	"bitbucket.org/vetadata/iga_backend/config"
)

type AuditLog struct {
	ID         int       `gorm:"primary_key" json:"id"`
	Action     string    `gorm:"size:100;not null" json:"action"`
	ObjectType string    `gorm:"size:50" json:"object_type"`
	ObjectId   int       `json:"object_id"`
	IpAddress  string    `gorm:"size:45" json:"ip_address"`
	UserAgent  string    `gorm:"size:255" json:"user_agent"`
	UserId     *int      `gorm:"index" json:"user_id"`
	User       *User     `gorm:"foreignKey:UserId" json:"user,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// RecordAudit writes an audit entry. Failures are logged, not propagated.
func RecordAudit(ctx context.Context, user *User, action, objectType string, objectId int, ipAddress, userAgent string) {
	db := config.GetDB()

	entry := AuditLog{
		Action:     action,
		ObjectType: objectType,
		ObjectId:   objectId,
		IpAddress:  ipAddress,
		UserAgent:  userAgent,
	}
	if user != nil {
		entry.UserId = &user.ID
	}
	if err := db.WithContext(ctx).Create(&entry).Error; err != nil {
		config.LogError(config.GetLogger(), "models", "RecordAudit", "create", entry, err)
	}
}

func GetAuditLogs(ctx context.Context, userId, limit int) ([]*AuditLog, error) {
	db := config.GetDB()

	var results []*AuditLog
	query := db.WithContext(ctx).Preload("User").Order("created_at DESC")
	if userId != 0 {
		query = query.Where("user_id = ?", userId)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&results).Error; err != nil {
		return nil, err
	}
	for _, a := range results {
		if a.User != nil {
			a.User.PrepareGive()
		}
	}
	return results, nil
}
