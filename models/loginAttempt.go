package models

import (
	"context"
	"time"

	"bitbucket.org/vetadata/iga_backend/config"
	"bitbucket.org/vetadata/iga_backend/utils"
)

type LoginAttempt struct {
	ID        int                `gorm:"primary_key" json:"id"`
	Username  string             `gorm:"size:150;not null;index" json:"username"`
	IpAddress string             `gorm:"size:45" json:"ip_address"`
	Status    LoginAttemptStatus `gorm:"type:enum('SUCCESS','FAILURE');not null" json:"status"`
	CreatedAt time.Time          `gorm:"autoCreateTime" json:"created_at"`
}

// LogLoginAttempt records an attempt; a write failure is logged but never
// blocks the login flow.
func LogLoginAttempt(ctx context.Context, username, ipAddress string, status LoginAttemptStatus) {
	db := config.GetDB()

	attempt := LoginAttempt{
		Username:  username,
		IpAddress: ipAddress,
		Status:    status,
	}
	if err := db.WithContext(ctx).Create(&attempt).Error; err != nil {
		config.LogError(config.GetLogger(), "models", "LogLoginAttempt", "create", attempt, err)
	}
}

func GetLoginAttempts(ctx context.Context, username string, limit int) ([]*LoginAttempt, error) {
	db := config.GetDB()

	var results []*LoginAttempt
	query := db.WithContext(ctx).Order("created_at DESC")
	if username != "" {
		query = query.Where("username = ?", username)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// RecentFailedAttempts counts failures for a username inside a window, used
// for lockout decisions.
func RecentFailedAttempts(ctx context.Context, username string, window time.Duration) (int64, error) {
	since := time.Now().Add(-window)
	return utils.ResourceCountWhere[LoginAttempt](ctx,
		"username = ? AND status = ? AND created_at >= ?", username, LoginAttemptFailure, since)
}
