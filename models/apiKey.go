package models

import (
	"context"
	"time"

	"github.com/google/uuid"

	"bitbucket.org/vetadata/iga_backend/config"
	"bitbucket.org/vetadata/iga_backend/utils"
)

// ApiKey authenticates machine clients (the allocation service, upstream
// push triggers) via the X-API-KEY header.
type ApiKey struct {
	ID        int       `gorm:"primary_key" json:"id"`
	ApiKey    string    `gorm:"size:64;not null;unique" json:"api_key"`
	Owner     string    `gorm:"size:100;not null" json:"owner"`
	Active    bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type ApiUsage struct {
	ID          int       `gorm:"primary_key" json:"id"`
	Username    string    `gorm:"size:150" json:"username"`
	ApiKeyOwner string    `gorm:"size:100" json:"api_key_owner"`
	Endpoint    string    `gorm:"size:255" json:"endpoint"`
	Method      string    `gorm:"size:10" json:"method"`
	Timestamp   time.Time `gorm:"autoCreateTime" json:"timestamp"`
}

// ValidateApiKey resolves an active key, caching hits under ApiKey:<key>.
func ValidateApiKey(ctx context.Context, key string) (*ApiKey, error) {
	var cached *ApiKey
	exists, err := config.GetRedisObject("ApiKey:"+key, &cached)
	if err == nil && exists && cached != nil && cached.Active {
		return cached, nil
	}

	db := config.GetDB()
	var apiKey ApiKey
	if err := db.WithContext(ctx).Where("api_key = ? AND active = ?", key, true).First(&apiKey).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}

	if err := config.SetRedisObject("ApiKey:"+key, &apiKey, utils.GetCacheLifespan()); err != nil {
		config.LogError(config.GetLogger(), "models", "ValidateApiKey", "redis", apiKey.Owner, err)
	}
	return &apiKey, nil
}

// RecordApiUsage logs a key-authenticated call. Never blocks the request.
func RecordApiUsage(ctx context.Context, username, owner, endpoint, method string) {
	db := config.GetDB()

	usage := ApiUsage{
		Username:    username,
		ApiKeyOwner: owner,
		Endpoint:    endpoint,
		Method:      method,
	}
	if err := db.WithContext(ctx).Create(&usage).Error; err != nil {
		config.LogError(config.GetLogger(), "models", "RecordApiUsage", "create", usage, err)
	}
}

func GetAllApiKeys(ctx context.Context) ([]*ApiKey, error) {
	return utils.FetchAllModels[ApiKey](ctx)
}

func CreateApiKey(ctx context.Context, owner string) (*ApiKey, error) {
	db := config.GetDB()

	apiKey := ApiKey{
		ApiKey: uuid.NewString(),
		Owner:  owner,
		Active: true,
	}
	if err := db.WithContext(ctx).Create(&apiKey).Error; err != nil {
		return nil, err
	}
	return &apiKey, nil
}

func RevokeApiKey(ctx context.Context, id int) error {
	db := config.GetDB()

	var apiKey ApiKey
	if err := db.WithContext(ctx).First(&apiKey, id).Error; err != nil {
		return utils.ErrorRecordNotFound
	}
	if err := db.WithContext(ctx).Model(&apiKey).Update("active", false).Error; err != nil {
		return err
	}
	return config.RemoveRedisKey("ApiKey:" + apiKey.ApiKey)
}
