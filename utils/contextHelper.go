package utils

import (
	"context"

	"bitbucket.org/vetadata/iga_backend/appctx"
)

// Alias the shared context key type so existing code keeps working.
type contextKey = appctx.ContextKey

var (
	ContextKeyToken         = appctx.ContextKeyToken
	ContextKeyUsername      = appctx.ContextKeyUsername
	ContextKeyUserId        = appctx.ContextKeyUserId
	ContextKeyRole          = appctx.ContextKeyRole
	ContextKeyUserType      = appctx.ContextKeyUserType
	ContextKeyCentreName    = appctx.ContextKeyCentreName
	ContextKeyZoneName      = appctx.ContextKeyZoneName
	ContextKeyCorrelationId = appctx.ContextKeyCorrelationId
)

func GetTokenFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyToken)
}

func GetUsernameFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyUsername)
}

func GetUserIdFromContext(ctx context.Context) (int, bool) {
	return appctx.GetInt(ctx, ContextKeyUserId)
}

func GetRoleFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyRole)
}

func GetUserTypeFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyUserType)
}

func GetCentreNameFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyCentreName)
}

func GetZoneNameFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyZoneName)
}

func GetCorrelationIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyCorrelationId)
}

func SetTokenInContext(ctx context.Context, token string) context.Context {
	return appctx.Set(ctx, ContextKeyToken, token)
}

func SetUsernameInContext(ctx context.Context, username string) context.Context {
	return appctx.Set(ctx, ContextKeyUsername, username)
}

func SetUserIdInContext(ctx context.Context, userId int) context.Context {
	return appctx.Set(ctx, ContextKeyUserId, userId)
}

func SetRoleInContext(ctx context.Context, role string) context.Context {
	return appctx.Set(ctx, ContextKeyRole, role)
}

func SetUserTypeInContext(ctx context.Context, userType string) context.Context {
	return appctx.Set(ctx, ContextKeyUserType, userType)
}

func SetCentreNameInContext(ctx context.Context, centre string) context.Context {
	return appctx.Set(ctx, ContextKeyCentreName, centre)
}

func SetZoneNameInContext(ctx context.Context, zone string) context.Context {
	return appctx.Set(ctx, ContextKeyZoneName, zone)
}

func SetCorrelationIdInContext(ctx context.Context, correlationId string) context.Context {
	return appctx.Set(ctx, ContextKeyCorrelationId, correlationId)
}
