package utils

import (
	"context"

	"github.com/mmdatafocus/bakery_backend/appctx"
)

var (
	ContextKeyUserId        = appctx.ContextKeyUserId
	ContextKeyUserName      = appctx.ContextKeyUserName
	ContextKeyPlatform      = appctx.ContextKeyPlatform
	ContextKeyLocationId    = appctx.ContextKeyLocationId
	ContextKeyCorrelationId = appctx.ContextKeyCorrelationId
)

// DefaultPlatform is stamped on audit fields when the caller did not say where the write came from.
const DefaultPlatform = "Backoffice"

func GetUserIdFromContext(ctx context.Context) (int, bool) {
	return appctx.GetInt(ctx, ContextKeyUserId)
}

func GetUserNameFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyUserName)
}

func GetPlatformFromContext(ctx context.Context) string {
	if p, ok := appctx.GetString(ctx, ContextKeyPlatform); ok && p != "" {
		return p
	}
	return DefaultPlatform
}

func GetLocationIdFromContext(ctx context.Context) (int, bool) {
	return appctx.GetInt(ctx, ContextKeyLocationId)
}

func GetCorrelationIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyCorrelationId)
}

func SetUserIdInContext(ctx context.Context, userId int) context.Context {
	return appctx.Set(ctx, ContextKeyUserId, userId)
}

func SetUserNameInContext(ctx context.Context, userName string) context.Context {
	return appctx.Set(ctx, ContextKeyUserName, userName)
}

func SetPlatformInContext(ctx context.Context, platform string) context.Context {
	return appctx.Set(ctx, ContextKeyPlatform, platform)
}

func SetLocationIdInContext(ctx context.Context, locationId int) context.Context {
	return appctx.Set(ctx, ContextKeyLocationId, locationId)
}

func SetCorrelationIdInContext(ctx context.Context, correlationId string) context.Context {
	return appctx.Set(ctx, ContextKeyCorrelationId, correlationId)
}
