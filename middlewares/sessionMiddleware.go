package middlewares

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mmdatafocus/bakery_backend/utils"
)

const (
	HeaderUserId        = "X-User-Id"
	HeaderUserName      = "X-User-Name"
	HeaderPlatform      = "X-Platform"
	HeaderLocationId    = "X-Location-Id"
	HeaderCorrelationId = "X-Correlation-Id"
)

// SessionMiddleware moves the caller identity headers set by the gateway into the
// request context, where the audit stamps pick them up. Every request gets a
// correlation id, echoed back in the response.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if raw := c.GetHeader(HeaderUserId); raw != "" {
			userId, err := strconv.Atoi(raw)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid " + HeaderUserId})
				return
			}
			ctx = utils.SetUserIdInContext(ctx, userId)
		}
		if name := c.GetHeader(HeaderUserName); name != "" {
			ctx = utils.SetUserNameInContext(ctx, name)
		}
		if platform := c.GetHeader(HeaderPlatform); platform != "" {
			ctx = utils.SetPlatformInContext(ctx, platform)
		}
		if raw := c.GetHeader(HeaderLocationId); raw != "" {
			if locationId, err := strconv.Atoi(raw); err == nil {
				ctx = utils.SetLocationIdInContext(ctx, locationId)
			}
		}

		correlationId := c.GetHeader(HeaderCorrelationId)
		if correlationId == "" {
			correlationId = uuid.NewString()
		}
		ctx = utils.SetCorrelationIdInContext(ctx, correlationId)
		c.Header(HeaderCorrelationId, correlationId)

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
