package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bitbucket.org/vetadata/iga_backend/models"
	"bitbucket.org/vetadata/iga_backend/utils"
)

// ApiKeyMiddleware guards machine-to-machine endpoints. A valid X-API-KEY
// grants HQ-wide visibility under the key owner's name and records the call
// for usage auditing.
func ApiKeyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.Request.Header.Get("X-API-KEY")
		if key == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "api key required"})
			c.Abort()
			return
		}

		apiKey, err := models.ValidateApiKey(c.Request.Context(), key)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid api key"})
			c.Abort()
			return
		}

		ctx := utils.SetUsernameInContext(c.Request.Context(), apiKey.Owner)
		ctx = utils.SetUserTypeInContext(ctx, string(models.UserTypeHQ))
		c.Request = c.Request.WithContext(ctx)

		models.RecordApiUsage(ctx, apiKey.Owner, apiKey.Owner, c.FullPath(), c.Request.Method)
		c.Next()
	}
}
