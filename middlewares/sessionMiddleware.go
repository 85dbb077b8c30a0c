package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bitbucket.org/vetadata/iga_backend/config"
	"bitbucket.org/vetadata/iga_backend/utils"
)

// SessionMiddleware resolves the session token into the viewer's identity
// and scope. Requests without a token pass through anonymous; the per-route
// guards decide whether that is acceptable.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Request.Header.Get("token")
		if token == "" {
			if auth := c.Request.Header.Get("Authorization"); len(auth) > len("Bearer ") {
				token = auth[len("Bearer "):]
			}
		}
		if token == "" {
			c.Next()
			return
		}

		username, exists, err := config.GetRedisValue("Token:" + token)
		if err != nil || !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		validated, err := utils.JwtValidate(token)
		if err != nil || !validated.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		claims, ok := validated.Claims.(*utils.JwtCustomClaim)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		ctx := utils.SetTokenInContext(c.Request.Context(), token)
		ctx = utils.SetUsernameInContext(ctx, username)
		ctx = utils.SetUserIdInContext(ctx, claims.ID)
		ctx = utils.SetRoleInContext(ctx, claims.Role)
		ctx = utils.SetUserTypeInContext(ctx, claims.UserType)
		ctx = utils.SetCentreNameInContext(ctx, claims.Centre)
		ctx = utils.SetZoneNameInContext(ctx, claims.Zone)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
