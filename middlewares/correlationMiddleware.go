package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bitbucket.org/vetadata/iga_backend/utils"
)

// CorrelationMiddleware attaches a correlation id to every request: the
// caller's x-correlation-id when present, a fresh one otherwise. The id is
// echoed back so dashboard issues can be matched to server logs.
func CorrelationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		cid := c.GetHeader("x-correlation-id")
		if cid == "" {
			cid = uuid.NewString()
		}
		c.Request = c.Request.WithContext(utils.SetCorrelationIdInContext(c.Request.Context(), cid))
		c.Header("x-correlation-id", cid)
		c.Next()
	}
}
