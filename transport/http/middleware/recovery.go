package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/redisqueue/pkg/logger"
)

// Recovery turns handler panics into a 500 response and logs the value.
func Recovery(log logger.Logger) gin.HandlerFunc {
	log = logger.OrDiscard(log)
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error("Handler panicked", "method", c.Request.Method, "path", c.Request.URL.Path, "panic", recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "internal server error",
		})
	})
}
