package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kart-io/redisqueue/pkg/errors"
)

// Response is the envelope returned by every mutating endpoint.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func ok(c *gin.Context, message string) {
	c.JSON(http.StatusOK, Response{Success: true, Message: message})
}

func fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Response{Success: false, Message: message})
}

// failErr maps err onto an HTTP status through its error code. Errors
// without a code are treated as internal failures.
func failErr(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	if code, found := apperrors.GetErrorCode(err); found {
		status = apperrors.HTTPStatus(code)
	}
	_ = c.Error(err)
	fail(c, status, err.Error())
}
