package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/stockcast/internal/domain/dto"
)

// ErrorHandler renders errors attached with c.Error as a JSON ErrorResponse
// when the handler did not write a response itself.
//
// A dto.ErrorResponse carried in the error chain keeps its message; anything
// else becomes a 500 "Internal server error".
func ErrorHandler(c *gin.Context) {
	c.Next()

	if len(c.Errors) == 0 || c.Writer.Written() {
		return
	}

	last := c.Errors.Last().Err
	status := c.Writer.Status()
	if status < http.StatusBadRequest {
		status = http.StatusInternalServerError
	}

	var er dto.ErrorResponse
	if errors.As(last, &er) {
		c.JSON(status, er)
		return
	}
	c.JSON(status, dto.NewErrorResponse("Internal server error", last))
}

// AbortWithError aborts the request with status and a JSON ErrorResponse
// built from message and err. err is also attached to the context so the
// request logger reports it.
func AbortWithError(c *gin.Context, status int, message string, err error) {
	if err != nil {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(message, err))
}
