package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/workplace-booking/internal/pkg/apperror"
)

// Result is the envelope used by the mutating booking endpoints.
// Failures carry Error; successes carry ID and/or Message.
type Result struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Success sends a successful Result.
func Success(c *gin.Context, status int, id, message string) {
	c.JSON(status, Result{Success: true, ID: id, Message: message})
}

// Failure sends a failed Result, mapping AppError codes like Error does.
func Failure(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.Code, Result{Success: false, Error: appErr.Message})
		return
	}

	slog.Error("unhandled request error", "method", c.Request.Method, "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, Result{Success: false, Error: "internal server error"})
}
