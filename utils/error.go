package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse is the error shape of the scheduling API; the "error" key
// matches what every handler emits by hand.
type ErrorResponse struct {
	Error string `json:"error"`
	Hint  string `json:"hint,omitempty"`
}

// ErrorHandler recovers panics from a dialogue turn or handler and turns them
// into a structured 500 instead of dropping the connection mid-conversation.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				GetLogger().Error("Unhandled panic", zap.Any("error", err))

				c.JSON(http.StatusInternalServerError, ErrorResponse{
					Error: "The scheduler hit an unexpected error",
					Hint:  "Your session state is intact; send the message again.",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}
