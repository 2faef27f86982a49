package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"ec-simulator/internal/api/models"
	"ec-simulator/internal/logger"
)

// ErrorHandler recovers panics into a 500 INTERNAL_ERROR envelope.
func ErrorHandler(log *logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		message := "An unexpected error occurred"
		if s, ok := recovered.(string); ok {
			message = s
		}
		log.Error(c.Request.Context(), "request.panic", fmt.Errorf("%v", recovered))
		c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    models.CodeInternal,
				Message: message,
			},
		})
	})
}
