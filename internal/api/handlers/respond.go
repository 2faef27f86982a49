package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"ec-simulator/internal/api/models"
	"ec-simulator/internal/config"
)

func respondError(c *gin.Context, status int, code, message string, details map[string]interface{}) {
	c.AbortWithStatusJSON(status, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// validationDetails exposes per-field messages when err carries them.
func validationDetails(err error) map[string]interface{} {
	var verr *config.ValidationError
	if !errors.As(err, &verr) {
		return nil
	}
	fields := make(map[string]interface{}, len(verr.Fields))
	for k, v := range verr.Fields {
		fields[k] = v
	}
	return map[string]interface{}{"fields": fields}
}
