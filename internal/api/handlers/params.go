package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/princeprakhar/freelance-backend/internal/utils"
)

// uuidParam reads a UUID path parameter, replying 400 when it is malformed.
func uuidParam(c *gin.Context, name, label string) (string, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.SendValidationError(c, "Invalid "+label)
		return "", false
	}
	return id.String(), true
}
