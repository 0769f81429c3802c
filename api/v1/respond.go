package v1

import (
	"net/http"

	"github.com/deploydeck/models"
	"github.com/gin-gonic/gin"
)

// principalFromContext rebuilds the principal placed in the gin context by
// the auth middleware.
func principalFromContext(c *gin.Context) models.Principal {
	userIDValue, _ := c.Get("userId")
	userID, _ := userIDValue.(string)
	roleValue, _ := c.Get("role")
	role, _ := roleValue.(string)

	return models.Principal{
		ID:   userID,
		Role: models.Role(role),
	}
}

// respondError maps the stable error kinds onto HTTP statuses. Every error
// keeps its kind and detail in the response body; nothing is collapsed
// into a generic failure.
func respondError(c *gin.Context, err error) {
	kind := models.KindOf(err)

	status := http.StatusInternalServerError
	switch kind {
	case models.ErrValidation, models.ErrInvalidDefinition:
		status = http.StatusBadRequest
	case models.ErrForbidden:
		status = http.StatusForbidden
	case models.ErrNotFound:
		status = http.StatusNotFound
	case models.ErrOrchestratorRejected:
		status = http.StatusUnprocessableEntity
	case models.ErrOrchestratorUnavailable:
		status = http.StatusBadGateway
	}

	body := gin.H{
		"status": "error",
		"kind":   string(kind),
		"error":  err.Error(),
	}
	if details := models.DetailsOf(err); len(details) > 0 {
		body["details"] = details
	}

	c.JSON(status, body)
}
