package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/regport/api-go/models"
)

// RespondError maps the domain error taxonomy onto HTTP statuses. Anything
// outside the taxonomy becomes an opaque 500 so storage errors never leak.
func RespondError(c *gin.Context, err error) {
	switch models.KindOf(err) {
	case models.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case models.KindForbidden:
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case models.KindInvalidTransition:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case models.KindConflict:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case models.KindPreconditionFailed:
		c.JSON(http.StatusPreconditionFailed, gin.H{"error": err.Error()})
	case models.KindValidation:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
