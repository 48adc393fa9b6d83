package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/campuspress/newsroom/internal/service"
	"github.com/campuspress/newsroom/pkg/logging"
)

// respondData writes the success envelope
func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

// respondError maps a domain error to its HTTP status and writes the
// failure envelope. Unknown errors become opaque 500s.
func respondError(c *gin.Context, err error) {
	status := http.StatusBadRequest
	message := err.Error()

	switch service.KindOf(err) {
	case service.KindNotFound:
		status = http.StatusNotFound
	case service.KindUnauthorized:
		status = http.StatusUnauthorized
	case service.KindValidation, service.KindInvalidState, service.KindAlreadyMember,
		service.KindNotMember, service.KindAlreadyProcessed, service.KindExpired,
		service.KindInvalidCode:
		status = http.StatusBadRequest
	default:
		status = http.StatusInternalServerError
		message = "internal server error"
		logging.GetLogger().Error("Unhandled API error",
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}

	c.JSON(status, gin.H{"success": false, "error": message})
}

// respondBadRequest reports a malformed request body
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": message})
}
