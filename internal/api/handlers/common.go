package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/foliolink/folio_service/internal/domain/entities"
	apperrors "github.com/foliolink/folio_service/pkg/errors"
)

// getRequestID extracts request ID from context
func getRequestID(c *gin.Context) string {
	if reqID, exists := c.Get("request_id"); exists {
		if id, ok := reqID.(string); ok {
			return id
		}
	}
	return ""
}

// respondError sends a standardized error response
func respondError(c *gin.Context, status int, code, message string, details map[string]interface{}) {
	c.JSON(status, entities.ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	})
}

// respondServiceError converts a service-layer error into the uniform
// error body, defaulting to 500 for anything unclassified.
func respondServiceError(c *gin.Context, err error) {
	if fe, ok := apperrors.AsFolioError(err); ok {
		respondError(c, fe.StatusCode, string(fe.Code), fe.Message, fe.Details)
		return
	}
	respondError(c, http.StatusInternalServerError, string(apperrors.ErrCodeInternal), "Internal server error", nil)
}

// respondBadRequest sends a bad request error
func respondBadRequest(c *gin.Context, message string, details map[string]interface{}) {
	respondError(c, http.StatusBadRequest, string(apperrors.ErrCodeInvalidInput), message, details)
}
