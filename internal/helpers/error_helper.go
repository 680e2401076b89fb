package helpers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gatherly/gatherly/internal/store"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func RespondWithError(c *gin.Context, statusCode int, customMessage string) {
	c.JSON(statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: customMessage,
	})
}

// StatusForStoreError maps a data-access error code onto an HTTP
// status. Connectivity failures surface as 503 so clients can offer a
// retry affordance.
func StatusForStoreError(err *store.StoreError) int {
	switch err.Code {
	case store.CodeNotFound:
		return http.StatusNotFound
	case store.CodeUnauthorized:
		return http.StatusForbidden
	case store.CodeValidation:
		return http.StatusBadRequest
	case store.CodeEventFull, store.CodeAlreadyRegistered, store.CodeNotRegistered:
		return http.StatusConflict
	case store.CodeConnection:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
