package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gatherly/gatherly/internal/helpers"
)

func RegisterForEvent(c *gin.Context) {
	svc, ok := eventService(c)
	if !ok {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid event ID.")
		return
	}

	result, storeErr := svc.RegisterForEvent(c.Request.Context(), eventID, userID)
	if storeErr != nil {
		c.JSON(helpers.StatusForStoreError(storeErr), result)
		return
	}
	c.JSON(http.StatusOK, result)
}

func UnregisterFromEvent(c *gin.Context) {
	svc, ok := eventService(c)
	if !ok {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid event ID.")
		return
	}

	result, storeErr := svc.UnregisterFromEvent(c.Request.Context(), eventID, userID)
	if storeErr != nil {
		c.JSON(helpers.StatusForStoreError(storeErr), result)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListMyEvents returns the events the caller attends and organizes.
func ListMyEvents(c *gin.Context) {
	svc, ok := eventService(c)
	if !ok {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	events, storeErr := svc.GetUserEvents(c.Request.Context(), userID)
	if storeErr != nil {
		helpers.RespondWithError(c, helpers.StatusForStoreError(storeErr), storeErr.Message)
		return
	}
	c.JSON(http.StatusOK, events)
}
