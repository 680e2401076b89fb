package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gatherly/gatherly/internal/helpers"
	"github.com/gatherly/gatherly/internal/store"
)

type VirtualEventRequest struct {
	Platform  string `json:"platform"`
	URL       string `json:"url"`
	MeetingID string `json:"meeting_id"`
	Passcode  string `json:"passcode"`
}

type EventRequest struct {
	Name          string               `json:"name" binding:"required"`
	Description   string               `json:"description"`
	Location      string               `json:"location"`
	Venue         string               `json:"venue"`
	StartDateTime time.Time            `json:"start_date_time" binding:"required"`
	EndDateTime   time.Time            `json:"end_date_time" binding:"required"`
	CategoryID    *uuid.UUID           `json:"category_id"`
	EventType     string               `json:"event_type"`
	IsFree        bool                 `json:"is_free"`
	Price         *int                 `json:"price"`
	MaxAttendees  *int                 `json:"max_attendees"`
	Status        string               `json:"status"`
	ImageURL      string               `json:"image_url"`
	Virtual       *VirtualEventRequest `json:"virtual_event"`
}

func (r *EventRequest) toInput() store.EventInput {
	input := store.EventInput{
		Name:         r.Name,
		Description:  r.Description,
		Location:     r.Location,
		Venue:        r.Venue,
		Date:         r.StartDateTime,
		StartTime:    r.StartDateTime.Format("15:04"),
		EndTime:      r.EndDateTime.Format("15:04"),
		ImageURL:     r.ImageURL,
		EventType:    r.EventType,
		IsFree:       r.IsFree,
		Price:        r.Price,
		MaxAttendees: r.MaxAttendees,
		Status:       r.Status,
		CategoryID:   r.CategoryID,
	}
	if r.Virtual != nil {
		input.Virtual = &store.VirtualEventInput{
			Platform:  r.Virtual.Platform,
			URL:       r.Virtual.URL,
			MeetingID: r.Virtual.MeetingID,
			Passcode:  r.Virtual.Passcode,
		}
	}
	return input
}

func ListEvents(c *gin.Context) {
	svc, ok := eventService(c)
	if !ok {
		return
	}

	limit, err := helpers.StringToInt(c.DefaultQuery("limit", "6"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid limit.")
		return
	}

	filter := store.EventFilter{
		Query:    c.Query("query"),
		Category: c.Query("category"),
		Location: c.Query("location"),
		Date:     helpers.ParseDatePtr(c.Query("date")),
		MinPrice: helpers.ParseIntPtr(c.Query("min_price")),
		MaxPrice: helpers.ParseIntPtr(c.Query("max_price")),
		OnlyFree: helpers.ParseBool(c.Query("only_free")),
		Featured: helpers.ParseBool(c.Query("featured")),
		Sort:     c.DefaultQuery("sort", "date"),
		Limit:    limit,
		Cursor:   c.Query("cursor"),
	}

	page, storeErr := svc.GetEvents(c.Request.Context(), filter)

	// A degraded read still renders: the fallback empty page plus the
	// error lets the client show a placeholder and a retry affordance.
	response := gin.H{
		"events": page.Events,
		"total":  page.Total,
	}
	if page.NextCursor != "" {
		response["next_cursor"] = page.NextCursor
	}
	if storeErr != nil {
		response["error"] = storeErr
	}
	c.JSON(http.StatusOK, response)
}

func GetEvent(c *gin.Context) {
	svc, ok := eventService(c)
	if !ok {
		return
	}

	event, storeErr := svc.GetEventBySlug(c.Request.Context(), c.Param("slug"))
	if storeErr != nil {
		helpers.RespondWithError(c, helpers.StatusForStoreError(storeErr), storeErr.Message)
		return
	}
	c.JSON(http.StatusOK, event)
}

func CreateEvent(c *gin.Context) {
	svc, ok := eventService(c)
	if !ok {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	result, storeErr := svc.CreateEvent(c.Request.Context(), userID, req.toInput())
	if storeErr != nil {
		c.JSON(helpers.StatusForStoreError(storeErr), result)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func UpdateEvent(c *gin.Context) {
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

	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	result, storeErr := svc.UpdateEvent(c.Request.Context(), eventID, userID, req.toInput())
	if storeErr != nil {
		c.JSON(helpers.StatusForStoreError(storeErr), result)
		return
	}
	c.JSON(http.StatusOK, result)
}

func DeleteEvent(c *gin.Context) {
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

	result, storeErr := svc.DeleteEvent(c.Request.Context(), eventID, userID, c.DefaultQuery("mode", "soft"))
	if storeErr != nil {
		c.JSON(helpers.StatusForStoreError(storeErr), result)
		return
	}
	c.JSON(http.StatusOK, result)
}
