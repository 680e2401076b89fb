package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gatherly/gatherly/internal/helpers"
	"github.com/gatherly/gatherly/internal/models"
	"github.com/gatherly/gatherly/internal/store"
)

// EventService is the slice of the event store the handlers consume.
type EventService interface {
	GetEvents(ctx context.Context, filter store.EventFilter) (store.EventPage, *store.StoreError)
	GetEventBySlug(ctx context.Context, slug string) (*models.Event, *store.StoreError)
	CreateEvent(ctx context.Context, organizerID uuid.UUID, input store.EventInput) (store.EventResult, *store.StoreError)
	UpdateEvent(ctx context.Context, id, organizerID uuid.UUID, input store.EventInput) (store.EventResult, *store.StoreError)
	DeleteEvent(ctx context.Context, id, organizerID uuid.UUID, mode string) (store.EventResult, *store.StoreError)
	RegisterForEvent(ctx context.Context, eventID, userID uuid.UUID) (store.RegistrationResult, *store.StoreError)
	UnregisterFromEvent(ctx context.Context, eventID, userID uuid.UUID) (store.RegistrationResult, *store.StoreError)
	GetUserEvents(ctx context.Context, userID uuid.UUID) (store.UserEvents, *store.StoreError)
}

type CategoryService interface {
	CreateCategory(ctx context.Context, name, description string) (*models.Category, *store.StoreError)
	GetCategories(ctx context.Context, includeCounts bool) ([]store.CategoryWithCount, *store.StoreError)
	GetTopCategories(ctx context.Context, limit int) ([]store.CategorySummary, *store.StoreError)
}

func eventService(c *gin.Context) (EventService, bool) {
	value, exists := c.Get("event_store")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Event store not found.")
		return nil, false
	}
	return value.(EventService), true
}

func categoryService(c *gin.Context) (CategoryService, bool) {
	value, exists := c.Get("category_store")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Category store not found.")
		return nil, false
	}
	return value.(CategoryService), true
}

func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return uuid.Nil, false
	}
	userID, ok := value.(uuid.UUID)
	if !ok {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return uuid.Nil, false
	}
	return userID, true
}
