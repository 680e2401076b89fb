package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/gatherly/gatherly/internal/models"
)

// EventInput carries the organizer-supplied fields for create/update.
type EventInput struct {
	Name         string
	Description  string
	Location     string
	Venue        string
	Date         time.Time
	StartTime    string
	EndTime      string
	ImageURL     string
	EventType    string
	IsFree       bool
	Price        *int
	MaxAttendees *int
	Status       string
	CategoryID   *uuid.UUID
	Virtual      *VirtualEventInput
}

type VirtualEventInput struct {
	Platform  string
	URL       string
	MeetingID string
	Passcode  string
}

// EventResult is the uniform mutation response shape.
type EventResult struct {
	Success bool          `json:"success"`
	Event   *models.Event `json:"event"`
	Message string        `json:"message,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// RegistrationResult is returned by register/unregister operations.
type RegistrationResult struct {
	Success bool          `json:"success"`
	Event   *models.Event `json:"event"`
	Error   string        `json:"error,omitempty"`
}

func validateEventInput(input EventInput) *StoreError {
	switch input.EventType {
	case models.EventTypePhysical, models.EventTypeVirtual, models.EventTypeHybrid:
	default:
		return invalid("Unknown event type")
	}
	if input.EventType != models.EventTypePhysical {
		if input.Virtual == nil || input.Virtual.URL == "" {
			return invalid("A meeting URL is required for virtual and hybrid events")
		}
	}
	switch input.Status {
	case models.StatusDraft, models.StatusPublished:
	default:
		return invalid("Status must be draft or published")
	}
	return nil
}

// CreateEvent validates the input and writes the event plus its
// optional virtual extension in one transaction. Validation failures
// perform no write.
func (s *EventStore) CreateEvent(ctx context.Context, organizerID uuid.UUID, input EventInput) (EventResult, *StoreError) {
	if input.EventType == "" {
		input.EventType = models.EventTypePhysical
	}
	if input.Status == "" {
		input.Status = models.StatusDraft
	}
	if storeErr := validateEventInput(input); storeErr != nil {
		return EventResult{Error: storeErr.Message}, storeErr
	}

	result, storeErr := WithRetry(ctx, func() (EventResult, error) {
		var event models.Event
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			slugName, err := uniqueSlug(tx, input.Name)
			if err != nil {
				return err
			}
			event = models.Event{
				Name:          input.Name,
				Slug:          slugName,
				Description:   input.Description,
				Location:      input.Location,
				Venue:         input.Venue,
				Date:          input.Date,
				StartTime:     input.StartTime,
				EndTime:       input.EndTime,
				ImageURL:      input.ImageURL,
				EventType:     input.EventType,
				IsFree:        input.IsFree,
				Price:         input.Price,
				MaxAttendees:  input.MaxAttendees,
				AttendeeCount: 0,
				Status:        input.Status,
				CategoryID:    input.CategoryID,
				OrganizerID:   organizerID,
			}
			if err := tx.Create(&event).Error; err != nil {
				return err
			}
			if input.Virtual != nil && input.EventType != models.EventTypePhysical {
				virtual := models.VirtualEvent{
					EventID:   event.ID,
					Platform:  input.Virtual.Platform,
					URL:       input.Virtual.URL,
					MeetingID: input.Virtual.MeetingID,
					Passcode:  input.Virtual.Passcode,
				}
				if err := tx.Create(&virtual).Error; err != nil {
					return err
				}
				event.VirtualEvent = &virtual
			}
			return nil
		})
		if err != nil {
			return EventResult{}, err
		}
		return EventResult{Success: true, Event: &event}, nil
	}, EventResult{Error: "Failed to create event"})
	if storeErr != nil {
		s.log.WithFields(logrus.Fields{"code": storeErr.Code, "error": storeErr.Message}).Error("create event failed")
	}
	return result, storeErr
}

// UpdateEvent applies the input to an existing event. Only the stored
// organizer may modify it.
func (s *EventStore) UpdateEvent(ctx context.Context, id, organizerID uuid.UUID, input EventInput) (EventResult, *StoreError) {
	if input.EventType == "" {
		input.EventType = models.EventTypePhysical
	}
	if input.Status == "" {
		input.Status = models.StatusDraft
	}
	if storeErr := validateEventInput(input); storeErr != nil {
		return EventResult{Error: storeErr.Message}, storeErr
	}

	return WithRetry(ctx, func() (EventResult, error) {
		var event models.Event
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("id = ?", id).First(&event).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return notFound("Event not found")
				}
				return err
			}
			if event.OrganizerID != organizerID {
				return unauthorized("Only the organizer may modify this event")
			}

			// The slug is a public URL; renaming does not change it.
			event.Name = input.Name
			event.Description = input.Description
			event.Location = input.Location
			event.Venue = input.Venue
			event.Date = input.Date
			event.StartTime = input.StartTime
			event.EndTime = input.EndTime
			event.ImageURL = input.ImageURL
			event.EventType = input.EventType
			event.IsFree = input.IsFree
			event.Price = input.Price
			event.MaxAttendees = input.MaxAttendees
			event.Status = input.Status
			event.CategoryID = input.CategoryID
			if err := tx.Save(&event).Error; err != nil {
				return err
			}

			if input.EventType == models.EventTypePhysical {
				return tx.Where("event_id = ?", event.ID).Delete(&models.VirtualEvent{}).Error
			}

			var virtual models.VirtualEvent
			err := tx.Where("event_id = ?", event.ID).First(&virtual).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				virtual = models.VirtualEvent{EventID: event.ID}
			} else if err != nil {
				return err
			}
			virtual.Platform = input.Virtual.Platform
			virtual.URL = input.Virtual.URL
			virtual.MeetingID = input.Virtual.MeetingID
			virtual.Passcode = input.Virtual.Passcode
			if err := tx.Save(&virtual).Error; err != nil {
				return err
			}
			event.VirtualEvent = &virtual
			return nil
		})
		if err != nil {
			return EventResult{}, err
		}
		return EventResult{Success: true, Event: &event}, nil
	}, EventResult{Error: "Failed to update event"})
}

// DeleteEvent cancels (soft) or removes (hard) an event. Hard deletion
// also removes registration rows and the virtual extension. Both modes
// require the caller to be the stored organizer.
func (s *EventStore) DeleteEvent(ctx context.Context, id, organizerID uuid.UUID, mode string) (EventResult, *StoreError) {
	if mode != "soft" && mode != "hard" {
		storeErr := invalid("Delete mode must be soft or hard")
		return EventResult{Error: storeErr.Message}, storeErr
	}

	return WithRetry(ctx, func() (EventResult, error) {
		var event models.Event
		message := ""
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("id = ?", id).First(&event).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return notFound("Event not found")
				}
				return err
			}
			if event.OrganizerID != organizerID {
				return unauthorized("Only the organizer may delete this event")
			}

			if mode == "soft" {
				if err := tx.Model(&event).Update("status", models.StatusCancelled).Error; err != nil {
					return err
				}
				event.Status = models.StatusCancelled
				message = "Event cancelled"
				return nil
			}

			if err := tx.Exec("DELETE FROM event_attendees WHERE event_id = ?", event.ID).Error; err != nil {
				return err
			}
			if err := tx.Where("event_id = ?", event.ID).Delete(&models.VirtualEvent{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&event).Error; err != nil {
				return err
			}
			message = "Event permanently deleted"
			return nil
		})
		if err != nil {
			return EventResult{}, err
		}
		return EventResult{Success: true, Event: &event, Message: message}, nil
	}, EventResult{Error: "Failed to delete event"})
}

// RegisterForEvent adds a registration row and bumps the attendee
// counter. The capacity check is folded into the counter update
// predicate so concurrent registrations cannot overbook.
func (s *EventStore) RegisterForEvent(ctx context.Context, eventID, userID uuid.UUID) (RegistrationResult, *StoreError) {
	result, storeErr := WithRetry(ctx, func() (RegistrationResult, error) {
		var event models.Event
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var n int64
			if err := tx.Table("event_attendees").
				Where("event_id = ? AND user_id = ?", eventID, userID).
				Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				return &StoreError{Code: CodeAlreadyRegistered, Message: "Already registered for this event"}
			}

			guarded := tx.Model(&models.Event{}).
				Where("id = ? AND (max_attendees IS NULL OR attendee_count < max_attendees)", eventID).
				UpdateColumn("attendee_count", gorm.Expr("attendee_count + 1"))
			if guarded.Error != nil {
				return guarded.Error
			}
			if guarded.RowsAffected == 0 {
				if err := tx.Where("id = ?", eventID).First(&models.Event{}).Error; errors.Is(err, gorm.ErrRecordNotFound) {
					return notFound("Event not found")
				} else if err != nil {
					return err
				}
				return &StoreError{Code: CodeEventFull, Message: "Event has reached maximum capacity"}
			}

			if err := tx.Exec("INSERT INTO event_attendees (event_id, user_id) VALUES (?, ?)", eventID, userID).Error; err != nil {
				return err
			}
			return tx.Preload("Attendees").Where("id = ?", eventID).First(&event).Error
		})
		if err != nil {
			return RegistrationResult{}, err
		}
		return RegistrationResult{Success: true, Event: &event}, nil
	}, RegistrationResult{Error: "Failed to register for event"})
	if storeErr != nil && storeErr.Code == CodeConnection {
		s.log.WithField("event_id", eventID).Error("registration failed after retries")
	}
	return result, storeErr
}

// UnregisterFromEvent removes a registration row and decrements the
// counter, which never drops below zero.
func (s *EventStore) UnregisterFromEvent(ctx context.Context, eventID, userID uuid.UUID) (RegistrationResult, *StoreError) {
	return WithRetry(ctx, func() (RegistrationResult, error) {
		var event models.Event
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			removed := tx.Exec("DELETE FROM event_attendees WHERE event_id = ? AND user_id = ?", eventID, userID)
			if removed.Error != nil {
				return removed.Error
			}
			if removed.RowsAffected == 0 {
				if err := tx.Where("id = ?", eventID).First(&models.Event{}).Error; errors.Is(err, gorm.ErrRecordNotFound) {
					return notFound("Event not found")
				} else if err != nil {
					return err
				}
				return &StoreError{Code: CodeNotRegistered, Message: "Not registered for this event"}
			}

			if err := tx.Model(&models.Event{}).
				Where("id = ? AND attendee_count > 0", eventID).
				UpdateColumn("attendee_count", gorm.Expr("attendee_count - 1")).Error; err != nil {
				return err
			}
			return tx.Preload("Attendees").Where("id = ?", eventID).First(&event).Error
		})
		if err != nil {
			return RegistrationResult{}, err
		}
		return RegistrationResult{Success: true, Event: &event}, nil
	}, RegistrationResult{Error: "Failed to unregister from event"})
}

// uniqueSlug derives a URL slug from the event name, suffixing it when
// the plain form is taken.
func uniqueSlug(tx *gorm.DB, name string) (string, error) {
	base := slug.Make(name)
	var n int64
	if err := tx.Model(&models.Event{}).Where("slug = ?", base).Count(&n).Error; err != nil {
		return "", err
	}
	if n == 0 {
		return base, nil
	}
	return base + "-" + uuid.NewString()[:8], nil
}
