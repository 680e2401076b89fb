package store

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/gatherly/gatherly/internal/models"
	"github.com/gatherly/gatherly/internal/paging"
)

// EventStore is the data-access layer for events. Every exported
// method runs under WithRetry and returns a typed fallback alongside
// any error, so callers can always render something.
type EventStore struct {
	db  *gorm.DB
	log *logrus.Logger
}

func NewEventStore(db *gorm.DB, log *logrus.Logger) *EventStore {
	return &EventStore{db: db, log: log}
}

// EventPage is one page of a filtered event listing. NextCursor is
// empty on the final page; Total counts the whole filtered set.
type EventPage struct {
	Events     []models.Event `json:"events"`
	NextCursor string         `json:"next_cursor,omitempty"`
	Total      int64          `json:"total"`
}

// UserEvents groups the events a user attends and the events they host.
type UserEvents struct {
	Attending []models.Event `json:"attending"`
	Hosting   []models.Event `json:"hosting"`
}

// GetEvents returns one page of events matching the filter set, plus a
// continuation cursor and the total match count.
func (s *EventStore) GetEvents(ctx context.Context, filter EventFilter) (EventPage, *StoreError) {
	page, storeErr := WithRetry(ctx, func() (EventPage, error) {
		return s.getEvents(ctx, filter)
	}, emptyPage())
	if storeErr != nil {
		s.log.WithFields(logrus.Fields{"code": storeErr.Code, "error": storeErr.Message}).Warn("event listing degraded to empty page")
	}
	return page, storeErr
}

func (s *EventStore) getEvents(ctx context.Context, filter EventFilter) (EventPage, error) {
	limit := paging.Normalize(filter.Limit)
	sortKey := filter.Sort
	if _, ok := sortColumns[sortKey]; !ok {
		sortKey = "date"
	}
	col := sortColumns[sortKey]

	cond, args := buildPredicate(filter).compile()
	base := func() *gorm.DB {
		q := s.db.WithContext(ctx).Model(&models.Event{})
		if cond != "" {
			q = q.Where(cond, args...)
		}
		return q
	}

	// A stale, garbled, or deleted-row cursor degrades to an empty
	// page rather than an error.
	var seek any
	var cursorID uuid.UUID
	hasCursor := false
	if filter.Cursor != "" {
		decoded, err := paging.Decode(filter.Cursor)
		if err != nil {
			return emptyPage(), nil
		}
		cursorID, err = uuid.Parse(decoded.ID)
		if err != nil {
			return emptyPage(), nil
		}
		seek, err = parseSortValue(sortKey, decoded.SortValue)
		if err != nil {
			return emptyPage(), nil
		}
		var n int64
		if err := s.db.WithContext(ctx).Model(&models.Event{}).Where("id = ?", cursorID).Count(&n).Error; err != nil {
			return emptyPage(), err
		}
		if n == 0 {
			return emptyPage(), nil
		}
		hasCursor = true
	}

	// Count and page reads are independent; run them together.
	var total int64
	var events []models.Event
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		return base().Count(&total).Error
	})
	g.Go(func() error {
		q := base().Preload("Category").Preload("Organizer")
		if hasCursor {
			// Seek strictly after the cursor row, ids breaking ties.
			q = q.Where("("+col+" < ?) OR ("+col+" = ? AND events.id < ?)", seek, seek, cursorID)
		}
		return q.Order(col + " DESC, events.id DESC").Limit(limit + 1).Find(&events).Error
	})
	if err := g.Wait(); err != nil {
		return emptyPage(), err
	}
	if total == 0 {
		return emptyPage(), nil
	}

	items, next := paging.Trim(events, limit, func(e models.Event) string {
		return paging.Encode(sortValue(e, sortKey), e.ID.String())
	})
	return EventPage{Events: items, NextCursor: next, Total: total}, nil
}

// GetEventBySlug loads a single event with its category, organizer,
// attendees, and virtual extension.
func (s *EventStore) GetEventBySlug(ctx context.Context, slugName string) (*models.Event, *StoreError) {
	return WithRetry(ctx, func() (*models.Event, error) {
		var event models.Event
		err := s.db.WithContext(ctx).
			Preload("Category").
			Preload("Organizer").
			Preload("Attendees").
			Preload("VirtualEvent").
			Where("slug = ?", slugName).
			First(&event).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Event not found")
		}
		if err != nil {
			return nil, err
		}
		return &event, nil
	}, nil)
}

// GetUserEvents returns the events a user is attending and the events
// they organize, both newest first.
func (s *EventStore) GetUserEvents(ctx context.Context, userID uuid.UUID) (UserEvents, *StoreError) {
	fallback := UserEvents{Attending: []models.Event{}, Hosting: []models.Event{}}
	return WithRetry(ctx, func() (UserEvents, error) {
		var attending, hosting []models.Event
		g, _ := errgroup.WithContext(ctx)
		g.Go(func() error {
			return s.db.WithContext(ctx).Model(&models.Event{}).
				Joins("JOIN event_attendees ON event_attendees.event_id = events.id").
				Where("event_attendees.user_id = ?", userID).
				Preload("Category").
				Order("events.date DESC").
				Find(&attending).Error
		})
		g.Go(func() error {
			return s.db.WithContext(ctx).Model(&models.Event{}).
				Where("events.organizer_id = ?", userID).
				Preload("Category").
				Order("events.date DESC").
				Find(&hosting).Error
		})
		if err := g.Wait(); err != nil {
			return fallback, err
		}
		return UserEvents{Attending: attending, Hosting: hosting}, nil
	}, fallback)
}

func emptyPage() EventPage {
	return EventPage{Events: []models.Event{}}
}

// sortValue renders the cursor half of the composite token for the
// given sort key.
func sortValue(e models.Event, sortKey string) string {
	switch sortKey {
	case "created_at":
		return e.CreatedAt.UTC().Format(time.RFC3339Nano)
	case "name":
		return e.Name
	case "price":
		if e.Price != nil {
			return strconv.Itoa(*e.Price)
		}
		return "0"
	case "attendee_count":
		return strconv.Itoa(e.AttendeeCount)
	default:
		return e.Date.UTC().Format(time.RFC3339Nano)
	}
}

func parseSortValue(sortKey, raw string) (any, error) {
	switch sortKey {
	case "name":
		return raw, nil
	case "price", "attendee_count":
		return strconv.Atoi(raw)
	default:
		return time.Parse(time.RFC3339Nano, raw)
	}
}
