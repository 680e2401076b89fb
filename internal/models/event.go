package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	EventTypePhysical = "physical"
	EventTypeVirtual  = "virtual"
	EventTypeHybrid   = "hybrid"
)

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusCancelled = "cancelled"
)

type Event struct {
	ID            uuid.UUID     `gorm:"type:uuid;primary_key" json:"id"`
	Name          string        `gorm:"not null" json:"name"`
	Slug          string        `gorm:"uniqueIndex;not null" json:"slug"`
	Description   string        `json:"description"`
	Location      string        `json:"location"`
	Venue         string        `json:"venue"`
	Date          time.Time     `gorm:"not null;index" json:"date"`
	StartTime     string        `gorm:"not null" json:"start_time"`
	EndTime       string        `gorm:"not null" json:"end_time"`
	ImageURL      string        `json:"image_url"`
	EventType     string        `gorm:"not null;default:physical" json:"event_type"`
	IsFeatured    bool          `gorm:"not null;default:false" json:"is_featured"`
	IsFree        bool          `gorm:"not null;default:false" json:"is_free"`
	Price         *int          `json:"price"`
	MaxAttendees  *int          `json:"max_attendees"`
	AttendeeCount int           `gorm:"not null;default:0" json:"attendee_count"`
	Status        string        `gorm:"not null;default:draft" json:"status"`
	CategoryID    *uuid.UUID    `json:"category_id"`
	Category      *Category     `json:"category,omitempty"`
	OrganizerID   uuid.UUID     `json:"organizer_id"`
	Organizer     *User         `json:"organizer,omitempty"`
	Attendees     []User        `gorm:"many2many:event_attendees;" json:"attendees,omitempty"`
	VirtualEvent  *VirtualEvent `json:"virtual_event,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

func (event *Event) BeforeCreate(tx *gorm.DB) (err error) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	return
}
