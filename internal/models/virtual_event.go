package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VirtualEvent is the 1:1 extension row for virtual and hybrid events.
type VirtualEvent struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	EventID   uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"event_id"`
	Platform  string    `json:"platform"`
	URL       string    `gorm:"not null" json:"url"`
	MeetingID string    `json:"meeting_id"`
	Passcode  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

func (virtualEvent *VirtualEvent) BeforeCreate(tx *gorm.DB) (err error) {
	if virtualEvent.ID == uuid.Nil {
		virtualEvent.ID = uuid.New()
	}
	return
}
