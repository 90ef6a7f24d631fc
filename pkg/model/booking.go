package model

import (
	"time"
)

// Booking claims exactly one slot. An empty BookedBy means the booker was anonymous.
type Booking struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	SlotID      string    `json:"slot_id" bson:"slot_id"`
	BookedBy    string    `json:"booked_by,omitempty" bson:"booked_by,omitempty"`
	BookedAt    time.Time `json:"booked_at" bson:"booked_at"`
	Description string    `json:"description" bson:"description"`
}

func (b *Booking) IsAnonymous() bool {
	return b.BookedBy == ""
}

type BookingRequest struct {
	Description string `json:"description" validate:"required,max=2000"`
}

type BookingConfirmation struct {
	ID                  string `json:"id"`
	AddToGoogleCalendar string `json:"add_to_google_calendar"`
}
