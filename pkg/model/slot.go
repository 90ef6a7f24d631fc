package model

import (
	"slotter/pkg/timerange"
	"time"
)

// SlotDuration is the fixed length of every bookable slot.
const SlotDuration = time.Hour

// AnonymousBooker is rendered in place of a username when nobody is signed in to a booking.
const AnonymousBooker = "Anonymous User"

type Slot struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	OwnerID   string    `json:"owner_id" bson:"owner_id"`
	StartTime time.Time `json:"start_time" bson:"start_time"`
	EndTime   time.Time `json:"end_time" bson:"end_time"`
	Revision  int64     `json:"-" bson:"revision"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// NewSlot builds an unsaved slot of SlotDuration starting at start.
func NewSlot(ownerID string, start time.Time) *Slot {
	start = start.UTC().Truncate(time.Millisecond)
	return &Slot{
		OwnerID:   ownerID,
		StartTime: start,
		EndTime:   start.Add(SlotDuration),
	}
}

func (s *Slot) Range() timerange.Range {
	return timerange.Range{Start: s.StartTime, End: s.EndTime}
}

type SlotRequest struct {
	StartTime string `json:"start_time" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
}

type IntervalRequest struct {
	IntervalStart string `json:"interval_start" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	IntervalStop  string `json:"interval_stop" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
}

type SlotCreated struct {
	ID string `json:"id"`
}

type SlotSummary struct {
	ID        string    `json:"id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	IsBooked  bool      `json:"is_booked"`
}

type SlotDetail struct {
	SlotSummary
	BookingID   string     `json:"booking_id,omitempty"`
	BookedAt    *time.Time `json:"booked_at,omitempty"`
	Description *string    `json:"description,omitempty"`
	BookedBy    string     `json:"booked_by,omitempty"`
}

type AvailableSlot struct {
	ID        string    `json:"id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}
