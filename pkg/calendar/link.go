// Package calendar renders "add to calendar" links for booked slots.
package calendar

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	GoogleRenderURL = "https://www.google.com/calendar/render"

	googleTimeLayout = "20060102T150405Z"
)

var ErrInvalidRange = errors.New("event must end after it starts")

type Event struct {
	Title   string
	Details string
	Start   time.Time
	End     time.Time
}

type LinkBuilder interface {
	Build(event Event) (string, error)
}

// MeetingEvent describes a booking as seen by the booker.
func MeetingEvent(ownerUsername, description, bookingID string, start, end time.Time) Event {
	return Event{
		Title:   fmt.Sprintf("Meeting with %s", ownerUsername),
		Details: fmt.Sprintf("%s\n\nBooking ID: %s", description, bookingID),
		Start:   start,
		End:     end,
	}
}

type GoogleLinkBuilder struct {
	baseURL string
}

func NewGoogleLinkBuilder() *GoogleLinkBuilder {
	return &GoogleLinkBuilder{baseURL: GoogleRenderURL}
}

// Build returns a Google Calendar template link. Parameters keep a fixed order:
// action, text, details, dates.
func (b *GoogleLinkBuilder) Build(event Event) (string, error) {
	if !event.End.After(event.Start) {
		return "", ErrInvalidRange
	}

	params := [][2]string{
		{"action", "TEMPLATE"},
		{"text", event.Title},
		{"details", event.Details},
		{"dates", formatGoogleTime(event.Start) + "/" + formatGoogleTime(event.End)},
	}

	var sb strings.Builder
	sb.WriteString(b.baseURL)
	sb.WriteByte('?')
	for i, p := range params {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(p[0]))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(p[1]))
	}
	return sb.String(), nil
}

func formatGoogleTime(t time.Time) string {
	return t.UTC().Format(googleTimeLayout)
}
