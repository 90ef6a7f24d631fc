package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"slotter/internal/events"
	"slotter/internal/memstore"
	"slotter/pkg/kafka"
	"slotter/pkg/logger"
	"strings"
	"testing"
	"time"
)

type recordingNotifier struct {
	sent []Notification
	err  error
}

func (n *recordingNotifier) Notify(_ context.Context, notification Notification) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, notification)
	return nil
}

func eventMessage(t *testing.T, event events.Event) kafka.Message {
	t.Helper()
	msg, err := kafka.NewMessage().
		WithKey(event.SlotID).
		WithValue(event).
		WithEventType(event.Type).
		Build()
	if err != nil {
		t.Fatalf("build message: %v", err)
	}
	return msg
}

func TestHandle(t *testing.T) {
	start := time.Date(2030, 3, 4, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		eventType   string
		bookedBy    string
		wantSubject string
		wantBody    string
	}{
		{"anonymous booking", events.BookingCreated, "", "Your slot has been booked", "booked by Anonymous User"},
		{"registered booking", events.BookingCreated, "65f000000000000000000002", "Your slot has been booked", "booked by a registered user"},
		{"cancellation", events.BookingCancelled, "", "A booking was cancelled", "was cancelled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memstore.New()
			ownerID := store.AddUser("owner@example.com")
			notifier := &recordingNotifier{}
			h := NewHandler(store.Users(), notifier, logger.Discard())

			msg := eventMessage(t, events.Event{
				Type:        tt.eventType,
				SlotID:      "s1",
				OwnerID:     ownerID,
				BookedBy:    tt.bookedBy,
				Description: "Quarterly sync",
				StartTime:   start,
				EndTime:     start.Add(time.Hour),
			})

			if err := h.Handle(context.Background(), msg); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(notifier.sent) != 1 {
				t.Fatalf("expected one notification, got %d", len(notifier.sent))
			}
			n := notifier.sent[0]
			if n.Subject != tt.wantSubject || !strings.Contains(n.Body, tt.wantBody) {
				t.Errorf("unexpected notification %+v", n)
			}
			if !strings.Contains(n.Body, "Mon, 04 Mar 2030 09:00 UTC") {
				t.Errorf("expected the slot time in the body, got %q", n.Body)
			}
			if n.EventID != msg.GetEventID() {
				t.Errorf("expected event id %s, got %s", msg.GetEventID(), n.EventID)
			}
		})
	}
}

func TestHandle_IgnoresSlotEvents(t *testing.T) {
	store := memstore.New()
	notifier := &recordingNotifier{}
	h := NewHandler(store.Users(), notifier, logger.Discard())

	msg := eventMessage(t, events.Event{Type: events.SlotCreated, SlotID: "s1", OwnerID: store.AddUser("o@example.com")})

	if err := h.Handle(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notifier.sent) != 0 {
		t.Errorf("expected no notification, got %+v", notifier.sent)
	}
}

func TestHandle_UndecodablePayloadIsPermanent(t *testing.T) {
	h := NewHandler(memstore.New().Users(), &recordingNotifier{}, logger.Discard())

	err := h.Handle(context.Background(), kafka.Message{Value: []byte("{not json"), Headers: map[string]string{}})

	var permanent *kafka.PermanentError
	if !errors.As(err, &permanent) {
		t.Fatalf("expected a permanent error, got %v", err)
	}
	if kafka.ShouldRetry(err, 0, 3) {
		t.Error("expected no retry for an undecodable payload")
	}
}

func TestHandle_MissingOwnerIsDropped(t *testing.T) {
	notifier := &recordingNotifier{}
	h := NewHandler(memstore.New().Users(), notifier, logger.Discard())

	value, _ := json.Marshal(events.Event{Type: events.BookingCreated, OwnerID: "65f000000000000000000009"})
	err := h.Handle(context.Background(), kafka.Message{Value: value, Headers: map[string]string{}})

	if err != nil || len(notifier.sent) != 0 {
		t.Errorf("expected the event to be acknowledged silently, got %v, %d sent", err, len(notifier.sent))
	}
}

func TestHandle_NotifierFailureSurfaces(t *testing.T) {
	store := memstore.New()
	notifier := &recordingNotifier{err: errors.New("smtp down")}
	h := NewHandler(store.Users(), notifier, logger.Discard())

	msg := eventMessage(t, events.Event{Type: events.BookingCancelled, SlotID: "s1", OwnerID: store.AddUser("o@example.com")})

	if err := h.Handle(context.Background(), msg); err == nil {
		t.Error("expected the delivery failure to be returned for retry")
	}
}
