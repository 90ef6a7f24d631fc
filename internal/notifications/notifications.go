// Package notifications turns booking events into messages for the slot owner.
package notifications

import (
	"context"
	"errors"
	"fmt"
	"slotter/internal/events"
	userserrors "slotter/internal/users/errors"
	usersrepo "slotter/internal/users/repository"
	"slotter/pkg/kafka"
	"slotter/pkg/logger"
	"slotter/pkg/model"
	"time"
)

const timeLayout = "Mon, 02 Jan 2006 15:04 MST"

type Notification struct {
	Recipient string
	Subject   string
	Body      string
	EventID   string
}

// Notifier delivers a notification. Delivery failures are retried by the consumer.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// LogNotifier writes notifications to the structured log.
type LogNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(_ context.Context, notification Notification) error {
	n.log.Info("Notification delivered",
		"recipient", notification.Recipient,
		"subject", notification.Subject,
		"body", notification.Body,
		"event_id", notification.EventID,
	)
	return nil
}

type Handler struct {
	users    usersrepo.UserRepository
	notifier Notifier
	log      *logger.Logger
}

func NewHandler(users usersrepo.UserRepository, notifier Notifier, log *logger.Logger) *Handler {
	return &Handler{
		users:    users,
		notifier: notifier,
		log:      log,
	}
}

// Handle is a kafka.MessageHandler. Slot events and unknown types are acknowledged
// without a notification.
func (h *Handler) Handle(ctx context.Context, msg kafka.Message) error {
	var event events.Event
	if err := msg.DecodeValue(&event); err != nil {
		return kafka.Permanent(fmt.Errorf("failed to decode event: %w", err))
	}
	if event.Type == "" {
		event.Type = msg.GetEventType()
	}

	if event.Type != events.BookingCreated && event.Type != events.BookingCancelled {
		h.log.Debug("Ignoring event", "event_type", event.Type, "slot_id", event.SlotID)
		return nil
	}

	owner, err := h.users.FindByID(ctx, event.OwnerID)
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) || errors.Is(err, userserrors.ErrInvalidID) {
			h.log.Warn("Slot owner no longer exists, dropping notification",
				"owner_id", event.OwnerID,
				"slot_id", event.SlotID,
			)
			return nil
		}
		return fmt.Errorf("failed to load slot owner: %w", err)
	}

	return h.notifier.Notify(ctx, compose(owner, event, msg.GetEventID()))
}

func compose(owner *model.User, event events.Event, eventID string) Notification {
	when := event.StartTime.UTC().Format(timeLayout)
	n := Notification{
		Recipient: owner.Email,
		EventID:   eventID,
	}

	switch event.Type {
	case events.BookingCreated:
		n.Subject = "Your slot has been booked"
		n.Body = fmt.Sprintf("Your slot on %s (%s) was booked by %s.\n\n%s",
			when, duration(event), bookerLabel(event.BookedBy), event.Description)
	case events.BookingCancelled:
		n.Subject = "A booking was cancelled"
		n.Body = fmt.Sprintf("The booking of your slot on %s (%s) was cancelled.", when, duration(event))
	}
	return n
}

func bookerLabel(bookedBy string) string {
	if bookedBy == "" {
		return model.AnonymousBooker
	}
	return "a registered user"
}

func duration(event events.Event) string {
	return event.EndTime.Sub(event.StartTime).Round(time.Minute).String()
}
