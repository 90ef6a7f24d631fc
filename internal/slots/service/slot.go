package service

import (
	"context"
	"errors"
	bookingserrors "slotter/internal/bookings/errors"
	bookingsrepo "slotter/internal/bookings/repository"
	"slotter/internal/events"
	slotserrors "slotter/internal/slots/errors"
	"slotter/internal/slots/repository"
	"slotter/internal/slots/validator"
	userserrors "slotter/internal/users/errors"
	usersrepo "slotter/internal/users/repository"
	"slotter/pkg/config"
	apperrors "slotter/pkg/errors"
	"slotter/pkg/model"
	"slotter/pkg/timerange"
	"time"
)

type SlotService interface {
	CreateSlot(ctx context.Context, ownerID string, req *model.SlotRequest) (*model.SlotCreated, error)
	ListOwnSlots(ctx context.Context, ownerID string) ([]model.SlotSummary, error)
	GetSlotDetail(ctx context.Context, ownerID, slotID string) (*model.SlotDetail, error)
	DeleteSlot(ctx context.Context, ownerID, slotID string) error
	ListAvailableSlots(ctx context.Context, userID string) ([]model.AvailableSlot, error)
	CreateSlotsForInterval(ctx context.Context, ownerID string, req *model.IntervalRequest) ([]string, error)
}

type slotService struct {
	repo        repository.SlotRepository
	bookingRepo bookingsrepo.BookingRepository
	userRepo    usersrepo.UserRepository
	validator   *validator.SlotValidator
	publisher   events.Publisher
	cfg         *config.Config
	now         func() time.Time
}

func NewSlotService(
	repo repository.SlotRepository,
	bookingRepo bookingsrepo.BookingRepository,
	userRepo usersrepo.UserRepository,
	validator *validator.SlotValidator,
	publisher events.Publisher,
	cfg *config.Config,
) SlotService {
	return &slotService{
		repo:        repo,
		bookingRepo: bookingRepo,
		userRepo:    userRepo,
		validator:   validator,
		publisher:   publisher,
		cfg:         cfg,
		now:         time.Now,
	}
}

func (s *slotService) CreateSlot(ctx context.Context, ownerID string, req *model.SlotRequest) (*model.SlotCreated, error) {
	start, err := s.validator.ValidateSlot(req)
	if err != nil {
		return nil, err
	}

	slot := model.NewSlot(ownerID, start)
	if !slot.EndTime.After(s.now()) {
		return nil, apperrors.PastSlot("Slot must end in the future")
	}

	err = s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		if err := s.lockSchedule(txCtx, ownerID); err != nil {
			return err
		}

		existing, err := s.repo.FindOverlapping(txCtx, ownerID, slot.StartTime, slot.EndTime)
		if err != nil {
			return apperrors.Internal("Failed to check slot conflicts", err)
		}
		if conflict, found := timerange.FirstOverlap(slot.Range(), ranges(existing)); found {
			return apperrors.ConflictingRange("Slot overlaps an existing slot", conflict.Start, conflict.End)
		}

		if err := s.repo.Create(txCtx, slot); err != nil {
			return apperrors.Internal("Failed to create slot", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Warn("Failed to create slot", "owner_id", ownerID, "start_time", slot.StartTime, "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Slot created successfully",
		"id", slot.ID,
		"owner_id", ownerID,
		"start_time", slot.StartTime,
	)
	events.Emit(ctx, s.publisher, s.cfg.Log, slotEvent(events.SlotCreated, slot))
	return &model.SlotCreated{ID: slot.ID}, nil
}

func (s *slotService) ListOwnSlots(ctx context.Context, ownerID string) ([]model.SlotSummary, error) {
	slots, err := s.repo.FindByOwner(ctx, ownerID)
	if err != nil {
		s.cfg.Log.Error("Failed to list slots", "owner_id", ownerID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve slots", err)
	}

	bookings, err := s.bookingRepo.FindBySlotIDs(ctx, slotIDs(slots))
	if err != nil {
		s.cfg.Log.Error("Failed to load bookings", "owner_id", ownerID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve slots", err)
	}

	summaries := make([]model.SlotSummary, 0, len(slots))
	for _, slot := range slots {
		_, booked := bookings[slot.ID]
		summaries = append(summaries, summarize(slot, booked))
	}
	return summaries, nil
}

func (s *slotService) GetSlotDetail(ctx context.Context, ownerID, slotID string) (*model.SlotDetail, error) {
	slot, err := s.findOwned(ctx, ownerID, slotID)
	if err != nil {
		return nil, err
	}

	booking, err := s.bookingRepo.FindBySlotID(ctx, slot.ID)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			detail := &model.SlotDetail{SlotSummary: summarize(slot, false)}
			return detail, nil
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	bookedBy, err := s.bookerName(ctx, booking)
	if err != nil {
		return nil, err
	}

	bookedAt := booking.BookedAt
	description := booking.Description
	return &model.SlotDetail{
		SlotSummary: summarize(slot, true),
		BookingID:   booking.ID,
		BookedAt:    &bookedAt,
		Description: &description,
		BookedBy:    bookedBy,
	}, nil
}

// DeleteSlot removes the slot together with its booking, if any.
func (s *slotService) DeleteSlot(ctx context.Context, ownerID, slotID string) error {
	var deleted *model.Slot
	var cancelledBooking string

	err := s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		slot, err := s.findOwned(txCtx, ownerID, slotID)
		if err != nil {
			return err
		}

		cancelledBooking = ""
		if booking, err := s.bookingRepo.FindBySlotID(txCtx, slot.ID); err == nil {
			cancelledBooking = booking.ID
			if err := s.bookingRepo.DeleteBySlotID(txCtx, slot.ID); err != nil {
				return apperrors.Internal("Failed to delete booking", err)
			}
		} else if !errors.Is(err, bookingserrors.ErrNotFound) {
			return apperrors.Internal("Failed to retrieve booking", err)
		}

		if err := s.repo.Delete(txCtx, slot.ID); err != nil {
			if isMissingSlot(err) {
				return apperrors.NotFoundWithID("Slot", slotID)
			}
			return apperrors.Internal("Failed to delete slot", err)
		}
		deleted = slot
		return nil
	})
	if err != nil {
		return err
	}

	s.cfg.Log.Info("Slot deleted successfully", "id", slotID, "owner_id", ownerID, "booking_id", cancelledBooking)
	event := slotEvent(events.SlotDeleted, deleted)
	event.BookingID = cancelledBooking
	events.Emit(ctx, s.publisher, s.cfg.Log, event)
	return nil
}

func (s *slotService) ListAvailableSlots(ctx context.Context, userID string) ([]model.AvailableSlot, error) {
	owner, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if isMissingUser(err) {
			return nil, apperrors.NotFoundWithID("User", userID)
		}
		return nil, apperrors.Internal("Failed to retrieve user", err)
	}

	slots, err := s.repo.FindUpcomingByOwner(ctx, owner.ID, s.now())
	if err != nil {
		s.cfg.Log.Error("Failed to list upcoming slots", "user_id", userID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve slots", err)
	}

	bookings, err := s.bookingRepo.FindBySlotIDs(ctx, slotIDs(slots))
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve slots", err)
	}

	available := make([]model.AvailableSlot, 0, len(slots))
	for _, slot := range slots {
		if _, booked := bookings[slot.ID]; booked {
			continue
		}
		available = append(available, model.AvailableSlot{
			ID:        slot.ID,
			StartTime: slot.StartTime,
			EndTime:   slot.EndTime,
		})
	}
	return available, nil
}

// CreateSlotsForInterval fills [start, stop] with hourly slots. Buckets that overlap
// an existing slot, or have already ended, are skipped without error.
func (s *slotService) CreateSlotsForInterval(ctx context.Context, ownerID string, req *model.IntervalRequest) ([]string, error) {
	start, stop, err := s.validator.ValidateInterval(req)
	if err != nil {
		return nil, err
	}
	if !timerange.SameDay(start, stop) {
		return nil, apperrors.IntervalSpansMultipleDays("interval_start and interval_stop must fall on the same day")
	}

	buckets := timerange.Hourly(start, stop)
	now := s.now()

	var created []*model.Slot
	err = s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		created = nil
		if len(buckets) == 0 {
			return nil
		}

		if err := s.lockSchedule(txCtx, ownerID); err != nil {
			return err
		}

		existing, err := s.repo.FindOverlapping(txCtx, ownerID, start, stop)
		if err != nil {
			return apperrors.Internal("Failed to check slot conflicts", err)
		}
		taken := ranges(existing)

		for _, bucket := range buckets {
			if !bucket.End.After(now) {
				continue
			}
			if _, found := timerange.FirstOverlap(bucket, taken); found {
				continue
			}
			created = append(created, model.NewSlot(ownerID, bucket.Start))
		}

		if err := s.repo.CreateMany(txCtx, created); err != nil {
			return apperrors.Internal("Failed to create slots", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Warn("Failed to create interval slots", "owner_id", ownerID, "error", err)
		return nil, err
	}

	ids := make([]string, 0, len(created))
	for _, slot := range created {
		ids = append(ids, slot.ID)
		events.Emit(ctx, s.publisher, s.cfg.Log, slotEvent(events.SlotCreated, slot))
	}

	s.cfg.Log.Info("Interval slots created",
		"owner_id", ownerID,
		"interval_start", start,
		"interval_stop", stop,
		"buckets", len(buckets),
		"created", len(ids),
	)
	return ids, nil
}

// --- Helpers ---

func (s *slotService) lockSchedule(ctx context.Context, ownerID string) error {
	if err := s.userRepo.LockSchedule(ctx, ownerID); err != nil {
		if isMissingUser(err) {
			return apperrors.NotFoundWithID("User", ownerID)
		}
		return apperrors.Internal("Failed to lock schedule", err)
	}
	return nil
}

// findOwned hides slots of other owners behind the same NotFound as missing ones.
func (s *slotService) findOwned(ctx context.Context, ownerID, slotID string) (*model.Slot, error) {
	slot, err := s.repo.FindByID(ctx, slotID)
	if err != nil {
		if isMissingSlot(err) {
			return nil, apperrors.NotFoundWithID("Slot", slotID)
		}
		return nil, apperrors.Internal("Failed to retrieve slot", err)
	}
	if slot.OwnerID != ownerID {
		return nil, apperrors.NotFoundWithID("Slot", slotID)
	}
	return slot, nil
}

func (s *slotService) bookerName(ctx context.Context, booking *model.Booking) (string, error) {
	if booking.IsAnonymous() {
		return model.AnonymousBooker, nil
	}
	user, err := s.userRepo.FindByID(ctx, booking.BookedBy)
	if err != nil {
		if isMissingUser(err) {
			return model.AnonymousBooker, nil
		}
		return "", apperrors.Internal("Failed to retrieve booker", err)
	}
	return user.Username, nil
}

func summarize(slot *model.Slot, booked bool) model.SlotSummary {
	return model.SlotSummary{
		ID:        slot.ID,
		StartTime: slot.StartTime,
		EndTime:   slot.EndTime,
		IsBooked:  booked,
	}
}

func slotEvent(eventType string, slot *model.Slot) events.Event {
	return events.Event{
		Type:      eventType,
		SlotID:    slot.ID,
		OwnerID:   slot.OwnerID,
		StartTime: slot.StartTime,
		EndTime:   slot.EndTime,
	}
}

func ranges(slots []*model.Slot) []timerange.Range {
	out := make([]timerange.Range, 0, len(slots))
	for _, slot := range slots {
		out = append(out, slot.Range())
	}
	return out
}

func slotIDs(slots []*model.Slot) []string {
	ids := make([]string, 0, len(slots))
	for _, slot := range slots {
		ids = append(ids, slot.ID)
	}
	return ids
}

func isMissingSlot(err error) bool {
	return errors.Is(err, slotserrors.ErrNotFound) || errors.Is(err, slotserrors.ErrInvalidID)
}

func isMissingUser(err error) bool {
	return errors.Is(err, userserrors.ErrNotFound) || errors.Is(err, userserrors.ErrInvalidID)
}
