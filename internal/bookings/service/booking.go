package service

import (
	"context"
	"errors"
	bookingserrors "slotter/internal/bookings/errors"
	"slotter/internal/bookings/repository"
	"slotter/internal/bookings/validator"
	"slotter/internal/events"
	slotserrors "slotter/internal/slots/errors"
	slotsrepo "slotter/internal/slots/repository"
	userserrors "slotter/internal/users/errors"
	usersrepo "slotter/internal/users/repository"
	"slotter/pkg/calendar"
	"slotter/pkg/config"
	apperrors "slotter/pkg/errors"
	"slotter/pkg/model"
	"time"
)

type BookingService interface {
	BookSlot(ctx context.Context, caller *model.Identity, slotID string, req *model.BookingRequest) (*model.BookingConfirmation, error)
	CancelBooking(ctx context.Context, caller *model.Identity, slotID string) error
}

type bookingService struct {
	repo      repository.BookingRepository
	slotRepo  slotsrepo.SlotRepository
	userRepo  usersrepo.UserRepository
	links     calendar.LinkBuilder
	validator *validator.BookingValidator
	publisher events.Publisher
	cfg       *config.Config
	now       func() time.Time
}

func NewBookingService(
	repo repository.BookingRepository,
	slotRepo slotsrepo.SlotRepository,
	userRepo usersrepo.UserRepository,
	links calendar.LinkBuilder,
	validator *validator.BookingValidator,
	publisher events.Publisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		slotRepo:  slotRepo,
		userRepo:  userRepo,
		links:     links,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
		now:       time.Now,
	}
}

// BookSlot books slotID for caller, or anonymously when caller is nil. The booking
// and its calendar link are produced in one transaction: a link failure leaves no
// booking behind.
func (s *bookingService) BookSlot(ctx context.Context, caller *model.Identity, slotID string, req *model.BookingRequest) (*model.BookingConfirmation, error) {
	if err := s.validator.ValidateBooking(req); err != nil {
		return nil, err
	}

	var booking *model.Booking
	var slot *model.Slot
	var link string

	err := s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		// Touching the slot first makes a concurrent delete or booking of the same
		// slot write-conflict with this transaction.
		if err := s.slotRepo.Touch(txCtx, slotID); err != nil {
			return s.slotError(slotID, err)
		}

		var err error
		slot, err = s.slotRepo.FindByID(txCtx, slotID)
		if err != nil {
			return s.slotError(slotID, err)
		}

		if _, err := s.repo.FindBySlotID(txCtx, slot.ID); err == nil {
			return apperrors.AlreadyBooked("Slot is already booked")
		} else if !errors.Is(err, bookingserrors.ErrNotFound) {
			return apperrors.Internal("Failed to check existing booking", err)
		}

		if !slot.EndTime.After(s.now()) {
			return apperrors.Expired("Slot has already ended")
		}

		owner, err := s.userRepo.FindByID(txCtx, slot.OwnerID)
		if err != nil {
			if isMissingUser(err) {
				return apperrors.NotFoundWithID("Slot", slotID)
			}
			return apperrors.Internal("Failed to retrieve slot owner", err)
		}

		booking = &model.Booking{
			SlotID:      slot.ID,
			Description: req.Description,
		}
		if caller != nil {
			booking.BookedBy = caller.UserID
		}
		if err := s.repo.Create(txCtx, booking); err != nil {
			if errors.Is(err, bookingserrors.ErrAlreadyBooked) {
				return apperrors.AlreadyBooked("Slot is already booked")
			}
			return apperrors.Internal("Failed to create booking", err)
		}

		link, err = s.links.Build(calendar.MeetingEvent(owner.Username, booking.Description, booking.ID, slot.StartTime, slot.EndTime))
		if err != nil {
			return apperrors.Internal("Failed to build calendar link", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Warn("Failed to book slot", "slot_id", slotID, "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Slot booked successfully",
		"slot_id", slot.ID,
		"booking_id", booking.ID,
		"anonymous", booking.IsAnonymous(),
	)
	events.Emit(ctx, s.publisher, s.cfg.Log, events.Event{
		Type:        events.BookingCreated,
		SlotID:      slot.ID,
		OwnerID:     slot.OwnerID,
		BookingID:   booking.ID,
		BookedBy:    booking.BookedBy,
		Description: booking.Description,
		StartTime:   slot.StartTime,
		EndTime:     slot.EndTime,
	})

	return &model.BookingConfirmation{
		ID:                  booking.ID,
		AddToGoogleCalendar: link,
	}, nil
}

// CancelBooking lets either the booker or the slot owner remove the booking. Anyone
// else sees the same NotFound as for an unbooked slot.
func (s *bookingService) CancelBooking(ctx context.Context, caller *model.Identity, slotID string) error {
	if caller == nil {
		return apperrors.Unauthorized("Registration required to cancel a booking")
	}

	var booking *model.Booking
	var slot *model.Slot

	err := s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		var err error
		slot, err = s.slotRepo.FindByID(txCtx, slotID)
		if err != nil {
			if isMissingSlot(err) {
				return apperrors.NotFound("Booking")
			}
			return apperrors.Internal("Failed to retrieve slot", err)
		}

		booking, err = s.repo.FindBySlotID(txCtx, slot.ID)
		if err != nil {
			if errors.Is(err, bookingserrors.ErrNotFound) {
				return apperrors.NotFound("Booking")
			}
			return apperrors.Internal("Failed to retrieve booking", err)
		}

		if booking.BookedBy != caller.UserID && slot.OwnerID != caller.UserID {
			return apperrors.NotFound("Booking")
		}

		if err := s.repo.DeleteBySlotID(txCtx, slot.ID); err != nil {
			if errors.Is(err, bookingserrors.ErrNotFound) {
				return apperrors.NotFound("Booking")
			}
			return apperrors.Internal("Failed to cancel booking", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.cfg.Log.Info("Booking cancelled successfully",
		"slot_id", slot.ID,
		"booking_id", booking.ID,
		"cancelled_by", caller.UserID,
	)
	events.Emit(ctx, s.publisher, s.cfg.Log, events.Event{
		Type:        events.BookingCancelled,
		SlotID:      slot.ID,
		OwnerID:     slot.OwnerID,
		BookingID:   booking.ID,
		BookedBy:    booking.BookedBy,
		CancelledBy: caller.UserID,
		StartTime:   slot.StartTime,
		EndTime:     slot.EndTime,
	})
	return nil
}

func (s *bookingService) slotError(slotID string, err error) error {
	if isMissingSlot(err) {
		return apperrors.NotFoundWithID("Slot", slotID)
	}
	return apperrors.Internal("Failed to retrieve slot", err)
}

func isMissingSlot(err error) bool {
	return errors.Is(err, slotserrors.ErrNotFound) || errors.Is(err, slotserrors.ErrInvalidID)
}

func isMissingUser(err error) bool {
	return errors.Is(err, userserrors.ErrNotFound) || errors.Is(err, userserrors.ErrInvalidID)
}
