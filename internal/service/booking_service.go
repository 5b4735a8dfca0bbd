package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type BookingService struct {
	bookings domain.BookingRepository
	items    domain.ItemRepository
	users    domain.UserRepository
	eventBus domain.EventPublisher
	now      domain.Clock
	logger   *zerolog.Logger
}

func NewBookingService(
	bookings domain.BookingRepository,
	items domain.ItemRepository,
	users domain.UserRepository,
	eventBus domain.EventPublisher,
	now domain.Clock,
	logger *zerolog.Logger,
) *BookingService {
	return &BookingService{
		bookings: bookings,
		items:    items,
		users:    users,
		eventBus: eventBus,
		now:      nowOrDefault(now),
		logger:   logger,
	}
}

// CreateBooking books itemID for bookerID in WAITING state.
func (s *BookingService) CreateBooking(ctx context.Context, bookerID, itemID int64, start, end time.Time) (*models.BookingView, error) {
	booker, err := requireUser(ctx, s.users, bookerID)
	if err != nil {
		return nil, err
	}
	item, err := requireItem(ctx, s.items, itemID)
	if err != nil {
		return nil, err
	}
	if !item.Available {
		return nil, domain.Validation("item %d is not available", itemID)
	}

	booking := &models.Booking{
		ItemID:   itemID,
		BookerID: bookerID,
		Start:    start,
		End:      end,
		Status:   models.StatusWaiting,
	}
	if err := s.bookings.CreateBooking(ctx, booking); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("booking_id", booking.ID).Int64("item_id", itemID).Int64("booker_id", bookerID).Msg("booking created")
	s.publishEvent(events.EventBookingCreated, booking, item.OwnerID)

	return &models.BookingView{
		ID:     booking.ID,
		Start:  booking.Start,
		End:    booking.End,
		Status: booking.Status,
		Item:   *item,
		Booker: *booker,
	}, nil
}

// ApproveBooking sets the booking to APPROVED or REJECTED. Only the item's
// owner may decide. The write is conditional on the version read, so two
// racing decisions cannot both apply.
func (s *BookingService) ApproveBooking(ctx context.Context, callerID, bookingID int64, approved bool) (*models.BookingView, error) {
	booking, err := s.bookings.GetBooking(ctx, bookingID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, domain.NotFound("booking with id %d not found", bookingID)
	}
	if err != nil {
		return nil, err
	}

	exists, err := s.users.UserExists(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.Validation("user with id %d does not exist", callerID)
	}

	item, err := requireItem(ctx, s.items, booking.ItemID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID != callerID {
		return nil, domain.AccessDenied(http.StatusForbidden, "user %d is not the owner of item %d", callerID, item.ID)
	}

	status := models.StatusRejected
	eventType := events.EventBookingRejected
	if approved {
		status = models.StatusApproved
		eventType = events.EventBookingApproved
	}

	err = s.bookings.UpdateBookingStatusWithVersion(ctx, bookingID, booking.Version, status)
	if errors.Is(err, database.ErrConcurrentModification) {
		return nil, domain.Conflict("booking %d was modified concurrently", bookingID)
	}
	if err != nil {
		return nil, err
	}
	booking.Status = status

	s.logger.Info().Int64("booking_id", bookingID).Str("status", string(status)).Msg("booking decided")
	s.publishEvent(eventType, booking, item.OwnerID)

	return s.getView(ctx, bookingID)
}

// GetBooking is visible to the booker and to the item's owner only.
func (s *BookingService) GetBooking(ctx context.Context, callerID, bookingID int64) (*models.BookingView, error) {
	view, err := s.getView(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	exists, err := s.users.UserExists(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.NotFound("user with id %d not found", callerID)
	}

	if view.Booker.ID != callerID && view.Item.OwnerID != callerID {
		return nil, domain.AccessDenied(http.StatusForbidden, "user %d cannot view booking %d", callerID, bookingID)
	}
	return view, nil
}

// ListBookerBookings lists the caller's own bookings in the given state.
func (s *BookingService) ListBookerBookings(ctx context.Context, bookerID int64, rawState string) ([]*models.BookingView, error) {
	filter, err := s.filter(rawState)
	if err != nil {
		return nil, err
	}
	filter.BookerID = bookerID

	views, err := s.bookings.ListBookings(ctx, filter)
	if err != nil {
		return nil, err
	}
	s.logger.Debug().Int64("booker_id", bookerID).Str("state", rawState).Int("count", len(views)).Msg("booker bookings listed")
	return views, nil
}

// ListOwnerBookings lists bookings of all items owned by ownerID. The owner
// must exist.
func (s *BookingService) ListOwnerBookings(ctx context.Context, ownerID int64, rawState string) ([]*models.BookingView, error) {
	exists, err := s.users.UserExists(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.NotFound("user with id %d not found", ownerID)
	}

	filter, err := s.filter(rawState)
	if err != nil {
		return nil, err
	}
	filter.OwnerID = ownerID

	views, err := s.bookings.ListBookings(ctx, filter)
	if err != nil {
		return nil, err
	}
	s.logger.Debug().Int64("owner_id", ownerID).Str("state", rawState).Int("count", len(views)).Msg("owner bookings listed")
	return views, nil
}

func (s *BookingService) filter(rawState string) (models.BookingFilter, error) {
	state, err := models.ParseState(rawState)
	if err != nil {
		return models.BookingFilter{}, domain.Validation("%s", err.Error())
	}
	return models.FilterFor(state, s.now()), nil
}

func (s *BookingService) getView(ctx context.Context, bookingID int64) (*models.BookingView, error) {
	view, err := s.bookings.GetBookingView(ctx, bookingID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, domain.NotFound("booking with id %d not found", bookingID)
	}
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking, ownerID int64) {
	publish(s.eventBus, s.logger, eventType, events.BookingEventPayload{
		BookingID: booking.ID,
		ItemID:    booking.ItemID,
		BookerID:  booking.BookerID,
		OwnerID:   ownerID,
		Status:    string(booking.Status),
		Start:     booking.Start,
		End:       booking.End,
	})
}
