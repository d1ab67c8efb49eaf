package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/mongo"

	bookingserrors "innkeeper/internal/bookings/errors"
	"innkeeper/internal/bookings/repository"
	"innkeeper/internal/bookings/validator"
	dealsservice "innkeeper/internal/deals/service"
	roomserrors "innkeeper/internal/rooms/errors"
	roomsrepository "innkeeper/internal/rooms/repository"
	"innkeeper/pkg/billing"
	"innkeeper/pkg/config"
	apperrors "innkeeper/pkg/errors"
	"innkeeper/pkg/kafka"
	"innkeeper/pkg/model"
	"innkeeper/pkg/sanitizer"
)

// EventPublisher publishes to a single lifecycle topic. Satisfied by
// *kafka.Producer; each producer is bound to one topic at construction,
// so the service holds one publisher per event type.
type EventPublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type QuoteRequest struct {
	RoomID   string    `json:"room_id"`
	CheckIn  time.Time `json:"check_in"`
	CheckOut time.Time `json:"check_out"`
}

// Quote is a priced stay that has not been persisted. Summary is the
// guest-facing bill text rendered from the same snapshot.
type Quote struct {
	RoomID   string                 `json:"room_id"`
	CheckIn  time.Time              `json:"check_in"`
	CheckOut time.Time              `json:"check_out"`
	Pricing  *model.PricingSnapshot `json:"pricing"`
	Summary  string                 `json:"summary"`
}

type BookingService interface {
	Quote(ctx context.Context, req *QuoteRequest) (*Quote, error)
	Create(ctx context.Context, booking *model.Booking) error
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error)
	SearchByRoom(ctx context.Context, roomID string, from, until *time.Time, limit int, offset int64) ([]*model.Booking, int64, error)
	Update(ctx context.Context, id string, updates *model.BookingUpdate) error
	Cancel(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	BillSummary(ctx context.Context, id string) (string, error)
}

type bookingService struct {
	repo         repository.BookingRepository
	lockRepo     repository.BookingLockRepository
	roomRepo     roomsrepository.RoomRepository
	deals        dealsservice.DealService
	validator    *validator.BookingValidator
	confirmedPub EventPublisher
	cancelledPub EventPublisher
	cfg          *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.BookingLockRepository,
	roomRepo roomsrepository.RoomRepository,
	deals dealsservice.DealService,
	validator *validator.BookingValidator,
	confirmedPub EventPublisher,
	cancelledPub EventPublisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:         repo,
		lockRepo:     lockRepo,
		roomRepo:     roomRepo,
		deals:        deals,
		validator:    validator,
		confirmedPub: confirmedPub,
		cancelledPub: cancelledPub,
		cfg:          cfg,
	}
}

// Quote prices a stay without writing anything. The same pricing path runs
// on Create, so a quote always matches the booking that follows it as long
// as rates and deals have not changed in between.
func (s *bookingService) Quote(ctx context.Context, req *QuoteRequest) (*Quote, error) {
	if req.RoomID == "" {
		return nil, apperrors.InvalidInput("Room ID cannot be empty")
	}
	if req.CheckIn.IsZero() || req.CheckOut.IsZero() {
		return nil, apperrors.InvalidInput("Both check_in and check_out are required")
	}

	room, err := s.resolveRoom(ctx, req.RoomID)
	if err != nil {
		return nil, err
	}

	calc, err := s.price(ctx, room, req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, err
	}

	return &Quote{
		RoomID:   room.ID,
		CheckIn:  req.CheckIn,
		CheckOut: req.CheckOut,
		Pricing:  chargesToSnapshot(calc),
		Summary:  billing.RenderBillSummary(calc),
	}, nil
}

func (s *bookingService) Create(ctx context.Context, booking *model.Booking) error {
	if err := s.sanitize(booking); err != nil {
		return err
	}
	s.applyDefaults(booking)
	if err := s.validate(booking); err != nil {
		return err
	}

	room, err := s.resolveRoom(ctx, booking.RoomID)
	if err != nil {
		return err
	}

	calc, err := s.price(ctx, room, booking.CheckIn, booking.CheckOut)
	if err != nil {
		return err
	}
	booking.Pricing = chargesToSnapshot(calc)

	// Advisory lock serializes bookings per room so two requests cannot
	// both pass the overlap check.
	lockID, err := s.acquireRoomLock(ctx, booking.RoomID)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := s.releaseRoomLock(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release booking lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.verifyNoOverlap(sessCtx, booking); err != nil {
			return err
		}
		if err := s.repo.Create(sessCtx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create booking", "room_id", booking.RoomID, "error", err)
		return err
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"room_id", booking.RoomID,
		"check_in", booking.CheckIn,
		"check_out", booking.CheckOut,
		"total", booking.Pricing.Total,
	)

	s.publishBookingEvent(ctx, s.confirmedPub, kafka.EventBookingConfirmed, booking, room.Number)
	return nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	return booking, nil
}

func (s *bookingService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings", "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

func (s *bookingService) SearchByRoom(ctx context.Context, roomID string, from, until *time.Time, limit int, offset int64) ([]*model.Booking, int64, error) {
	if roomID == "" {
		return nil, 0, apperrors.InvalidInput("Room ID is required")
	}
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByRoom(ctx, roomID, from, until)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings by room", "room_id", roomID, "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindByRoom(ctx, roomID, from, until, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to search bookings by room", "room_id", roomID, "error", errFind)
			errFind = apperrors.Internal("Failed to search bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

// Update merges guest and date changes. Date changes reprice the stay and
// re-run the overlap check; the original snapshot is replaced because the
// guest agreed to new dates, not because rates drifted.
func (s *bookingService) Update(ctx context.Context, id string, updates *model.BookingUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Booking ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid booking ID format")
		}
		return apperrors.Internal("Failed to check booking existence", err)
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Booking update validation failed", "id", id, "error", err)
		return apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := s.mergeBookingUpdates(existing, updates)
	if err := s.sanitize(merged); err != nil {
		return err
	}
	if err := s.validate(merged); err != nil {
		return err
	}

	datesChanged := !merged.CheckIn.Equal(existing.CheckIn) || !merged.CheckOut.Equal(existing.CheckOut)
	if datesChanged {
		room, err := s.resolveRoom(ctx, merged.RoomID)
		if err != nil {
			return err
		}
		calc, err := s.price(ctx, room, merged.CheckIn, merged.CheckOut)
		if err != nil {
			return err
		}
		merged.Pricing = chargesToSnapshot(calc)

		lockID, err := s.acquireRoomLock(ctx, merged.RoomID)
		if err != nil {
			return err
		}
		defer func() {
			if releaseErr := s.releaseRoomLock(ctx, lockID); releaseErr != nil {
				s.cfg.Log.Warn("Failed to release booking lock", "lock_id", lockID, "error", releaseErr)
			}
		}()
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if datesChanged {
			if err := s.verifyNoOverlap(sessCtx, merged); err != nil {
				return err
			}
		}
		if _, err := s.repo.Update(sessCtx, id, merged); err != nil {
			return apperrors.Internal("Failed to update booking", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to update booking", "id", id, "error", err)
		return err
	}

	s.cfg.Log.Info("Booking updated successfully", "id", id, "dates_changed", datesChanged)
	return nil
}

func (s *bookingService) Cancel(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if booking.Status == config.Cancelled {
		return nil
	}
	if booking.Status == config.CheckedOut {
		return apperrors.Conflict("Cannot cancel a checked-out booking")
	}

	booking.Status = config.Cancelled
	if _, err := s.repo.Update(ctx, id, booking); err != nil {
		s.cfg.Log.Error("Failed to cancel booking", "id", id, "error", err)
		return apperrors.Internal("Failed to cancel booking", err)
	}

	s.cfg.Log.Info("Booking cancelled", "id", id)
	s.publishBookingEvent(ctx, s.cancelledPub, kafka.EventBookingCancelled, booking, "")
	return nil
}

func (s *bookingService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Booking ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid booking ID format")
		}
		return apperrors.Internal("Failed to delete booking", err)
	}

	s.cfg.Log.Info("Booking deleted successfully", "id", id)
	return nil
}

// BillSummary renders the stored pricing snapshot as guest-facing text.
// It never reprices: the snapshot is the contract.
func (s *bookingService) BillSummary(ctx context.Context, id string) (string, error) {
	booking, err := s.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if booking.Pricing == nil {
		return "", apperrors.Conflict("Booking has no pricing snapshot")
	}

	return billing.RenderBillSummary(snapshotToCharges(booking.Pricing)), nil
}

// --- Helpers ---

func (s *bookingService) resolveRoom(ctx context.Context, roomID string) (*model.Room, error) {
	room, err := s.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, roomserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Room", roomID)
		}
		if errors.Is(err, roomserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid room ID format")
		}
		return nil, apperrors.Internal("Failed to resolve room", err)
	}
	if room.Status != config.RoomAvailable {
		return nil, apperrors.Conflict(fmt.Sprintf("Room %s is not available for booking (status: %s)", room.Number, room.Status))
	}
	return room, nil
}

func (s *bookingService) price(ctx context.Context, room *model.Room, checkIn, checkOut time.Time) (billing.Charges, error) {
	deal, err := s.deals.BestForStay(ctx, room.RoomType, checkIn, checkOut)
	if err != nil {
		return billing.Charges{}, err
	}

	calc := billing.Calculate(
		checkIn,
		checkOut,
		buildMonthlyRates(room),
		decimal.NewFromFloat(room.Rate),
		buildDealWindow(deal),
	)
	return calc, nil
}

func (s *bookingService) sanitize(b *model.Booking) error {
	b.GuestName = sanitizer.NormalizeName(b.GuestName)
	b.GuestEmail = sanitizer.NormalizeEmail(b.GuestEmail)
	if b.GuestPhone != "" {
		phone, err := sanitizer.NormalizePhone(b.GuestPhone)
		if err != nil {
			return apperrors.Validation("Invalid guest phone number", map[string]any{"error": err.Error()})
		}
		b.GuestPhone = phone
	}
	return nil
}

func (s *bookingService) applyDefaults(b *model.Booking) {
	if b.Status == "" {
		b.Status = config.Confirmed
	}
}

func (s *bookingService) mergeBookingUpdates(existing *model.Booking, updates *model.BookingUpdate) *model.Booking {
	merged := *existing

	if updates.GuestName != "" {
		merged.GuestName = updates.GuestName
	}
	if updates.GuestEmail != "" {
		merged.GuestEmail = updates.GuestEmail
	}
	if updates.GuestPhone != "" {
		merged.GuestPhone = updates.GuestPhone
	}
	if updates.CheckIn != nil {
		merged.CheckIn = *updates.CheckIn
	}
	if updates.CheckOut != nil {
		merged.CheckOut = *updates.CheckOut
	}
	if updates.Status != "" {
		merged.Status = updates.Status
	}

	return &merged
}

func (s *bookingService) validate(booking *model.Booking) error {
	if err := s.validator.Validate(booking); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

func (s *bookingService) verifyNoOverlap(ctx context.Context, booking *model.Booking) error {
	// Checking up to 30 overlapping bookings is plenty for one room.
	const maxOverlapCheck = 30
	existing, err := s.repo.FindByRoom(ctx, booking.RoomID, &booking.CheckIn, &booking.CheckOut, maxOverlapCheck, 0)
	if err != nil {
		return apperrors.Internal("Failed to check existing bookings", err)
	}

	for _, b := range existing {
		if b.ID == booking.ID {
			continue
		}
		if overlaps(b.CheckIn, b.CheckOut, booking.CheckIn, booking.CheckOut) {
			return apperrors.Conflict(fmt.Sprintf(
				"Room is already booked for an overlapping stay (%s - %s)",
				b.CheckIn.Format("2006-01-02"),
				b.CheckOut.Format("2006-01-02"),
			))
		}
	}
	return nil
}

func overlaps(start1, end1, start2, end2 time.Time) bool {
	return start1.Before(end2) && end1.After(start2)
}

func (s *bookingService) acquireRoomLock(ctx context.Context, roomID string) (string, error) {
	lockID := fmt.Sprintf("booking_lock_room_%s", roomID)

	lock := &model.BookingLock{
		ID:        lockID,
		ExpiresAt: time.Now().Add(s.cfg.LockTTL),
	}

	if _, err := s.lockRepo.Create(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.Conflict("This room is currently being booked by another request. Please try again.")
		}
		return "", apperrors.Internal("Failed to acquire booking lock", err)
	}

	return lockID, nil
}

func (s *bookingService) releaseRoomLock(ctx context.Context, lockID string) error {
	return s.lockRepo.Delete(ctx, lockID)
}

// publishBookingEvent emits a lifecycle event after the database write has
// committed. A publish failure is logged and swallowed: the booking is the
// source of truth and notifications are best effort.
func (s *bookingService) publishBookingEvent(ctx context.Context, pub EventPublisher, eventType string, booking *model.Booking, roomNumber string) {
	if pub == nil {
		return
	}

	event := model.BookingEvent{
		BookingID:  booking.ID,
		RoomID:     booking.RoomID,
		RoomNumber: roomNumber,
		GuestName:  booking.GuestName,
		GuestEmail: booking.GuestEmail,
		GuestPhone: booking.GuestPhone,
		CheckIn:    booking.CheckIn,
		CheckOut:   booking.CheckOut,
		Status:     booking.Status,
		Pricing:    booking.Pricing,
		OccurredAt: time.Now().UTC(),
	}

	msg := kafka.NewMessage().
		WithKey(booking.ID).
		WithValue(event).
		WithEventType(eventType).
		WithSource("bookings").
		WithSchemaVersion("1").
		Build()

	if err := pub.Publish(ctx, msg); err != nil {
		s.cfg.Log.Error("Failed to publish booking event",
			"event_type", eventType,
			"booking_id", booking.ID,
			"error", err,
		)
	}
}
