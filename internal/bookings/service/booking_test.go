package service

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	bookingserrors "innkeeper/internal/bookings/errors"
	"innkeeper/internal/bookings/validator"
	roomserrors "innkeeper/internal/rooms/errors"
	"innkeeper/pkg/config"
	mongotx "innkeeper/pkg/db/mongo"
	apperrors "innkeeper/pkg/errors"
	"innkeeper/pkg/kafka"
	"innkeeper/pkg/logger"
	"innkeeper/pkg/model"
)

const (
	testRoomID    = "507f1f77bcf86cd799439011"
	testBookingID = "507f1f77bcf86cd799439022"
)

type mockBookingRepo struct {
	createFn      func(ctx context.Context, booking *model.Booking) error
	findByIDFn    func(ctx context.Context, id string) (*model.Booking, error)
	findAllFn     func(ctx context.Context, limit int, offset int64) ([]*model.Booking, error)
	findByRoomFn  func(ctx context.Context, roomID string, from, until *time.Time, limit int, offset int64) ([]*model.Booking, error)
	countByRoomFn func(ctx context.Context, roomID string, from, until *time.Time) (int64, error)
	updateFn      func(ctx context.Context, id string, booking *model.Booking) (*mongo.UpdateResult, error)
	deleteFn      func(ctx context.Context, id string) error
	countFn       func(ctx context.Context) (int64, error)
}

func (m *mockBookingRepo) Create(ctx context.Context, booking *model.Booking) error {
	if m.createFn != nil {
		return m.createFn(ctx, booking)
	}
	booking.ID = testBookingID
	return nil
}

func (m *mockBookingRepo) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, bookingserrors.ErrNotFound
}

func (m *mockBookingRepo) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, error) {
	if m.findAllFn != nil {
		return m.findAllFn(ctx, limit, offset)
	}
	return nil, nil
}

func (m *mockBookingRepo) FindByRoom(ctx context.Context, roomID string, from, until *time.Time, limit int, offset int64) ([]*model.Booking, error) {
	if m.findByRoomFn != nil {
		return m.findByRoomFn(ctx, roomID, from, until, limit, offset)
	}
	return nil, nil
}

func (m *mockBookingRepo) CountByRoom(ctx context.Context, roomID string, from, until *time.Time) (int64, error) {
	if m.countByRoomFn != nil {
		return m.countByRoomFn(ctx, roomID, from, until)
	}
	return 0, nil
}

func (m *mockBookingRepo) Update(ctx context.Context, id string, booking *model.Booking) (*mongo.UpdateResult, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, booking)
	}
	return &mongo.UpdateResult{MatchedCount: 1}, nil
}

func (m *mockBookingRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockBookingRepo) Count(ctx context.Context) (int64, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}

func (m *mockBookingRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

type mockLockRepo struct {
	createFn func(ctx context.Context, lock *model.BookingLock) (*model.BookingLock, error)
	deleteFn func(ctx context.Context, lockID string) error

	created []string
	deleted []string
}

func (m *mockLockRepo) Create(ctx context.Context, lock *model.BookingLock) (*model.BookingLock, error) {
	if m.createFn != nil {
		return m.createFn(ctx, lock)
	}
	m.created = append(m.created, lock.ID)
	return lock, nil
}

func (m *mockLockRepo) Delete(ctx context.Context, lockID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, lockID)
	}
	m.deleted = append(m.deleted, lockID)
	return nil
}

type mockRoomRepo struct {
	findByIDFn func(ctx context.Context, id string) (*model.Room, error)
}

func (m *mockRoomRepo) Create(_ context.Context, _ *model.Room) error { return nil }

func (m *mockRoomRepo) FindByID(ctx context.Context, id string) (*model.Room, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, roomserrors.ErrNotFound
}

func (m *mockRoomRepo) FindAll(_ context.Context, _ int, _ int64) ([]*model.Room, error) {
	return nil, nil
}

func (m *mockRoomRepo) FindByNumber(_ context.Context, _ string) (*model.Room, error) {
	return nil, roomserrors.ErrNotFound
}

func (m *mockRoomRepo) FindByTypeAndStatus(_ context.Context, _, _ string, _ int, _ int64) ([]*model.Room, error) {
	return nil, nil
}

func (m *mockRoomRepo) CountByTypeAndStatus(_ context.Context, _, _ string) (int64, error) {
	return 0, nil
}

func (m *mockRoomRepo) Update(_ context.Context, _ string, _ *model.Room) (*mongo.UpdateResult, error) {
	return &mongo.UpdateResult{MatchedCount: 1}, nil
}

func (m *mockRoomRepo) Delete(_ context.Context, _ string) error { return nil }

func (m *mockRoomRepo) Count(_ context.Context) (int64, error) { return 0, nil }

func (m *mockRoomRepo) ExecuteTransaction(_ context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

type mockDealService struct {
	bestForStayFn func(ctx context.Context, roomType string, checkIn, checkOut time.Time) (*model.Deal, error)
}

func (m *mockDealService) Create(_ context.Context, _ *model.Deal) error { return nil }

func (m *mockDealService) GetByID(_ context.Context, _ string) (*model.Deal, error) {
	return nil, nil
}

func (m *mockDealService) GetAll(_ context.Context, _ int, _ int64) ([]*model.Deal, int64, error) {
	return nil, 0, nil
}

func (m *mockDealService) Update(_ context.Context, _ string, _ *model.DealUpdate) error { return nil }

func (m *mockDealService) Delete(_ context.Context, _ string) error { return nil }

func (m *mockDealService) BestForStay(ctx context.Context, roomType string, checkIn, checkOut time.Time) (*model.Deal, error) {
	if m.bestForStayFn != nil {
		return m.bestForStayFn(ctx, roomType, checkIn, checkOut)
	}
	return nil, nil
}

type mockPublisher struct {
	published []kafka.Message
	err       error
}

func (m *mockPublisher) Publish(_ context.Context, msg kafka.Message) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, msg)
	return nil
}

func newTestConfig() *config.Config {
	return &config.Config{
		Log:     logger.New(logger.Config{Output: io.Discard}),
		LockTTL: 10 * time.Second,
	}
}

func availableRoom() *model.Room {
	return &model.Room{
		ID:       testRoomID,
		Number:   "101",
		RoomType: "standard",
		Rate:     100,
		Capacity: 2,
		Status:   config.RoomAvailable,
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newService(repo *mockBookingRepo, locks *mockLockRepo, rooms *mockRoomRepo, deals *mockDealService, confirmed, cancelled EventPublisher) BookingService {
	return NewBookingService(
		repo,
		locks,
		rooms,
		deals,
		validator.NewBookingValidator(),
		confirmed,
		cancelled,
		newTestConfig(),
	)
}

func validBooking() *model.Booking {
	return &model.Booking{
		RoomID:     testRoomID,
		GuestName:  "Alice Smith",
		GuestEmail: "alice@example.com",
		CheckIn:    date(2026, 3, 10),
		CheckOut:   date(2026, 3, 12),
	}
}

func TestCreate_PricesAndPublishes(t *testing.T) {
	repo := &mockBookingRepo{}
	locks := &mockLockRepo{}
	rooms := &mockRoomRepo{
		findByIDFn: func(_ context.Context, _ string) (*model.Room, error) {
			return availableRoom(), nil
		},
	}
	confirmed := &mockPublisher{}
	cancelled := &mockPublisher{}
	svc := newService(repo, locks, rooms, &mockDealService{}, confirmed, cancelled)

	booking := validBooking()
	if err := svc.Create(context.Background(), booking); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if booking.Status != config.Confirmed {
		t.Errorf("expected status %s, got %s", config.Confirmed, booking.Status)
	}
	if booking.Pricing == nil {
		t.Fatal("expected a pricing snapshot")
	}
	if booking.Pricing.TotalNights != 2 {
		t.Errorf("expected 2 nights, got %d", booking.Pricing.TotalNights)
	}
	if booking.Pricing.Total != 200 {
		t.Errorf("expected total 200, got %v", booking.Pricing.Total)
	}
	if booking.Pricing.DealApplied {
		t.Error("no deal should apply")
	}

	if len(locks.created) != 1 || len(locks.deleted) != 1 {
		t.Fatalf("expected lock acquired and released, got created=%v deleted=%v", locks.created, locks.deleted)
	}
	if locks.created[0] != "booking_lock_room_"+testRoomID {
		t.Errorf("unexpected lock id %s", locks.created[0])
	}

	if len(confirmed.published) != 1 {
		t.Fatalf("expected one confirmed event, got %d", len(confirmed.published))
	}
	msg := confirmed.published[0]
	if msg.Key != testBookingID {
		t.Errorf("expected event key %s, got %s", testBookingID, msg.Key)
	}
	if msg.GetEventType() != kafka.EventBookingConfirmed {
		t.Errorf("expected event type %s, got %s", kafka.EventBookingConfirmed, msg.GetEventType())
	}
	if len(cancelled.published) != 0 {
		t.Error("no cancelled event expected")
	}
}

func TestCreate_MonthlyRateSlotOverridesBaseRate(t *testing.T) {
	room := availableRoom()
	room.MonthlyRates = []float64{0, 0, 120, 0, 0, 0, 0, 0, 0, 0, 0, 0}

	repo := &mockBookingRepo{}
	rooms := &mockRoomRepo{
		findByIDFn: func(_ context.Context, _ string) (*model.Room, error) {
			return room, nil
		},
	}
	svc := newService(repo, &mockLockRepo{}, rooms, &mockDealService{}, nil, nil)

	booking := validBooking()
	if err := svc.Create(context.Background(), booking); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// March slot is zero-indexed position 2; zero slots fall back to the
	// base rate, so only March nights pick up 120.
	if booking.Pricing.Total != 240 {
		t.Errorf("expected total 240, got %v", booking.Pricing.Total)
	}
}

func TestCreate_AppliesBestDeal(t *testing.T) {
	repo := &mockBookingRepo{}
	rooms := &mockRoomRepo{
		findByIDFn: func(_ context.Context, _ string) (*model.Room, error) {
			return availableRoom(), nil
		},
	}
	deals := &mockDealService{
		bestForStayFn: func(_ context.Context, _ string, _, _ time.Time) (*model.Deal, error) {
			return &model.Deal{
				ID:              "deal-1",
				Name:            "March Madness",
				DiscountPercent: 10,
				StartDate:       date(2026, 3, 1),
				EndDate:         date(2026, 3, 31),
				Active:          true,
			}, nil
		},
	}
	svc := newService(repo, &mockLockRepo{}, rooms, deals, nil, nil)

	booking := validBooking()
	if err := svc.Create(context.Background(), booking); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !booking.Pricing.DealApplied {
		t.Fatal("expected deal to apply")
	}
	if booking.Pricing.DealName != "March Madness" {
		t.Errorf("unexpected deal name %s", booking.Pricing.DealName)
	}
	// 2 nights at 100 with 10% off both nights.
	if booking.Pricing.DealDiscount != 20 {
		t.Errorf("expected discount 20, got %v", booking.Pricing.DealDiscount)
	}
	if booking.Pricing.Total != 180 {
		t.Errorf("expected total 180, got %v", booking.Pricing.Total)
	}
}

func TestCreate_OverlapConflict(t *testing.T) {
	existing := &model.Booking{
		ID:       "507f1f77bcf86cd799439033",
		RoomID:   testRoomID,
		CheckIn:  date(2026, 3, 11),
		CheckOut: date(2026, 3, 13),
		Status:   config.Confirmed,
	}

	created := false
	repo := &mockBookingRepo{
		createFn: func(_ context.Context, _ *model.Booking) error {
			created = true
			return nil
		},
		findByRoomFn: func(_ context.Context, _ string, _, _ *time.Time, _ int, _ int64) ([]*model.Booking, error) {
			return []*model.Booking{existing}, nil
		},
	}
	locks := &mockLockRepo{}
	rooms := &mockRoomRepo{
		findByIDFn: func(_ context.Context, _ string) (*model.Room, error) {
			return availableRoom(), nil
		},
	}
	svc := newService(repo, locks, rooms, &mockDealService{}, nil, nil)

	err := svc.Create(context.Background(), validBooking())
	if err == nil {
		t.Fatal("expected a conflict error")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	if created {
		t.Error("booking must not be created when the stay overlaps")
	}
	if len(locks.deleted) != 1 {
		t.Error("lock must be released even when the overlap check fails")
	}
}

func TestCreate_LockHeldByAnotherRequest(t *testing.T) {
	locks := &mockLockRepo{
		createFn: func(_ context.Context, _ *model.BookingLock) (*model.BookingLock, error) {
			return nil, mongo.WriteException{
				WriteErrors: mongo.WriteErrors{{Code: 11000}},
			}
		},
	}
	rooms := &mockRoomRepo{
		findByIDFn: func(_ context.Context, _ string) (*model.Room, error) {
			return availableRoom(), nil
		},
	}
	svc := newService(&mockBookingRepo{}, locks, rooms, &mockDealService{}, nil, nil)

	err := svc.Create(context.Background(), validBooking())
	if err == nil {
		t.Fatal("expected a conflict error")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestCreate_RoomNotAvailable(t *testing.T) {
	room := availableRoom()
	room.Status = config.RoomMaintenance

	rooms := &mockRoomRepo{
		findByIDFn: func(_ context.Context, _ string) (*model.Room, error) {
			return room, nil
		},
	}
	svc := newService(&mockBookingRepo{}, &mockLockRepo{}, rooms, &mockDealService{}, nil, nil)

	err := svc.Create(context.Background(), validBooking())
	if err == nil {
		t.Fatal("expected a conflict error")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestQuote_DoesNotPersist(t *testing.T) {
	created := false
	repo := &mockBookingRepo{
		createFn: func(_ context.Context, _ *model.Booking) error {
			created = true
			return nil
		},
	}
	rooms := &mockRoomRepo{
		findByIDFn: func(_ context.Context, _ string) (*model.Room, error) {
			return availableRoom(), nil
		},
	}
	svc := newService(repo, &mockLockRepo{}, rooms, &mockDealService{}, nil, nil)

	quote, err := svc.Quote(context.Background(), &QuoteRequest{
		RoomID:   testRoomID,
		CheckIn:  date(2026, 3, 10),
		CheckOut: date(2026, 3, 12),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created {
		t.Error("quoting must not create a booking")
	}
	if quote.Pricing == nil || quote.Pricing.Total != 200 {
		t.Fatalf("unexpected pricing %+v", quote.Pricing)
	}
	if !strings.Contains(quote.Summary, "Total nights: 2") {
		t.Errorf("summary missing nights header:\n%s", quote.Summary)
	}
	if !strings.Contains(quote.Summary, "Total: $200.00") {
		t.Errorf("summary missing total:\n%s", quote.Summary)
	}
}

func TestCancel_PublishesCancelledEvent(t *testing.T) {
	booking := validBooking()
	booking.ID = testBookingID
	booking.Status = config.Confirmed

	repo := &mockBookingRepo{
		findByIDFn: func(_ context.Context, _ string) (*model.Booking, error) {
			copied := *booking
			return &copied, nil
		},
	}
	cancelled := &mockPublisher{}
	svc := newService(repo, &mockLockRepo{}, &mockRoomRepo{}, &mockDealService{}, nil, cancelled)

	if err := svc.Cancel(context.Background(), testBookingID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(cancelled.published) != 1 {
		t.Fatalf("expected one cancelled event, got %d", len(cancelled.published))
	}
	if cancelled.published[0].GetEventType() != kafka.EventBookingCancelled {
		t.Errorf("unexpected event type %s", cancelled.published[0].GetEventType())
	}
}

func TestCancel_AlreadyCancelledIsNoOp(t *testing.T) {
	booking := validBooking()
	booking.ID = testBookingID
	booking.Status = config.Cancelled

	updated := false
	repo := &mockBookingRepo{
		findByIDFn: func(_ context.Context, _ string) (*model.Booking, error) {
			copied := *booking
			return &copied, nil
		},
		updateFn: func(_ context.Context, _ string, _ *model.Booking) (*mongo.UpdateResult, error) {
			updated = true
			return &mongo.UpdateResult{MatchedCount: 1}, nil
		},
	}
	cancelled := &mockPublisher{}
	svc := newService(repo, &mockLockRepo{}, &mockRoomRepo{}, &mockDealService{}, nil, cancelled)

	if err := svc.Cancel(context.Background(), testBookingID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated {
		t.Error("cancelling twice must not write again")
	}
	if len(cancelled.published) != 0 {
		t.Error("cancelling twice must not publish again")
	}
}

func TestBillSummary_RendersStoredSnapshot(t *testing.T) {
	booking := validBooking()
	booking.ID = testBookingID
	booking.Status = config.Confirmed
	booking.Pricing = &model.PricingSnapshot{
		TotalNights: 2,
		Months: []model.MonthCharge{
			{Month: 3, MonthName: "March", Year: 2026, Nights: 2, Rate: 100, Subtotal: 200},
		},
		Subtotal: 200,
		Total:    200,
	}

	repo := &mockBookingRepo{
		findByIDFn: func(_ context.Context, _ string) (*model.Booking, error) {
			return booking, nil
		},
	}
	svc := newService(repo, &mockLockRepo{}, &mockRoomRepo{}, &mockDealService{}, nil, nil)

	summary, err := svc.BillSummary(context.Background(), testBookingID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(summary, "March 2026: 2 nights @ $100.00/night = $200.00") {
		t.Errorf("unexpected summary:\n%s", summary)
	}
	if !strings.Contains(summary, "Total: $200.00") {
		t.Errorf("summary missing total:\n%s", summary)
	}
}

func TestCreate_NonMidnightTimesBillCalendarNights(t *testing.T) {
	repo := &mockBookingRepo{}
	rooms := &mockRoomRepo{
		findByIDFn: func(_ context.Context, _ string) (*model.Room, error) {
			return availableRoom(), nil
		},
	}
	svc := newService(repo, &mockLockRepo{}, rooms, &mockDealService{}, nil, nil)

	// Clients send RFC 3339 timestamps with clock times; a late check-in
	// and a morning check-out across a month boundary is still two nights.
	booking := validBooking()
	booking.CheckIn = time.Date(2026, 3, 31, 15, 0, 0, 0, time.UTC)
	booking.CheckOut = time.Date(2026, 4, 2, 11, 0, 0, 0, time.UTC)

	if err := svc.Create(context.Background(), booking); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if booking.Pricing.TotalNights != 2 {
		t.Errorf("expected 2 nights, got %d", booking.Pricing.TotalNights)
	}
	nights := 0
	for _, mc := range booking.Pricing.Months {
		nights += mc.Nights
	}
	if nights != booking.Pricing.TotalNights {
		t.Errorf("month breakdown has %d nights, total says %d", nights, booking.Pricing.TotalNights)
	}
	if booking.Pricing.Total != 200 {
		t.Errorf("expected total 200, got %v", booking.Pricing.Total)
	}
}

func TestCreate_RejectsUnparseablePhone(t *testing.T) {
	created := false
	repo := &mockBookingRepo{
		createFn: func(_ context.Context, _ *model.Booking) error {
			created = true
			return nil
		},
	}
	rooms := &mockRoomRepo{
		findByIDFn: func(_ context.Context, _ string) (*model.Room, error) {
			return availableRoom(), nil
		},
	}
	svc := newService(repo, &mockLockRepo{}, rooms, &mockDealService{}, nil, nil)

	booking := validBooking()
	booking.GuestPhone = "not a phone"

	err := svc.Create(context.Background(), booking)
	if err == nil {
		t.Fatal("expected a validation error")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if created {
		t.Error("booking must not be created with an unparseable phone")
	}
}

func TestCreate_PublishFailureDoesNotFailBooking(t *testing.T) {
	repo := &mockBookingRepo{}
	rooms := &mockRoomRepo{
		findByIDFn: func(_ context.Context, _ string) (*model.Room, error) {
			return availableRoom(), nil
		},
	}
	confirmed := &mockPublisher{err: kafka.ErrProducerClosed}
	svc := newService(repo, &mockLockRepo{}, rooms, &mockDealService{}, confirmed, nil)

	if err := svc.Create(context.Background(), validBooking()); err != nil {
		t.Fatalf("booking must succeed even when the event publish fails: %v", err)
	}
}
