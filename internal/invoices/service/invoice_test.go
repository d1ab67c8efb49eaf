package service

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	bookingsservice "innkeeper/internal/bookings/service"
	invoiceserrors "innkeeper/internal/invoices/errors"
	"innkeeper/pkg/config"
	mongotx "innkeeper/pkg/db/mongo"
	apperrors "innkeeper/pkg/errors"
	"innkeeper/pkg/kafka"
	"innkeeper/pkg/logger"
	"innkeeper/pkg/model"
)

const testBookingID = "507f1f77bcf86cd799439022"

type mockInvoiceRepo struct {
	createFn        func(ctx context.Context, invoice *model.Invoice) error
	findByIDFn      func(ctx context.Context, id string) (*model.Invoice, error)
	findByBookingFn func(ctx context.Context, bookingID string) (*model.Invoice, error)
	findAllFn       func(ctx context.Context, limit int, offset int64) ([]*model.Invoice, error)
	countFn         func(ctx context.Context) (int64, error)
}

func (m *mockInvoiceRepo) Create(ctx context.Context, invoice *model.Invoice) error {
	if m.createFn != nil {
		return m.createFn(ctx, invoice)
	}
	invoice.ID = "507f1f77bcf86cd799439044"
	return nil
}

func (m *mockInvoiceRepo) FindByID(ctx context.Context, id string) (*model.Invoice, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, invoiceserrors.ErrNotFound
}

func (m *mockInvoiceRepo) FindByBooking(ctx context.Context, bookingID string) (*model.Invoice, error) {
	if m.findByBookingFn != nil {
		return m.findByBookingFn(ctx, bookingID)
	}
	return nil, invoiceserrors.ErrNotFound
}

func (m *mockInvoiceRepo) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Invoice, error) {
	if m.findAllFn != nil {
		return m.findAllFn(ctx, limit, offset)
	}
	return nil, nil
}

func (m *mockInvoiceRepo) Count(ctx context.Context) (int64, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}

func (m *mockInvoiceRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

type mockBookingService struct {
	getByIDFn     func(ctx context.Context, id string) (*model.Booking, error)
	billSummaryFn func(ctx context.Context, id string) (string, error)
}

func (m *mockBookingService) Quote(_ context.Context, _ *bookingsservice.QuoteRequest) (*bookingsservice.Quote, error) {
	return nil, nil
}

func (m *mockBookingService) Create(_ context.Context, _ *model.Booking) error { return nil }

func (m *mockBookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, apperrors.NotFoundWithID("Booking", id)
}

func (m *mockBookingService) GetAll(_ context.Context, _ int, _ int64) ([]*model.Booking, int64, error) {
	return nil, 0, nil
}

func (m *mockBookingService) SearchByRoom(_ context.Context, _ string, _, _ *time.Time, _ int, _ int64) ([]*model.Booking, int64, error) {
	return nil, 0, nil
}

func (m *mockBookingService) Update(_ context.Context, _ string, _ *model.BookingUpdate) error {
	return nil
}

func (m *mockBookingService) Cancel(_ context.Context, _ string) error { return nil }

func (m *mockBookingService) Delete(_ context.Context, _ string) error { return nil }

func (m *mockBookingService) BillSummary(ctx context.Context, id string) (string, error) {
	if m.billSummaryFn != nil {
		return m.billSummaryFn(ctx, id)
	}
	return "Total nights: 2\n", nil
}

type mockPublisher struct {
	published []kafka.Message
}

func (m *mockPublisher) Publish(_ context.Context, msg kafka.Message) error {
	m.published = append(m.published, msg)
	return nil
}

func newTestConfig() *config.Config {
	return &config.Config{
		Log:     logger.New(logger.Config{Output: io.Discard}),
		TaxRate: 0.10,
	}
}

func pricedBooking() *model.Booking {
	return &model.Booking{
		ID:         testBookingID,
		RoomID:     "507f1f77bcf86cd799439011",
		GuestName:  "Alice Smith",
		GuestEmail: "alice@example.com",
		CheckIn:    time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		CheckOut:   time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC),
		Status:     config.Confirmed,
		Pricing: &model.PricingSnapshot{
			TotalNights: 2,
			Months: []model.MonthCharge{
				{Month: 3, MonthName: "March", Year: 2026, Nights: 2, Rate: 100, Subtotal: 200},
			},
			Subtotal: 200,
			Total:    200,
		},
	}
}

func TestIssue_ComputesTaxFromSnapshot(t *testing.T) {
	repo := &mockInvoiceRepo{}
	bookings := &mockBookingService{
		getByIDFn: func(_ context.Context, _ string) (*model.Booking, error) {
			return pricedBooking(), nil
		},
	}
	pub := &mockPublisher{}
	svc := NewInvoiceService(repo, bookings, pub, newTestConfig())

	invoice, err := svc.Issue(context.Background(), testBookingID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if invoice.Subtotal != 200 {
		t.Errorf("expected subtotal 200, got %v", invoice.Subtotal)
	}
	if invoice.Tax != 20 {
		t.Errorf("expected tax 20, got %v", invoice.Tax)
	}
	if invoice.Total != 220 {
		t.Errorf("expected total 220, got %v", invoice.Total)
	}
	if !strings.HasPrefix(invoice.Number, "INV-") {
		t.Errorf("unexpected invoice number %s", invoice.Number)
	}
	if len(invoice.Lines) != 1 {
		t.Fatalf("expected one line, got %d", len(invoice.Lines))
	}
	if invoice.Lines[0].Amount != 200 {
		t.Errorf("expected line amount 200, got %v", invoice.Lines[0].Amount)
	}

	if len(pub.published) != 1 {
		t.Fatalf("expected one invoice event, got %d", len(pub.published))
	}
	if pub.published[0].GetEventType() != kafka.EventInvoiceIssued {
		t.Errorf("unexpected event type %s", pub.published[0].GetEventType())
	}
	if pub.published[0].Key != testBookingID {
		t.Errorf("expected event key %s, got %s", testBookingID, pub.published[0].Key)
	}
}

func TestIssue_SplitsDiscountedNightsIntoOwnLine(t *testing.T) {
	booking := pricedBooking()
	booking.Pricing = &model.PricingSnapshot{
		TotalNights: 2,
		Months: []model.MonthCharge{
			{
				Month: 3, MonthName: "March", Year: 2026,
				Nights: 2, Rate: 100, Subtotal: 190,
				DealNights: 1, DealName: "March Madness", DealDiscountPercent: 10, DealAmount: 10,
			},
		},
		Subtotal:     190,
		DealDiscount: 10,
		Total:        190,
		DealApplied:  true,
		DealName:     "March Madness",
	}

	bookings := &mockBookingService{
		getByIDFn: func(_ context.Context, _ string) (*model.Booking, error) {
			return booking, nil
		},
	}
	svc := NewInvoiceService(&mockInvoiceRepo{}, bookings, nil, newTestConfig())

	invoice, err := svc.Issue(context.Background(), testBookingID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(invoice.Lines) != 2 {
		t.Fatalf("expected two lines, got %d: %+v", len(invoice.Lines), invoice.Lines)
	}
	if invoice.Lines[0].Amount != 100 {
		t.Errorf("expected full-rate line amount 100, got %v", invoice.Lines[0].Amount)
	}
	if invoice.Lines[1].Amount != 90 {
		t.Errorf("expected discounted line amount 90, got %v", invoice.Lines[1].Amount)
	}
	if !strings.Contains(invoice.Lines[1].Description, "March Madness") {
		t.Errorf("discounted line should name the deal: %s", invoice.Lines[1].Description)
	}
}

func TestIssue_IdempotentWhenAlreadyIssued(t *testing.T) {
	existing := &model.Invoice{
		ID:        "507f1f77bcf86cd799439044",
		Number:    "INV-EXISTING",
		BookingID: testBookingID,
		Subtotal:  200,
		Tax:       20,
		Total:     220,
	}

	created := false
	repo := &mockInvoiceRepo{
		createFn: func(_ context.Context, _ *model.Invoice) error {
			created = true
			return nil
		},
		findByBookingFn: func(_ context.Context, _ string) (*model.Invoice, error) {
			return existing, nil
		},
	}
	bookings := &mockBookingService{
		getByIDFn: func(_ context.Context, _ string) (*model.Booking, error) {
			return pricedBooking(), nil
		},
	}
	pub := &mockPublisher{}
	svc := NewInvoiceService(repo, bookings, pub, newTestConfig())

	invoice, err := svc.Issue(context.Background(), testBookingID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if invoice.Number != "INV-EXISTING" {
		t.Errorf("expected the existing invoice back, got %s", invoice.Number)
	}
	if created {
		t.Error("a second issue must not create another invoice")
	}
	if len(pub.published) != 0 {
		t.Error("a second issue must not publish another event")
	}
}

func TestIssue_CancelledBookingConflict(t *testing.T) {
	booking := pricedBooking()
	booking.Status = config.Cancelled

	bookings := &mockBookingService{
		getByIDFn: func(_ context.Context, _ string) (*model.Booking, error) {
			return booking, nil
		},
	}
	svc := NewInvoiceService(&mockInvoiceRepo{}, bookings, nil, newTestConfig())

	_, err := svc.Issue(context.Background(), testBookingID)
	if err == nil {
		t.Fatal("expected a conflict error")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestIssue_MissingSnapshotConflict(t *testing.T) {
	booking := pricedBooking()
	booking.Pricing = nil

	bookings := &mockBookingService{
		getByIDFn: func(_ context.Context, _ string) (*model.Booking, error) {
			return booking, nil
		},
	}
	svc := NewInvoiceService(&mockInvoiceRepo{}, bookings, nil, newTestConfig())

	_, err := svc.Issue(context.Background(), testBookingID)
	if err == nil {
		t.Fatal("expected a conflict error")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}
