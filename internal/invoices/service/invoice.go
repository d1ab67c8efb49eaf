package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/mongo"

	bookingsservice "innkeeper/internal/bookings/service"
	invoiceserrors "innkeeper/internal/invoices/errors"
	"innkeeper/internal/invoices/repository"
	"innkeeper/pkg/config"
	apperrors "innkeeper/pkg/errors"
	"innkeeper/pkg/kafka"
	"innkeeper/pkg/model"
)

// EventPublisher publishes invoice events. Satisfied by *kafka.Producer.
type EventPublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type InvoiceService interface {
	Issue(ctx context.Context, bookingID string) (*model.Invoice, error)
	GetByID(ctx context.Context, id string) (*model.Invoice, error)
	GetByBooking(ctx context.Context, bookingID string) (*model.Invoice, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Invoice, int64, error)
}

type invoiceService struct {
	repo      repository.InvoiceRepository
	bookings  bookingsservice.BookingService
	publisher EventPublisher
	cfg       *config.Config
}

func NewInvoiceService(
	repo repository.InvoiceRepository,
	bookings bookingsservice.BookingService,
	publisher EventPublisher,
	cfg *config.Config,
) InvoiceService {
	return &invoiceService{
		repo:      repo,
		bookings:  bookings,
		publisher: publisher,
		cfg:       cfg,
	}
}

// Issue creates the invoice for a booking from its stored pricing snapshot
// and the configured tax rate. Issuing is idempotent: a booking that already
// has an invoice gets the existing one back unchanged.
func (s *invoiceService) Issue(ctx context.Context, bookingID string) (*model.Invoice, error) {
	if bookingID == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status == config.Cancelled {
		return nil, apperrors.Conflict("Cannot invoice a cancelled booking")
	}
	if booking.Pricing == nil {
		return nil, apperrors.Conflict("Booking has no pricing snapshot")
	}

	summary, err := s.bookings.BillSummary(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	invoice := s.buildInvoice(booking, summary)

	var issued *model.Invoice
	var alreadyIssued bool
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		existing, err := s.repo.FindByBooking(sessCtx, bookingID)
		if err == nil {
			issued = existing
			alreadyIssued = true
			return nil
		}
		if !errors.Is(err, invoiceserrors.ErrNotFound) {
			return apperrors.Internal("Failed to check for existing invoice", err)
		}

		if err := s.repo.Create(sessCtx, invoice); err != nil {
			return apperrors.Internal("Failed to create invoice", err)
		}
		issued = invoice
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to issue invoice", "booking_id", bookingID, "error", err)
		return nil, err
	}

	if alreadyIssued {
		s.cfg.Log.Info("Invoice already issued for booking", "booking_id", bookingID, "invoice_id", issued.ID)
		return issued, nil
	}

	s.cfg.Log.Info("Invoice issued",
		"id", issued.ID,
		"number", issued.Number,
		"booking_id", bookingID,
		"total", issued.Total,
	)

	s.publishInvoiceEvent(ctx, issued, booking)
	return issued, nil
}

func (s *invoiceService) GetByID(ctx context.Context, id string) (*model.Invoice, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Invoice ID cannot be empty")
	}

	invoice, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, invoiceserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Invoice", id)
		}
		if errors.Is(err, invoiceserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid invoice ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve invoice", err)
	}

	return invoice, nil
}

func (s *invoiceService) GetByBooking(ctx context.Context, bookingID string) (*model.Invoice, error) {
	if bookingID == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	invoice, err := s.repo.FindByBooking(ctx, bookingID)
	if err != nil {
		if errors.Is(err, invoiceserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Invoice for booking", bookingID)
		}
		return nil, apperrors.Internal("Failed to retrieve invoice", err)
	}

	return invoice, nil
}

func (s *invoiceService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Invoice, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var invoices []*model.Invoice
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count invoices", "error", errCount)
			errCount = apperrors.Internal("Failed to count invoices", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		invoices, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list invoices", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve invoices", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return invoices, count, nil
}

// buildInvoice turns the snapshot into invoice lines and applies tax. Tax
// math runs in decimals so the stored cents match what the math says.
func (s *invoiceService) buildInvoice(booking *model.Booking, summary string) *model.Invoice {
	snap := booking.Pricing

	var lines []model.InvoiceLine
	for _, mc := range snap.Months {
		if mc.DealNights == 0 {
			lines = append(lines, model.InvoiceLine{
				Description: fmt.Sprintf("%s %d: %d x $%.2f/night", mc.MonthName, mc.Year, mc.Nights, mc.Rate),
				Amount:      mc.Subtotal,
			})
			continue
		}

		fullNights := mc.Nights - mc.DealNights
		fullAmount := decimal.NewFromFloat(mc.Rate).
			Mul(decimal.NewFromInt(int64(fullNights))).
			Round(2)
		if fullNights > 0 {
			lines = append(lines, model.InvoiceLine{
				Description: fmt.Sprintf("%s %d: %d x $%.2f/night", mc.MonthName, mc.Year, fullNights, mc.Rate),
				Amount:      fullAmount.InexactFloat64(),
			})
		}

		dealAmount := decimal.NewFromFloat(mc.Subtotal).Sub(fullAmount)
		lines = append(lines, model.InvoiceLine{
			Description: fmt.Sprintf("%s %d: %d x discounted night (%s, %g%% off)", mc.MonthName, mc.Year, mc.DealNights, mc.DealName, mc.DealDiscountPercent),
			Amount:      dealAmount.InexactFloat64(),
		})
	}

	subtotal := decimal.NewFromFloat(snap.Total)
	taxRate := decimal.NewFromFloat(s.cfg.TaxRate)
	tax := subtotal.Mul(taxRate).Round(2)
	total := subtotal.Add(tax)

	return &model.Invoice{
		Number:    newInvoiceNumber(),
		BookingID: booking.ID,
		Lines:     lines,
		Subtotal:  subtotal.InexactFloat64(),
		TaxRate:   s.cfg.TaxRate,
		Tax:       tax.InexactFloat64(),
		Total:     total.InexactFloat64(),
		Summary:   summary,
	}
}

func newInvoiceNumber() string {
	return "INV-" + strings.ToUpper(uuid.New().String())
}

// publishInvoiceEvent is best effort; the stored invoice is the source of
// truth and a failed publish only delays the notification.
func (s *invoiceService) publishInvoiceEvent(ctx context.Context, invoice *model.Invoice, booking *model.Booking) {
	if s.publisher == nil {
		return
	}

	event := model.InvoiceEvent{
		InvoiceID:  invoice.ID,
		Number:     invoice.Number,
		BookingID:  invoice.BookingID,
		GuestName:  booking.GuestName,
		GuestEmail: booking.GuestEmail,
		Subtotal:   invoice.Subtotal,
		Tax:        invoice.Tax,
		Total:      invoice.Total,
		Summary:    invoice.Summary,
		IssuedAt:   time.Now().UTC(),
	}

	msg := kafka.NewMessage().
		WithKey(invoice.BookingID).
		WithValue(event).
		WithEventType(kafka.EventInvoiceIssued).
		WithSource("invoices").
		WithSchemaVersion("1").
		Build()

	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.cfg.Log.Error("Failed to publish invoice event",
			"invoice_id", invoice.ID,
			"booking_id", invoice.BookingID,
			"error", err,
		)
	}
}
