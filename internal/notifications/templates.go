package notifications

import (
	"fmt"
	"strings"

	"innkeeper/pkg/model"
)

const dateLayout = "Monday, January 2, 2006"

func renderBookingConfirmed(event model.BookingEvent) Notification {
	var b strings.Builder

	fmt.Fprintf(&b, "Dear %s,\n\n", event.GuestName)
	b.WriteString("Your booking is confirmed.\n\n")
	if event.RoomNumber != "" {
		fmt.Fprintf(&b, "Room: %s\n", event.RoomNumber)
	}
	fmt.Fprintf(&b, "Check-in: %s\n", event.CheckIn.Format(dateLayout))
	fmt.Fprintf(&b, "Check-out: %s\n", event.CheckOut.Format(dateLayout))

	if event.Pricing != nil {
		b.WriteString("\nYour charges:\n\n")
		for _, line := range event.Pricing.LineItems {
			b.WriteString(line)
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "\nTotal: $%.2f\n", event.Pricing.Total)
	}

	b.WriteString("\nWe look forward to welcoming you.\n")

	return Notification{
		Recipient: event.GuestEmail,
		Subject:   "Booking confirmed",
		Body:      b.String(),
		Channel:   ChannelEmail,
	}
}

func renderBookingCancelled(event model.BookingEvent) Notification {
	var b strings.Builder

	fmt.Fprintf(&b, "Dear %s,\n\n", event.GuestName)
	fmt.Fprintf(&b, "Your booking for %s to %s has been cancelled.\n",
		event.CheckIn.Format(dateLayout), event.CheckOut.Format(dateLayout))
	b.WriteString("\nIf this was a mistake, please contact the front desk.\n")

	return Notification{
		Recipient: event.GuestEmail,
		Subject:   "Booking cancelled",
		Body:      b.String(),
		Channel:   ChannelEmail,
	}
}

func renderInvoiceIssued(event model.InvoiceEvent) Notification {
	var b strings.Builder

	fmt.Fprintf(&b, "Dear %s,\n\n", event.GuestName)
	fmt.Fprintf(&b, "Invoice %s for your stay is ready.\n\n", event.Number)
	b.WriteString(event.Summary)
	fmt.Fprintf(&b, "\nTax: $%.2f\n", event.Tax)
	fmt.Fprintf(&b, "Amount due: $%.2f\n", event.Total)
	b.WriteString("\nThank you for staying with us.\n")

	return Notification{
		Recipient: event.GuestEmail,
		Subject:   fmt.Sprintf("Invoice %s", event.Number),
		Body:      b.String(),
		Channel:   ChannelEmail,
	}
}

// renderCheckInReminderSMS is a short-form variant for guests who left a
// phone number.
func renderCheckInReminderSMS(event model.BookingEvent) Notification {
	body := fmt.Sprintf("Booking confirmed. Check-in %s, room %s.",
		event.CheckIn.Format("Jan 2"), event.RoomNumber)
	if event.RoomNumber == "" {
		body = fmt.Sprintf("Booking confirmed. Check-in %s.", event.CheckIn.Format("Jan 2"))
	}

	return Notification{
		Recipient: event.GuestPhone,
		Subject:   "Booking confirmed",
		Body:      body,
		Channel:   ChannelSMS,
	}
}
