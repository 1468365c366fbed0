package reservation

import (
	"fmt"
	"time"

	"github.com/lidosuite/service-reservation/internal/pkg/domain"
)

// Ticket numbers are printed on physical tickets: YYMMDD of the reservation
// date followed by a zero-padded two-digit per-date sequence. The format is
// a bit-exact external contract (8 ASCII digits).
const (
	ticketDateLayout = "060102"
	maxTicketsPerDay = 99
)

// TicketDatePrefix returns the six-digit YYMMDD prefix tickets of the
// given date carry.
func TicketDatePrefix(date time.Time) string {
	return date.Format(ticketDateLayout)
}

// FormatTicketNumber builds the YYMMDDRR ticket for the given date and
// per-date sequence (1-based).
func FormatTicketNumber(date time.Time, seq int) (string, error) {
	if seq < 1 || seq > maxTicketsPerDay {
		return "", domain.NewValidationError(fmt.Sprintf("ticket sequence %d out of range 1..%d", seq, maxTicketsPerDay))
	}
	return fmt.Sprintf("%s%02d", date.Format(ticketDateLayout), seq), nil
}

// ValidateTicketNumber checks the 8-digit YYMMDDRR shape.
func ValidateTicketNumber(ticket string) error {
	if len(ticket) != 8 {
		return domain.NewValidationError("ticket number must be 8 digits")
	}
	for _, c := range ticket {
		if c < '0' || c > '9' {
			return domain.NewValidationError("ticket number must be 8 digits")
		}
	}
	if _, err := time.Parse(ticketDateLayout, ticket[:6]); err != nil {
		return domain.NewValidationError("ticket number has no valid date prefix")
	}
	return nil
}
