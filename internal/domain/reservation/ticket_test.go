package reservation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTicketNumber(t *testing.T) {
	date := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

	ticket, err := FormatTicketNumber(date, 7)
	require.NoError(t, err)
	assert.Equal(t, "26070107", ticket)

	ticket, err = FormatTicketNumber(date, 1)
	require.NoError(t, err)
	assert.Equal(t, "26070101", ticket)

	ticket, err = FormatTicketNumber(time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), 99)
	require.NoError(t, err)
	assert.Equal(t, "25123199", ticket)
}

func TestFormatTicketNumberSequenceBounds(t *testing.T) {
	date := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

	_, err := FormatTicketNumber(date, 0)
	assert.Error(t, err)
	_, err = FormatTicketNumber(date, 100)
	assert.Error(t, err, "the printed format has two sequence digits")
}

func TestTicketDatePrefix(t *testing.T) {
	assert.Equal(t, "260701", TicketDatePrefix(time.Date(2026, 7, 1, 14, 30, 0, 0, time.UTC)))
}

func TestValidateTicketNumber(t *testing.T) {
	assert.NoError(t, ValidateTicketNumber("26070107"))
	assert.Error(t, ValidateTicketNumber("2607010"), "too short")
	assert.Error(t, ValidateTicketNumber("260701071"), "too long")
	assert.Error(t, ValidateTicketNumber("26O70107"), "non-digit")
	assert.Error(t, ValidateTicketNumber("26139901"), "month 13 is not a date")
}
