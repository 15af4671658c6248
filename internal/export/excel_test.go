package export

import (
	"testing"
	"time"

	"roombook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildBookingsWorkbook(t *testing.T) {
	from := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)

	bookings := []*models.Booking{
		{
			ID:            1,
			UserName:      "Alice",
			RoomName:      "Conference Room A",
			Date:          time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
			Interval:      models.Interval{StartMin: 540, EndMin: 660},
			TotalHours:    2,
			TotalAmount:   1000,
			Status:        models.StatusConfirmed,
			PaymentStatus: models.PaymentCompleted,
			ReceiptToken:  "ROOMBOOK:v1:1:Conference Room A:2026-09-15:09:00-11:00:abcdefabcdef",
			CreatedAt:     time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC),
		},
		{
			ID:            2,
			UserName:      "Bob",
			RoomName:      "Meeting Room B",
			Date:          time.Date(2026, 9, 16, 0, 0, 0, 0, time.UTC),
			Interval:      models.Interval{StartMin: 600, EndMin: 630},
			TotalHours:    0.5,
			TotalAmount:   150,
			Status:        models.StatusCancelled,
			PaymentStatus: models.PaymentRefunded,
		},
	}

	f, err := BuildBookingsWorkbook(bookings, from, to)
	require.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue(sheetName, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Bookings 2026-09-01 - 2026-09-30", title)

	header, err := f.GetCellValue(sheetName, "A2")
	require.NoError(t, err)
	assert.Equal(t, "ID", header)

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	// Title + header + two data rows.
	require.Len(t, rows, 4)
	assert.Equal(t, "2026-09-15", rows[2][1])
	assert.Equal(t, "09:00-11:00", rows[2][2])
	assert.Equal(t, "Conference Room A", rows[2][3])
	assert.Equal(t, "cancelled", rows[3][7])

	// The default sheet is gone.
	_, err = f.GetSheetIndex("Sheet1")
	assert.NoError(t, err)
	assert.NotContains(t, f.GetSheetList(), "Sheet1")
}

func TestBuildBookingsWorkbookEmpty(t *testing.T) {
	from := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC)

	f, err := BuildBookingsWorkbook(nil, from, to)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}
