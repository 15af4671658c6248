// Package export renders bookings into spreadsheets for back-office use.
package export

import (
	"fmt"
	"time"

	"roombook/internal/models"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Bookings"

var headers = []string{
	"ID", "Date", "Slot", "Room", "User", "Hours", "Amount",
	"Status", "Payment", "Receipt", "Created",
}

// BuildBookingsWorkbook creates an xlsx workbook listing the bookings in
// the period. The caller owns the returned file and must Close it.
func BuildBookingsWorkbook(bookings []*models.Booking, from, to time.Time) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("Bookings %s - %s",
		from.Format("2006-01-02"), to.Format("2006-01-02")))

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", titleStyle)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(sheetName, cell, h)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for row, b := range bookings {
		values := []any{
			b.ID,
			b.DateKey(),
			b.Interval.String(),
			b.RoomName,
			b.UserName,
			b.TotalHours,
			b.TotalAmount,
			b.Status,
			b.PaymentStatus,
			b.ReceiptToken,
			b.CreatedAt.Format(time.RFC3339),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+3)
			_ = f.SetCellValue(sheetName, cell, v)
		}
	}

	lastCol, _ := excelize.CoordinatesToCellName(len(headers), 1)
	_ = f.MergeCell(sheetName, "A1", lastCol)
	_ = f.SetColWidth(sheetName, "A", "K", 18)
	_ = f.DeleteSheet("Sheet1")

	return f, nil
}
