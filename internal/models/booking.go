package models

import "time"

type Booking struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	UserName      string    `json:"user_name,omitempty"`
	RoomID        int64     `json:"room_id"`
	RoomName      string    `json:"room_name"`
	Date          time.Time `json:"date"`
	Interval      Interval  `json:"interval"`
	TotalHours    float64   `json:"total_hours"`
	TotalAmount   float64   `json:"total_amount"`
	Status        string    `json:"status"`         // confirmed, cancelled
	PaymentStatus string    `json:"payment_status"` // completed, refunded
	ReceiptToken  string    `json:"receipt_token"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// DateKey is the partition key component for a booking day.
func (b *Booking) DateKey() string {
	return b.Date.Format("2006-01-02")
}
