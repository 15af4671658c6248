package models

const (
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

const (
	PaymentCompleted = "completed"
	PaymentRefunded  = "refunded"
)

const (
	// DefaultOpenTime и DefaultCloseTime задают окно работы по умолчанию
	DefaultOpenTime  = "09:00"
	DefaultCloseTime = "21:00"

	// DefaultStoreTimeout ограничение на операции с БД в миллисекундах
	DefaultStoreTimeout = 3000

	// NotifyQueueSize размер очереди уведомлений в памяти
	NotifyQueueSize = 1000

	// RateLimitRPS значения ограничения частоты запросов API по умолчанию
	RateLimitRPS   = 10
	RateLimitBurst = 20
)
