package models

import "time"

// Статусы платёжной записи. Переход разрешён только из pending
// и выполняется ровно один раз.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

// PaymentRecord запись о попытке оплаты тарифа. Одна запись на order_id,
// записи никогда не удаляются.
type PaymentRecord struct {
	ID                   int        `json:"id"`
	UserUID              string     `json:"user_uid"`
	OrderID              string     `json:"order_id"`
	PaymentID            string     `json:"payment_id,omitempty"`
	Signature            string     `json:"-"`
	Amount               int64      `json:"amount"` // в минимальных единицах валюты
	Currency             string     `json:"currency"`
	Status               string     `json:"status"`
	PlanType             string     `json:"plan_type"`
	PlanDurationDays     int        `json:"plan_duration_days"`
	AllowedWatchDuration int        `json:"allowed_watch_duration"`
	ExpiryDate           *time.Time `json:"expiry_date,omitempty"`
	Note                 string     `json:"note,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
}

// Plan описывает позицию тарифного каталога.
type Plan struct {
	Type                 string
	Amount               int64 // стоимость в минимальных единицах валюты
	Description          string
	AllowedWatchDuration int // секунды, 0 — без лимита
	DurationDays         int
}

// OrderDescriptor данные созданного заказа, возвращаемые клиенту
// для прохождения оплаты.
type OrderDescriptor struct {
	OrderID     string `json:"order_id"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	PlanType    string `json:"plan_type"`
	Description string `json:"description"`
}

// PaymentReceipt сообщение для отправки чека об оплате через очередь уведомлений.
type PaymentReceipt struct {
	Email      string    `json:"email"`
	Username   string    `json:"username"`
	PlanType   string    `json:"plan_type"`
	OrderID    string    `json:"order_id"`
	PaymentID  string    `json:"payment_id"`
	Amount     int64     `json:"amount"`
	Currency   string    `json:"currency"`
	ExpiryDate time.Time `json:"expiry_date"`
}

// DummyOrderRequest используется для приёма запроса на создание заказа.
// Неизвестный тариф не является ошибкой: каталог заменит его на bronze.
type DummyOrderRequest struct {
	PlanType string `json:"plan_type" validate:"required"`
}

// DummyVerifyRequest используется для приёма данных подтверждения оплаты.
type DummyVerifyRequest struct {
	OrderID   string `json:"order_id" validate:"required"`
	PaymentID string `json:"payment_id" validate:"required"`
	Signature string `json:"signature" validate:"required"`
	PlanType  string `json:"plan_type" validate:"omitempty"`
}
