// Package models содержит доменные структуры сервиса: пользователей,
// платежи, записи о скачиваниях и комментарии, а также вспомогательные
// типы для приёма данных из JSON-запросов.
package models

import "time"

// Тарифные планы пользователя. Free назначается по умолчанию,
// платные планы выставляются только после успешной верификации платежа.
const (
	PlanFree   = "free"
	PlanBronze = "bronze"
	PlanSilver = "silver"
	PlanGold   = "gold"
)

// User представляет зарегистрированного пользователя платформы.
type User struct {
	UID                  string     // Уникальный идентификатор пользователя
	Email                string     // Электронная почта
	Username             string     // Имя пользователя (уникальное)
	Role                 string     // Роль пользователя, admin или user
	Plan                 string     // Текущий тариф (free/bronze/silver/gold)
	PlanExpiry           *time.Time // Дата окончания тарифа, nil для free
	AllowedWatchDuration int        // Лимит непрерывного просмотра в секундах, 0 — без лимита
	CreatedAt            time.Time
}

// Entitlement снимок текущих прав пользователя по тарифу.
// IsActive и DaysRemaining всегда вычисляются на момент чтения:
// истёкший тариф в хранилище не сбрасывается.
type Entitlement struct {
	Plan                 string     `json:"plan"`
	PlanExpiry           *time.Time `json:"plan_expiry,omitempty"`
	AllowedWatchDuration int        `json:"allowed_watch_duration"`
	IsActive             bool       `json:"is_active"`
	DaysRemaining        int        `json:"days_remaining"`
}

// Active возвращает true, если тариф платный и его срок ещё не истёк.
func (e *Entitlement) Active(now time.Time) bool {
	return e.Plan != PlanFree && e.PlanExpiry != nil && e.PlanExpiry.After(now)
}
