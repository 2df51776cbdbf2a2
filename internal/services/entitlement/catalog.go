package entitlement

import "github.com/magabrotheeeer/yourtube-backend/internal/models"

// Catalog тарифный каталог: соответствие тарифа его стоимости, сроку
// действия и лимиту просмотра. Передаётся в сервис как данные, чтобы
// изменение каталога не трогало логику верификации.
type Catalog map[string]models.Plan

// DefaultCatalog возвращает стандартный каталог платных тарифов.
// Суммы указаны в пайсах, лимит просмотра — в секундах (0 — без лимита).
func DefaultCatalog() Catalog {
	return Catalog{
		models.PlanBronze: {
			Type:                 models.PlanBronze,
			Amount:               1000,
			Description:          "Bronze Plan - 7 min",
			AllowedWatchDuration: 420,
			DurationDays:         30,
		},
		models.PlanSilver: {
			Type:                 models.PlanSilver,
			Amount:               5000,
			Description:          "Silver Plan - 10 min",
			AllowedWatchDuration: 600,
			DurationDays:         90,
		},
		models.PlanGold: {
			Type:                 models.PlanGold,
			Amount:               10000,
			Description:          "Gold Plan - Unlimited",
			AllowedWatchDuration: 0,
			DurationDays:         365,
		},
	}
}

// Resolve возвращает тариф по имени; неизвестный тариф трактуется как bronze.
func (c Catalog) Resolve(planType string) models.Plan {
	if plan, ok := c[planType]; ok {
		return plan
	}
	return c[models.PlanBronze]
}
