// Package yourtube собирает основное приложение: хранилище, кеш, брокер
// уведомлений, сервисы и HTTP-сервер с маршрутами.
package yourtube

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/yourtube-backend/internal/http-server/auth"
	"github.com/magabrotheeeer/yourtube-backend/internal/http-server/handlers/commentedit"
	"github.com/magabrotheeeer/yourtube-backend/internal/http-server/handlers/commentlist"
	"github.com/magabrotheeeer/yourtube-backend/internal/http-server/handlers/commentpost"
	"github.com/magabrotheeeer/yourtube-backend/internal/http-server/handlers/commentreact"
	"github.com/magabrotheeeer/yourtube-backend/internal/http-server/handlers/commentremove"
	"github.com/magabrotheeeer/yourtube-backend/internal/http-server/handlers/commenttranslate"
	"github.com/magabrotheeeer/yourtube-backend/internal/http-server/handlers/downloadcheck"
	"github.com/magabrotheeeer/yourtube-backend/internal/http-server/handlers/downloadgrant"
	"github.com/magabrotheeeer/yourtube-backend/internal/http-server/handlers/downloadhistory"
	"github.com/magabrotheeeer/yourtube-backend/internal/http-server/handlers/downloadremove"
	"github.com/magabrotheeeer/yourtube-backend/internal/http-server/handlers/ordercreate"
	"github.com/magabrotheeeer/yourtube-backend/internal/http-server/handlers/orderverify"
	"github.com/magabrotheeeer/yourtube-backend/internal/http-server/handlers/paymentlist"
	"github.com/magabrotheeeer/yourtube-backend/internal/http-server/handlers/premiumstatus"
	"github.com/magabrotheeeer/yourtube-backend/internal/http-server/middlewarectx"
	"github.com/magabrotheeeer/yourtube-backend/internal/lib/jwt"
	entitlementservice "github.com/magabrotheeeer/yourtube-backend/internal/services/entitlement"
	moderationservice "github.com/magabrotheeeer/yourtube-backend/internal/services/moderation"
	quotaservice "github.com/magabrotheeeer/yourtube-backend/internal/services/quota"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, jwtMaker jwt.Maker,
	entitlementService *entitlementservice.Service,
	quotaService *quotaservice.Service,
	moderationService *moderationservice.Service) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Get("/videos/{videoID}/comments", commentlist.New(logger, moderationService).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(auth.JWTMiddleware(jwtMaker))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			r.Post("/payments/order", ordercreate.New(logger, entitlementService).ServeHTTP)
			r.Post("/payments/verify", orderverify.New(logger, entitlementService).ServeHTTP)
			r.Get("/payments/list", paymentlist.New(logger, entitlementService).ServeHTTP)
			r.Get("/premium/status", premiumstatus.New(logger, entitlementService).ServeHTTP)

			r.Get("/downloads/limit", downloadcheck.New(logger, quotaService).ServeHTTP)
			r.Post("/downloads", downloadgrant.New(logger, quotaService).ServeHTTP)
			r.Get("/downloads/list", downloadhistory.New(logger, quotaService).ServeHTTP)
			r.Delete("/downloads/{id}", downloadremove.New(logger, quotaService).ServeHTTP)

			r.Post("/comments", commentpost.New(logger, moderationService).ServeHTTP)
			r.Post("/comments/{id}/react", commentreact.New(logger, moderationService).ServeHTTP)
			r.Put("/comments/{id}", commentedit.New(logger, moderationService).ServeHTTP)
			r.Delete("/comments/{id}", commentremove.New(logger, moderationService).ServeHTTP)
			r.Post("/comments/{id}/translate", commenttranslate.New(logger, moderationService).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
