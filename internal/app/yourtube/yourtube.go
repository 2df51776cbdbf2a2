package yourtube

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/yourtube-backend/internal/cache"
	"github.com/magabrotheeeer/yourtube-backend/internal/config"
	"github.com/magabrotheeeer/yourtube-backend/internal/lib/geoip"
	"github.com/magabrotheeeer/yourtube-backend/internal/lib/jwt"
	"github.com/magabrotheeeer/yourtube-backend/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/yourtube-backend/internal/lib/sl"
	"github.com/magabrotheeeer/yourtube-backend/internal/lib/translate"
	"github.com/magabrotheeeer/yourtube-backend/internal/migrations"
	"github.com/magabrotheeeer/yourtube-backend/internal/models"
	"github.com/magabrotheeeer/yourtube-backend/internal/paymentprovider"
	entitlementservice "github.com/magabrotheeeer/yourtube-backend/internal/services/entitlement"
	moderationservice "github.com/magabrotheeeer/yourtube-backend/internal/services/moderation"
	quotaservice "github.com/magabrotheeeer/yourtube-backend/internal/services/quota"
	"github.com/magabrotheeeer/yourtube-backend/internal/storage"
)

type App struct {
	server *http.Server
	logger *slog.Logger
	db     *storage.Storage
	conn   *amqp.Connection
	ch     *amqp.Channel
}

// receiptPublisher публикует чеки об оплате в обменник уведомлений.
type receiptPublisher struct {
	ch *amqp.Channel
}

func (p *receiptPublisher) PublishReceipt(receipt models.PaymentReceipt) error {
	return rabbitmq.PublishMessage(p.ch, "notifications", rabbitmq.ReceiptRoutingKey, receipt)
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, "./migrations"); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	// Брокер необязателен: без него чеки об оплате не отправляются,
	// остальная функциональность не страдает.
	var conn *amqp.Connection
	var ch *amqp.Channel
	var publisher entitlementservice.ReceiptPublisher
	conn, err = rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		logger.Warn("rabbitmq unavailable, receipts will not be sent", sl.Err(err))
	} else {
		ch, err = rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
		if err != nil {
			_ = conn.Close()
			return nil, err
		}
		publisher = &receiptPublisher{ch: ch}
	}

	// Без реквизитов шлюза заказы создаются в демо-режиме.
	var gateway entitlementservice.OrderGateway
	if cfg.GatewayKeyID != "" && cfg.GatewaySecret != "" {
		gateway = paymentprovider.NewClient(cfg.GatewayKeyID, cfg.GatewaySecret, cfg.GatewayAPIURL)
	}

	entitlementService := entitlementservice.New(db, db, gateway, cacheRedis, publisher,
		entitlementservice.DefaultCatalog(), cfg.GatewaySecret, logger)
	quotaService := quotaservice.New(db, entitlementService, cfg.FreeDailyLimit, logger)
	moderationService := moderationservice.New(db,
		geoip.NewClient(cfg.GeoIPURL),
		translate.NewClient(cfg.TranslateURL, cfg.TranslateKey),
		cfg.DislikeThreshold, logger)

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, jwtMaker, entitlementService, quotaService, moderationService)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		conn:   conn,
		ch:     ch,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if a.ch != nil {
			_ = a.ch.Close()
		}
		if a.conn != nil {
			_ = a.conn.Close()
		}
		_ = a.db.DB.Close()
		return err
	}
}
