// Package sender собирает приложение отправки чеков: потребитель очереди
// уведомлений и SMTP-транспорт.
package sender

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/yourtube-backend/internal/config"
	"github.com/magabrotheeeer/yourtube-backend/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/yourtube-backend/internal/lib/smtp"
	"github.com/magabrotheeeer/yourtube-backend/internal/models"
	senderservice "github.com/magabrotheeeer/yourtube-backend/internal/services/sender"
)

type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	senderService *senderservice.Service
	logger        *slog.Logger
}

func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	transport := smtp.NewTransport(cfg, logger)
	senderService := senderservice.New(transport, logger)

	return &App{
		conn:          conn,
		ch:            ch,
		senderService: senderService,
		logger:        logger,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	handler := func(body []byte) error {
		var receipt models.PaymentReceipt
		if err := json.Unmarshal(body, &receipt); err != nil {
			return fmt.Errorf("error unmarshalling receipt: %w", err)
		}
		return a.senderService.SendReceipt(receipt)
	}

	if err := rabbitmq.ConsumerMessage(ctx, a.ch, rabbitmq.ReceiptQueue, handler); err != nil {
		a.logger.Error("failed to start receipt consumer", slog.Any("err", err))
		return err
	}

	<-ctx.Done()
	a.logger.Info("Sender service shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", slog.Any("err", err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", slog.Any("err", err))
	}
	return nil
}
