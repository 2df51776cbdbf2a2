// Package sender реализует отправку чеков об оплате тарифа по электронной почте.
package sender

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/yourtube-backend/internal/lib/sl"
	"github.com/magabrotheeeer/yourtube-backend/internal/lib/smtp"
	"github.com/magabrotheeeer/yourtube-backend/internal/models"
)

// Service отправляет письма с чеками через SMTP транспорт.
type Service struct {
	transport smtp.TransportInterface
	log       *slog.Logger
}

// New создает новый Service.
func New(transport smtp.TransportInterface, log *slog.Logger) *Service {
	return &Service{transport: transport, log: log}
}

// SendReceipt отправляет чек об успешной оплате на почту пользователя.
func (s *Service) SendReceipt(receipt models.PaymentReceipt) error {
	const op = "sender.SendReceipt"

	if receipt.Email == "" {
		return fmt.Errorf("%s: empty recipient email", op)
	}

	client, err := s.transport.Connect()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			s.log.Debug("failed to close smtp client", sl.Err(closeErr))
		}
	}()

	from := s.transport.GetSMTPUser()
	if err := client.Mail(from); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := client.Rcpt(receipt.Email); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err := writer.Write([]byte(buildMessage(from, receipt))); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := client.Quit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("receipt email sent",
		slog.String("email", receipt.Email), slog.String("order_id", receipt.OrderID))
	return nil
}

// buildMessage собирает письмо с чеком. Сумма хранится в минимальных
// единицах валюты и печатается в основных.
func buildMessage(from string, receipt models.PaymentReceipt) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", receipt.Email)
	fmt.Fprintf(&b, "Subject: Payment receipt for %s plan\r\n", receipt.PlanType)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	fmt.Fprintf(&b, "Hello %s,\r\n\r\n", receipt.Username)
	fmt.Fprintf(&b, "Your payment has been received.\r\n\r\n")
	fmt.Fprintf(&b, "Plan: %s\r\n", receipt.PlanType)
	fmt.Fprintf(&b, "Amount: %.2f %s\r\n", float64(receipt.Amount)/100, receipt.Currency)
	fmt.Fprintf(&b, "Order ID: %s\r\n", receipt.OrderID)
	fmt.Fprintf(&b, "Payment ID: %s\r\n", receipt.PaymentID)
	fmt.Fprintf(&b, "Valid until: %s\r\n", receipt.ExpiryDate.Format("02 Jan 2006"))
	b.WriteString("\r\nThank you for your purchase!\r\n")
	return b.String()
}
