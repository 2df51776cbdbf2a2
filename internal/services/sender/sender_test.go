package sender

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/yourtube-backend/internal/lib/smtp"
	"github.com/magabrotheeeer/yourtube-backend/internal/models"
)

type MockTransport struct{ mock.Mock }

func (m *MockTransport) Connect() (smtp.Client, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(smtp.Client), args.Error(1)
}

func (m *MockTransport) GetSMTPUser() string {
	args := m.Called()
	return args.String(0)
}

type MockClient struct {
	mock.Mock
	data bytes.Buffer
}

func (m *MockClient) Mail(from string) error {
	args := m.Called(from)
	return args.Error(0)
}

func (m *MockClient) Rcpt(to string) error {
	args := m.Called(to)
	return args.Error(0)
}

func (m *MockClient) Data() (io.WriteCloser, error) {
	args := m.Called()
	if args.Error(1) != nil {
		return nil, args.Error(1)
	}
	return nopWriteCloser{&m.data}, nil
}

func (m *MockClient) Quit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockClient) Close() error {
	args := m.Called()
	return args.Error(0)
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testReceipt() models.PaymentReceipt {
	return models.PaymentReceipt{
		Email:      "user@example.com",
		Username:   "alice",
		PlanType:   models.PlanSilver,
		OrderID:    "order_demo_1",
		PaymentID:  "pay_demo_1",
		Amount:     5000,
		Currency:   "INR",
		ExpiryDate: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestSendReceipt(t *testing.T) {
	t.Run("успешная отправка формирует корректное письмо", func(t *testing.T) {
		transport := new(MockTransport)
		client := new(MockClient)

		transport.On("Connect").Return(client, nil)
		transport.On("GetSMTPUser").Return("noreply@yourtube.example")
		client.On("Mail", "noreply@yourtube.example").Return(nil)
		client.On("Rcpt", "user@example.com").Return(nil)
		client.On("Data").Return(nil, nil)
		client.On("Quit").Return(nil)
		client.On("Close").Return(nil)

		svc := New(transport, discardLogger())

		require.NoError(t, svc.SendReceipt(testReceipt()))

		body := client.data.String()
		assert.Contains(t, body, "To: user@example.com")
		assert.Contains(t, body, "Plan: silver")
		assert.Contains(t, body, "Amount: 50.00 INR")
		assert.Contains(t, body, "Order ID: order_demo_1")
		assert.Contains(t, body, "Valid until: 15 Jun 2025")
		client.AssertExpectations(t)
	})

	t.Run("ошибка подключения возвращается вызывающему", func(t *testing.T) {
		transport := new(MockTransport)
		transport.On("Connect").Return(nil, errors.New("dial failed"))

		svc := New(transport, discardLogger())

		err := svc.SendReceipt(testReceipt())
		assert.Error(t, err)
	})

	t.Run("пустой адрес получателя отклоняется без подключения", func(t *testing.T) {
		transport := new(MockTransport)
		svc := New(transport, discardLogger())

		receipt := testReceipt()
		receipt.Email = ""
		err := svc.SendReceipt(receipt)
		assert.Error(t, err)
		transport.AssertNotCalled(t, "Connect")
	})
}
