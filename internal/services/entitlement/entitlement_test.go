package entitlement

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/yourtube-backend/internal/errs"
	"github.com/magabrotheeeer/yourtube-backend/internal/models"
	"github.com/magabrotheeeer/yourtube-backend/internal/paymentprovider"
)

type MockUserRepository struct{ mock.Mock }

func (m *MockUserRepository) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) UpdateUserPlan(ctx context.Context, userUID, plan string, planExpiry time.Time, allowedWatchDuration int) (*models.User, error) {
	args := m.Called(ctx, userUID, plan, planExpiry, allowedWatchDuration)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockPaymentLedger struct{ mock.Mock }

func (m *MockPaymentLedger) CreatePendingPayment(ctx context.Context, rec models.PaymentRecord) (int, error) {
	args := m.Called(ctx, rec)
	return args.Int(0), args.Error(1)
}

func (m *MockPaymentLedger) MarkPaymentCompleted(ctx context.Context, orderID, paymentID, signature string, expiryDate time.Time) (*models.PaymentRecord, error) {
	args := m.Called(ctx, orderID, paymentID, signature, expiryDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PaymentRecord), args.Error(1)
}

func (m *MockPaymentLedger) MarkPaymentFailed(ctx context.Context, orderID string) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *MockPaymentLedger) ListPaymentsByUser(ctx context.Context, userUID string) ([]*models.PaymentRecord, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PaymentRecord), args.Error(1)
}

type MockOrderGateway struct{ mock.Mock }

func (m *MockOrderGateway) CreateOrder(ctx context.Context, req paymentprovider.CreateOrderRequest) (*paymentprovider.CreateOrderResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.CreateOrderResponse), args.Error(1)
}

type MockCache struct{ mock.Mock }

func (m *MockCache) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	return args.Bool(0), args.Error(1)
}

func (m *MockCache) Set(key string, value any, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *MockCache) Invalidate(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

type MockReceiptPublisher struct{ mock.Mock }

func (m *MockReceiptPublisher) PublishReceipt(receipt models.PaymentReceipt) error {
	args := m.Called(receipt)
	return args.Error(0)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func signPayment(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func testUser() *models.User {
	return &models.User{
		UID:      "user-1",
		Email:    "user@example.com",
		Username: "user",
		Role:     "user",
		Plan:     models.PlanFree,
	}
}

func TestRequestPlanOrder(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name         string
		planType     string
		gatewayOrder *paymentprovider.CreateOrderResponse
		gatewayErr   error
		wantDemo     bool
		wantAmount   int64
		wantPlan     string
	}{
		{
			name:         "успешное создание заказа через шлюз",
			planType:     models.PlanSilver,
			gatewayOrder: &paymentprovider.CreateOrderResponse{ID: "order_live_123", Status: "created"},
			wantAmount:   5000,
			wantPlan:     models.PlanSilver,
		},
		{
			name:       "ошибка шлюза переключает на демо-заказ",
			planType:   models.PlanBronze,
			gatewayErr: errors.New("gateway unavailable"),
			wantDemo:   true,
			wantAmount: 1000,
			wantPlan:   models.PlanBronze,
		},
		{
			name:       "неизвестный тариф трактуется как bronze",
			planType:   "platinum",
			gatewayErr: errors.New("gateway unavailable"),
			wantDemo:   true,
			wantAmount: 1000,
			wantPlan:   models.PlanBronze,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUserRepository)
			ledger := new(MockPaymentLedger)
			gateway := new(MockOrderGateway)

			users.On("GetUser", ctx, "user-1").Return(testUser(), nil)
			gateway.On("CreateOrder", ctx, mock.Anything).Return(tt.gatewayOrder, tt.gatewayErr)
			ledger.On("CreatePendingPayment", ctx, mock.Anything).Return(1, nil)

			svc := New(users, ledger, gateway, new(MockCache), nil, DefaultCatalog(), "secret", discardLogger())

			order, err := svc.RequestPlanOrder(ctx, "user-1", tt.planType)
			require.NoError(t, err)
			assert.Equal(t, tt.wantAmount, order.Amount)
			assert.Equal(t, tt.wantPlan, order.PlanType)
			if tt.wantDemo {
				assert.Contains(t, order.OrderID, "demo")
			} else {
				assert.Equal(t, tt.gatewayOrder.ID, order.OrderID)
			}

			users.AssertExpectations(t)
			ledger.AssertExpectations(t)
		})
	}
}

func TestRequestPlanOrder_NilGateway(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	ledger := new(MockPaymentLedger)

	users.On("GetUser", ctx, "user-1").Return(testUser(), nil)
	ledger.On("CreatePendingPayment", ctx, mock.Anything).Return(1, nil)

	svc := New(users, ledger, nil, new(MockCache), nil, DefaultCatalog(), "", discardLogger())

	order, err := svc.RequestPlanOrder(ctx, "user-1", models.PlanGold)
	require.NoError(t, err)
	assert.Contains(t, order.OrderID, "demo")
	assert.Equal(t, int64(10000), order.Amount)
}

func TestRequestPlanOrder_UserNotFound(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	users.On("GetUser", ctx, "ghost").Return(nil, errs.ErrNotFound)

	svc := New(users, new(MockPaymentLedger), nil, new(MockCache), nil, DefaultCatalog(), "", discardLogger())

	_, err := svc.RequestPlanOrder(ctx, "ghost", models.PlanBronze)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestRequestPlanOrder_DuplicateOrder(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	ledger := new(MockPaymentLedger)

	users.On("GetUser", ctx, "user-1").Return(testUser(), nil)
	ledger.On("CreatePendingPayment", ctx, mock.Anything).Return(0, errs.ErrDuplicateOrder)

	svc := New(users, ledger, nil, new(MockCache), nil, DefaultCatalog(), "", discardLogger())

	_, err := svc.RequestPlanOrder(ctx, "user-1", models.PlanBronze)
	assert.ErrorIs(t, err, errs.ErrDuplicateOrder)
}

func TestVerifyAndActivate(t *testing.T) {
	ctx := context.Background()
	const secret = "gateway-secret"

	tests := []struct {
		name      string
		orderID   string
		paymentID string
		signature string
		planType  string
		wantErr   error
		wantWatch int
		wantDays  int
	}{
		{
			name:      "демо-платёж активирует bronze",
			orderID:   "order_demo_1",
			paymentID: "pay_demo_1",
			signature: "anything",
			planType:  models.PlanBronze,
			wantWatch: 420,
			wantDays:  30,
		},
		{
			name:      "корректная подпись активирует silver",
			orderID:   "order_live_2",
			paymentID: "pay_live_2",
			signature: signPayment(secret, "order_live_2", "pay_live_2"),
			planType:  models.PlanSilver,
			wantWatch: 600,
			wantDays:  90,
		},
		{
			name:      "gold получает безлимитный просмотр",
			orderID:   "order_demo_3",
			paymentID: "pay_demo_3",
			signature: "anything",
			planType:  models.PlanGold,
			wantWatch: 0,
			wantDays:  365,
		},
		{
			name:      "искажение одного символа подписи отклоняется",
			orderID:   "order_live_4",
			paymentID: "pay_live_4",
			signature: flipLastChar(signPayment(secret, "order_live_4", "pay_live_4")),
			planType:  models.PlanSilver,
			wantErr:   errs.ErrVerificationFailed,
		},
		{
			name:      "демо-маркер только на заказе недостаточен",
			orderID:   "order_demo_5",
			paymentID: "pay_live_5",
			signature: "anything",
			planType:  models.PlanBronze,
			wantErr:   errs.ErrVerificationFailed,
		},
		{
			name:      "пустой order_id отклоняется до верификации",
			orderID:   "",
			paymentID: "pay_demo_6",
			signature: "anything",
			planType:  models.PlanBronze,
			wantErr:   errs.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUserRepository)
			ledger := new(MockPaymentLedger)
			cache := new(MockCache)

			if tt.wantErr == nil {
				plan := DefaultCatalog().Resolve(tt.planType)
				expiry := time.Now().AddDate(0, 0, tt.wantDays)
				activated := testUser()
				activated.Plan = plan.Type
				activated.PlanExpiry = &expiry
				activated.AllowedWatchDuration = plan.AllowedWatchDuration
				users.On("UpdateUserPlan", ctx, "user-1", plan.Type, mock.Anything, plan.AllowedWatchDuration).
					Run(func(args mock.Arguments) {
						got := args.Get(3).(time.Time)
						assert.WithinDuration(t, expiry, got, time.Minute)
					}).
					Return(activated, nil)
				ledger.On("MarkPaymentCompleted", ctx, tt.orderID, tt.paymentID, tt.signature, mock.Anything).
					Return(&models.PaymentRecord{Status: models.PaymentStatusCompleted}, nil)
				cache.On("Set", "entitlement:user-1", mock.Anything, entitlementCacheTTL).Return(nil)
			} else if errors.Is(tt.wantErr, errs.ErrVerificationFailed) {
				ledger.On("MarkPaymentFailed", ctx, tt.orderID).Return(nil)
			}

			svc := New(users, ledger, nil, cache, nil, DefaultCatalog(), secret, discardLogger())

			snapshot, err := svc.VerifyAndActivate(ctx, "user-1", tt.orderID, tt.paymentID, tt.signature, tt.planType)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				users.AssertNotCalled(t, "UpdateUserPlan", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.True(t, snapshot.IsActive)
			assert.Equal(t, tt.wantWatch, snapshot.AllowedWatchDuration)
			assert.Equal(t, tt.wantDays, snapshot.DaysRemaining)

			users.AssertExpectations(t)
			ledger.AssertExpectations(t)
		})
	}
}

func TestVerifyAndActivate_NoSecretRejectsNonDemo(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	ledger := new(MockPaymentLedger)
	ledger.On("MarkPaymentFailed", ctx, "order_live_1").Return(nil)

	svc := New(users, ledger, nil, new(MockCache), nil, DefaultCatalog(), "", discardLogger())

	_, err := svc.VerifyAndActivate(ctx, "user-1", "order_live_1", "pay_live_1", "whatever", models.PlanBronze)
	assert.ErrorIs(t, err, errs.ErrVerificationFailed)
	users.AssertNotCalled(t, "UpdateUserPlan", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestVerifyAndActivate_LedgerFailureDoesNotRevokePlan(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	ledger := new(MockPaymentLedger)
	cache := new(MockCache)
	publisher := new(MockReceiptPublisher)

	expiry := time.Now().AddDate(0, 0, 30)
	activated := testUser()
	activated.Plan = models.PlanBronze
	activated.PlanExpiry = &expiry
	activated.AllowedWatchDuration = 420

	users.On("UpdateUserPlan", ctx, "user-1", models.PlanBronze, mock.Anything, 420).Return(activated, nil)
	ledger.On("MarkPaymentCompleted", ctx, "order_demo_1", "pay_demo_1", "sig", mock.Anything).
		Return(nil, errs.ErrInvalidTransition)
	cache.On("Set", "entitlement:user-1", mock.Anything, entitlementCacheTTL).Return(nil)
	publisher.On("PublishReceipt", mock.Anything).Return(nil)

	svc := New(users, ledger, nil, cache, publisher, DefaultCatalog(), "", discardLogger())

	snapshot, err := svc.VerifyAndActivate(ctx, "user-1", "order_demo_1", "pay_demo_1", "sig", models.PlanBronze)
	require.NoError(t, err)
	assert.True(t, snapshot.IsActive)
	publisher.AssertExpectations(t)
}

func TestGetEntitlement(t *testing.T) {
	ctx := context.Background()

	t.Run("кеш-промах читает пользователя из хранилища", func(t *testing.T) {
		users := new(MockUserRepository)
		cache := new(MockCache)

		expiry := time.Now().AddDate(0, 0, 10)
		u := testUser()
		u.Plan = models.PlanSilver
		u.PlanExpiry = &expiry
		u.AllowedWatchDuration = 600

		cache.On("Get", "entitlement:user-1", mock.Anything).Return(false, nil)
		users.On("GetUser", ctx, "user-1").Return(u, nil)
		cache.On("Set", "entitlement:user-1", mock.Anything, entitlementCacheTTL).Return(nil)

		svc := New(users, new(MockPaymentLedger), nil, cache, nil, DefaultCatalog(), "", discardLogger())

		snapshot, err := svc.GetEntitlement(ctx, "user-1")
		require.NoError(t, err)
		assert.True(t, snapshot.IsActive)
		assert.Equal(t, 10, snapshot.DaysRemaining)
		users.AssertExpectations(t)
	})

	t.Run("истёкший тариф неактивен даже из кеша", func(t *testing.T) {
		users := new(MockUserRepository)
		cache := new(MockCache)

		expired := time.Now().Add(-time.Hour)
		cache.On("Get", "entitlement:user-1", mock.Anything).
			Run(func(args mock.Arguments) {
				out := args.Get(1).(*models.Entitlement)
				out.Plan = models.PlanBronze
				out.PlanExpiry = &expired
				out.AllowedWatchDuration = 420
				out.IsActive = true
				out.DaysRemaining = 3
			}).Return(true, nil)

		svc := New(users, new(MockPaymentLedger), nil, cache, nil, DefaultCatalog(), "", discardLogger())

		snapshot, err := svc.GetEntitlement(ctx, "user-1")
		require.NoError(t, err)
		assert.False(t, snapshot.IsActive)
		assert.Equal(t, 0, snapshot.DaysRemaining)
		users.AssertNotCalled(t, "GetUser", mock.Anything, mock.Anything)
	})

	t.Run("free-пользователь без даты окончания неактивен", func(t *testing.T) {
		users := new(MockUserRepository)
		cache := new(MockCache)

		cache.On("Get", "entitlement:user-1", mock.Anything).Return(false, nil)
		users.On("GetUser", ctx, "user-1").Return(testUser(), nil)
		cache.On("Set", "entitlement:user-1", mock.Anything, entitlementCacheTTL).Return(nil)

		svc := New(users, new(MockPaymentLedger), nil, cache, nil, DefaultCatalog(), "", discardLogger())

		snapshot, err := svc.GetEntitlement(ctx, "user-1")
		require.NoError(t, err)
		assert.False(t, snapshot.IsActive)
		assert.Equal(t, models.PlanFree, snapshot.Plan)
	})
}

// flipLastChar портит последний символ hex-подписи.
func flipLastChar(s string) string {
	repl := "0"
	if strings.HasSuffix(s, "0") {
		repl = "1"
	}
	return s[:len(s)-1] + repl
}
