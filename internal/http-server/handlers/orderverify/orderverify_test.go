package orderverify_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/yourtube-backend/internal/errs"
	"github.com/magabrotheeeer/yourtube-backend/internal/http-server/auth"
	"github.com/magabrotheeeer/yourtube-backend/internal/http-server/handlers/orderverify"
	"github.com/magabrotheeeer/yourtube-backend/internal/http-server/response"
	"github.com/magabrotheeeer/yourtube-backend/internal/lib/jwt"
	"github.com/magabrotheeeer/yourtube-backend/internal/models"
)

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return discardHandler{} }
func (discardHandler) WithGroup(string) slog.Handler             { return discardHandler{} }

func makeLogger() *slog.Logger {
	return slog.New(discardHandler{})
}

type mockVerifier struct {
	VerifyFunc func(ctx context.Context, userUID, orderID, paymentID, signature, planType string) (*models.Entitlement, error)
}

func (m *mockVerifier) VerifyAndActivate(ctx context.Context, userUID, orderID, paymentID, signature, planType string) (*models.Entitlement, error) {
	return m.VerifyFunc(ctx, userUID, orderID, paymentID, signature, planType)
}

func authedRequest(t *testing.T, body []byte) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/verify", bytes.NewReader(body))
	ctx := auth.ContextWithClaims(req.Context(), &jwt.CustomClaims{
		UserUID: "user-1", Username: "alice", Role: "user",
	})
	return req.WithContext(ctx)
}

func TestVerifyHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		expiry := time.Now().AddDate(0, 0, 30)
		body, _ := json.Marshal(models.DummyVerifyRequest{
			OrderID:   "order_demo_1",
			PaymentID: "pay_demo_1",
			Signature: "sig",
			PlanType:  models.PlanBronze,
		})

		service := &mockVerifier{
			VerifyFunc: func(_ context.Context, userUID, orderID, paymentID, signature, planType string) (*models.Entitlement, error) {
				require.Equal(t, "user-1", userUID)
				require.Equal(t, "order_demo_1", orderID)
				return &models.Entitlement{
					Plan:                 models.PlanBronze,
					PlanExpiry:           &expiry,
					AllowedWatchDuration: 420,
					IsActive:             true,
					DaysRemaining:        30,
				}, nil
			},
		}

		w := httptest.NewRecorder()
		orderverify.New(makeLogger(), service).ServeHTTP(w, authedRequest(t, body))

		var resp response.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, response.StatusOK, resp.Status)
		data := resp.Data.(map[string]any)
		assert.Equal(t, "bronze", data["plan"])
		assert.Equal(t, true, data["is_active"])
	})

	t.Run("verification failure maps to 400", func(t *testing.T) {
		body, _ := json.Marshal(models.DummyVerifyRequest{
			OrderID:   "order_live_1",
			PaymentID: "pay_live_1",
			Signature: "bad",
		})

		service := &mockVerifier{
			VerifyFunc: func(_ context.Context, _, _, _, _, _ string) (*models.Entitlement, error) {
				return nil, errs.ErrVerificationFailed
			},
		}

		w := httptest.NewRecorder()
		orderverify.New(makeLogger(), service).ServeHTTP(w, authedRequest(t, body))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "payment verification failed")
	})

	t.Run("missing fields rejected by validation", func(t *testing.T) {
		body, _ := json.Marshal(models.DummyVerifyRequest{OrderID: "order_demo_1"})

		service := &mockVerifier{
			VerifyFunc: func(_ context.Context, _, _, _, _, _ string) (*models.Entitlement, error) {
				t.Fatal("service should not be called on validation error")
				return nil, nil
			},
		}

		w := httptest.NewRecorder()
		orderverify.New(makeLogger(), service).ServeHTTP(w, authedRequest(t, body))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "required field")
	})

	t.Run("unauthenticated request rejected", func(t *testing.T) {
		body, _ := json.Marshal(models.DummyVerifyRequest{
			OrderID: "o", PaymentID: "p", Signature: "s",
		})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/verify", bytes.NewReader(body))

		service := &mockVerifier{
			VerifyFunc: func(_ context.Context, _, _, _, _, _ string) (*models.Entitlement, error) {
				t.Fatal("service should not be called without claims")
				return nil, nil
			},
		}

		w := httptest.NewRecorder()
		orderverify.New(makeLogger(), service).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
