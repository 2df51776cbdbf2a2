// Package orderverify обрабатывает подтверждение оплаты и активацию тарифа.
package orderverify

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/yourtube-backend/internal/errs"
	"github.com/magabrotheeeer/yourtube-backend/internal/http-server/auth"
	"github.com/magabrotheeeer/yourtube-backend/internal/http-server/response"
	"github.com/magabrotheeeer/yourtube-backend/internal/lib/sl"
	"github.com/magabrotheeeer/yourtube-backend/internal/models"
)

type OrderVerifier interface {
	VerifyAndActivate(ctx context.Context, userUID, orderID, paymentID, signature, planType string) (*models.Entitlement, error)
}

func New(log *slog.Logger, service OrderVerifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.orderverify.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		claims, ok := auth.ClaimsFromContext(r.Context())
		if !ok {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, response.Error("missing auth claims"))
			return
		}

		var dummyReq models.DummyVerifyRequest
		if err := render.DecodeJSON(r.Body, &dummyReq); err != nil {
			log.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("failed to decode request"))
			return
		}
		log.Info("request body decoded", slog.String("order_id", dummyReq.OrderID))

		if err := validator.New().Struct(dummyReq); err != nil {
			validateErr := err.(validator.ValidationErrors)
			log.Error("invalid request", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.ValidationError(validateErr))
			return
		}

		entitlement, err := service.VerifyAndActivate(r.Context(), claims.UserUID,
			dummyReq.OrderID, dummyReq.PaymentID, dummyReq.Signature, dummyReq.PlanType)
		if err != nil {
			log.Error("failed to verify payment", sl.Err(err))
			render.Status(r, errs.HTTPStatus(err))
			render.JSON(w, r, response.Error("payment verification failed"))
			return
		}
		log.Info("plan activated", slog.String("plan", entitlement.Plan))
		render.JSON(w, r, response.StatusOKWithData(entitlement))
	}
}
