// Package paymentlist обрабатывает запрос платёжной истории пользователя.
package paymentlist

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/yourtube-backend/internal/errs"
	"github.com/magabrotheeeer/yourtube-backend/internal/http-server/auth"
	"github.com/magabrotheeeer/yourtube-backend/internal/http-server/response"
	"github.com/magabrotheeeer/yourtube-backend/internal/lib/sl"
	"github.com/magabrotheeeer/yourtube-backend/internal/models"
)

type PaymentLister interface {
	ListPayments(ctx context.Context, userUID string) ([]*models.PaymentRecord, error)
}

func New(log *slog.Logger, service PaymentLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.paymentlist.New"

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

		payments, err := service.ListPayments(r.Context(), claims.UserUID)
		if err != nil {
			log.Error("failed to list payments", sl.Err(err))
			render.Status(r, errs.HTTPStatus(err))
			render.JSON(w, r, response.Error("failed to list payments"))
			return
		}
		log.Info("payments listed", slog.Int("count", len(payments)))
		render.JSON(w, r, response.StatusOKWithData(payments))
	}
}
