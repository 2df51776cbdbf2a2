// Package downloadcheck обрабатывает запрос состояния дневного лимита скачиваний.
package downloadcheck

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

type AllowanceChecker interface {
	CheckAllowance(ctx context.Context, userUID string) (*models.Allowance, error)
}

func New(log *slog.Logger, service AllowanceChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.downloadcheck.New"

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

		allowance, err := service.CheckAllowance(r.Context(), claims.UserUID)
		if err != nil {
			log.Error("failed to check allowance", sl.Err(err))
			render.Status(r, errs.HTTPStatus(err))
			render.JSON(w, r, response.Error("failed to check download limit"))
			return
		}
		render.JSON(w, r, response.StatusOKWithData(allowance))
	}
}
