// Package downloadhistory обрабатывает запрос истории скачиваний пользователя.
package downloadhistory

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

type HistoryLister interface {
	ListDownloads(ctx context.Context, userUID string) ([]*models.DownloadRecord, error)
}

func New(log *slog.Logger, service HistoryLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.downloadhistory.New"

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

		records, err := service.ListDownloads(r.Context(), claims.UserUID)
		if err != nil {
			log.Error("failed to list downloads", sl.Err(err))
			render.Status(r, errs.HTTPStatus(err))
			render.JSON(w, r, response.Error("failed to list downloads"))
			return
		}
		log.Info("downloads listed", slog.Int("count", len(records)))
		render.JSON(w, r, response.StatusOKWithData(records))
	}
}
