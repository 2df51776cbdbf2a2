// Package downloadremove обрабатывает скрытие записи из истории скачиваний.
// Удаление мягкое и не возвращает потраченный дневной лимит.
package downloadremove

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/yourtube-backend/internal/errs"
	"github.com/magabrotheeeer/yourtube-backend/internal/http-server/auth"
	"github.com/magabrotheeeer/yourtube-backend/internal/http-server/response"
	"github.com/magabrotheeeer/yourtube-backend/internal/lib/sl"
)

type DownloadRemover interface {
	RemoveDownload(ctx context.Context, userUID, downloadID string) error
}

func New(log *slog.Logger, service DownloadRemover) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.downloadremove.New"

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

		downloadID := chi.URLParam(r, "id")
		if downloadID == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("missing download id"))
			return
		}

		if err := service.RemoveDownload(r.Context(), claims.UserUID, downloadID); err != nil {
			log.Error("failed to remove download", sl.Err(err))
			render.Status(r, errs.HTTPStatus(err))
			render.JSON(w, r, response.Error("failed to remove download"))
			return
		}
		log.Info("download removed from history", slog.String("download_id", downloadID))
		render.JSON(w, r, response.OK())
	}
}
