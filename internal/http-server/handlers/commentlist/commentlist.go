// Package commentlist обрабатывает запрос комментариев к видео.
package commentlist

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/yourtube-backend/internal/errs"
	"github.com/magabrotheeeer/yourtube-backend/internal/http-server/response"
	"github.com/magabrotheeeer/yourtube-backend/internal/lib/sl"
	"github.com/magabrotheeeer/yourtube-backend/internal/models"
)

type CommentLister interface {
	List(ctx context.Context, videoID, translateTo string) ([]*models.Comment, error)
}

func New(log *slog.Logger, service CommentLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.commentlist.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		videoID := chi.URLParam(r, "videoID")
		if videoID == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("missing video id"))
			return
		}

		comments, err := service.List(r.Context(), videoID, r.URL.Query().Get("translate_to"))
		if err != nil {
			log.Error("failed to list comments", sl.Err(err))
			render.Status(r, errs.HTTPStatus(err))
			render.JSON(w, r, response.Error("failed to list comments"))
			return
		}
		log.Info("comments listed", slog.Int("count", len(comments)))
		render.JSON(w, r, response.StatusOKWithData(comments))
	}
}
