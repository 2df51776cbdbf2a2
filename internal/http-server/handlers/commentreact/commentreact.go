// Package commentreact обрабатывает реакции на комментарий. Дизлайк,
// доведший счётчик до порога, автоматически удаляет комментарий.
package commentreact

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/yourtube-backend/internal/errs"
	"github.com/magabrotheeeer/yourtube-backend/internal/http-server/response"
	"github.com/magabrotheeeer/yourtube-backend/internal/lib/sl"
	"github.com/magabrotheeeer/yourtube-backend/internal/models"
)

type Reactor interface {
	React(ctx context.Context, commentID, reaction string) (*models.ReactionResult, error)
}

func New(log *slog.Logger, service Reactor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.commentreact.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		commentID := chi.URLParam(r, "id")
		if commentID == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("missing comment id"))
			return
		}

		var dummyReq models.DummyReaction
		if err := render.DecodeJSON(r.Body, &dummyReq); err != nil {
			log.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("failed to decode request"))
			return
		}

		if err := validator.New().Struct(dummyReq); err != nil {
			validateErr := err.(validator.ValidationErrors)
			log.Error("invalid request", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.ValidationError(validateErr))
			return
		}

		result, err := service.React(r.Context(), commentID, dummyReq.Type)
		if err != nil {
			log.Error("failed to apply reaction", sl.Err(err))
			render.Status(r, errs.HTTPStatus(err))
			render.JSON(w, r, response.Error("failed to apply reaction"))
			return
		}
		if result.AutoDeleted {
			log.Info("comment auto-deleted", slog.String("comment_id", commentID))
		}
		render.JSON(w, r, response.StatusOKWithData(result))
	}
}
