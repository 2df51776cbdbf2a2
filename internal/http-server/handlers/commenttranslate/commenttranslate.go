// Package commenttranslate обрабатывает перевод текста комментария
// на запрошенный язык. Хранимый текст не изменяется.
package commenttranslate

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

type CommentTranslator interface {
	Translate(ctx context.Context, commentID, targetLang string) (*models.Comment, error)
}

func New(log *slog.Logger, service CommentTranslator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.commenttranslate.New"

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

		var dummyReq models.DummyTranslate
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

		comment, err := service.Translate(r.Context(), commentID, dummyReq.To)
		if err != nil {
			log.Error("failed to translate comment", sl.Err(err))
			render.Status(r, errs.HTTPStatus(err))
			render.JSON(w, r, response.Error("failed to translate comment"))
			return
		}
		log.Info("comment translated", slog.String("comment_id", commentID),
			slog.String("to", dummyReq.To))
		render.JSON(w, r, response.StatusOKWithData(comment))
	}
}
