// Package commentedit обрабатывает редактирование текста комментария автором.
package commentedit

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/yourtube-backend/internal/errs"
	"github.com/magabrotheeeer/yourtube-backend/internal/http-server/auth"
	"github.com/magabrotheeeer/yourtube-backend/internal/http-server/response"
	"github.com/magabrotheeeer/yourtube-backend/internal/lib/sl"
	"github.com/magabrotheeeer/yourtube-backend/internal/models"
)

type CommentEditor interface {
	Edit(ctx context.Context, userUID, commentID, body string) (*models.Comment, error)
}

func New(log *slog.Logger, service CommentEditor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.commentedit.New"

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

		commentID := chi.URLParam(r, "id")
		if commentID == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("missing comment id"))
			return
		}

		var dummyReq models.DummyEdit
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

		comment, err := service.Edit(r.Context(), claims.UserUID, commentID, dummyReq.CommentBody)
		if err != nil {
			log.Error("failed to edit comment", sl.Err(err))
			render.Status(r, errs.HTTPStatus(err))
			render.JSON(w, r, response.Error("failed to edit comment"))
			return
		}
		log.Info("comment edited", slog.String("comment_id", commentID))
		render.JSON(w, r, response.StatusOKWithData(comment))
	}
}
