// Package commentremove обрабатывает удаление комментария автором или
// администратором. Удаление терминально.
package commentremove

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

type CommentRemover interface {
	Remove(ctx context.Context, userUID, role, commentID string) error
}

func New(log *slog.Logger, service CommentRemover) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.commentremove.New"

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

		if err := service.Remove(r.Context(), claims.UserUID, claims.Role, commentID); err != nil {
			log.Error("failed to remove comment", sl.Err(err))
			render.Status(r, errs.HTTPStatus(err))
			render.JSON(w, r, response.Error("failed to remove comment"))
			return
		}
		log.Info("comment removed", slog.String("comment_id", commentID))
		render.JSON(w, r, response.OK())
	}
}
