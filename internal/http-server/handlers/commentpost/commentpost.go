// Package commentpost обрабатывает публикацию комментария к видео.
package commentpost

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/yourtube-backend/internal/errs"
	"github.com/magabrotheeeer/yourtube-backend/internal/http-server/auth"
	"github.com/magabrotheeeer/yourtube-backend/internal/http-server/response"
	"github.com/magabrotheeeer/yourtube-backend/internal/lib/sl"
	"github.com/magabrotheeeer/yourtube-backend/internal/models"
)

type CommentPoster interface {
	Post(ctx context.Context, userUID, remoteIP string, req models.DummyComment) (*models.Comment, error)
}

func New(log *slog.Logger, service CommentPoster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.commentpost.New"

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

		var dummyReq models.DummyComment
		if err := render.DecodeJSON(r.Body, &dummyReq); err != nil {
			log.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("failed to decode request"))
			return
		}
		log.Info("request body decoded", slog.String("video_id", dummyReq.VideoID))

		if err := validator.New().Struct(dummyReq); err != nil {
			validateErr := err.(validator.ValidationErrors)
			log.Error("invalid request", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.ValidationError(validateErr))
			return
		}

		if dummyReq.UserCommented == "" {
			dummyReq.UserCommented = claims.Username
		}

		comment, err := service.Post(r.Context(), claims.UserUID, remoteIP(r), dummyReq)
		if err != nil {
			log.Error("failed to post comment", sl.Err(err))
			render.Status(r, errs.HTTPStatus(err))
			render.JSON(w, r, response.Error("failed to post comment"))
			return
		}
		log.Info("comment posted", slog.String("comment_id", comment.ID))
		render.JSON(w, r, response.StatusOKWithData(comment))
	}
}

// remoteIP возвращает адрес клиента с учётом обратного прокси. В цепочке
// X-Forwarded-For первым стоит адрес исходного клиента.
func remoteIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
