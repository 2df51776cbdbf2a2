package commentlist_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/yourtube-backend/internal/http-server/handlers/commentlist"
	"github.com/magabrotheeeer/yourtube-backend/internal/http-server/response"
	"github.com/magabrotheeeer/yourtube-backend/internal/models"
)

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return discardHandler{} }
func (discardHandler) WithGroup(string) slog.Handler             { return discardHandler{} }

func makeLogger() *slog.Logger {
	return slog.New(discardHandler{})
}

type mockLister struct {
	ListFunc func(ctx context.Context, videoID, translateTo string) ([]*models.Comment, error)
}

func (m *mockLister) List(ctx context.Context, videoID, translateTo string) ([]*models.Comment, error) {
	return m.ListFunc(ctx, videoID, translateTo)
}

func newRouter(service *mockLister) http.Handler {
	r := chi.NewRouter()
	r.Get("/videos/{videoID}/comments", commentlist.New(makeLogger(), service))
	return r
}

func TestListHandler(t *testing.T) {
	t.Run("comments returned for video", func(t *testing.T) {
		service := &mockLister{
			ListFunc: func(_ context.Context, videoID, translateTo string) ([]*models.Comment, error) {
				require.Equal(t, "video-1", videoID)
				require.Empty(t, translateTo)
				return []*models.Comment{{ID: "c-1", CommentBody: "Hello"}}, nil
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/videos/video-1/comments", nil)
		w := httptest.NewRecorder()
		newRouter(service).ServeHTTP(w, req)

		var resp response.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, response.StatusOK, resp.Status)
		data := resp.Data.([]any)
		assert.Len(t, data, 1)
	})

	t.Run("translate_to query passed through to the service", func(t *testing.T) {
		service := &mockLister{
			ListFunc: func(_ context.Context, videoID, translateTo string) ([]*models.Comment, error) {
				require.Equal(t, "video-1", videoID)
				require.Equal(t, "ru", translateTo)
				return []*models.Comment{
					{ID: "c-1", CommentBody: "Hello", TranslatedText: "Привет", TranslatedTo: "ru"},
				}, nil
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/videos/video-1/comments?translate_to=ru", nil)
		w := httptest.NewRecorder()
		newRouter(service).ServeHTTP(w, req)

		var resp response.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, response.StatusOK, resp.Status)
		data := resp.Data.([]any)
		require.Len(t, data, 1)
		comment := data[0].(map[string]any)
		assert.Equal(t, "Привет", comment["translated_text"])
		assert.Equal(t, "ru", comment["translated_to"])
	})
}
