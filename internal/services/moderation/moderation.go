// Package moderation реализует публикацию и модерацию комментариев:
// валидацию текста, реакции с автоудалением по порогу дизлайков,
// редактирование, административное удаление и перевод.
package moderation

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/magabrotheeeer/yourtube-backend/internal/errs"
	"github.com/magabrotheeeer/yourtube-backend/internal/lib/sl"
	"github.com/magabrotheeeer/yourtube-backend/internal/models"
)

// Максимальная длина текста комментария в символах.
const maxCommentLength = 1000

// Роль, которой разрешено удалять чужие комментарии.
const roleAdmin = "admin"

// Допустимые символы текста комментария: буквы и цифры любых алфавитов,
// пробелы и базовая пунктуация.
var commentBodyRe = regexp.MustCompile(`^[\p{L}\p{N}\s.,?!:;'"\-()/]+$`)

// CommentRepository определяет методы хранилища комментариев.
type CommentRepository interface {
	CreateComment(ctx context.Context, c models.Comment) (string, error)
	GetComment(ctx context.Context, commentID string) (*models.Comment, error)
	ListCommentsByVideo(ctx context.Context, videoID string) ([]*models.Comment, error)
	// IncrementReaction атомарно увеличивает счётчик реакции.
	IncrementReaction(ctx context.Context, commentID, reaction string) (*models.Comment, error)
	// RetractComment удаляет комментарий по порогу дизлайков; true возвращается
	// ровно одному вызову.
	RetractComment(ctx context.Context, commentID string, threshold int) (bool, error)
	MarkCommentDeleted(ctx context.Context, commentID string) error
	UpdateCommentBody(ctx context.Context, commentID, body string) error
}

// GeoResolver определяет город по IP-адресу.
type GeoResolver interface {
	City(ctx context.Context, ip string) (string, error)
}

// Translator переводит текст на целевой язык.
type Translator interface {
	Translate(ctx context.Context, text, targetLang string) (string, error)
}

// Service реализует модерацию комментариев. geo и translator могут быть
// nil: без них город остаётся пустым, а перевод недоступен.
type Service struct {
	comments   CommentRepository
	geo        GeoResolver
	translator Translator
	threshold  int
	log        *slog.Logger
}

// New создает новый Service с порогом дизлайков для автоудаления.
func New(comments CommentRepository, geo GeoResolver, translator Translator,
	threshold int, log *slog.Logger) *Service {
	return &Service{
		comments:   comments,
		geo:        geo,
		translator: translator,
		threshold:  threshold,
		log:        log,
	}
}

// Post публикует комментарий. Текст обрезается по краям и проходит проверку
// на длину и допустимые символы. Город берётся из запроса, а при его
// отсутствии определяется по IP; сбой геолокации не мешает публикации.
func (s *Service) Post(ctx context.Context, userUID, remoteIP string, req models.DummyComment) (*models.Comment, error) {
	const op = "moderation.Post"

	body := strings.TrimSpace(req.CommentBody)
	if err := validateBody(body); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	city := req.City
	if city == "" && s.geo != nil {
		resolved, err := s.geo.City(ctx, remoteIP)
		if err != nil {
			s.log.Warn("city lookup failed", slog.String("ip", remoteIP), sl.Err(err))
		} else {
			city = resolved
		}
	}

	comment := models.Comment{
		UserUID:       userUID,
		VideoID:       req.VideoID,
		CommentBody:   body,
		UserCommented: req.UserCommented,
		City:          city,
	}
	id, err := s.comments.CreateComment(ctx, comment)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	created, err := s.comments.GetComment(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("comment posted", slog.String("comment_id", id),
		slog.String("video_id", req.VideoID))
	return created, nil
}

// List возвращает неудалённые комментарии к видео, новые первыми.
// При непустом translateTo каждый текст дополняется переводом best-effort:
// сбой переводчика оставляет комментарий без перевода и не ломает выдачу.
func (s *Service) List(ctx context.Context, videoID, translateTo string) ([]*models.Comment, error) {
	const op = "moderation.List"

	result, err := s.comments.ListCommentsByVideo(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if translateTo != "" && s.translator != nil {
		for _, c := range result {
			translated, err := s.translator.Translate(ctx, c.CommentBody, translateTo)
			if err != nil {
				s.log.Warn("translation failed",
					slog.String("comment_id", c.ID), sl.Err(err))
				continue
			}
			c.TranslatedText = translated
			c.TranslatedTo = translateTo
		}
	}
	return result, nil
}

// React применяет реакцию к комментарию. Дизлайк, доведший счётчик до
// порога, автоматически удаляет комментарий; факт автоудаления сообщается
// ровно один раз — вызову, который его выполнил.
func (s *Service) React(ctx context.Context, commentID, reaction string) (*models.ReactionResult, error) {
	const op = "moderation.React"

	if reaction != models.ReactionLike && reaction != models.ReactionDislike {
		return nil, fmt.Errorf("%s: unknown reaction %q: %w", op, reaction, errs.ErrInvalidInput)
	}

	comment, err := s.comments.IncrementReaction(ctx, commentID, reaction)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := &models.ReactionResult{Comment: comment}
	if reaction == models.ReactionDislike && comment.Dislikes >= s.threshold {
		retracted, err := s.comments.RetractComment(ctx, commentID, s.threshold)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if retracted {
			result.AutoDeleted = true
			comment.Deleted = true
			s.log.Info("comment auto-deleted by dislike threshold",
				slog.String("comment_id", commentID), slog.Int("dislikes", comment.Dislikes))
		}
	}
	return result, nil
}

// Edit заменяет текст комментария. Разрешено только автору, новый текст
// проходит ту же валидацию, что и при публикации. Удалённый комментарий
// не редактируется.
func (s *Service) Edit(ctx context.Context, userUID, commentID, body string) (*models.Comment, error) {
	const op = "moderation.Edit"

	body = strings.TrimSpace(body)
	if err := validateBody(body); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	comment, err := s.comments.GetComment(ctx, commentID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if comment.UserUID != userUID {
		return nil, fmt.Errorf("%s: %w", op, errs.ErrForbidden)
	}
	if comment.Deleted {
		return nil, fmt.Errorf("%s: comment is deleted: %w", op, errs.ErrNotFound)
	}

	if err := s.comments.UpdateCommentBody(ctx, commentID, body); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	comment.CommentBody = body
	return comment, nil
}

// Remove удаляет комментарий: автор удаляет свой, администратор — любой.
// Удаление терминально.
func (s *Service) Remove(ctx context.Context, userUID, role, commentID string) error {
	const op = "moderation.Remove"

	comment, err := s.comments.GetComment(ctx, commentID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if comment.UserUID != userUID && role != roleAdmin {
		return fmt.Errorf("%s: %w", op, errs.ErrForbidden)
	}

	if err := s.comments.MarkCommentDeleted(ctx, commentID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("comment removed", slog.String("comment_id", commentID),
		slog.String("by_role", role))
	return nil
}

// Translate возвращает комментарий с переводом текста на целевой язык.
// Хранимый текст не изменяется. Недоступность переводчика — ошибка
// внешнего сервиса, а не комментария.
func (s *Service) Translate(ctx context.Context, commentID, targetLang string) (*models.Comment, error) {
	const op = "moderation.Translate"

	if s.translator == nil {
		return nil, fmt.Errorf("%s: translation is not configured: %w", op, errs.ErrUpstream)
	}

	comment, err := s.comments.GetComment(ctx, commentID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if comment.Deleted {
		return nil, fmt.Errorf("%s: comment is deleted: %w", op, errs.ErrNotFound)
	}

	translated, err := s.translator.Translate(ctx, comment.CommentBody, targetLang)
	if err != nil {
		s.log.Warn("translation failed", slog.String("comment_id", commentID), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, errs.ErrUpstream)
	}
	comment.TranslatedText = translated
	comment.TranslatedTo = targetLang
	return comment, nil
}

// validateBody проверяет текст комментария: непустой после обрезки пробелов,
// не длиннее лимита, только допустимые символы.
func validateBody(body string) error {
	if strings.TrimSpace(body) == "" {
		return fmt.Errorf("empty comment body: %w", errs.ErrInvalidInput)
	}
	if utf8.RuneCountInString(body) > maxCommentLength {
		return fmt.Errorf("comment body exceeds %d characters: %w", maxCommentLength, errs.ErrInvalidInput)
	}
	if !commentBodyRe.MatchString(body) {
		return fmt.Errorf("comment body contains forbidden characters: %w", errs.ErrInvalidInput)
	}
	return nil
}
