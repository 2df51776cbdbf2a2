package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/yourtube-backend/internal/errs"
	"github.com/magabrotheeeer/yourtube-backend/internal/models"
)

// CreateComment вставляет новый комментарий и возвращает его ID.
func (s *Storage) CreateComment(ctx context.Context, c models.Comment) (string, error) {
	const op = "storage.CreateComment"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO comments (user_uid, video_id, comment_body,
			      user_commented, city)
			  VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''))
			  RETURNING id`
	var newID string
	err := s.DB.QueryRowContext(ctx, query,
		c.UserUID, c.VideoID, c.CommentBody, c.UserCommented, c.City).Scan(&newID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetComment возвращает комментарий по его ID.
func (s *Storage) GetComment(ctx context.Context, commentID string) (*models.Comment, error) {
	const op = "storage.GetComment"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := selectComment + ` WHERE id = $1`
	c, err := scanComment(s.DB.QueryRowContext(ctx, query, commentID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, errs.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

// ListCommentsByVideo возвращает неудалённые комментарии к видео,
// новые первыми. Использует индекс (video_id, commented_on).
func (s *Storage) ListCommentsByVideo(ctx context.Context, videoID string) ([]*models.Comment, error) {
	const op = "storage.ListCommentsByVideo"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := selectComment + ` WHERE video_id = $1 AND deleted = FALSE
			  ORDER BY commented_on DESC`
	rows, err := s.DB.QueryContext(ctx, query, videoID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// IncrementReaction атомарно увеличивает счётчик likes или dislikes
// и возвращает обновлённый комментарий. Конкурентные реакции не теряют
// инкрементов: обновление выполняется одним выражением.
func (s *Storage) IncrementReaction(ctx context.Context, commentID, reaction string) (*models.Comment, error) {
	const op = "storage.IncrementReaction"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	column := "likes"
	if reaction == models.ReactionDislike {
		column = "dislikes"
	}
	query := fmt.Sprintf(`UPDATE comments SET %s = %s + 1 WHERE id = $1
			  RETURNING id, user_uid, video_id, comment_body, COALESCE(user_commented, ''),
			      COALESCE(city, ''), likes, dislikes, deleted, deleted_at, commented_on`,
		column, column)
	c, err := scanComment(s.DB.QueryRowContext(ctx, query, commentID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, errs.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

// RetractComment помечает комментарий удалённым, если он набрал порог
// дизлайков и ещё не удалён. Возвращает true только вызову, чьё условное
// обновление фактически перевело комментарий в удалённое состояние, поэтому
// пересечение порога сообщается ровно один раз.
func (s *Storage) RetractComment(ctx context.Context, commentID string, threshold int) (bool, error) {
	const op = "storage.RetractComment"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE comments SET deleted = TRUE, deleted_at = NOW()
			  WHERE id = $1 AND deleted = FALSE AND dislikes >= $2`
	result, err := s.DB.ExecContext(ctx, query, commentID, threshold)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return affected > 0, nil
}

// MarkCommentDeleted помечает комментарий удалённым без проверки порога
// (административное удаление). Флаг deleted никогда не снимается.
func (s *Storage) MarkCommentDeleted(ctx context.Context, commentID string) error {
	const op = "storage.MarkCommentDeleted"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE comments SET deleted = TRUE, deleted_at = NOW()
			  WHERE id = $1 AND deleted = FALSE`
	result, err := s.DB.ExecContext(ctx, query, commentID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		var exists bool
		if err := s.DB.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM comments WHERE id = $1)`, commentID).Scan(&exists); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if !exists {
			return fmt.Errorf("%s: %w", op, errs.ErrNotFound)
		}
		// Уже удалён — повторное удаление безвредно.
	}
	return nil
}

// UpdateCommentBody заменяет текст комментария.
func (s *Storage) UpdateCommentBody(ctx context.Context, commentID, body string) error {
	const op = "storage.UpdateCommentBody"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE comments SET comment_body = $2 WHERE id = $1`
	result, err := s.DB.ExecContext(ctx, query, commentID, body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, errs.ErrNotFound)
	}
	return nil
}

const selectComment = `SELECT id, user_uid, video_id, comment_body,
			      COALESCE(user_commented, ''), COALESCE(city, ''), likes, dislikes,
			      deleted, deleted_at, commented_on
			  FROM comments`

func scanComment(row rowScanner) (*models.Comment, error) {
	var c models.Comment
	var deletedAt sql.NullTime
	if err := row.Scan(&c.ID, &c.UserUID, &c.VideoID, &c.CommentBody,
		&c.UserCommented, &c.City, &c.Likes, &c.Dislikes,
		&c.Deleted, &deletedAt, &c.CommentedOn); err != nil {
		return nil, err
	}
	if deletedAt.Valid {
		c.DeletedAt = &deletedAt.Time
	}
	return &c, nil
}
