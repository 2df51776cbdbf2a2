package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/yourtube-backend/internal/errs"
	"github.com/magabrotheeeer/yourtube-backend/internal/models"
)

// CreateDownload вставляет запись о выданном скачивании и возвращает её ID.
func (s *Storage) CreateDownload(ctx context.Context, rec models.DownloadRecord) (string, error) {
	const op = "storage.CreateDownload"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO downloads (user_uid, video_id, is_premium_user,
			      original_filepath, original_filename, video_title)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id`
	var newID string
	err := s.DB.QueryRowContext(ctx, query,
		rec.UserUID, rec.VideoID, rec.IsPremiumUser,
		rec.OriginalFilepath, rec.OriginalFilename, rec.VideoTitle).Scan(&newID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// CountDownloadsInWindow считает бесплатные скачивания пользователя в окне
// [from, to). Флаг deleted не учитывается: скрытие записи из истории не
// возвращает дневной лимит. Использует индекс (user_uid, downloaded_at).
func (s *Storage) CountDownloadsInWindow(ctx context.Context, userUID string, from, to time.Time) (int, error) {
	const op = "storage.CountDownloadsInWindow"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT COUNT(*) FROM downloads
			  WHERE user_uid = $1
			    AND downloaded_at >= $2 AND downloaded_at < $3
			    AND is_premium_user = FALSE`
	var count int
	if err := s.DB.QueryRowContext(ctx, query, userUID, from, to).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// GetDownload возвращает запись о скачивании по её ID.
func (s *Storage) GetDownload(ctx context.Context, downloadID string) (*models.DownloadRecord, error) {
	const op = "storage.GetDownload"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, video_id, downloaded_at, is_premium_user,
			      original_filepath, original_filename, video_title, deleted
			  FROM downloads WHERE id = $1`
	var rec models.DownloadRecord
	err := s.DB.QueryRowContext(ctx, query, downloadID).Scan(
		&rec.ID, &rec.UserUID, &rec.VideoID, &rec.DownloadedAt, &rec.IsPremiumUser,
		&rec.OriginalFilepath, &rec.OriginalFilename, &rec.VideoTitle, &rec.Deleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, errs.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &rec, nil
}

// SoftDeleteDownload помечает запись удалённой. Строки никогда не удаляются
// физически.
func (s *Storage) SoftDeleteDownload(ctx context.Context, downloadID string) error {
	const op = "storage.SoftDeleteDownload"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE downloads SET deleted = TRUE WHERE id = $1`
	result, err := s.DB.ExecContext(ctx, query, downloadID)
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

// ListDownloadsByUser возвращает неудалённые записи истории скачиваний,
// новые первыми.
func (s *Storage) ListDownloadsByUser(ctx context.Context, userUID string) ([]*models.DownloadRecord, error) {
	const op = "storage.ListDownloadsByUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, video_id, downloaded_at, is_premium_user,
			      original_filepath, original_filename, video_title, deleted
			  FROM downloads
			  WHERE user_uid = $1 AND deleted = FALSE
			  ORDER BY downloaded_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.DownloadRecord
	for rows.Next() {
		var rec models.DownloadRecord
		if err := rows.Scan(&rec.ID, &rec.UserUID, &rec.VideoID, &rec.DownloadedAt,
			&rec.IsPremiumUser, &rec.OriginalFilepath, &rec.OriginalFilename,
			&rec.VideoTitle, &rec.Deleted); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetVideo возвращает метаданные видео по его ID.
func (s *Storage) GetVideo(ctx context.Context, videoID string) (*models.Video, error) {
	const op = "storage.GetVideo"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, video_title, filename, filepath, created_at
			  FROM videos WHERE id = $1`
	var v models.Video
	err := s.DB.QueryRowContext(ctx, query, videoID).Scan(
		&v.ID, &v.VideoTitle, &v.Filename, &v.Filepath, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, errs.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &v, nil
}
