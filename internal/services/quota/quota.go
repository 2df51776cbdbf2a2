// Package quota реализует дневной лимит скачиваний для бесплатных
// пользователей и ведение истории скачиваний.
package quota

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/yourtube-backend/internal/errs"
	"github.com/magabrotheeeer/yourtube-backend/internal/models"
)

// DownloadRepository определяет методы хранилища записей о скачиваниях.
type DownloadRepository interface {
	CreateDownload(ctx context.Context, rec models.DownloadRecord) (string, error)
	// CountDownloadsInWindow считает бесплатные скачивания в окне [from, to),
	// включая помеченные удалёнными.
	CountDownloadsInWindow(ctx context.Context, userUID string, from, to time.Time) (int, error)
	GetDownload(ctx context.Context, downloadID string) (*models.DownloadRecord, error)
	SoftDeleteDownload(ctx context.Context, downloadID string) error
	ListDownloadsByUser(ctx context.Context, userUID string) ([]*models.DownloadRecord, error)
	GetVideo(ctx context.Context, videoID string) (*models.Video, error)
}

// Entitlements отдаёт снимок тарифных прав пользователя.
type Entitlements interface {
	GetEntitlement(ctx context.Context, userUID string) (*models.Entitlement, error)
}

// Service реализует проверку и списание дневного лимита скачиваний.
// Премиальный статус определяется через сервис тарифных прав, поэтому
// истёкший тариф автоматически возвращает пользователя на лимит free.
type Service struct {
	downloads    DownloadRepository
	entitlements Entitlements
	dailyLimit   int
	log          *slog.Logger
}

// New создает новый Service с дневным лимитом для бесплатных пользователей.
func New(downloads DownloadRepository, entitlements Entitlements, dailyLimit int, log *slog.Logger) *Service {
	return &Service{
		downloads:    downloads,
		entitlements: entitlements,
		dailyLimit:   dailyLimit,
		log:          log,
	}
}

// CheckAllowance возвращает состояние дневного лимита пользователя
// без списания. Окно лимита — календарные сутки в локальной таймзоне
// сервера, от полуночи до полуночи.
func (s *Service) CheckAllowance(ctx context.Context, userUID string) (*models.Allowance, error) {
	const op = "quota.CheckAllowance"

	ent, err := s.entitlements.GetEntitlement(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if ent.IsActive {
		return &models.Allowance{
			CanDownload: true,
			Unlimited:   true,
			IsPremium:   true,
			DailyLimit:  s.dailyLimit,
		}, nil
	}

	from, to := dayWindow(time.Now())
	count, err := s.downloads.CountDownloadsInWindow(ctx, userUID, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	remaining := s.dailyLimit - count
	if remaining < 0 {
		remaining = 0
	}
	return &models.Allowance{
		CanDownload:    count < s.dailyLimit,
		Remaining:      remaining,
		DownloadsToday: count,
		DailyLimit:     s.dailyLimit,
	}, nil
}

// GrantDownload выдаёт скачивание видео: проверяет существование видео и
// лимит, затем записывает факт выдачи со снимком метаданных видео.
// Исчерпанный лимит возвращает ErrQuotaExceeded.
func (s *Service) GrantDownload(ctx context.Context, userUID, videoID string) (*models.DownloadRecord, error) {
	const op = "quota.GrantDownload"

	video, err := s.downloads.GetVideo(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	allowance, err := s.CheckAllowance(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !allowance.CanDownload {
		s.log.Info("daily download limit reached",
			slog.String("user_uid", userUID), slog.Int("limit", s.dailyLimit))
		return nil, fmt.Errorf("%s: %w", op, errs.ErrQuotaExceeded)
	}

	rec := models.DownloadRecord{
		UserUID:          userUID,
		VideoID:          video.ID,
		IsPremiumUser:    allowance.IsPremium,
		OriginalFilepath: video.Filepath,
		OriginalFilename: video.Filename,
		VideoTitle:       video.VideoTitle,
	}
	id, err := s.downloads.CreateDownload(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	rec.ID = id
	rec.DownloadedAt = time.Now()

	s.log.Info("download granted", slog.String("user_uid", userUID),
		slog.String("video_id", videoID), slog.Bool("is_premium", rec.IsPremiumUser))
	return &rec, nil
}

// RemoveDownload скрывает запись из истории пользователя. Удаление мягкое
// и лимит не возвращает: бесплатное скачивание остаётся потраченным.
// Чужую запись удалить нельзя.
func (s *Service) RemoveDownload(ctx context.Context, userUID, downloadID string) error {
	const op = "quota.RemoveDownload"

	rec, err := s.downloads.GetDownload(ctx, downloadID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rec.UserUID != userUID {
		return fmt.Errorf("%s: %w", op, errs.ErrForbidden)
	}
	if rec.Deleted {
		return nil
	}
	if err := s.downloads.SoftDeleteDownload(ctx, downloadID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListDownloads возвращает видимую историю скачиваний пользователя,
// новые первыми.
func (s *Service) ListDownloads(ctx context.Context, userUID string) ([]*models.DownloadRecord, error) {
	const op = "quota.ListDownloads"

	result, err := s.downloads.ListDownloadsByUser(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// dayWindow возвращает границы текущих календарных суток [полночь, полночь+24ч)
// в таймзоне переданного момента.
func dayWindow(now time.Time) (time.Time, time.Time) {
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return from, from.AddDate(0, 0, 1)
}
