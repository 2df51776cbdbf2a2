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

// GetUser возвращает пользователя по его UID.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, email, username, role, plan, plan_expiry,
			      allowed_watch_duration, created_at
			  FROM users
			  WHERE uid = $1`
	u := &models.User{}
	row := s.DB.QueryRowContext(ctx, query, userUID)

	var planExpiry sql.NullTime
	if err := row.Scan(&u.UID, &u.Email, &u.Username, &u.Role, &u.Plan,
		&planExpiry, &u.AllowedWatchDuration, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, errs.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if planExpiry.Valid {
		u.PlanExpiry = &planExpiry.Time
	}
	return u, nil
}

// UpdateUserPlan атомарно выставляет пользователю тариф, дату его окончания
// и лимит просмотра, возвращая обновлённую запись. Единственный способ
// изменить тарифные поля пользователя.
func (s *Storage) UpdateUserPlan(ctx context.Context, userUID, plan string, planExpiry time.Time, allowedWatchDuration int) (*models.User, error) {
	const op = "storage.UpdateUserPlan"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET plan = $2, plan_expiry = $3, allowed_watch_duration = $4
			  WHERE uid = $1
			  RETURNING uid, email, username, role, plan, plan_expiry,
			      allowed_watch_duration, created_at`
	u := &models.User{}
	row := s.DB.QueryRowContext(ctx, query, userUID, plan, planExpiry, allowedWatchDuration)

	var expiry sql.NullTime
	if err := row.Scan(&u.UID, &u.Email, &u.Username, &u.Role, &u.Plan,
		&expiry, &u.AllowedWatchDuration, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, errs.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if expiry.Valid {
		u.PlanExpiry = &expiry.Time
	}
	return u, nil
}
