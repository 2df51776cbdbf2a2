package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/magabrotheeeer/yourtube-backend/internal/errs"
	"github.com/magabrotheeeer/yourtube-backend/internal/models"
)

// Код нарушения уникальности в PostgreSQL.
const pgUniqueViolation = "23505"

// CreatePendingPayment вставляет новую платёжную запись в статусе pending
// и возвращает её ID. Уникальность order_id гарантируется индексом:
// конкурентная вставка того же заказа вернёт errs.ErrDuplicateOrder.
func (s *Storage) CreatePendingPayment(ctx context.Context, rec models.PaymentRecord) (int, error) {
	const op = "storage.CreatePendingPayment"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO payments (user_uid, order_id, amount, currency, status,
			      plan_type, plan_duration_days, allowed_watch_duration, note)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''))
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		rec.UserUID, rec.OrderID, rec.Amount, rec.Currency, models.PaymentStatusPending,
		rec.PlanType, rec.PlanDurationDays, rec.AllowedWatchDuration, rec.Note).Scan(&newID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return 0, fmt.Errorf("%s: %w", op, errs.ErrDuplicateOrder)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// MarkPaymentCompleted переводит запись pending -> completed, заполняя
// payment_id, подпись и дату окончания тарифа. Переход допустим только
// из pending: для завершённой или проваленной записи возвращается
// errs.ErrInvalidTransition, для отсутствующей — errs.ErrNotFound.
func (s *Storage) MarkPaymentCompleted(ctx context.Context, orderID, paymentID, signature string, expiryDate time.Time) (*models.PaymentRecord, error) {
	const op = "storage.MarkPaymentCompleted"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE payments
			  SET status = $2, payment_id = $3, signature = $4, expiry_date = $5
			  WHERE order_id = $1 AND status = $6
			  RETURNING id, user_uid, order_id, payment_id, signature, amount, currency,
			      status, plan_type, plan_duration_days, allowed_watch_duration,
			      expiry_date, COALESCE(note, ''), created_at`
	row := s.DB.QueryRowContext(ctx, query, orderID, models.PaymentStatusCompleted,
		paymentID, signature, expiryDate, models.PaymentStatusPending)

	rec, err := scanPayment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, s.classifyTransitionFailure(ctx, orderID))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return rec, nil
}

// MarkPaymentFailed переводит запись pending -> failed. Контракт переходов
// тот же, что у MarkPaymentCompleted.
func (s *Storage) MarkPaymentFailed(ctx context.Context, orderID string) error {
	const op = "storage.MarkPaymentFailed"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE payments SET status = $2
			  WHERE order_id = $1 AND status = $3`
	result, err := s.DB.ExecContext(ctx, query, orderID,
		models.PaymentStatusFailed, models.PaymentStatusPending)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, s.classifyTransitionFailure(ctx, orderID))
	}
	return nil
}

// FindPaymentByOrderID возвращает платёжную запись по внешнему
// идентификатору заказа.
func (s *Storage) FindPaymentByOrderID(ctx context.Context, orderID string) (*models.PaymentRecord, error) {
	const op = "storage.FindPaymentByOrderID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, order_id, COALESCE(payment_id, ''), COALESCE(signature, ''),
			      amount, currency, status, plan_type, plan_duration_days,
			      allowed_watch_duration, expiry_date, COALESCE(note, ''), created_at
			  FROM payments WHERE order_id = $1`
	rec, err := scanPayment(s.DB.QueryRowContext(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, errs.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return rec, nil
}

// ListPaymentsByUser возвращает платёжные записи пользователя,
// новые первыми. Использует индекс (user_uid, status).
func (s *Storage) ListPaymentsByUser(ctx context.Context, userUID string) ([]*models.PaymentRecord, error) {
	const op = "storage.ListPaymentsByUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, order_id, COALESCE(payment_id, ''), COALESCE(signature, ''),
			      amount, currency, status, plan_type, plan_duration_days,
			      allowed_watch_duration, expiry_date, COALESCE(note, ''), created_at
			  FROM payments WHERE user_uid = $1
			  ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.PaymentRecord
	for rows.Next() {
		rec, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// classifyTransitionFailure различает отсутствующую запись и запрещённый
// переход статуса после того, как условный UPDATE не затронул строк.
func (s *Storage) classifyTransitionFailure(ctx context.Context, orderID string) error {
	var exists bool
	err := s.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM payments WHERE order_id = $1)`, orderID).Scan(&exists)
	if err != nil {
		return err
	}
	if exists {
		return errs.ErrInvalidTransition
	}
	return errs.ErrNotFound
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPayment(row rowScanner) (*models.PaymentRecord, error) {
	var rec models.PaymentRecord
	var expiry sql.NullTime
	if err := row.Scan(&rec.ID, &rec.UserUID, &rec.OrderID, &rec.PaymentID, &rec.Signature,
		&rec.Amount, &rec.Currency, &rec.Status, &rec.PlanType, &rec.PlanDurationDays,
		&rec.AllowedWatchDuration, &expiry, &rec.Note, &rec.CreatedAt); err != nil {
		return nil, err
	}
	if expiry.Valid {
		rec.ExpiryDate = &expiry.Time
	}
	return &rec, nil
}
