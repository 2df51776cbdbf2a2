// Package errs определяет виды ошибок предметной области и их отображение
// в HTTP-статусы. Сервисы оборачивают эти ошибки через %w, обработчики
// проверяют их errors.Is и выбирают статус через HTTPStatus.
package errs

import (
	"errors"
	"net/http"
)

var (
	// ErrInvalidInput некорректные или отсутствующие идентификаторы в запросе.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound запрошенная сущность отсутствует.
	ErrNotFound = errors.New("not found")
	// ErrForbidden действие запрещено для данного пользователя.
	ErrForbidden = errors.New("forbidden")
	// ErrDuplicateOrder заказ с таким order_id уже существует.
	ErrDuplicateOrder = errors.New("duplicate order")
	// ErrInvalidTransition недопустимый переход статуса платёжной записи.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrVerificationFailed подпись платежа не совпала либо проверка невозможна.
	ErrVerificationFailed = errors.New("payment verification failed")
	// ErrQuotaExceeded дневной лимит скачиваний исчерпан.
	ErrQuotaExceeded = errors.New("daily quota exceeded")
	// ErrUpstream внешний сервис недоступен и безопасного фолбэка нет.
	ErrUpstream = errors.New("upstream failure")
)

// HTTPStatus возвращает HTTP-статус для известных видов ошибок,
// для остальных — 500.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrQuotaExceeded):
		return http.StatusForbidden
	case errors.Is(err, ErrDuplicateOrder), errors.Is(err, ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, ErrVerificationFailed):
		return http.StatusBadRequest
	case errors.Is(err, ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
