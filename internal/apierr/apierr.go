// Package apierr описывает таксономию ошибок диспетчера и её отображение
// в HTTP-коды. Сам пакет от транспорта не зависит: статус вычисляется
// только на границе, в HTTP-обработчике.
package apierr

import (
	"errors"
	"net/http"
)

// Code — категория ошибки в терминах протокола запросов, а не HTTP.
type Code string

const (
	// CodeBadRequest — не передано обязательное поле.
	CodeBadRequest Code = "bad_request"
	// CodeValidation — поле передано, но невалидно; не выполнено правило пар;
	// неизвестный метод.
	CodeValidation Code = "validation_failed"
	// CodeForbidden — не сошёлся дайджест авторизации.
	CodeForbidden Code = "forbidden"
	// CodeNotFound — неизвестный путь.
	CodeNotFound Code = "not_found"
	// CodeInternal — хранилище недоступно после всех попыток, либо
	// непредвиденная внутренняя ошибка.
	CodeInternal Code = "internal_error"
)

// Error — ошибка со стабильным кодом. Message уходит клиенту в поле "error";
// если он пустой, клиент увидит стандартный текст для статуса.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return string(e.Code) + ": " + e.Err.Error()
	}
	return string(e.Code)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is позволяет сравнивать ошибки через errors.Is по коду.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New создаёт ошибку с кодом и сообщением для клиента.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap оборачивает причину. Если причина уже *Error, её код сохраняется.
// Сообщение клиенту при этом не выставляется: причина идёт только в лог.
func Wrap(err error, code Code) error {
	var existing *Error
	if errors.As(err, &existing) {
		return &Error{Code: existing.Code, Message: existing.Message, Err: err}
	}
	return &Error{Code: code, Err: err}
}

// HasCode проверяет, что err — *Error с указанным кодом.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// Status возвращает HTTP-статус для ошибки. Всё, что не *Error, считается
// внутренней ошибкой.
func Status(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Code {
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeValidation:
		return http.StatusUnprocessableEntity
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Message возвращает текст для поля "error" ответа.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return StatusText(Status(err))
}

var statusText = map[int]string{
	http.StatusBadRequest:          "Bad Request",
	http.StatusForbidden:           "Forbidden",
	http.StatusNotFound:            "Not Found",
	http.StatusMethodNotAllowed:    "Method Not Allowed",
	http.StatusUnprocessableEntity: "Invalid Request",
	http.StatusInternalServerError: "Internal Server Error",
}

// StatusText — стандартный текст ошибки для статуса.
func StatusText(status int) string {
	if t, ok := statusText[status]; ok {
		return t
	}
	return "Unknown Error"
}
