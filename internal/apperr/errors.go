// Package apperr описывает типизированные ошибки движка бронирований.
// У каждой ошибки есть вид (Kind), стабильный машинный код и детали по полям.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindInvalidInput       Kind = "INVALID_INPUT"
	KindNotFound           Kind = "NOT_FOUND"
	KindUnauthorized       Kind = "UNAUTHORIZED"
	KindForbidden          Kind = "FORBIDDEN"
	KindConflict           Kind = "CONFLICT"
	KindPreconditionFailed Kind = "PRECONDITION_FAILED"
	KindInternal           Kind = "INTERNAL"
)

// FieldError деталь ошибки по конкретному полю
type FieldError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

type Error struct {
	Kind    Kind
	Code    string
	Message string
	Details []FieldError
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is сравнивает ошибки по коду, чтобы работал errors.Is с шаблонами из codes.go
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// New создаёт ошибку без деталей
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// WithDetail возвращает копию ошибки с добавленной деталью
func (e *Error) WithDetail(field, message string) *Error {
	cp := *e
	cp.Details = append(append([]FieldError(nil), e.Details...), FieldError{Field: field, Message: message})
	return &cp
}

// Wrap оборачивает внутреннюю ошибку хранилища
func Wrap(err error, message string) *Error {
	return &Error{Kind: KindInternal, Code: CodeInternal, Message: message, Err: err}
}

// KindOf возвращает вид ошибки; всё неизвестное считается внутренней ошибкой
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// CodeOf возвращает машинный код ошибки или пустую строку
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsCode проверяет код ошибки
func IsCode(err error, code string) bool {
	return err != nil && CodeOf(err) == code
}
