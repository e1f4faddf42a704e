// Package apperrors предоставляет закрытый набор ошибок приложения и
// классификатор, который превращает их в ответ пользователю.
// Переименован из errors чтобы избежать конфликта со стандартной библиотекой.
package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// Коды ошибок в иерархическом формате: CATEGORY.SPECIFIC_ERROR.
// Позволяет grep по категориям: `grep "AUTH\."` для всех ошибок аутентификации.
const (
	// Category: CONFIG: ошибки загрузки и парсинга конфигурации.
	ErrConfigLoad     = "CONFIG.LOAD_FAILED"
	ErrConfigParse    = "CONFIG.PARSE_FAILED"
	ErrConfigValidate = "CONFIG.VALIDATION_FAILED"

	// Category: AUTH: ошибки действий входа и регистрации.
	ErrAuthSignIn = "AUTH.SIGN_IN_FAILED"
	ErrAuthSignUp = "AUTH.SIGN_UP_FAILED"

	// Category: HTTP: ошибки транспортного уровня.
	ErrHTTPBadRequest = "HTTP.BAD_REQUEST"
	ErrHTTPPanic      = "HTTP.PANIC"

	// Category: STORE: ошибки хранилища учётных записей.
	ErrStoreQuery = "STORE.QUERY_FAILED"

	// Category: INTERNAL: всё, что было поймано без классификации.
	ErrInternalUnexpected = "INTERNAL.UNEXPECTED"
	ErrInternalPanic      = "INTERNAL.PANIC"
)

// Failure: закрытый набор ошибок, в который переводится любое пойманное
// значение на границе обработки: *ValidationFailure или *OpaqueFailure.
type Failure interface {
	error
	failure()
}

// Issue: одно нарушение валидации: путь к полю и сообщение для пользователя.
type Issue struct {
	Path    []string `json:"path"`
	Message string   `json:"message"`
}

// Key возвращает путь, склеенный через точку: ["address", "city"] → "address.city".
func (i Issue) Key() string {
	return strings.Join(i.Path, ".")
}

// ValidationFailure: ожидаемая ошибка пользовательского ввода с
// упорядоченным списком нарушений. Сообщения предназначены пользователю.
type ValidationFailure struct {
	Issues []Issue `json:"issues"`
}

// NewValidationFailure создаёт ValidationFailure из списка нарушений.
func NewValidationFailure(issues ...Issue) *ValidationFailure {
	return &ValidationFailure{Issues: issues}
}

// Error реализует интерфейс error.
func (e *ValidationFailure) Error() string {
	if len(e.Issues) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		if key := issue.Key(); key != "" {
			parts = append(parts, key+": "+issue.Message)
		} else {
			parts = append(parts, issue.Message)
		}
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationFailure) failure() {}

// OpaqueFailure представляет любую неожиданную ошибку.
// Реализует error interface и поддерживает wrapping через Unwrap().
// Хранит стек вызовов места создания для логов, но не для пользователя.
//
// ВАЖНО: Message НЕ ДОЛЖЕН содержать секреты (пароли, токены, ключи).
// Используйте generic описания без конкретных значений.
//
// Пример использования:
//
//	return apperrors.NewOpaqueFailure(apperrors.ErrAuthSignUp,
//	    "не удалось создать учётную запись",
//	    err)
type OpaqueFailure struct {
	// Code: машиночитаемый код ошибки в формате CATEGORY.SPECIFIC.
	Code string `json:"code"`

	// Message: человекочитаемое описание ошибки для операторов.
	// НЕ ДОЛЖЕН содержать секреты!
	Message string `json:"message"`

	// Cause: wrapped оригинальная ошибка.
	// Не сериализуется в JSON для безопасности.
	Cause error `json:"-"`

	stack string
}

// NewOpaqueFailure создаёт OpaqueFailure и запоминает стек вызывающего.
//
// ВАЖНО: message НЕ ДОЛЖЕН содержать секреты!
func NewOpaqueFailure(code, message string, cause error) *OpaqueFailure {
	return &OpaqueFailure{
		Code:    code,
		Message: message,
		Cause:   cause,
		stack:   captureStack(1),
	}
}

// Error реализует интерфейс error.
func (e *OpaqueFailure) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap возвращает wrapped ошибку для errors.Is/As.
func (e *OpaqueFailure) Unwrap() error {
	return e.Cause
}

// StackTrace возвращает стек вызовов места создания ошибки.
func (e *OpaqueFailure) StackTrace() string {
	return e.stack
}

func (e *OpaqueFailure) failure() {}

// Capture переводит пойманное значение в закрытый набор Failure:
//   - nil → nil;
//   - ошибка, в цепочке которой уже есть Failure, → эта Failure;
//   - любая другая ошибка → OpaqueFailure с кодом INTERNAL.UNEXPECTED;
//   - значение из recover() → OpaqueFailure с кодом INTERNAL.PANIC.
func Capture(v any) Failure {
	if v == nil {
		return nil
	}

	if err, ok := v.(error); ok {
		var vf *ValidationFailure
		if errors.As(err, &vf) {
			return vf
		}
		var of *OpaqueFailure
		if errors.As(err, &of) {
			return of
		}
		return &OpaqueFailure{
			Code:    ErrInternalUnexpected,
			Message: "непредвиденная ошибка",
			Cause:   err,
			stack:   captureStack(1),
		}
	}

	return &OpaqueFailure{
		Code:    ErrInternalPanic,
		Message: "перехвачен panic",
		Cause:   fmt.Errorf("panic: %v", v),
		stack:   captureStack(1),
	}
}
