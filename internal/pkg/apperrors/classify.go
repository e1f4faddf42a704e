package apperrors

import "errors"

// Сообщения для пользователя. Текст внутренних ошибок сюда никогда не попадает.
const (
	GenericUserMessage     = "Something went wrong. Please try again."
	EmptyValidationMessage = "Please check your input."
)

// FieldErrors возвращает карту "путь поля → первое сообщение" и true,
// если в цепочке err есть ValidationFailure хотя бы с одним нарушением.
// Для остальных ошибок возвращает nil, false: отсутствие карты отличается
// от пустой карты.
//
// При повторе пути сохраняется первое сообщение.
func FieldErrors(err error) (map[string]string, bool) {
	var vf *ValidationFailure
	if !errors.As(err, &vf) || vf == nil || len(vf.Issues) == 0 {
		return nil, false
	}

	fields := make(map[string]string, len(vf.Issues))
	for _, issue := range vf.Issues {
		key := issue.Key()
		if _, seen := fields[key]; seen {
			continue
		}
		fields[key] = issue.Message
	}
	return fields, true
}

// UserMessage возвращает безопасное сообщение для пользователя:
// для ValidationFailure: сообщение первого нарушения (или EmptyValidationMessage,
// если нарушений нет), для всего остального: GenericUserMessage.
func UserMessage(err error) string {
	var vf *ValidationFailure
	if !errors.As(err, &vf) || vf == nil {
		return GenericUserMessage
	}
	if len(vf.Issues) == 0 {
		return EmptyValidationMessage
	}
	return vf.Issues[0].Message
}
